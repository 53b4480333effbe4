package review

import "strings"

// Decision is the operator's call on an entire batch of candidate cards.
type Decision int

const (
	Reject Decision = iota
	Approve
)

func (d Decision) String() string {
	if d == Approve {
		return "approve"
	}
	return "reject"
}

// ParseDecision maps operator input onto a decision. Only an explicit yes
// approves; anything else rejects.
func ParseDecision(input string) Decision {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return Approve
	default:
		return Reject
	}
}

// Outcome is the terminal state a reviewed conversation reaches. Every
// conversation that enters review leaves it in exactly one of these states.
type Outcome int

const (
	Skipped Outcome = iota // no candidates, no operator interaction
	Approved
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	default:
		return "skipped"
	}
}
