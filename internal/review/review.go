// Package review runs the per-conversation human-in-the-loop state machine:
// present the candidate batch, capture one approve/reject decision, and on
// rejection grow the rule memory.
package review

import (
	"context"
	"fmt"
	"os"

	"mnemo/cardmill/internal/export"
	"mnemo/cardmill/internal/propose"
)

// Prompter is the decision contract with the operator. Confirm presents one
// conversation's whole candidate batch and returns a single decision for it;
// Feedback solicits an optional free-text rejection reason ("" = declined).
type Prompter interface {
	Confirm(conv *export.Conversation, cards []propose.Card) (Decision, error)
	Feedback() (string, error)
}

// RuleMemory is the narrow capability the review loop needs from the
// rejection rule store.
type RuleMemory interface {
	List() []string
	Add(text string) error
}

// Review drives one conversation from Proposed to a terminal outcome.
//
// Zero candidates go straight to Skipped with no interaction. On rejection,
// the new rule is appended before the conversation finalizes: condensed by
// the summarizer when one is provided, otherwise the operator's feedback
// verbatim. A summarizer failure falls back to the verbatim feedback so the
// signal is never lost. Prompter and rule persistence errors are fatal.
func Review(ctx context.Context, conv *export.Conversation, cards []propose.Card, p Prompter, rules RuleMemory, s propose.Summarizer) (Outcome, error) {
	if len(cards) == 0 {
		return Skipped, nil
	}

	decision, err := p.Confirm(conv, cards)
	if err != nil {
		return Skipped, fmt.Errorf("reading decision: %w", err)
	}
	if decision == Approve {
		return Approved, nil
	}

	feedback, err := p.Feedback()
	if err != nil {
		return Skipped, fmt.Errorf("reading feedback: %w", err)
	}

	rule := feedback
	if s != nil {
		summarized, err := s.Summarize(ctx, cards, conv, feedback, rules.List())
		if err != nil {
			fmt.Fprintf(os.Stderr, "[review] Summarizer failed, keeping raw feedback: %v\n", err)
		} else if summarized != "" {
			rule = summarized
		}
	}

	if rule != "" {
		if err := rules.Add(rule); err != nil {
			return Rejected, fmt.Errorf("persisting rejection rule: %w", err)
		}
		fmt.Fprintf(os.Stderr, "[review] Added rule: %s\n", rule)
	}

	return Rejected, nil
}
