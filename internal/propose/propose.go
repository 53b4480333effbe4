// Package propose drives the external content-proposal service: it turns a
// canonical transcript plus the current rejection rules into candidate
// flashcards, and condenses rejection feedback into new rules.
package propose

import (
	"context"
	"fmt"

	"mnemo/cardmill/internal/export"
)

// Card is one candidate flashcard. Cards are transient: they live for one
// review cycle and are discarded after commit or rejection.
type Card struct {
	Front          string `json:"front"`
	Back           string `json:"back"`
	ConversationID string `json:"-"`
}

// Proposer asks the proposal service for candidate cards. An empty result is
// a normal outcome ("nothing worth remembering"), not an error.
type Proposer interface {
	Propose(ctx context.Context, conv *export.Conversation, rules []string) ([]Card, error)
}

// Summarizer condenses a rejection into a single short rule. feedback may be
// empty, in which case the rejected cards themselves are the only signal.
type Summarizer interface {
	Summarize(ctx context.Context, cards []Card, conv *export.Conversation, feedback string, rules []string) (string, error)
}

// ServiceError is a hard failure of the proposal service (unreachable,
// authentication rejected). It is fatal for the whole run: no conversation
// can be processed without the service.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("proposal service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
