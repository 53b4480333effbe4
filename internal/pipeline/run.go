// Package pipeline wires the adapters, proposal driver, review loop, commit
// stage, and checkpoint ledger into one sequential, resumable run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"mnemo/cardmill/internal/export"
	"mnemo/cardmill/internal/propose"
	"mnemo/cardmill/internal/review"
)

// Ledger is the checkpoint capability the pipeline needs: gate re-processing
// and durably record terminal states.
type Ledger interface {
	IsDone(id string) (bool, error)
	MarkDone(id, source, status string, cardsAdded int) error
}

// CardStore accepts finished cards. One call per card; a per-card failure is
// recoverable and must not abort the batch.
type CardStore interface {
	AddNote(deck, front, back, tag string) error
}

// Deps are the collaborators injected into a run.
type Deps struct {
	Ledger     Ledger
	Rules      review.RuleMemory
	Proposer   propose.Proposer
	Summarizer propose.Summarizer // nil disables rejection summarizing
	Prompter   review.Prompter
	Store      CardStore
}

// Options controls one run.
type Options struct {
	DataPath string
	Deck     string
	Source   string // restrict to one source tag, "" = all
	MaxRuns  int    // max conversations to process this run, 0 = unlimited
	DryRun   bool   // list conversations and their checkpoint state only
	JSON     bool   // machine-readable summary on stdout
}

// ConversationResult is the outcome of one conversation.
type ConversationResult struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	Title       string        `json:"title"`
	Outcome     string        `json:"outcome"`
	CardsAdded  int           `json:"cards_added"`
	CardsFailed int           `json:"cards_failed,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Result summarizes a full run.
type Result struct {
	Conversations []ConversationResult `json:"conversations"`
	Approved      int                  `json:"approved"`
	Rejected      int                  `json:"rejected"`
	Skipped       int                  `json:"skipped"`
	CardsAdded    int                  `json:"cards_added"`
	CardsFailed   int                  `json:"cards_failed"`
	Malformed     int                  `json:"malformed_records"`
	Duration      time.Duration        `json:"duration"`
}

// Run processes every pending conversation sequentially: propose, review,
// commit, checkpoint. Conversations already in the ledger are never
// re-proposed. A proposal service failure aborts the run; everything already
// checkpointed stays checkpointed, so the next run resumes correctly.
func Run(ctx context.Context, deps Deps, opts Options) (*Result, error) {
	conversations, summary, err := export.LoadAll(opts.DataPath)
	if err != nil {
		return nil, err
	}
	if opts.Source != "" {
		var filtered []export.Conversation
		for _, c := range conversations {
			if string(c.Source) == opts.Source {
				filtered = append(filtered, c)
			}
		}
		conversations = filtered
	}

	for _, m := range summary.Malformed {
		fmt.Fprintf(os.Stderr, "[run] Malformed record dropped: %v\n", &m)
	}

	if len(conversations) == 0 {
		fmt.Fprintf(os.Stderr, "[run] No conversations found under %s\n", opts.DataPath)
		return &Result{Malformed: len(summary.Malformed)}, nil
	}

	// Partition by checkpoint state for the resume header.
	alreadyDone := 0
	for _, conv := range conversations {
		done, err := deps.Ledger.IsDone(conv.ID)
		if err != nil {
			return nil, err
		}
		if done {
			alreadyDone++
		}
	}

	fmt.Fprintf(os.Stderr, "[run] Starting: %d conversation(s) (claude=%d google=%d openai=%d)\n",
		len(conversations),
		summary.BySource[export.SourceClaude],
		summary.BySource[export.SourceGoogle],
		summary.BySource[export.SourceOpenAI])
	if alreadyDone > 0 {
		fmt.Fprintf(os.Stderr, "[run] Resuming: %d conversation(s) already done, will skip.\n", alreadyDone)
	}

	if opts.DryRun {
		return dryRun(deps, conversations, summary, opts)
	}

	result := &Result{Malformed: len(summary.Malformed)}
	runStart := time.Now()

	for i, conv := range conversations {
		if opts.MaxRuns > 0 && len(result.Conversations) >= opts.MaxRuns {
			fmt.Fprintf(os.Stderr, "\n[run] Max runs reached (%d/%d). Stopping.\n",
				len(result.Conversations), opts.MaxRuns)
			break
		}

		done, err := deps.Ledger.IsDone(conv.ID)
		if err != nil {
			return result, err
		}
		if done {
			continue
		}

		fmt.Fprintf(os.Stderr, "\n[run] === [%d/%d] %s: %s ===\n",
			i+1, len(conversations), conv.Source.Tag(), TruncateMiddle(conv.Title, 60))

		convStart := time.Now()
		cr, err := processConversation(ctx, deps, opts, &conversations[i])
		if err != nil {
			// Proposal-service and persistence failures are fatal; the
			// ledger already holds every finished conversation.
			return result, err
		}
		cr.Duration = time.Since(convStart)

		switch cr.Outcome {
		case review.Approved.String():
			result.Approved++
		case review.Rejected.String():
			result.Rejected++
		default:
			result.Skipped++
		}
		result.CardsAdded += cr.CardsAdded
		result.CardsFailed += cr.CardsFailed
		result.Conversations = append(result.Conversations, *cr)
	}

	result.Duration = time.Since(runStart)
	printSummary(result, opts.JSON)
	return result, nil
}

// processConversation drives one conversation to its terminal state and
// checkpoints it. The ledger is updated strictly after the store calls: a
// crash in between may duplicate a card on the next run, which is accepted.
func processConversation(ctx context.Context, deps Deps, opts Options, conv *export.Conversation) (*ConversationResult, error) {
	cr := &ConversationResult{
		ID:     conv.ID,
		Source: conv.Source.Tag(),
		Title:  conv.Title,
	}

	cards, err := deps.Proposer.Propose(ctx, conv, deps.Rules.List())
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		fmt.Fprintf(os.Stderr, "[run] No valuable information found\n")
	}

	outcome, err := review.Review(ctx, conv, cards, deps.Prompter, deps.Rules, deps.Summarizer)
	if err != nil {
		return nil, err
	}
	cr.Outcome = outcome.String()

	if outcome == review.Approved {
		for _, card := range cards {
			if err := deps.Store.AddNote(opts.Deck, card.Front, card.Back, conv.Source.Tag()); err != nil {
				fmt.Fprintf(os.Stderr, "[anki] Card skipped (%s): %v\n",
					TruncateMiddle(card.Front, 50), err)
				cr.CardsFailed++
				continue
			}
			cr.CardsAdded++
		}
		fmt.Fprintf(os.Stderr, "[run] Added %d flashcard(s)\n", cr.CardsAdded)
	}

	if err := deps.Ledger.MarkDone(conv.ID, string(conv.Source), cr.Outcome, cr.CardsAdded); err != nil {
		return nil, err
	}
	return cr, nil
}

func dryRun(deps Deps, conversations []export.Conversation, summary *export.Summary, opts Options) (*Result, error) {
	fmt.Fprintf(os.Stderr, "\n[run] === DRY RUN ===\n")
	pending := 0
	for i, conv := range conversations {
		done, err := deps.Ledger.IsDone(conv.ID)
		if err != nil {
			return nil, err
		}
		mark := "pending"
		if done {
			mark = "done"
		} else {
			pending++
		}
		fmt.Fprintf(os.Stderr, "  %d. [%s] %s: %s (%d turns)\n",
			i+1, mark, conv.Source.Tag(), TruncateMiddle(conv.Title, 60), len(conv.Turns))
	}
	fmt.Fprintf(os.Stderr, "\n[run] Would process %d conversation(s). Nothing proposed.\n", pending)
	return &Result{Malformed: len(summary.Malformed)}, nil
}

func printSummary(result *Result, asJSON bool) {
	if asJSON {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	total := len(result.Conversations)
	fmt.Fprintf(os.Stderr, "\n[run] === Summary ===\n")
	fmt.Fprintf(os.Stderr, "  Conversations:  %d\n", total)
	fmt.Fprintf(os.Stderr, "  Approved:       %d\n", result.Approved)
	fmt.Fprintf(os.Stderr, "  Rejected:       %d\n", result.Rejected)
	fmt.Fprintf(os.Stderr, "  Skipped:        %d\n", result.Skipped)
	fmt.Fprintf(os.Stderr, "  Cards added:    %d\n", result.CardsAdded)
	if result.CardsFailed > 0 {
		fmt.Fprintf(os.Stderr, "  Cards failed:   %d\n", result.CardsFailed)
	}
	if result.Malformed > 0 {
		fmt.Fprintf(os.Stderr, "  Malformed:      %d record(s) dropped\n", result.Malformed)
	}
	fmt.Fprintf(os.Stderr, "  Total duration: %s\n", FormatDurationShort(result.Duration.Milliseconds()))

	if total > 0 {
		fmt.Fprintf(os.Stderr, "\n  Conversation details:\n")
		for i, cr := range result.Conversations {
			fmt.Fprintf(os.Stderr, "    %d. [%s] %d card(s) %s -- %s\n",
				i+1, cr.Outcome, cr.CardsAdded,
				FormatDurationShort(cr.Duration.Milliseconds()),
				TruncateMiddle(cr.Title, 50))
		}
	}
}
