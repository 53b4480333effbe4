package review

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"mnemo/cardmill/internal/export"
	"mnemo/cardmill/internal/propose"
)

// Console prompts the operator on a terminal. Rendering happens on out,
// decisions are read line-by-line from in.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole builds a console prompter, typically over os.Stdin/os.Stdout.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) Confirm(conv *export.Conversation, cards []propose.Card) (Decision, error) {
	rule := strings.Repeat("=", 80)
	fmt.Fprintf(c.out, "\n%s\n", rule)
	fmt.Fprintf(c.out, "Conversation: %s\n", conv.Title)
	fmt.Fprintf(c.out, "Found %d flashcard(s) to add:\n", len(cards))
	fmt.Fprintln(c.out, rule)

	for i, card := range cards {
		fmt.Fprintf(c.out, "\nFlashcard %d:\n", i+1)
		fmt.Fprintf(c.out, "  Front: %s\n", card.Front)
		fmt.Fprintf(c.out, "  Back: %s\n", card.Back)
	}

	fmt.Fprintf(c.out, "\n%s\n", rule)
	fmt.Fprint(c.out, "\nAdd these flashcards to Anki? (y/n): ")

	line, err := c.readLine()
	if err != nil {
		return Reject, err
	}
	return ParseDecision(line), nil
}

func (c *Console) Feedback() (string, error) {
	fmt.Fprintln(c.out, "\nWhy did you reject these cards? (Press Enter to skip)")
	fmt.Fprint(c.out, "Feedback: ")
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readLine tolerates a final unterminated line at EOF.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	if err != nil {
		return "", err
	}
	return line, nil
}

// AutoApprove approves every batch without interaction. Backs the --yes flag.
type AutoApprove struct{}

func (AutoApprove) Confirm(*export.Conversation, []propose.Card) (Decision, error) {
	return Approve, nil
}

func (AutoApprove) Feedback() (string, error) { return "", nil }
