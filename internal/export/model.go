package export

import (
	"fmt"
	"strings"
)

// Source identifies which export format a conversation came from.
type Source string

const (
	SourceClaude Source = "claude"
	SourceGoogle Source = "google"
	SourceOpenAI Source = "openai"
)

func (s Source) String() string { return string(s) }

// Tag returns the label attached to cards created from this source.
func (s Source) Tag() string {
	if s == SourceGoogle {
		return "google-gemini"
	}
	return string(s)
}

// Role of a single turn. Adapters normalize source-specific role names
// (human, model) onto these two values.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation, in source order.
// Non-text attachments are dropped during adaptation, not represented here.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Conversation is the canonical linear transcript produced by every adapter.
// Turns preserve the source's declared chronological order; consecutive
// same-role turns are legitimate and never merged or reordered.
type Conversation struct {
	ID     string `json:"id"`
	Source Source `json:"source"`
	Title  string `json:"title"`
	Turns  []Turn `json:"turns"`
}

// Render formats the transcript the way the proposal service expects it:
// a title header followed by USER:/ASSISTANT: blocks.
func (c *Conversation) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Conversation: %s\n\n", c.Title)
	b.WriteString("Messages:\n")
	for _, t := range c.Turns {
		fmt.Fprintf(&b, "\n%s:\n%s\n", strings.ToUpper(string(t.Role)), t.Text)
	}
	return b.String()
}

// MalformedExport reports one conversation record that could not be adapted
// into the canonical model. The record is dropped; the run continues.
type MalformedExport struct {
	Source Source
	Record string // id or title of the offending record, best effort
	Err    error
}

func (e *MalformedExport) Error() string {
	return fmt.Sprintf("malformed %s export record %q: %v", e.Source, e.Record, e.Err)
}

func (e *MalformedExport) Unwrap() error { return e.Err }
