package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// claudeRecord mirrors one entry of a Claude data export's conversations.json.
type claudeRecord struct {
	UUID         string          `json:"uuid"`
	Name         string          `json:"name"`
	Summary      string          `json:"summary"`
	ChatMessages []claudeMessage `json:"chat_messages"`
}

type claudeMessage struct {
	Sender  string        `json:"sender"`
	Content []claudeBlock `json:"content"`
}

type claudeBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// LoadClaude reads every <data>/claude/*/conversations.json export and adapts
// each record into a canonical Conversation. A missing claude directory yields
// zero conversations; an unparsable conversations.json fails the whole adapter.
// Records whose messages carry no text produce zero turns and are filtered out.
func LoadClaude(dataPath string) ([]Conversation, []MalformedExport, error) {
	root := filepath.Join(dataPath, "claude")
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil, nil
	}

	files, err := filepath.Glob(filepath.Join(root, "*", "conversations.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("scanning claude exports: %w", err)
	}

	var conversations []Conversation
	var malformed []MalformedExport

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading claude export %s: %w", path, err)
		}

		var records []claudeRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, nil, fmt.Errorf("parsing claude export %s: %w", path, err)
		}

		for _, rec := range records {
			conv := adaptClaudeRecord(rec)
			if len(conv.Turns) == 0 {
				continue
			}
			conversations = append(conversations, conv)
		}
	}

	return conversations, malformed, nil
}

func adaptClaudeRecord(rec claudeRecord) Conversation {
	id := rec.UUID
	if id == "" {
		id = rec.Name
	}

	conv := Conversation{
		ID:     "claude:" + id,
		Source: SourceClaude,
		Title:  rec.Name,
	}

	for _, msg := range rec.ChatMessages {
		var parts []string
		for _, block := range msg.Content {
			if block.Type == "text" && block.Text != "" {
				parts = append(parts, block.Text)
			}
		}
		if len(parts) == 0 {
			continue
		}
		role := RoleAssistant
		if msg.Sender == "human" {
			role = RoleUser
		}
		conv.Turns = append(conv.Turns, Turn{
			Role: role,
			Text: strings.Join(parts, " "),
		})
	}

	return conv
}
