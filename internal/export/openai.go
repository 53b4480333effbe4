package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// openaiRecord mirrors one entry of a ChatGPT export's conversations.json.
// Messages form a tree: mapping from node id to {message, parent}, with
// current_node pointing at the leaf of the branch the user actually saw.
type openaiRecord struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Mapping     map[string]openaiNode `json:"mapping"`
	CurrentNode string                `json:"current_node"`
}

type openaiNode struct {
	Message *openaiMessage `json:"message"`
	Parent  string         `json:"parent"`
}

type openaiMessage struct {
	Author struct {
		Role string `json:"role"`
	} `json:"author"`
	Content struct {
		Parts []json.RawMessage `json:"parts"`
	} `json:"content"`
	Metadata struct {
		Hidden bool `json:"is_visually_hidden_from_conversation"`
	} `json:"metadata"`
}

// LoadOpenAI reads <data>/openai/conversations.json and reconstructs each
// record's canonical transcript from the message tree. Records whose
// current_node is absent, dangles, or whose parent chain cycles are reported
// as malformed and excluded; the rest of the file is still processed.
func LoadOpenAI(dataPath string) ([]Conversation, []MalformedExport, error) {
	path := filepath.Join(dataPath, "openai", "conversations.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading openai export %s: %w", path, err)
	}

	var records []openaiRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("parsing openai export %s: %w", path, err)
	}

	var conversations []Conversation
	var malformed []MalformedExport

	for _, rec := range records {
		conv, err := adaptOpenAIRecord(rec)
		if err != nil {
			malformed = append(malformed, MalformedExport{
				Source: SourceOpenAI,
				Record: recordName(rec),
				Err:    err,
			})
			continue
		}
		if len(conv.Turns) == 0 {
			continue
		}
		conversations = append(conversations, conv)
	}

	return conversations, malformed, nil
}

func recordName(rec openaiRecord) string {
	if rec.ID != "" {
		return rec.ID
	}
	return rec.Title
}

// adaptOpenAIRecord walks parent pointers from current_node back to the root,
// then reverses the chain into chronological order. Nodes off this path
// (abandoned edit branches) are discarded. Nodes with no message body,
// hidden messages, and non user/assistant roles are skipped but their parent
// links are still followed.
func adaptOpenAIRecord(rec openaiRecord) (Conversation, error) {
	title := rec.Title
	if title == "" {
		title = "Untitled"
	}
	id := rec.ID
	if id == "" {
		id = title
	}

	conv := Conversation{
		ID:     "openai:" + id,
		Source: SourceOpenAI,
		Title:  title,
	}

	if rec.CurrentNode == "" {
		return conv, errors.New("missing current_node")
	}
	if _, ok := rec.Mapping[rec.CurrentNode]; !ok {
		return conv, fmt.Errorf("current_node %q not present in mapping", rec.CurrentNode)
	}

	// Parent pointers form a tree by construction, so the walk is bounded by
	// the mapping's size. Exceeding it means the export contains a cycle.
	var chain []Turn
	nodeID := rec.CurrentNode
	for steps := 0; nodeID != ""; steps++ {
		if steps > len(rec.Mapping) {
			return conv, fmt.Errorf("parent chain cycles at node %q", nodeID)
		}
		node, ok := rec.Mapping[nodeID]
		if !ok {
			// Dangling parent link: treat the previous node as the root.
			break
		}
		if turn, ok := openaiTurn(node.Message); ok {
			chain = append(chain, turn)
		}
		nodeID = node.Parent
	}

	// chain is leaf-to-root; reverse into chronological order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	conv.Turns = chain

	return conv, nil
}

// openaiTurn converts a node's message into a canonical turn, or reports that
// the node should be skipped (tombstone, hidden, system role, empty text).
func openaiTurn(msg *openaiMessage) (Turn, bool) {
	if msg == nil || msg.Metadata.Hidden {
		return Turn{}, false
	}
	role := msg.Author.Role
	if role != "user" && role != "assistant" {
		return Turn{}, false
	}

	text := joinParts(msg.Content.Parts)
	if strings.TrimSpace(text) == "" {
		return Turn{}, false
	}
	return Turn{Role: Role(role), Text: text}, true
}

// joinParts concatenates message parts, which the export stores either as
// plain strings or as objects carrying a text field.
func joinParts(parts []json.RawMessage) string {
	var b strings.Builder
	for _, raw := range parts {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			b.WriteString(s)
			continue
		}
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil {
			b.WriteString(obj.Text)
		}
	}
	return b.String()
}
