package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Auxiliary files Google bundles next to AI Studio conversation exports.
var googleSkipFiles = map[string]bool{
	"applet_access_history.json": true,
	"memories.json":              true,
	"projects.json":              true,
	"users.json":                 true,
}

var googleMediaExtensions = map[string]bool{
	".mp4":  true,
	".m4a":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// googleExport mirrors one AI Studio conversation file. The filename stem is
// the only identifier the export carries, so it doubles as id and title.
type googleExport struct {
	ChunkedPrompt *googleChunkedPrompt `json:"chunkedPrompt"`
}

type googleChunkedPrompt struct {
	Chunks []googleChunk `json:"chunks"`
}

type googleChunk struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	IsThought bool   `json:"isThought"`
}

// LoadGoogle reads every conversation file under <data>/google/. Files that are
// not conversations (known auxiliary files, media, non-JSON bodies) are skipped
// silently; a missing google directory yields zero conversations. Thought
// chunks and empty-text chunks are not part of the canonical transcript.
func LoadGoogle(dataPath string) ([]Conversation, []MalformedExport, error) {
	root := filepath.Join(dataPath, "google")
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading google export dir: %w", err)
	}

	var conversations []Conversation
	var malformed []MalformedExport

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if googleSkipFiles[name] {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if googleMediaExtensions[ext] {
			continue
		}
		if ext != ".json" && ext != "" {
			continue
		}

		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading google export %s: %w", path, err)
		}

		var doc googleExport
		if err := json.Unmarshal(data, &doc); err != nil {
			// Not a conversation file. The export mixes arbitrary JSON
			// alongside conversations, so this is a skip, not an error.
			continue
		}
		if doc.ChunkedPrompt == nil || doc.ChunkedPrompt.Chunks == nil {
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		conv := Conversation{
			ID:     "google:" + stem,
			Source: SourceGoogle,
			Title:  stem,
		}

		for _, chunk := range doc.ChunkedPrompt.Chunks {
			if chunk.IsThought || chunk.Text == "" {
				continue
			}
			role := RoleAssistant
			if chunk.Role == "user" {
				role = RoleUser
			}
			conv.Turns = append(conv.Turns, Turn{Role: role, Text: chunk.Text})
		}

		if len(conv.Turns) == 0 {
			continue
		}
		conversations = append(conversations, conv)
	}

	return conversations, malformed, nil
}
