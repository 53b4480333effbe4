package export

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGoogleFile(t *testing.T, dataPath, name, content string) {
	t.Helper()
	dir := filepath.Join(dataPath, "google")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadGoogle_Basic(t *testing.T) {
	dataPath := t.TempDir()
	writeGoogleFile(t, dataPath, "Prompt engineering tips", `{
		"chunkedPrompt": {
			"chunks": [
				{"role": "user", "text": "How do I phrase this?"},
				{"role": "model", "text": "thinking...", "isThought": true},
				{"role": "model", "text": "Lead with the constraint."},
				{"role": "model", "text": ""}
			]
		}
	}`)

	convs, _, err := LoadGoogle(dataPath)
	if err != nil {
		t.Fatalf("LoadGoogle: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}

	conv := convs[0]
	if conv.ID != "google:Prompt engineering tips" {
		t.Errorf("id = %q", conv.ID)
	}
	if conv.Title != "Prompt engineering tips" {
		t.Errorf("title = %q", conv.Title)
	}
	// Thought chunks and empty chunks are excluded; order preserved.
	if len(conv.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d: %+v", len(conv.Turns), conv.Turns)
	}
	if conv.Turns[0].Role != RoleUser || conv.Turns[1].Role != RoleAssistant {
		t.Errorf("roles = %q, %q", conv.Turns[0].Role, conv.Turns[1].Role)
	}
	if conv.Turns[1].Text != "Lead with the constraint." {
		t.Errorf("turn 1 text = %q", conv.Turns[1].Text)
	}
}

func TestLoadGoogle_SkipsAuxiliaryFiles(t *testing.T) {
	dataPath := t.TempDir()
	writeGoogleFile(t, dataPath, "memories.json", `{"chunkedPrompt": {"chunks": [{"role": "user", "text": "x"}]}}`)
	writeGoogleFile(t, dataPath, "clip.mp4", "binary junk")
	writeGoogleFile(t, dataPath, "notes.txt", "not json")
	writeGoogleFile(t, dataPath, "random.json", `{"something": "else"}`)
	writeGoogleFile(t, dataPath, "real", `{"chunkedPrompt": {"chunks": [{"role": "user", "text": "keep me"}]}}`)

	convs, _, err := LoadGoogle(dataPath)
	if err != nil {
		t.Fatalf("LoadGoogle: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
	if convs[0].ID != "google:real" {
		t.Errorf("kept %q", convs[0].ID)
	}
}

func TestLoadGoogle_MissingDir(t *testing.T) {
	convs, _, err := LoadGoogle(t.TempDir())
	if err != nil {
		t.Fatalf("missing google dir must not error: %v", err)
	}
	if len(convs) != 0 {
		t.Errorf("expected no conversations, got %d", len(convs))
	}
}
