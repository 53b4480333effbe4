package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeOpenAIExport(t *testing.T, dataPath, content string) {
	t.Helper()
	dir := filepath.Join(dataPath, "openai")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "conversations.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// The mapping below branches at "q1": the user edited their question, creating
// siblings "a1" (abandoned) and "a1b" (current branch). Only the path from the
// root to current_node belongs in the canonical transcript.
const branchedExport = `[
	{
		"id": "conv-1",
		"title": "Branching",
		"current_node": "a1b",
		"mapping": {
			"root": {"message": null, "parent": ""},
			"q1": {
				"message": {"author": {"role": "user"}, "content": {"parts": ["first question"]}},
				"parent": "root"
			},
			"a1": {
				"message": {"author": {"role": "assistant"}, "content": {"parts": ["abandoned answer"]}},
				"parent": "q1"
			},
			"a1b": {
				"message": {"author": {"role": "assistant"}, "content": {"parts": ["kept answer"]}},
				"parent": "q1"
			}
		}
	}
]`

func TestLoadOpenAI_BranchPruning(t *testing.T) {
	dataPath := t.TempDir()
	writeOpenAIExport(t, dataPath, branchedExport)

	convs, malformed, err := LoadOpenAI(dataPath)
	if err != nil {
		t.Fatalf("LoadOpenAI: %v", err)
	}
	if len(malformed) != 0 {
		t.Fatalf("expected no malformed records, got %v", malformed)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}

	conv := convs[0]
	if conv.ID != "openai:conv-1" {
		t.Errorf("id = %q", conv.ID)
	}
	if len(conv.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d: %+v", len(conv.Turns), conv.Turns)
	}
	// Root-to-leaf order, sibling branch excluded entirely.
	if conv.Turns[0].Text != "first question" || conv.Turns[1].Text != "kept answer" {
		t.Errorf("turns = %q, %q", conv.Turns[0].Text, conv.Turns[1].Text)
	}
	for _, turn := range conv.Turns {
		if turn.Text == "abandoned answer" {
			t.Error("abandoned branch leaked into the transcript")
		}
	}
}

func TestLoadOpenAI_DanglingCurrentNode(t *testing.T) {
	dataPath := t.TempDir()
	writeOpenAIExport(t, dataPath, `[
		{"id": "bad-1", "title": "Broken", "current_node": "missing", "mapping": {}},
		{
			"id": "good-1",
			"title": "Fine",
			"current_node": "n1",
			"mapping": {
				"n1": {
					"message": {"author": {"role": "user"}, "content": {"parts": ["hello"]}},
					"parent": ""
				}
			}
		}
	]`)

	convs, malformed, err := LoadOpenAI(dataPath)
	if err != nil {
		t.Fatalf("one malformed record must not abort the run: %v", err)
	}
	if len(malformed) != 1 {
		t.Fatalf("expected 1 malformed record, got %d", len(malformed))
	}
	if malformed[0].Record != "bad-1" {
		t.Errorf("malformed record = %q", malformed[0].Record)
	}
	if len(convs) != 1 || convs[0].ID != "openai:good-1" {
		t.Fatalf("remaining conversation not processed: %+v", convs)
	}
}

func TestLoadOpenAI_MissingCurrentNode(t *testing.T) {
	dataPath := t.TempDir()
	writeOpenAIExport(t, dataPath, `[
		{"id": "no-cn", "title": "No current node", "mapping": {
			"n1": {"message": {"author": {"role": "user"}, "content": {"parts": ["x"]}}, "parent": ""}
		}}
	]`)

	convs, malformed, err := LoadOpenAI(dataPath)
	if err != nil {
		t.Fatalf("LoadOpenAI: %v", err)
	}
	if len(convs) != 0 {
		t.Errorf("conversation without current_node must be excluded")
	}
	if len(malformed) != 1 || !strings.Contains(malformed[0].Error(), "current_node") {
		t.Fatalf("expected a current_node malformed report, got %v", malformed)
	}
}

func TestLoadOpenAI_CycleBounded(t *testing.T) {
	dataPath := t.TempDir()
	writeOpenAIExport(t, dataPath, `[
		{
			"id": "cyclic", "title": "Cycle", "current_node": "a",
			"mapping": {
				"a": {"message": {"author": {"role": "user"}, "content": {"parts": ["x"]}}, "parent": "b"},
				"b": {"message": {"author": {"role": "assistant"}, "content": {"parts": ["y"]}}, "parent": "a"}
			}
		}
	]`)

	convs, malformed, err := LoadOpenAI(dataPath)
	if err != nil {
		t.Fatalf("LoadOpenAI: %v", err)
	}
	if len(convs) != 0 {
		t.Error("cyclic mapping must not produce a conversation")
	}
	if len(malformed) != 1 || !strings.Contains(malformed[0].Error(), "cycle") {
		t.Fatalf("expected a cycle malformed report, got %v", malformed)
	}
}

func TestLoadOpenAI_SkipsTombstonesAndHidden(t *testing.T) {
	dataPath := t.TempDir()
	writeOpenAIExport(t, dataPath, `[
		{
			"id": "conv-2", "title": "Skips", "current_node": "leaf",
			"mapping": {
				"root": {"message": null, "parent": ""},
				"sys": {
					"message": {"author": {"role": "system"}, "content": {"parts": ["system prompt"]}},
					"parent": "root"
				},
				"hidden": {
					"message": {
						"author": {"role": "user"},
						"content": {"parts": ["hidden context"]},
						"metadata": {"is_visually_hidden_from_conversation": true}
					},
					"parent": "sys"
				},
				"q": {
					"message": {"author": {"role": "user"}, "content": {"parts": ["visible question"]}},
					"parent": "hidden"
				},
				"leaf": {
					"message": {"author": {"role": "assistant"}, "content": {"parts": [{"text": "object part answer"}]}},
					"parent": "q"
				}
			}
		}
	]`)

	convs, _, err := LoadOpenAI(dataPath)
	if err != nil {
		t.Fatalf("LoadOpenAI: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
	turns := convs[0].Turns
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns (tombstone, system, hidden all skipped), got %d: %+v", len(turns), turns)
	}
	if turns[0].Text != "visible question" {
		t.Errorf("turn 0 = %q", turns[0].Text)
	}
	// parts may be objects carrying a text field instead of plain strings.
	if turns[1].Text != "object part answer" {
		t.Errorf("turn 1 = %q", turns[1].Text)
	}
}

func TestLoadOpenAI_MissingFile(t *testing.T) {
	convs, malformed, err := LoadOpenAI(t.TempDir())
	if err != nil {
		t.Fatalf("missing openai export must not error: %v", err)
	}
	if len(convs) != 0 || len(malformed) != 0 {
		t.Errorf("expected nothing, got %d convs, %d malformed", len(convs), len(malformed))
	}
}
