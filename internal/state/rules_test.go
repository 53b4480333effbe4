package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRulesEmptyOnFirstRun(t *testing.T) {
	r, err := OpenRules(filepath.Join(t.TempDir(), "rejection_rules.txt"))
	if err != nil {
		t.Fatalf("OpenRules: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("fresh memory has %d rules", r.Len())
	}
	if r.Block() != "" {
		t.Errorf("empty memory renders %q", r.Block())
	}
}

func TestRulesAppendOrderAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejection_rules.txt")
	r, err := OpenRules(path)
	if err != nil {
		t.Fatalf("OpenRules: %v", err)
	}

	first := "Don't create flashcards for basic Git commands."
	second := "Avoid cards about one-off debugging sessions."
	if err := r.Add(first); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Add(second); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Immediately visible, verbatim, appended at the end.
	rules := r.List()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0] != first || rules[1] != second {
		t.Errorf("rules out of order: %v", rules)
	}

	// Visible to a future run.
	r2, err := OpenRules(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rules = r2.List()
	if len(rules) != 2 || rules[0] != first || rules[1] != second {
		t.Errorf("rules after reload: %v", rules)
	}
}

func TestRulesFileIsHumanEditable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejection_rules.txt")

	// Hand-written file: one prefixed line, one bare line, blank lines.
	content := "- No trivia about version numbers.\n\nNo cards from small talk.\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := OpenRules(path)
	if err != nil {
		t.Fatalf("OpenRules: %v", err)
	}
	rules := r.List()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d: %v", len(rules), rules)
	}
	if rules[0] != "No trivia about version numbers." {
		t.Errorf("rule 0 = %q", rules[0])
	}
	if rules[1] != "No cards from small talk." {
		t.Errorf("rule 1 = %q", rules[1])
	}

	// Appending keeps the hand-written rules and the line format.
	if err := r.Add("Skip API minutiae."); err != nil {
		t.Fatalf("Add: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("file has %d lines: %q", len(lines), string(data))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "- ") {
			t.Errorf("line not in '- rule' format: %q", line)
		}
	}
}

func TestRulesBlock(t *testing.T) {
	r, err := OpenRules(filepath.Join(t.TempDir(), "rules.txt"))
	if err != nil {
		t.Fatalf("OpenRules: %v", err)
	}
	if err := r.Add("rule one"); err != nil {
		t.Fatal(err)
	}
	if err := r.Add("rule two"); err != nil {
		t.Fatal(err)
	}
	if got, want := r.Block(), "- rule one\n- rule two\n"; got != want {
		t.Errorf("Block() = %q, want %q", got, want)
	}
}

func TestRulesRejectEmpty(t *testing.T) {
	r, err := OpenRules(filepath.Join(t.TempDir(), "rules.txt"))
	if err != nil {
		t.Fatalf("OpenRules: %v", err)
	}
	if err := r.Add("   "); err == nil {
		t.Error("expected an error for a blank rule")
	}
	if r.Len() != 0 {
		t.Errorf("blank rule was stored")
	}
}
