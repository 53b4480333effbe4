package state

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Rules is the append-only rejection rule memory: short natural-language
// constraints injected into every proposal request. The backing file is plain
// text, one "- rule" line per entry, and is meant to be hand-edited between
// runs. Rules are never deduplicated, merged, or deleted at runtime.
type Rules struct {
	path  string
	rules []string
}

// OpenRules loads the rule file. An absent file is an empty memory, not an
// error (first run).
func OpenRules(path string) (*Rules, error) {
	r := &Rules{path: path}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening rule file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Hand-edited lines may lack the "- " prefix; accept them anyway.
		line = strings.TrimSpace(strings.TrimPrefix(line, "- "))
		if line != "" {
			r.rules = append(r.rules, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	return r, nil
}

// List returns every rule in insertion order. The returned slice is a copy.
func (r *Rules) List() []string {
	out := make([]string, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of rules.
func (r *Rules) Len() int { return len(r.rules) }

// Add appends a rule and persists the whole file atomically. The rule is
// visible to List immediately and to future runs.
func (r *Rules) Add(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty rule")
	}
	r.rules = append(r.rules, text)
	if err := r.save(); err != nil {
		// Roll back the in-memory append so memory matches disk.
		r.rules = r.rules[:len(r.rules)-1]
		return err
	}
	return nil
}

// Block renders the rules for inclusion in a proposal prompt, one per line
// with the same "- " prefix the file uses. Empty memory renders empty.
func (r *Rules) Block() string {
	if len(r.rules) == 0 {
		return ""
	}
	var b strings.Builder
	for _, rule := range r.rules {
		b.WriteString("- ")
		b.WriteString(rule)
		b.WriteString("\n")
	}
	return b.String()
}

// save writes the full rule list to a temp file and renames it into place so
// a crash mid-write never leaves a corrupt file.
func (r *Rules) save() error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating rule dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".rules-*")
	if err != nil {
		return fmt.Errorf("creating temp rule file: %w", err)
	}
	defer os.Remove(tmp.Name())

	for _, rule := range r.rules {
		if _, err := fmt.Fprintf(tmp, "- %s\n", rule); err != nil {
			tmp.Close()
			return fmt.Errorf("writing rule file: %w", err)
		}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing rule file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing rule file: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replacing rule file: %w", err)
	}
	return nil
}
