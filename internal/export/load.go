package export

import "fmt"

// Summary counts what each adapter produced from one export root.
type Summary struct {
	BySource  map[Source]int
	Malformed []MalformedExport
}

// LoadAll runs every source adapter against the export root and returns the
// combined conversation sequence in adapter order (claude, google, openai).
// The sequence is the processing order for the whole pipeline; it owns the
// conversations for the lifetime of one run.
func LoadAll(dataPath string) ([]Conversation, *Summary, error) {
	summary := &Summary{BySource: make(map[Source]int)}

	adapters := []struct {
		source Source
		load   func(string) ([]Conversation, []MalformedExport, error)
	}{
		{SourceClaude, LoadClaude},
		{SourceGoogle, LoadGoogle},
		{SourceOpenAI, LoadOpenAI},
	}

	var all []Conversation
	for _, a := range adapters {
		convs, malformed, err := a.load(dataPath)
		if err != nil {
			return nil, nil, fmt.Errorf("%s adapter: %w", a.source, err)
		}
		all = append(all, convs...)
		summary.BySource[a.source] = len(convs)
		summary.Malformed = append(summary.Malformed, malformed...)
	}

	return all, summary, nil
}
