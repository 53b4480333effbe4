package propose

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"mnemo/cardmill/internal/export"
)

// Gemini talks to the Gemini API through its OpenAI-compatible endpoint.
// Implements both Proposer and Summarizer.
type Gemini struct {
	client    openai.Client
	model     string
	interests []string
	timeout   time.Duration
}

// GeminiConfig configures the proposal client.
type GeminiConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Interests []string
	Timeout   time.Duration
}

// NewGemini builds the client. A missing API key is a startup error.
func NewGemini(cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing API key: set GEMINI_API_KEY")
	}
	opts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(cfg.APIKey))}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSpace(cfg.BaseURL)))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Gemini{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		interests: cfg.Interests,
		timeout:   timeout,
	}, nil
}

// proposalResponse is the JSON shape the analyze prompt demands.
type proposalResponse struct {
	HasValue   bool `json:"has_value"`
	Flashcards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"flashcards"`
}

// Propose sends the transcript and rule list to the model and parses the
// candidate cards out of the reply. A reply that is not the expected JSON is
// treated as "no cards proposed" so one bad response never blocks the run.
func (g *Gemini) Propose(ctx context.Context, conv *export.Conversation, rules []string) ([]Card, error) {
	text, err := g.generate(ctx, analyzePrompt(conv, g.interests, rules))
	if err != nil {
		return nil, &ServiceError{Err: err}
	}

	var parsed proposalResponse
	if err := json.Unmarshal([]byte(StripFences(text)), &parsed); err != nil {
		fmt.Fprintf(os.Stderr, "[propose] Unparsable response for %s, treating as no cards: %v\n", conv.ID, err)
		return nil, nil
	}
	if !parsed.HasValue {
		return nil, nil
	}

	cards := make([]Card, 0, len(parsed.Flashcards))
	for _, fc := range parsed.Flashcards {
		if strings.TrimSpace(fc.Front) == "" || strings.TrimSpace(fc.Back) == "" {
			continue
		}
		cards = append(cards, Card{
			Front:          fc.Front,
			Back:           fc.Back,
			ConversationID: conv.ID,
		})
	}
	return cards, nil
}

// Summarize condenses a rejection into one rule sentence.
func (g *Gemini) Summarize(ctx context.Context, cards []Card, conv *export.Conversation, feedback string, rules []string) (string, error) {
	text, err := g.generate(ctx, summarizePrompt(cards, conv, feedback, g.interests, rules))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// StripFences removes a wrapping markdown code fence from a model reply.
// Models routinely wrap the requested JSON in ```json blocks despite the
// prompt asking for bare JSON.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
