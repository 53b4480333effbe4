package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultGeminiBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Config holds everything cardmill reads from its YAML file. The API key is
// deliberately absent: it comes only from the GEMINI_API_KEY environment.
type Config struct {
	DataPath              string   `yaml:"data_path"`
	Deck                  string   `yaml:"deck"`
	Model                 string   `yaml:"model"`
	BaseURL               string   `yaml:"base_url"`
	AnkiConnectURL        string   `yaml:"ankiconnect_url"`
	Interests             []string `yaml:"interests"`
	SummarizeFeedback     *bool    `yaml:"summarize_feedback"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DataPath:       "data",
		Deck:           "AI Conversations",
		Model:          "gemini-3-pro-preview",
		BaseURL:        DefaultGeminiBaseURL,
		AnkiConnectURL: "http://localhost:8765",
		Interests: []string{
			"Mathematics",
			"AI",
			"Machine Learning",
			"Programming",
			"Science",
			"Physics",
			"Linguistics/Vocabulary",
			"History",
		},
		RequestTimeoutSeconds: 120,
	}
}

// SummarizeOnReject reports whether rejection feedback should be condensed by
// the proposal model before it enters the rule memory. Defaults to true.
func (c *Config) SummarizeOnReject() bool {
	if c.SummarizeFeedback == nil {
		return true
	}
	return *c.SummarizeFeedback
}

// RequestTimeout returns the proposal service call timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Discover finds the config file using priority: env > flag > CWD > state dir.
// Returns "" when no file exists anywhere, which means defaults.
func Discover(flagPath, stateDir string) (string, error) {
	if envPath := os.Getenv("CARDMILL_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config not found at CARDMILL_CONFIG path: %s", envPath)
		}
		return envPath, nil
	}
	if flagPath != "" {
		if _, err := os.Stat(flagPath); err != nil {
			return "", fmt.Errorf("config not found at --config path: %s", flagPath)
		}
		return flagPath, nil
	}
	if _, err := os.Stat("cardmill.yaml"); err == nil {
		return "cardmill.yaml", nil
	}
	candidate := filepath.Join(stateDir, "cardmill.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", nil
}

// Load reads and validates a config file, filling defaults for absent fields.
// path == "" returns the defaults outright.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var file Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if v := strings.TrimSpace(file.DataPath); v != "" {
		cfg.DataPath = v
	}
	if v := strings.TrimSpace(file.Deck); v != "" {
		cfg.Deck = v
	}
	if v := strings.TrimSpace(file.Model); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(file.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(file.AnkiConnectURL); v != "" {
		cfg.AnkiConnectURL = v
	}
	if len(file.Interests) > 0 {
		interests := make([]string, 0, len(file.Interests))
		for _, it := range file.Interests {
			if it = strings.TrimSpace(it); it != "" {
				interests = append(interests, it)
			}
		}
		if len(interests) > 0 {
			cfg.Interests = interests
		}
	}
	if file.SummarizeFeedback != nil {
		cfg.SummarizeFeedback = file.SummarizeFeedback
	}
	if file.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeoutSeconds = file.RequestTimeoutSeconds
	}

	return cfg, nil
}

// StateDir resolves where the checkpoint database and rule file live.
// Priority: env > flag > XDG data dir.
func StateDir(flagDir string) (string, error) {
	if envDir := os.Getenv("CARDMILL_STATE_DIR"); envDir != "" {
		return envDir, nil
	}
	if flagDir != "" {
		return flagDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "cardmill"), nil
}
