// Package anki submits finished flashcards to Anki through the AnkiConnect
// add-on's JSON-RPC endpoint.
package anki

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// connectVersion is the AnkiConnect protocol version this client speaks.
const connectVersion = 6

// Client is a thin AnkiConnect wrapper. One network call per action; there is
// no transactional guarantee across a batch of cards.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for the given AnkiConnect URL
// (typically http://localhost:8765).
func NewClient(url string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(url).
			SetTimeout(30 * time.Second),
	}
}

type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	Result any     `json:"result"`
	Error  *string `json:"error"`
}

// invoke performs one AnkiConnect action. A transport failure and a
// store-reported error are both surfaced as errors for the caller to classify.
func (c *Client) invoke(action string, params any) (any, error) {
	var out response
	resp, err := c.http.R().
		SetBody(request{Action: action, Version: connectVersion, Params: params}).
		SetResult(&out).
		Post("/")
	if err != nil {
		return nil, fmt.Errorf("ankiconnect %s: %w", action, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ankiconnect %s: HTTP %d", action, resp.StatusCode())
	}
	if out.Error != nil && *out.Error != "" {
		return nil, fmt.Errorf("ankiconnect %s: %s", action, *out.Error)
	}
	return out.Result, nil
}

// Ping checks that Anki is running and AnkiConnect answers.
func (c *Client) Ping() error {
	if _, err := c.invoke("version", nil); err != nil {
		return fmt.Errorf("anki is not reachable (is Anki running with the AnkiConnect add-on?): %w", err)
	}
	return nil
}

// EnsureDeck creates the deck if it does not exist. Creating an existing deck
// is a no-op on the Anki side.
func (c *Client) EnsureDeck(deck string) error {
	_, err := c.invoke("createDeck", map[string]any{"deck": deck})
	return err
}

// AddNote adds one Basic note. A duplicate or validation failure comes back
// as an error; callers treat it as per-card and recoverable.
func (c *Client) AddNote(deck, front, back, tag string) error {
	note := map[string]any{
		"deckName":  deck,
		"modelName": "Basic",
		"fields": map[string]string{
			"Front": front,
			"Back":  back,
		},
		"tags": []string{tag},
	}
	_, err := c.invoke("addNote", map[string]any{"note": note})
	return err
}
