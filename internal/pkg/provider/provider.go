package provider

import (
	"context"
	"encoding/json"
	"strings"
)

// Request is the wire shape both providers accept. Exactly one of Input or
// ImageURL is set; the populated field selects the endpoint.
type Request struct {
	Input    string `json:"input,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Outcome is a single classification entry in a provider response.
type Outcome struct {
	Flagged        bool               `json:"flagged"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

// Result is the normalized provider response. Raw carries the exact payload
// as returned by the provider; category scores are never interpreted here.
type Result struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Results []Outcome `json:"results"`

	Raw json.RawMessage `json:"-"`
}

// Client classifies content through a moderation provider.
type Client interface {
	Moderate(ctx context.Context, req Request) (*Result, error)
}

// IsQuotaExceeded reports whether err carries the provider's quota-exceeded
// signature. Quota failures are not retryable.
func IsQuotaExceeded(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "quota")
}
