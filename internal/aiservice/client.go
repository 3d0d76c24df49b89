// Package aiservice proxies text-generation requests to Google Gemini for
// summaries, report drafting, error analysis and model comparisons. The
// model's output is treated as structured-or-fallback: callers always get a
// tagged result, never unstructured text silently reinterpreted as data.
package aiservice

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Completer is the minimal text-completion surface handlers depend on.
// Tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyCompletion reports a model response with no text.
var ErrEmptyCompletion = errors.New("model returned no text")

// GeminiClient implements Completer over the Google GenAI SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient builds a Gemini-backed completer.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Complete sends one prompt and returns the model's text.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
