package ai

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic integration configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicSuggester is a stub implementation that can be expanded once the SDK is available.
type AnthropicSuggester struct{}

// NewAnthropicSuggester constructs a new stub suggester.
func NewAnthropicSuggester(cfg AnthropicConfig) (*AnthropicSuggester, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicSuggester{}, nil
}

// SuggestFeedback is not yet implemented for Anthropic models.
func (a *AnthropicSuggester) SuggestFeedback(ctx context.Context, input SuggestionInput) (string, error) {
	return "", fmt.Errorf("anthropic suggester not implemented")
}

// Chat is not yet implemented for Anthropic models.
func (a *AnthropicSuggester) Chat(ctx context.Context, transcript []ChatTurn, message string) (string, error) {
	return "", fmt.Errorf("anthropic suggester not implemented")
}
