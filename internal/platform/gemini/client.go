package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/lernkarte/lernkarte/internal/config"
	"github.com/lernkarte/lernkarte/internal/generation"
	"google.golang.org/genai"
)

// NewClient creates a Gemini API client from configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig) (*genai.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}
	return client, nil
}

// mapCallError translates a transport failure into a generation sentinel.
func mapCallError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", generation.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", generation.ErrServiceUnavailable, err)
	}
}
