package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lernkarte/lernkarte/internal/generation"
	"google.golang.org/genai"
)

// Translator implements generation.Translator using a Gemini text model.
type Translator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewTranslator creates a Gemini-backed translator.
func NewTranslator(client *genai.Client, model string, logger *slog.Logger) (*Translator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", generation.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: text model cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		client: client,
		model:  model,
		logger: logger.With(slog.String("component", "gemini_translator")),
	}, nil
}

var _ generation.Translator = (*Translator)(nil)

// Translate implements generation.Translator.
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if text == "" {
		return "", nil
	}

	prompt := fmt.Sprintf(
		"Translate the following text into %s. Reply with the translation only, no commentary.\n\n%s",
		targetLanguage, text)

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(prompt), nil)
	if err != nil {
		t.logger.ErrorContext(ctx, "Gemini translation call failed",
			slog.String("model", t.model),
			slog.String("error", err.Error()))
		return "", mapCallError(ctx, err)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: translation blocked", generation.ErrContentBlocked)
	}

	translated := strings.TrimSpace(resp.Text())
	if translated == "" {
		return "", fmt.Errorf("%w: empty translation response", generation.ErrServiceUnavailable)
	}

	t.logger.DebugContext(ctx, "Translation complete",
		slog.Int("input_length", len(text)),
		slog.Int("output_length", len(translated)))
	return translated, nil
}
