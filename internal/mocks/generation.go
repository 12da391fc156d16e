package mocks

import (
	"context"
	"sync"

	"github.com/lernkarte/lernkarte/internal/generation"
)

// MockTranslator implements generation.Translator.
type MockTranslator struct {
	// TranslateFn overrides the default behavior when set.
	TranslateFn func(ctx context.Context, text, targetLanguage string) (string, error)

	// Err makes every call fail when set.
	Err error

	// Prefix is prepended to the input by the default behavior, making
	// translated output recognizable in assertions.
	Prefix string

	mu    sync.Mutex
	Calls []string
}

var _ generation.Translator = (*MockTranslator)(nil)

// Translate implements the Translator interface.
func (m *MockTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()

	if m.TranslateFn != nil {
		return m.TranslateFn(ctx, text, targetLanguage)
	}
	if m.Err != nil {
		return "", m.Err
	}
	prefix := m.Prefix
	if prefix == "" {
		prefix = targetLanguage + ": "
	}
	return prefix + text, nil
}

// CallCount returns how many times Translate was invoked.
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockImageGenerator implements generation.ImageGenerator.
type MockImageGenerator struct {
	// GenerateImageFn overrides the default behavior when set.
	GenerateImageFn func(ctx context.Context, prompt string) (string, error)

	// Err makes every call fail when set.
	Err error

	// Ref is the reference the default behavior returns.
	Ref string

	mu    sync.Mutex
	Calls []string
}

var _ generation.ImageGenerator = (*MockImageGenerator)(nil)

// GenerateImage implements the ImageGenerator interface.
func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, prompt)
	m.mu.Unlock()

	if m.GenerateImageFn != nil {
		return m.GenerateImageFn(ctx, prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Ref != "" {
		return m.Ref, nil
	}
	return "images/mock.png", nil
}

// CallCount returns how many times GenerateImage was invoked.
func (m *MockImageGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
