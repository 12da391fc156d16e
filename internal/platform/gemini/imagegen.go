package gemini

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lernkarte/lernkarte/internal/generation"
	"google.golang.org/genai"
)

// ImageGenerator implements generation.ImageGenerator using a Gemini image
// model. Generated images are written under a local directory; the
// returned reference is the file path, keyed by a content hash of the
// prompt so regenerating the same prompt reuses the same path.
type ImageGenerator struct {
	client   *genai.Client
	model    string
	imageDir string
	logger   *slog.Logger
}

// NewImageGenerator creates a Gemini-backed image generator that stores
// images under imageDir.
func NewImageGenerator(client *genai.Client, model, imageDir string, logger *slog.Logger) (*ImageGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", generation.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: image model cannot be empty", generation.ErrInvalidConfig)
	}
	if imageDir == "" {
		return nil, fmt.Errorf("%w: image directory cannot be empty", generation.ErrInvalidConfig)
	}
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create image directory: %v",
			generation.ErrInvalidConfig, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageGenerator{
		client:   client,
		model:    model,
		imageDir: imageDir,
		logger:   logger.With(slog.String("component", "gemini_image_generator")),
	}, nil
}

var _ generation.ImageGenerator = (*ImageGenerator)(nil)

// GenerateImage implements generation.ImageGenerator.
func (g *ImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: empty image prompt", generation.ErrInvalidConfig)
	}

	path := g.imagePath(prompt)
	if _, err := os.Stat(path); err == nil {
		g.logger.DebugContext(ctx, "Reusing cached image", slog.String("path", path))
		return path, nil
	}

	resp, err := g.client.Models.GenerateImages(ctx, g.model, prompt,
		&genai.GenerateImagesConfig{NumberOfImages: 1})
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini image call failed",
			slog.String("model", g.model),
			slog.String("error", err.Error()))
		return "", mapCallError(ctx, err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", fmt.Errorf("%w: no image in response", generation.ErrServiceUnavailable)
	}

	data := resp.GeneratedImages[0].Image.ImageBytes
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image payload", generation.ErrServiceUnavailable)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to store image: %v",
			generation.ErrServiceUnavailable, err)
	}

	g.logger.InfoContext(ctx, "Image generated",
		slog.String("path", path),
		slog.Int("bytes", len(data)))
	return path, nil
}

func (g *ImageGenerator) imagePath(prompt string) string {
	sum := md5.Sum([]byte(prompt))
	return filepath.Join(g.imageDir, hex.EncodeToString(sum[:])+".png")
}
