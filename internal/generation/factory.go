package generation

import (
	"context"
	"fmt"
	"log/slog"
)

// NewGenerator creates the Generator for the configured provider
func NewGenerator(ctx context.Context, cfg Config) (generator Generator, err error) {
	switch cfg.Provider {
	case ProviderGemini:
		generator, err = NewGeminiGenerator(ctx, cfg)
	case ProviderOpenAI:
		generator, err = NewOpenAIGenerator(cfg)
	case ProviderMock:
		generator, err = NewMockGenerator(cfg)
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("image generator initialized",
		"provider", cfg.Provider,
		"image_model", cfg.ImageModel,
		"text_model", cfg.TextModel)
	return generator, nil
}
