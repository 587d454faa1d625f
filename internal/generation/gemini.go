package generation

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// GeminiGenerator generates images with Google's Gemini API
type GeminiGenerator struct {
	client     *genai.Client
	imageModel string
	textModel  string
	templates  Templates
}

// NewGeminiGenerator creates a Gemini client for the configured models
func NewGeminiGenerator(ctx context.Context, cfg Config) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:     client,
		imageModel: cfg.ImageModel,
		textModel:  cfg.TextModel,
		templates:  cfg.Templates,
	}, nil
}

func (g *GeminiGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return g.generate(ctx, []*genai.Part{genai.NewPartFromText(prompt)})
}

func (g *GeminiGenerator) GenerateColoringPage(ctx context.Context, prompt string) ([]byte, error) {
	return g.generate(ctx, []*genai.Part{genai.NewPartFromText(g.templates.coloringPrompt(prompt))})
}

func (g *GeminiGenerator) ConvertToColoringPage(ctx context.Context, image []byte) ([]byte, error) {
	_, mimeType := imageUpload(image)
	return g.generate(ctx, []*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(g.templates.Conversion),
	})
}

func (g *GeminiGenerator) SuggestNiches(ctx context.Context, count int) ([]string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(g.templates.nichePrompt(count), genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini niche request failed: %w", err)
	}
	return parseNiches(resp.Text(), count)
}

// Close is a no-op; the genai client holds no resources beyond its HTTP client
func (g *GeminiGenerator) Close() error {
	return nil
}

func (g *GeminiGenerator) generate(ctx context.Context, parts []*genai.Part) ([]byte, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image request failed: %w", err)
	}
	return firstInlineImage(resp)
}

func firstInlineImage(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				slog.Debug("gemini returned image",
					"mime_type", part.InlineData.MIMEType,
					"bytes", len(part.InlineData.Data))
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, fmt.Errorf("gemini response contains no image part")
}
