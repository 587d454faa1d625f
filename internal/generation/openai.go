package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIGenerator generates images with the OpenAI images API
type OpenAIGenerator struct {
	client     openai.Client
	imageModel string
	textModel  string
	imageSize  string
	templates  Templates
}

// NewOpenAIGenerator creates an OpenAI client. BaseURL allows compatible gateways.
func NewOpenAIGenerator(cfg Config) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIGenerator{
		client:     openai.NewClient(opts...),
		imageModel: cfg.ImageModel,
		textModel:  cfg.TextModel,
		imageSize:  cfg.ImageSize,
		templates:  cfg.Templates,
	}, nil
}

func (o *OpenAIGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return o.generate(ctx, prompt)
}

func (o *OpenAIGenerator) GenerateColoringPage(ctx context.Context, prompt string) ([]byte, error) {
	return o.generate(ctx, o.templates.coloringPrompt(prompt))
}

func (o *OpenAIGenerator) ConvertToColoringPage(ctx context.Context, image []byte) ([]byte, error) {
	fileName, mimeType := imageUpload(image)
	params := openai.ImageEditParams{
		Prompt: o.templates.Conversion,
		Model:  openai.ImageModel(o.imageModel),
		Image: openai.ImageEditParamsImageUnion{
			OfFile: openai.File(bytes.NewReader(image), fileName, mimeType),
		},
		N: openai.Int(1),
	}
	if o.imageSize != "" {
		params.Size = openai.ImageEditParamsSize(o.imageSize)
	}
	if o.isDallE() {
		params.ResponseFormat = openai.ImageEditParamsResponseFormatB64JSON
	}

	resp, err := o.client.Images.Edit(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai image edit failed: %w", err)
	}
	return decodeImagesResponse(resp)
}

func (o *OpenAIGenerator) SuggestNiches(ctx context.Context, count int) ([]string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.textModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(o.templates.nichePrompt(count)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai niche request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}
	return parseNiches(resp.Choices[0].Message.Content, count)
}

func (o *OpenAIGenerator) Close() error {
	return nil
}

func (o *OpenAIGenerator) generate(ctx context.Context, prompt string) ([]byte, error) {
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(o.imageModel),
		N:      openai.Int(1),
	}
	if o.imageSize != "" {
		params.Size = openai.ImageGenerateParamsSize(o.imageSize)
	}
	// gpt-image models always answer with base64 and reject the parameter
	if o.isDallE() {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}

	resp, err := o.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai image request failed: %w", err)
	}
	return decodeImagesResponse(resp)
}

func (o *OpenAIGenerator) isDallE() bool {
	return strings.HasPrefix(o.imageModel, "dall-e")
}

func decodeImagesResponse(resp *openai.ImagesResponse) ([]byte, error) {
	if resp == nil || len(resp.Data) == 0 {
		return nil, errors.New("openai returned no images")
	}
	encoded := resp.Data[0].B64JSON
	if encoded == "" {
		return nil, errors.New("openai response contains no base64 image")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("malformed base64 image from openai: %w", err)
	}
	return data, nil
}
