package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/juceldev/ColoringBook/internal/generation"
	"github.com/juceldev/ColoringBook/internal/history"
	"github.com/juceldev/ColoringBook/internal/imageprocessing"
	"github.com/juceldev/ColoringBook/internal/prompts"
)

const (
	ImageKindOriginal = "original"
	ImageKindColoring = "coloring"
)

// GenerateRequest is one submission of the prompt form
type GenerateRequest struct {
	Prompt  string `json:"prompt" form:"prompt" validate:"required"`
	Mode    string `json:"mode" form:"mode" validate:"omitempty,oneof=original coloring both"`
	Count   int    `json:"count" form:"count" validate:"omitempty,min=1,max=10"`
	BatchID string `json:"batchId" form:"batchId"`
}

// GenerateOutcome is what the UI shows after a batch. Results and Item are set even
// when the batch failed part way.
type GenerateOutcome struct {
	Item    *history.Item       `json:"item,omitempty"`
	Results []generation.Result `json:"results"`
	Message string              `json:"message,omitempty"`
	Warning string              `json:"warning,omitempty"`
}

type CoreService struct {
	config       *ServiceConfig
	generator    generation.Generator
	orchestrator *generation.Orchestrator
	history      history.HistoryService
	thumbnail    *imageprocessing.CommandInvoker
}

// NewCoreService connects the configured generator and history backend
func NewCoreService(ctx context.Context, config *ServiceConfig) (*CoreService, error) {
	generator, err := generation.NewGenerator(ctx, config.Generator)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	historyService, err := history.NewHistory(ctx, config.Database.Type, config.Database.ConnectionString, config.History.Limit)
	if err != nil {
		_ = generator.Close()
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	slog.Info("history initialized successfully", "type", config.Database.Type, "limit", historyService.Limit())

	service, err := NewCoreServiceWith(config, generator, historyService)
	if err != nil {
		_ = generator.Close()
		_ = historyService.Close()
		return nil, err
	}
	return service, nil
}

// NewCoreServiceWith builds the service around an existing generator and history
func NewCoreServiceWith(config *ServiceConfig, generator generation.Generator, historyService history.HistoryService) (*CoreService, error) {
	originalPipeline, err := imageprocessing.NewCommandInvokerFromConfig(config.OriginalCommands)
	if err != nil {
		return nil, fmt.Errorf("invalid originalCommands: %w", err)
	}
	coloringPipeline, err := imageprocessing.NewCommandInvokerFromConfig(config.ColoringCommands)
	if err != nil {
		return nil, fmt.Errorf("invalid coloringCommands: %w", err)
	}
	slog.Debug("image pipelines configured",
		"original_commands", originalPipeline.Len(),
		"coloring_commands", coloringPipeline.Len())

	thumbnail, err := imageprocessing.NewCommandInvokerFromConfig([]imageprocessing.CommandConfig{
		{Name: "PixelScaleCommand", Params: map[string]any{"width": config.Generation.ThumbnailWidth}},
	})
	if err != nil {
		return nil, fmt.Errorf("invalid thumbnail width: %w", err)
	}

	orchestrator := generation.NewOrchestrator(generator, originalPipeline, coloringPipeline).
		WithCallTimeout(config.Generation.RequestTimeout)

	return &CoreService{
		config:       config,
		generator:    generator,
		orchestrator: orchestrator,
		history:      historyService,
		thumbnail:    thumbnail,
	}, nil
}

func (service *CoreService) Config() *ServiceConfig {
	return service.config
}

// Generate runs one batch. The returned error is already described in outcome.Message.
func (service *CoreService) Generate(ctx context.Context, req GenerateRequest, progress generation.ProgressFunc) (*GenerateOutcome, error) {
	outcome := &GenerateOutcome{Results: []generation.Result{}}
	fail := func(err error) (*GenerateOutcome, error) {
		outcome.Message = UserMessage(err)
		return outcome, err
	}

	mode, err := generation.ParseMode(req.Mode)
	if err != nil {
		return fail(err)
	}
	count := req.Count
	if count == 0 {
		count = service.config.Generation.DefaultCount
	}
	if count < 1 || count > MaxCount {
		return fail(ErrInvalidCount)
	}

	batch, err := prompts.Expand(req.Prompt, count)
	if err != nil {
		return fail(err)
	}
	for i := range batch {
		batch[i] = prompts.Truncate(batch[i], service.config.Generation.MaxPromptRunes)
	}

	report := func(p generation.Progress) {
		if progress != nil {
			p.BatchID = req.BatchID
			progress(p)
		}
	}

	slog.Info("starting generation batch", "batch_id", req.BatchID, "mode", mode, "prompts", len(batch))
	results, runErr := service.orchestrator.Run(ctx, batch, mode, report)
	outcome.Results = append(outcome.Results, results...)

	if len(results) > 0 {
		item := &history.Item{
			Prompt:  req.Prompt,
			Mode:    mode,
			Results: results,
		}
		// the request may already be cancelled; storing is still wanted
		if err := service.history.Add(context.WithoutCancel(ctx), item); err != nil {
			slog.Error("failed to store history item", "batch_id", req.BatchID, "error", err)
			outcome.Warning = "The images could not be saved to the history."
		} else {
			outcome.Item = item
		}
	}

	if runErr != nil {
		return fail(runErr)
	}
	outcome.Message = fmt.Sprintf("Generated %d of %d prompts.", len(results), len(batch))
	return outcome, nil
}

func (service *CoreService) History(ctx context.Context) ([]*history.Item, error) {
	return service.history.List(ctx)
}

// HistoryItem returns ErrNotFound for an unknown id
func (service *CoreService) HistoryItem(ctx context.Context, id string) (*history.Item, error) {
	item, err := service.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (service *CoreService) DeleteHistoryItem(ctx context.Context, id string) error {
	return service.history.Delete(ctx, id)
}

func (service *CoreService) ClearHistory(ctx context.Context) error {
	return service.history.Clear(ctx)
}

// Niches asks the generator for popular coloring book topics
func (service *CoreService) Niches(ctx context.Context) ([]string, error) {
	if timeout := service.config.Generation.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return service.generator.SuggestNiches(ctx, service.config.Generation.NicheCount)
}

// ResultImage returns the PNG bytes of one image of a stored batch. index is 0-based.
func (service *CoreService) ResultImage(ctx context.Context, id string, index int, kind string) ([]byte, error) {
	item, err := service.HistoryItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(item.Results) {
		return nil, fmt.Errorf("result %d of %s: %w", index, id, ErrNotFound)
	}

	var encoded string
	switch kind {
	case ImageKindOriginal:
		encoded = item.Results[index].Original
	case ImageKindColoring:
		encoded = item.Results[index].ColoringPage
	default:
		return nil, ErrInvalidImageKind
	}
	if encoded == "" {
		return nil, fmt.Errorf("%s image of result %d: %w", kind, index, ErrNotFound)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("corrupt image in history item %s: %w", id, err)
	}
	return data, nil
}

// Thumbnail scales a PNG down to the configured thumbnail width
func (service *CoreService) Thumbnail(image []byte) ([]byte, error) {
	return service.thumbnail.Execute(image)
}

func (service *CoreService) Close() error {
	genErr := service.generator.Close()
	if err := service.history.Close(); err != nil {
		return err
	}
	return genErr
}
