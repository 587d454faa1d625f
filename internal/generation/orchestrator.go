package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/juceldev/ColoringBook/internal/imageprocessing"
)

// Orchestrator runs a batch of prompts against a Generator, one API call at a time
type Orchestrator struct {
	generator        Generator
	originalPipeline *imageprocessing.CommandInvoker
	coloringPipeline *imageprocessing.CommandInvoker
	callTimeout      time.Duration
}

// NewOrchestrator creates an orchestrator. Nil pipelines leave images untouched.
func NewOrchestrator(generator Generator, originalPipeline, coloringPipeline *imageprocessing.CommandInvoker) *Orchestrator {
	if originalPipeline == nil {
		originalPipeline = imageprocessing.NewCommandInvoker(nil)
	}
	if coloringPipeline == nil {
		coloringPipeline = imageprocessing.NewCommandInvoker(nil)
	}
	return &Orchestrator{
		generator:        generator,
		originalPipeline: originalPipeline,
		coloringPipeline: coloringPipeline,
	}
}

// WithCallTimeout bounds every single API call. Zero disables the limit.
func (o *Orchestrator) WithCallTimeout(timeout time.Duration) *Orchestrator {
	o.callTimeout = timeout
	return o
}

// call runs fn under a deadline of its own
func (o *Orchestrator) call(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if o.callTimeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	return fn(callCtx)
}

// Run generates the images for every prompt in order. The first failure stops the
// batch; the results completed so far are returned together with a *BatchError.
// progress may be nil.
func (o *Orchestrator) Run(ctx context.Context, prompts []string, mode Mode, progress ProgressFunc) ([]Result, error) {
	if mode != ModeOriginal && mode != ModeColoring && mode != ModeBoth {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if progress == nil {
		progress = func(Progress) {}
	}

	total := len(prompts) * mode.CallsPerPrompt()
	completed := 0
	progress(Progress{Completed: completed, Total: total})

	step := func(prompt string) {
		completed++
		progress(Progress{Completed: completed, Total: total, Prompt: prompt})
	}

	start := time.Now()
	results := make([]Result, 0, len(prompts))
	for i, prompt := range prompts {
		result, err := o.runPrompt(ctx, prompt, mode, step)
		if err != nil {
			batchErr := &BatchError{Index: i + 1, Prompt: prompt, Err: err}
			slog.Error("generation batch aborted",
				"mode", mode,
				"prompt_index", i+1,
				"completed_prompts", len(results),
				"total_prompts", len(prompts),
				"error", err)
			progress(Progress{Completed: completed, Total: total, Done: true, Error: batchErr.Error()})
			return results, batchErr
		}
		results = append(results, result)
	}

	slog.Info("generation batch completed",
		"mode", mode,
		"prompts", len(prompts),
		"api_calls", total,
		"duration_ms", time.Since(start).Milliseconds())
	progress(Progress{Completed: completed, Total: total, Done: true})
	return results, nil
}

func (o *Orchestrator) runPrompt(ctx context.Context, prompt string, mode Mode, step func(string)) (Result, error) {
	result := Result{Prompt: prompt}

	switch mode {
	case ModeOriginal, ModeBoth:
		original, err := o.call(ctx, func(ctx context.Context) ([]byte, error) {
			return o.generator.GenerateImage(ctx, prompt)
		})
		if err != nil {
			return result, fmt.Errorf("failed to generate image: %w", err)
		}
		step(prompt)

		processed, err := o.originalPipeline.Execute(original)
		if err != nil {
			return result, fmt.Errorf("failed to process image: %w", err)
		}
		result.Original = base64.StdEncoding.EncodeToString(processed)

		if mode == ModeOriginal {
			return result, nil
		}

		// the API gets the raw image; local processing only shapes what is displayed
		page, err := o.call(ctx, func(ctx context.Context) ([]byte, error) {
			return o.generator.ConvertToColoringPage(ctx, original)
		})
		if err != nil {
			return result, fmt.Errorf("failed to convert image to coloring page: %w", err)
		}
		step(prompt)
		return o.withColoringPage(result, page)

	default:
		page, err := o.call(ctx, func(ctx context.Context) ([]byte, error) {
			return o.generator.GenerateColoringPage(ctx, prompt)
		})
		if err != nil {
			return result, fmt.Errorf("failed to generate coloring page: %w", err)
		}
		step(prompt)
		return o.withColoringPage(result, page)
	}
}

func (o *Orchestrator) withColoringPage(result Result, page []byte) (Result, error) {
	processed, err := o.coloringPipeline.Execute(page)
	if err != nil {
		return result, fmt.Errorf("failed to process coloring page: %w", err)
	}
	result.ColoringPage = base64.StdEncoding.EncodeToString(processed)
	return result, nil
}
