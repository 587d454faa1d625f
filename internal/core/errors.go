package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/juceldev/ColoringBook/internal/generation"
	"github.com/juceldev/ColoringBook/internal/history"
	"github.com/juceldev/ColoringBook/internal/prompts"
)

var (
	ErrNotFound         = history.ErrNotFound
	ErrInvalidImageKind = errors.New("image kind must be original or coloring")
	ErrInvalidCount     = fmt.Errorf("count must be between 1 and %d", MaxCount)
)

// UserMessage turns an error into text that can be shown in the UI
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var batchErr *generation.BatchError
	switch {
	case errors.Is(err, prompts.ErrEmptyPrompt):
		return "Please enter a prompt."
	case errors.Is(err, generation.ErrInvalidMode):
		return "Please choose original, coloring page or both."
	case errors.Is(err, ErrInvalidCount):
		return fmt.Sprintf("Please choose between 1 and %d images.", MaxCount)
	case errors.Is(err, context.DeadlineExceeded):
		return "The image service took too long to answer. Please try again."
	case errors.Is(err, context.Canceled):
		return "Generation was canceled."
	case errors.As(err, &batchErr):
		return fmt.Sprintf("Generation stopped at prompt %d: %v", batchErr.Index, batchErr.Err)
	case errors.Is(err, ErrNotFound):
		return "This history item no longer exists."
	}
	return fmt.Sprintf("Something went wrong: %v", err)
}
