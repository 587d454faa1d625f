// Package generation talks to the hosted image API and runs generation batches.
package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Generator is a client of a hosted generative-image API.
// Every method is a single blocking network call.
type Generator interface {
	// GenerateImage returns a full-color illustration for the prompt
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	// GenerateColoringPage returns black and white line art drawn directly from the prompt
	GenerateColoringPage(ctx context.Context, prompt string) ([]byte, error)
	// ConvertToColoringPage derives line art from an existing illustration
	ConvertToColoringPage(ctx context.Context, image []byte) ([]byte, error)
	// SuggestNiches asks the text model for popular coloring book topics
	SuggestNiches(ctx context.Context, count int) ([]string, error)
	Close() error
}

// Mode selects which images a batch produces
type Mode string

const (
	ModeOriginal Mode = "original"
	ModeColoring Mode = "coloring"
	ModeBoth     Mode = "both"
)

// ErrInvalidMode is returned for a mode other than original, coloring or both
var ErrInvalidMode = errors.New("invalid generation mode")

// ParseMode validates a mode string. An empty string selects ModeBoth.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBoth:
		return ModeBoth, nil
	case ModeOriginal:
		return ModeOriginal, nil
	case ModeColoring:
		return ModeColoring, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// CallsPerPrompt is the number of sequential API calls one prompt costs in this mode
func (m Mode) CallsPerPrompt() int {
	if m == ModeBoth {
		return 2
	}
	return 1
}

// Result holds the images generated for one prompt as base64-encoded PNG
type Result struct {
	Prompt       string `json:"prompt"`
	Original     string `json:"original,omitempty"`
	ColoringPage string `json:"coloringPage,omitempty"`
}

// Progress is reported after every API call of a batch
type Progress struct {
	BatchID   string `json:"batchId,omitempty"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Prompt    string `json:"prompt,omitempty"`
	Done      bool   `json:"done"`
	Error     string `json:"error,omitempty"`
}

// ProgressFunc receives progress updates. It is called on the batch goroutine.
type ProgressFunc func(Progress)

// BatchError reports which prompt of a batch failed
type BatchError struct {
	Index  int // 1-based
	Prompt string
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("prompt %d (%q): %v", e.Index, e.Prompt, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// imageUpload names an image sent back to a provider after its sniffed format
func imageUpload(image []byte) (fileName, mimeType string) {
	mimeType = http.DetectContentType(image)
	ext, ok := strings.CutPrefix(mimeType, "image/")
	if !ok {
		return "image.bin", mimeType
	}
	return "image." + ext, mimeType
}
