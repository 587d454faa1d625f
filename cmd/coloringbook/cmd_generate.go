package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/juceldev/ColoringBook/internal/core"
	"github.com/juceldev/ColoringBook/internal/generation"
	"github.com/spf13/cobra"
)

var (
	generateMode   string
	generateCount  int
	generateOutDir string
	generateFile   string
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate images for a prompt and write them as PNG files",
	Long: `Generates an illustration and/or coloring page for every prompt and writes
the images to the output directory. The prompt is read from the arguments or,
with --file, from a text file ("-" reads stdin).

Example:
  coloringbook generate --mode coloring --count 3 "a dragon reading a book"`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateMode, "mode", "m", string(generation.ModeBoth), "original, coloring or both")
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 0, "images for a single prompt (default from config)")
	generateCmd.Flags().StringVarP(&generateOutDir, "out", "o", ".", "output directory")
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "read the prompt from a file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(generateOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	service, err := newCoreService(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	stderr := cmd.ErrOrStderr()
	progress := func(p generation.Progress) {
		if p.Done {
			return
		}
		fmt.Fprintf(stderr, "[%d/%d] %s\n", p.Completed, p.Total, p.Prompt)
	}

	outcome, genErr := service.Generate(cmd.Context(), core.GenerateRequest{
		Prompt: prompt,
		Mode:   generateMode,
		Count:  generateCount,
	}, progress)

	// partial results are written before the error is reported
	written, err := writeResults(generateOutDir, outcome.Results)
	for _, path := range written {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	if err != nil {
		return err
	}
	if outcome.Warning != "" {
		fmt.Fprintln(stderr, "warning:", outcome.Warning)
	}
	if genErr != nil {
		return errors.New(outcome.Message)
	}
	return nil
}

func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case generateFile == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	case generateFile != "":
		data, err := os.ReadFile(generateFile)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file: %w", err)
		}
		return string(data), nil
	case len(args) == 0:
		return "", fmt.Errorf("a prompt argument or --file is required")
	}
	return strings.Join(args, " "), nil
}

func writeResults(dir string, results []generation.Result) ([]string, error) {
	var written []string
	for i, r := range results {
		images := []struct{ kind, encoded string }{
			{core.ImageKindOriginal, r.Original},
			{core.ImageKindColoring, r.ColoringPage},
		}
		for _, image := range images {
			kind, encoded := image.kind, image.encoded
			if encoded == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return written, fmt.Errorf("result %d: %w", i+1, err)
			}
			path := filepath.Join(dir, fmt.Sprintf("%02d-%s-%s.png", i+1, slug(r.Prompt), kind))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return written, fmt.Errorf("failed to write %s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

// slug keeps ASCII letters and digits of the first words of a prompt
func slug(prompt string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(prompt) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 40 {
			break
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "image"
	}
	return s
}
