// Package prompts turns the text typed into the prompt box into the list of
// prompts a generation batch runs.
package prompts

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrEmptyPrompt is returned when the prompt box holds nothing but whitespace
var ErrEmptyPrompt = errors.New("prompt is empty")

// numberedQuoted matches a numbered list marker at the start of a line followed by a
// double-quoted string, e.g. `1. "a cat"`, `2) “a dog”`, `3 - "a bird"` or `4: "a fish"`.
var numberedQuoted = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*[.):\-][ \t]*["“]([^"”\n]*)["”]`)

// Parse extracts every quoted prompt that follows a numbered list marker.
// It returns an empty slice when the text is not a numbered list.
func Parse(text string) []string {
	matches := numberedQuoted.FindAllStringSubmatch(text, -1)
	prompts := make([]string, 0, len(matches))
	for _, m := range matches {
		if p := strings.TrimSpace(m[1]); p != "" {
			prompts = append(prompts, p)
		}
	}
	return prompts
}

// Expand returns the prompts of a batch. A numbered list yields one prompt per entry;
// any other text is a single prompt repeated n times.
func Expand(text string, n int) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyPrompt
	}

	if parsed := Parse(trimmed); len(parsed) > 0 {
		return parsed, nil
	}

	n = max(n, 1)
	prompts := make([]string, n)
	for i := range prompts {
		prompts[i] = trimmed
	}
	return prompts, nil
}

// Truncate cuts s to at most maxRunes runes without splitting a UTF-8 sequence.
// A non-positive maxRunes disables truncation.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	n := 0
	for i := 0; i < maxRunes; i++ {
		_, size := utf8.DecodeRuneInString(s[n:])
		n += size
	}
	return s[:n]
}
