package prompts

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "plain text",
			text:     "a cat wearing a hat",
			expected: []string{},
		},
		{
			name:     "dot markers",
			text:     "1. \"A lion in the jungle\"\n2. \"A dolphin jumping\"",
			expected: []string{"A lion in the jungle", "A dolphin jumping"},
		},
		{
			name:     "mixed markers and curly quotes",
			text:     "Here are some ideas:\n 1) “Castle on a hill”\n2 - \"  Dragon  \"\n3: \"Robot\"",
			expected: []string{"Castle on a hill", "Dragon", "Robot"},
		},
		{
			name:     "trailing description is ignored",
			text:     "1. \"Owl at night\" - a calm scene\n2. \"Fox\" (cute)",
			expected: []string{"Owl at night", "Fox"},
		},
		{
			name:     "empty quotes dropped",
			text:     "1. \"\"\n2. \"   \"\n3. \"Bear\"",
			expected: []string{"Bear"},
		},
		{
			name:     "quote without number marker",
			text:     "\"not numbered\"\n- \"bullet\"",
			expected: []string{},
		},
		{
			name:     "marker must start the line",
			text:     "draw 1. \"inline\"",
			expected: []string{},
		},
		{
			name:     "multi digit numbers",
			text:     "10. \"Ten\"\n11. \"Eleven\"",
			expected: []string{"Ten", "Eleven"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Parse() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestExpand_FallsBackToRepeatedPrompt(t *testing.T) {
	got, err := Expand("  a happy whale  ", 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expected := []string{"a happy whale", "a happy whale", "a happy whale"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expand() = %q, expected %q", got, expected)
	}
}

func TestExpand_NumberedListIgnoresCount(t *testing.T) {
	got, err := Expand("1. \"A\"\n2. \"B\"", 5)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Expand() = %q", got)
	}
}

func TestExpand_NonPositiveCount(t *testing.T) {
	got, err := Expand("x", 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected one prompt, got %d", len(got))
	}
}

func TestExpand_Empty(t *testing.T) {
	for _, text := range []string{"", "   \n\t"} {
		if _, err := Expand(text, 2); !errors.Is(err, ErrEmptyPrompt) {
			t.Errorf("Expand(%q) error = %v, expected ErrEmptyPrompt", text, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		max      int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"日本語テキスト", 3, "日本語"},
		{"unchanged", 0, "unchanged"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, expected %q", tt.in, tt.max, got, tt.expected)
		}
	}
}
