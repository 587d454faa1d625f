package generation

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseNiches(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		count   int
		want    []string
		wantErr bool
	}{
		{"plain array", `["Mandalas", "Cats"]`, 5, []string{"Mandalas", "Cats"}, false},
		{"fenced", "```json\n[\"Mandalas\"]\n```", 5, []string{"Mandalas"}, false},
		{"wrapped object", `{"niches": ["A", " B "]}`, 5, []string{"A", "B"}, false},
		{"capped", `["A","B","C"]`, 2, []string{"A", "B"}, false},
		{"blank entries dropped", `["A",""," "]`, 5, []string{"A"}, false},
		{"empty array", `[]`, 5, nil, true},
		{"prose", `Here are some niches: cats`, 5, nil, true},
		{"object with two keys", `{"a":["x"],"b":["y"]}`, 5, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNiches(tt.input, tt.count)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseNiches() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseNiches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTemplates_Validate(t *testing.T) {
	var tpl Templates
	tpl.applyDefaults()
	if err := tpl.Validate(); err != nil {
		t.Fatalf("default templates invalid: %v", err)
	}

	tpl.Coloring = "no placeholder"
	if err := tpl.Validate(); err == nil {
		t.Error("expected error for coloring template without a placeholder")
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"":          ModeBoth,
		"both":      ModeBoth,
		" Original": ModeOriginal,
		"coloring":  ModeColoring,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("sepia"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("ParseMode(sepia) error = %v, want ErrInvalidMode", err)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{Provider: ProviderGemini}
	cfg.ApplyDefaults()
	if cfg.APIKeyEnv != "GEMINI_API_KEY" || cfg.ImageModel == "" || cfg.TextModel == "" {
		t.Errorf("gemini defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("gemini without a key should not validate")
	}

	t.Setenv("GEMINI_API_KEY", "secret")
	cfg.ResolveAPIKey()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	mock := Config{}
	mock.ApplyDefaults()
	if mock.Provider != ProviderMock || mock.Validate() != nil {
		t.Errorf("empty config should default to a valid mock provider: %+v", mock)
	}
}
