package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	defaultColoringTemplate = "A black and white coloring book page of: %s. " +
		"Clean, bold black outlines on a pure white background. No shading, no grey tones, " +
		"no color, no text. Large simple shapes that are easy to color in."
	defaultConversionInstruction = "Turn this illustration into a black and white coloring book page. " +
		"Keep the composition and subjects, draw only clean bold black outlines on a pure white background, " +
		"remove all color, shading and text."
	defaultNicheTemplate = "Suggest %d popular and trending niches for printable coloring books. " +
		"Answer only with a JSON array of short strings, no explanation."
)

// Templates holds the instructions sent alongside user prompts
type Templates struct {
	// Coloring wraps a user prompt; it must contain exactly one %s
	Coloring   string `yaml:"coloring"`
	Conversion string `yaml:"conversion"`
	// Niches must contain exactly one %d for the requested count
	Niches string `yaml:"niches"`
}

func (t *Templates) applyDefaults() {
	if t.Coloring == "" {
		t.Coloring = defaultColoringTemplate
	}
	if t.Conversion == "" {
		t.Conversion = defaultConversionInstruction
	}
	if t.Niches == "" {
		t.Niches = defaultNicheTemplate
	}
}

// Validate checks that the templates carry their placeholders
func (t Templates) Validate() error {
	if strings.Count(t.Coloring, "%s") != 1 {
		return fmt.Errorf("coloring template must contain exactly one %%s")
	}
	if strings.Count(t.Niches, "%d") != 1 {
		return fmt.Errorf("niches template must contain exactly one %%d")
	}
	return nil
}

func (t Templates) coloringPrompt(prompt string) string {
	return fmt.Sprintf(t.Coloring, prompt)
}

func (t Templates) nichePrompt(count int) string {
	return fmt.Sprintf(t.Niches, count)
}

// parseNiches reads the niche list out of a model answer. Models wrap JSON in
// markdown fences or in an object often enough that both are accepted.
func parseNiches(text string, count int) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var list []string
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		var wrapped map[string][]string
		if err2 := json.Unmarshal([]byte(text), &wrapped); err2 != nil || len(wrapped) != 1 {
			return nil, fmt.Errorf("malformed niche response: %w", err)
		}
		for _, v := range wrapped {
			list = v
		}
	}

	niches := make([]string, 0, len(list))
	for _, n := range list {
		if n = strings.TrimSpace(n); n != "" {
			niches = append(niches, n)
		}
	}
	if len(niches) == 0 {
		return nil, fmt.Errorf("malformed niche response: no niches")
	}
	if count > 0 && len(niches) > count {
		niches = niches[:count]
	}
	return niches, nil
}
