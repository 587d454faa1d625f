package generation

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/juceldev/ColoringBook/internal/imageprocessing"
)

var mockNiches = []string{
	"Mandalas",
	"Cute animals",
	"Dinosaurs",
	"Fantasy castles",
	"Ocean life",
	"Flowers and gardens",
	"Space and planets",
	"Cozy cottages",
	"Vehicles",
	"Holiday scenes",
}

var mockPalette = []string{"#e63946", "#f4a261", "#2a9d8f", "#457b9d", "#8d5fd3", "#f6bd60", "#52b788"}

// MockGenerator renders deterministic images locally. It never touches the network.
type MockGenerator struct {
	size      int
	converter imageprocessing.Command
	lineArt   imageprocessing.Command
}

// NewMockGenerator creates an offline generator
func NewMockGenerator(cfg Config) (*MockGenerator, error) {
	size := cfg.MockImageSize
	if size <= 0 {
		size = 256
	}
	converter, err := imageprocessing.DefaultRegistry.Create("PngConverterCommand", nil)
	if err != nil {
		return nil, err
	}
	lineArt, err := imageprocessing.DefaultRegistry.Create("LineArtCommand", map[string]any{
		"edges":     true,
		"threshold": 200,
	})
	if err != nil {
		return nil, err
	}
	return &MockGenerator{size: size, converter: converter, lineArt: lineArt}, nil
}

func (m *MockGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.converter.Execute([]byte(m.svgFor(prompt)))
}

func (m *MockGenerator) GenerateColoringPage(ctx context.Context, prompt string) ([]byte, error) {
	img, err := m.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return m.lineArt.Execute(img)
}

func (m *MockGenerator) ConvertToColoringPage(ctx context.Context, image []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.lineArt.Execute(image)
}

func (m *MockGenerator) SuggestNiches(ctx context.Context, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count <= 0 || count > len(mockNiches) {
		count = len(mockNiches)
	}
	niches := make([]string, count)
	copy(niches, mockNiches[:count])
	return niches, nil
}

func (m *MockGenerator) Close() error {
	return nil
}

// svgFor draws a few circles whose layout and colors are derived from the prompt hash
func (m *MockGenerator) svgFor(prompt string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(prompt))
	seed := h.Sum64()

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		m.size, m.size, m.size, m.size)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="#ffffff"/>`, m.size, m.size)
	for i := 0; i < 4; i++ {
		x := int(seed>>(i*8)&0xff) * m.size / 256
		y := int(seed>>(i*8+32)&0xff) * m.size / 256
		r := m.size/10 + int(seed>>(i*4)&0x0f)*m.size/64
		fill := mockPalette[(seed>>(i*3))%uint64(len(mockPalette))]
		fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="%s" stroke="#000000" stroke-width="3"/>`,
			x, y, r, fill)
	}
	b.WriteString(`</svg>`)
	return b.String()
}
