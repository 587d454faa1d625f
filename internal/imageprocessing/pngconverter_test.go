package imageprocessing

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func TestPngConverterCommand_AlreadyPng(t *testing.T) {
	command, err := NewPngConverterCommand(map[string]any{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	input := createTestImage(8, 8)
	output, err := command.Execute(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !bytes.Equal(input, output) {
		t.Error("Expected PNG input to be returned unchanged")
	}
}

func TestPngConverterCommand_Jpeg(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 12; x++ {
			img.Set(x, y, color.RGBA{200, 10, 10, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	command, _ := NewPngConverterCommand(nil)
	output, err := command.Execute(buf.Bytes())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !IsPNG(output) {
		t.Fatal("Expected PNG output")
	}
	if b := decodeTestPNG(t, output).Bounds(); b.Dx() != 12 || b.Dy() != 6 {
		t.Errorf("Expected 12x6, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestPngConverterCommand_InvalidImage(t *testing.T) {
	command, _ := NewPngConverterCommand(nil)
	if _, err := command.Execute([]byte("not an image")); err == nil {
		t.Error("Expected error for invalid image data")
	}
}

func TestPngConverterCommand_RenderSVG(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="32px" height="16">
<rect x="0" y="0" width="32" height="16" fill="black"/></svg>`)

	command, _ := NewPngConverterCommand(nil)
	output, err := command.Execute(svg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if b := decodeTestPNG(t, output).Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("Expected 32x16, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestPngConverterCommand_SVGFallbackSize(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><circle cx="5" cy="5" r="4"/></svg>`)

	noFallback, _ := NewPngConverterCommand(nil)
	if _, err := noFallback.Execute(svg); err == nil {
		t.Error("Expected error without explicit size or fallback")
	}

	withFallback, _ := NewPngConverterCommand(map[string]any{"svgFallbackWidth": 20, "svgFallbackHeight": 30})
	output, err := withFallback.Execute(svg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if b := decodeTestPNG(t, output).Bounds(); b.Dx() != 20 || b.Dy() != 30 {
		t.Errorf("Expected 20x30, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestIsPNG(t *testing.T) {
	if IsPNG([]byte{0x89, 'P', 'N'}) {
		t.Error("Expected short data not to be PNG")
	}
	if !IsPNG(createTestImage(2, 2)) {
		t.Error("Expected encoded PNG to be detected")
	}
}
