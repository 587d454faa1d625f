package generation

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
)

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("not a PNG: %v", err)
	}
	return img
}

func TestMockGenerator_Deterministic(t *testing.T) {
	gen, err := NewMockGenerator(Config{MockImageSize: 48})
	if err != nil {
		t.Fatalf("NewMockGenerator() error = %v", err)
	}
	ctx := context.Background()

	a1, err := gen.GenerateImage(ctx, "a cat")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	a2, _ := gen.GenerateImage(ctx, "a cat")
	b, _ := gen.GenerateImage(ctx, "a dog in space")

	if !bytes.Equal(a1, a2) {
		t.Error("same prompt should render the same image")
	}
	if bytes.Equal(a1, b) {
		t.Error("different prompts should render different images")
	}
	if size := decodePNG(t, a1).Bounds().Size(); size.X != 48 || size.Y != 48 {
		t.Errorf("size = %v, want 48x48", size)
	}
}

func TestMockGenerator_ColoringPageIsBlackAndWhite(t *testing.T) {
	gen, err := NewMockGenerator(Config{MockImageSize: 32})
	if err != nil {
		t.Fatalf("NewMockGenerator() error = %v", err)
	}
	page, err := gen.GenerateColoringPage(context.Background(), "a cat")
	if err != nil {
		t.Fatalf("GenerateColoringPage() error = %v", err)
	}

	img := decodePNG(t, page)
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r != 0 && r != 0xffff {
				t.Fatalf("pixel (%d,%d) is grey: %d", x, y, r)
			}
		}
	}
}

func TestMockGenerator_SuggestNiches(t *testing.T) {
	gen, _ := NewMockGenerator(Config{})
	niches, err := gen.SuggestNiches(context.Background(), 3)
	if err != nil {
		t.Fatalf("SuggestNiches() error = %v", err)
	}
	if len(niches) != 3 {
		t.Errorf("got %d niches, want 3", len(niches))
	}
}

func TestMockGenerator_CanceledContext(t *testing.T) {
	gen, _ := NewMockGenerator(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := gen.GenerateImage(ctx, "a cat"); err == nil {
		t.Error("expected error for canceled context")
	}
}
