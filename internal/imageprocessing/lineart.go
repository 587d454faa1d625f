package imageprocessing

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
)

// LineArtParams represents typed parameters for the line art command
type LineArtParams struct {
	Threshold int  // luminance below this becomes black (0-255)
	Edges     bool // trace outlines with a Sobel filter before thresholding
	Dither    bool // Floyd-Steinberg error diffusion instead of a hard threshold
}

// NewLineArtParamsFromMap creates LineArtParams from a generic map
func NewLineArtParamsFromMap(params map[string]any) (*LineArtParams, error) {
	threshold := GetIntParam(params, "threshold", 160)
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("threshold must be between 0 and 255, got %d", threshold)
	}
	return &LineArtParams{
		Threshold: threshold,
		Edges:     GetBoolParam(params, "edges", false),
		Dither:    GetBoolParam(params, "dither", false),
	}, nil
}

// LineArtCommand reduces an image to pure black strokes on white paper.
// API coloring pages come back with grey anti-aliasing and off-white backgrounds;
// with edges enabled the command also derives a page from a full-color illustration.
type LineArtCommand struct {
	name   string
	params *LineArtParams
}

// NewLineArtCommand creates a new line art command from configuration parameters
func NewLineArtCommand(params map[string]any) (Command, error) {
	typedParams, err := NewLineArtParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return &LineArtCommand{
		name:   "LineArtCommand",
		params: typedParams,
	}, nil
}

// Name returns the command name
func (c *LineArtCommand) Name() string {
	return c.name
}

// Execute converts the PNG to a black and white line drawing
func (c *LineArtCommand) Execute(imageData []byte) ([]byte, error) {
	img, err := decodePNG(c.name, imageData)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	lum := luminance(img)
	if c.params.Edges {
		lum = sobelInverted(lum, w, h)
	}

	slog.Debug("LineArtCommand: converting image",
		"width", w,
		"height", h,
		"threshold", c.params.Threshold,
		"edges", c.params.Edges,
		"dither", c.params.Dither)

	var out *image.Gray
	if c.params.Dither {
		out = floydSteinberg(lum, w, h, c.params.Threshold)
	} else {
		out = image.NewGray(image.Rect(0, 0, w, h))
		parallelFor(h, func(y int) {
			for x := 0; x < w; x++ {
				out.SetGray(x, y, blackOrWhite(lum[y*w+x], c.params.Threshold))
			}
		})
	}

	return encodePNG(out)
}

// luminance returns 8-bit luma per pixel, compositing transparency over white
func luminance(img image.Image) []int {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	lum := make([]int, w*h)
	parallelFor(h, func(y int) {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA() is premultiplied: add the white that shows through
			white := 0xffff - a
			r, g, b = r+white, g+white, b+white
			lum[y*w+x] = int((299*r + 587*g + 114*b) / 1000 >> 8)
		}
	})
	return lum
}

// sobelInverted maps edge strength to darkness: strong edges become low luminance
func sobelInverted(lum []int, w, h int) []int {
	out := make([]int, len(lum))
	at := func(x, y int) int {
		x = max(0, min(x, w-1))
		y = max(0, min(y, h-1))
		return lum[y*w+x]
	}
	parallelFor(h, func(y int) {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			mag := int(math.Sqrt(float64(gx*gx + gy*gy)))
			out[y*w+x] = 255 - min(mag, 255)
		}
	})
	return out
}

// floydSteinberg diffuses quantization error left to right, top to bottom.
// Error diffusion is inherently sequential, so it does not use parallelFor.
func floydSteinberg(lum []int, w, h, threshold int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w, h))
	work := make([]int, len(lum))
	copy(work, lum)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			old := max(0, min(work[y*w+x], 255))
			chosen := blackOrWhite(old, threshold)
			out.SetGray(x, y, chosen)

			diff := old - int(chosen.Y)
			if x+1 < w {
				work[y*w+x+1] += diff * 7 / 16
			}
			if y+1 < h {
				if x > 0 {
					work[(y+1)*w+x-1] += diff * 3 / 16
				}
				work[(y+1)*w+x] += diff * 5 / 16
				if x+1 < w {
					work[(y+1)*w+x+1] += diff * 1 / 16
				}
			}
		}
	}
	return out
}

func blackOrWhite(v, threshold int) color.Gray {
	if v < threshold {
		return color.Gray{Y: 0}
	}
	return color.Gray{Y: 255}
}

func init() {
	if err := DefaultRegistry.Register("LineArtCommand", NewLineArtCommand); err != nil {
		panic(fmt.Sprintf("failed to register LineArtCommand: %v", err))
	}
}
