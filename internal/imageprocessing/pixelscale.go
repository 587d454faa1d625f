package imageprocessing

import (
	"fmt"
	"image"
	"log/slog"
)

// PixelScaleParams represents typed parameters for pixel scale command
type PixelScaleParams struct {
	Height *int // if nil, derived from width
	Width  *int // if nil, derived from height
}

// NewPixelScaleParamsFromMap creates PixelScaleParams from a generic map
func NewPixelScaleParamsFromMap(params map[string]any) (*PixelScaleParams, error) {
	_, hasHeight := params["height"]
	_, hasWidth := params["width"]
	if !hasHeight && !hasWidth {
		return nil, fmt.Errorf("at least one of 'height' or 'width' must be specified")
	}

	result := &PixelScaleParams{}
	if hasHeight {
		height := GetIntParam(params, "height", 0)
		if height <= 0 {
			return nil, fmt.Errorf("height must be positive, got %d", height)
		}
		result.Height = &height
	}
	if hasWidth {
		width := GetIntParam(params, "width", 0)
		if width <= 0 {
			return nil, fmt.Errorf("width must be positive, got %d", width)
		}
		result.Width = &width
	}
	return result, nil
}

// PixelScaleCommand scales an image with nearest-neighbour sampling, keeping the aspect
// ratio when only one dimension is configured. Thumbnails in the history list use it.
type PixelScaleCommand struct {
	name   string
	params *PixelScaleParams
}

// NewPixelScaleCommand creates a new pixel scale command from configuration parameters
func NewPixelScaleCommand(params map[string]any) (Command, error) {
	typedParams, err := NewPixelScaleParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return &PixelScaleCommand{
		name:   "PixelScaleCommand",
		params: typedParams,
	}, nil
}

// Name returns the command name
func (c *PixelScaleCommand) Name() string {
	return c.name
}

// Execute scales the PNG to the target dimensions
func (c *PixelScaleCommand) Execute(imageData []byte) ([]byte, error) {
	img, err := decodePNG(c.name, imageData)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("cannot scale empty image")
	}
	targetW, targetH := c.targetSize(srcW, srcH)

	slog.Debug("PixelScaleCommand: scaling image",
		"original_width", srcW,
		"original_height", srcH,
		"target_width", targetW,
		"target_height", targetH)

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	parallelFor(targetH, func(y int) {
		srcY := min(y*srcH/targetH, srcH-1)
		for x := 0; x < targetW; x++ {
			srcX := min(x*srcW/targetW, srcW-1)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	})

	return encodePNG(dst)
}

func (c *PixelScaleCommand) targetSize(srcW, srcH int) (int, int) {
	aspect := float64(srcW) / float64(srcH)
	switch {
	case c.params.Width != nil && c.params.Height != nil:
		return *c.params.Width, *c.params.Height
	case c.params.Width != nil:
		return *c.params.Width, max(1, int(float64(*c.params.Width)/aspect))
	default:
		return max(1, int(float64(*c.params.Height)*aspect)), *c.params.Height
	}
}

func init() {
	if err := DefaultRegistry.Register("PixelScaleCommand", NewPixelScaleCommand); err != nil {
		panic(fmt.Sprintf("failed to register PixelScaleCommand: %v", err))
	}
}
