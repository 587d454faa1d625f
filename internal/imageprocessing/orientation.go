package imageprocessing

import (
	"fmt"
	"image"
	"log/slog"
)

const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// OrientationParams represents typed parameters for orientation command
type OrientationParams struct {
	Orientation string
	Clockwise   bool
}

// NewOrientationParamsFromMap creates OrientationParams from a generic map
func NewOrientationParamsFromMap(params map[string]any) (*OrientationParams, error) {
	if err := ValidateRequiredParams(params, []string{"orientation"}); err != nil {
		return nil, err
	}
	orientation := GetStringParam(params, "orientation", "")
	if orientation != OrientationPortrait && orientation != OrientationLandscape {
		return nil, fmt.Errorf("invalid orientation: %s (must be 'portrait' or 'landscape')", orientation)
	}
	return &OrientationParams{
		Orientation: orientation,
		Clockwise:   GetBoolParam(params, "clockwise", true),
	}, nil
}

// OrientationCommand rotates pages by 90 degrees so they match the print orientation.
// Square images are left untouched.
type OrientationCommand struct {
	name   string
	params *OrientationParams
}

// NewOrientationCommand creates a new orientation command from configuration parameters
func NewOrientationCommand(params map[string]any) (Command, error) {
	typedParams, err := NewOrientationParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return &OrientationCommand{
		name:   "OrientationCommand",
		params: typedParams,
	}, nil
}

// Name returns the command name
func (c *OrientationCommand) Name() string {
	return c.name
}

// Execute rotates the image if its orientation differs from the configured one
func (c *OrientationCommand) Execute(imageData []byte) ([]byte, error) {
	img, err := decodePNG(c.name, imageData)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == height {
		return imageData, nil
	}

	isPortrait := height > width
	if isPortrait == (c.params.Orientation == OrientationPortrait) {
		return imageData, nil
	}

	slog.Debug("OrientationCommand: rotating image",
		"width", width,
		"height", height,
		"target", c.params.Orientation,
		"clockwise", c.params.Clockwise)

	rotated := image.NewRGBA(image.Rect(0, 0, height, width))
	parallelFor(height, func(y int) {
		for x := 0; x < width; x++ {
			px := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			if c.params.Clockwise {
				rotated.Set(height-1-y, x, px)
			} else {
				rotated.Set(y, width-1-x, px)
			}
		}
	})

	return encodePNG(rotated)
}

func init() {
	if err := DefaultRegistry.Register("OrientationCommand", NewOrientationCommand); err != nil {
		panic(fmt.Sprintf("failed to register OrientationCommand: %v", err))
	}
}
