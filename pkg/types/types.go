package types

import (
	"errors"
	"fmt"
)

// Error kinds shared by every stage of the pipeline.
var (
	// ErrDecode reports input bytes or buffers that are not a readable image.
	ErrDecode = errors.New("decode error")
	// ErrEncode reports a failure producing output bytes.
	ErrEncode = errors.New("encode error")
	// ErrInvalidConfig reports parameters rejected before any pixel work.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrNotFound reports an unknown image ID.
	ErrNotFound = errors.New("not found")
	// ErrLimitExceeded reports a sticker sequence that would grow past its limit.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// Size is a width x height pair in pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Asset boxes required by the sticker platform.
var (
	MainSize    = Size{Width: 240, Height: 240}
	TabSize     = Size{Width: 96, Height: 74}
	StickerSize = Size{Width: 370, Height: 320}
)

// Grid divides a sheet into Cols x Rows equal regions
type Grid struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// Count returns the number of cells in the grid
func (g Grid) Count() int {
	return g.Cols * g.Rows
}

// Validate checks that both grid dimensions are positive
func (g Grid) Validate() error {
	if g.Cols <= 0 || g.Rows <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidConfig, g.Cols, g.Rows)
	}
	return nil
}

// RGB is an opaque 8-bit color
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex formats the color as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Limits for ChromaKeyParams.
const (
	MaxTolerance = 100.0
	MaxFeather   = 20.0
)

// ChromaKeyParams configures one chroma-key application
type ChromaKeyParams struct {
	Target    RGB     `json:"target"`
	Tolerance float64 `json:"tolerance"` // percent of the maximum RGB distance
	Feather   float64 `json:"feather"`   // blur radius in pixels, floored
	Despill   bool    `json:"despill"`
}

// DefaultChromaKeyParams returns the green screen defaults
func DefaultChromaKeyParams() ChromaKeyParams {
	return ChromaKeyParams{
		Target:    RGB{R: 0, G: 255, B: 0},
		Tolerance: 15,
		Feather:   4,
		Despill:   true,
	}
}

// Validate checks tolerance and feather ranges
func (p ChromaKeyParams) Validate() error {
	if p.Tolerance < 0 || p.Tolerance > MaxTolerance {
		return fmt.Errorf("%w: tolerance must be between 0 and %g, got %g", ErrInvalidConfig, MaxTolerance, p.Tolerance)
	}
	if p.Feather < 0 || p.Feather > MaxFeather {
		return fmt.Errorf("%w: feather must be between 0 and %g, got %g", ErrInvalidConfig, MaxFeather, p.Feather)
	}
	return nil
}
