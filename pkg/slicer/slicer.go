package slicer

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/menta2k/sticker-kit/pkg/raster"
	"github.com/menta2k/sticker-kit/pkg/types"
)

// Slicer cuts a composite sheet into a uniform grid of stickers
type Slicer struct {
	config Config
}

// Config holds configuration for grid slicing
type Config struct {
	Box    types.Size // every slice is fitted into this box
	Filter imaging.ResampleFilter
}

// New creates a Slicer fitting slices into the sticker box
func New() *Slicer {
	return &Slicer{
		config: Config{
			Box:    types.StickerSize,
			Filter: raster.DefaultFilter,
		},
	}
}

// NewWithConfig creates a Slicer with custom configuration
func NewWithConfig(config Config) *Slicer {
	return &Slicer{config: config}
}

// Regions returns the grid cells over bounds in row-major order. Cells are
// floor(W/cols) x floor(H/rows); the right and bottom remainder strips are
// not covered by any cell.
func Regions(bounds image.Rectangle, grid types.Grid) ([]image.Rectangle, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	sliceW := bounds.Dx() / grid.Cols
	sliceH := bounds.Dy() / grid.Rows
	if sliceW <= 0 || sliceH <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d is finer than image %dx%d",
			types.ErrInvalidConfig, grid.Cols, grid.Rows, bounds.Dx(), bounds.Dy())
	}

	regions := make([]image.Rectangle, 0, grid.Count())
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			x0 := bounds.Min.X + c*sliceW
			y0 := bounds.Min.Y + r*sliceH
			regions = append(regions, image.Rect(x0, y0, x0+sliceW, y0+sliceH))
		}
	}
	return regions, nil
}

// Slice extracts every grid cell of img and fits it into the configured box.
// The result is row-major: row 0 left to right, then row 1, and so on.
func (s *Slicer) Slice(img image.Image, grid types.Grid) ([]*image.NRGBA, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if _, err := raster.Dimensions(img); err != nil {
		return nil, err
	}

	regions, err := Regions(img.Bounds(), grid)
	if err != nil {
		return nil, err
	}

	out := make([]*image.NRGBA, 0, len(regions))
	for i, rect := range regions {
		cell := imaging.Crop(img, rect)
		fitted, err := raster.FitTo(cell, s.config.Box, s.config.Filter)
		if err != nil {
			return nil, fmt.Errorf("slice %d: %w", i, err)
		}
		out = append(out, fitted)
	}
	return out, nil
}
