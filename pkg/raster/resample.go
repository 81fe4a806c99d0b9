// Package raster renders images into new NRGBA buffers at a target size.
package raster

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/menta2k/sticker-kit/pkg/geometry"
	"github.com/menta2k/sticker-kit/pkg/types"
)

// DefaultFilter is the smoothing filter used when none is requested.
// Linear with imaging's support scaling averages the whole source area on
// downscale, so it behaves as an area filter.
var DefaultFilter = imaging.Linear

var filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

// ParseFilter maps a filter name to an imaging filter. An empty name selects
// DefaultFilter.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	if name == "" {
		return DefaultFilter, nil
	}
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("%w: unknown resample filter %q", types.ErrInvalidConfig, name)
	}
	return f, nil
}

// Dimensions returns the size of img, or an error for nil or empty images
func Dimensions(img image.Image) (types.Size, error) {
	if img == nil {
		return types.Size{}, fmt.Errorf("%w: nil image", types.ErrDecode)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return types.Size{}, fmt.Errorf("%w: empty image %dx%d", types.ErrDecode, b.Dx(), b.Dy())
	}
	return types.Size{Width: b.Dx(), Height: b.Dy()}, nil
}

// Clone copies img into a new NRGBA buffer anchored at (0,0)
func Clone(img image.Image) (*image.NRGBA, error) {
	if _, err := Dimensions(img); err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}

// Resample renders img at exactly size. The source is left untouched and a
// same-size request is a plain copy.
func Resample(img image.Image, size types.Size, filter imaging.ResampleFilter) (*image.NRGBA, error) {
	src, err := Dimensions(img)
	if err != nil {
		return nil, err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("%w: target size %s must be positive", types.ErrInvalidConfig, size)
	}
	if src == size {
		return imaging.Clone(img), nil
	}
	return imaging.Resize(img, size.Width, size.Height, filter), nil
}

// FitTo scales img down to fit inside box, keeping its aspect ratio.
func FitTo(img image.Image, box types.Size, filter imaging.ResampleFilter) (*image.NRGBA, error) {
	src, err := Dimensions(img)
	if err != nil {
		return nil, err
	}
	target, err := geometry.Fit(src, box)
	if err != nil {
		return nil, err
	}
	return Resample(img, target, filter)
}
