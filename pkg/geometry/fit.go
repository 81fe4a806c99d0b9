// Package geometry computes fit-within-box target dimensions.
package geometry

import (
	"fmt"
	"math"

	"github.com/menta2k/sticker-kit/pkg/types"
)

// Fit returns the largest size with the aspect ratio of src that fits inside
// box. Sources that already fit are returned unchanged; Fit never upscales.
func Fit(src, box types.Size) (types.Size, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return types.Size{}, fmt.Errorf("%w: source size %s must be positive", types.ErrInvalidConfig, src)
	}
	if box.Width <= 0 || box.Height <= 0 {
		return types.Size{}, fmt.Errorf("%w: box size %s must be positive", types.ErrInvalidConfig, box)
	}

	if src.Width <= box.Width && src.Height <= box.Height {
		return src, nil
	}

	ratio := math.Min(
		float64(box.Width)/float64(src.Width),
		float64(box.Height)/float64(src.Height),
	)

	return types.Size{
		Width:  scale(src.Width, ratio, box.Width),
		Height: scale(src.Height, ratio, box.Height),
	}, nil
}

// scale rounds v*ratio and keeps the result in [1, limit]
func scale(v int, ratio float64, limit int) int {
	out := int(math.Round(float64(v) * ratio))
	if out < 1 {
		out = 1
	}
	if out > limit {
		out = limit
	}
	return out
}

// AspectRatio returns width/height
func AspectRatio(s types.Size) float64 {
	if s.Height == 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}
