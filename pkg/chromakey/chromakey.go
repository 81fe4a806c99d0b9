// Package chromakey removes a background color from an image.
//
// Apply runs three passes over the pixels:
//
//  1. Mask: every pixel whose Euclidean RGB distance to the target color is
//     within tolerance percent of the largest possible distance gets mask
//     alpha 0, everything else 255.
//  2. Feather: when the feather radius is at least one pixel the mask is
//     smoothed with a separable box blur, horizontal pass then vertical pass,
//     with sample coordinates clamped to the image edges.
//  3. Composite: the output alpha is the smaller of the source alpha and the
//     mask, so keying only ever removes opacity. With despill enabled, pixels
//     in the feathered band (mask strictly between 0 and 255) have the key's
//     dominant channel clamped to the mean of the other two.
//
// The source image is never modified; every call returns a new buffer.
package chromakey

import (
	"image"
	"math"

	"github.com/menta2k/sticker-kit/pkg/raster"
	"github.com/menta2k/sticker-kit/pkg/types"
)

// MaxDistance is the largest Euclidean distance between two RGB colors.
var MaxDistance = math.Sqrt(3 * 255 * 255)

// Apply keys params.Target out of img and returns a new NRGBA image of the
// same size.
func Apply(img image.Image, params types.ChromaKeyParams) (*image.NRGBA, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	out, err := raster.Clone(img)
	if err != nil {
		return nil, err
	}

	w, h := out.Rect.Dx(), out.Rect.Dy()
	mask := Mask(out, params.Target, params.Tolerance)
	if radius := int(math.Floor(params.Feather)); radius > 0 {
		mask = BoxBlur(mask, w, h, radius)
	}
	composite(out, mask, params.Target, params.Despill)
	return out, nil
}

// Mask returns one float32 alpha per pixel of img: 0 where the pixel is
// within tolerance of target, 255 elsewhere.
func Mask(img *image.NRGBA, target types.RGB, tolerance float64) []float32 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	threshold := tolerance / 100 * MaxDistance
	tr, tg, tb := float64(target.R), float64(target.G), float64(target.B)

	mask := make([]float32, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			dr := float64(row[x*4]) - tr
			dg := float64(row[x*4+1]) - tg
			db := float64(row[x*4+2]) - tb
			if math.Sqrt(dr*dr+dg*dg+db*db) <= threshold {
				mask[y*w+x] = 0
			} else {
				mask[y*w+x] = 255
			}
		}
	}
	return mask
}

// composite writes min(alpha, mask) into img and despills the feathered band
func composite(img *image.NRGBA, mask []float32, target types.RGB, despill bool) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	channel := DominantChannel(target)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			m := mask[y*w+x]

			if despill && m > 0 && m < 255 {
				despillPixel(img.Pix[i:i+3:i+3], channel)
			}

			a := uint8(math.RoundToEven(float64(m)))
			if a < img.Pix[i+3] {
				img.Pix[i+3] = a
			}
		}
	}
}
