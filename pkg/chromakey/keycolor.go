package chromakey

import (
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/menta2k/sticker-kit/pkg/raster"
	"github.com/menta2k/sticker-kit/pkg/types"
)

// SuggestMethod selects how SuggestKeyColor estimates the background
type SuggestMethod int

const (
	// SuggestBorderKMeans clusters the pixels on the image border and picks
	// the most populated cluster.
	SuggestBorderKMeans SuggestMethod = iota
	// SuggestDominant picks the heaviest dominant color of the whole image.
	SuggestDominant
)

func (m SuggestMethod) String() string {
	switch m {
	case SuggestDominant:
		return "dominant"
	default:
		return "border"
	}
}

// ParseSuggestMethod maps "border" or "dominant" to a SuggestMethod
func ParseSuggestMethod(name string) (SuggestMethod, error) {
	switch strings.ToLower(name) {
	case "", "border":
		return SuggestBorderKMeans, nil
	case "dominant":
		return SuggestDominant, nil
	}
	return 0, fmt.Errorf("%w: unknown key color method %q", types.ErrInvalidConfig, name)
}

// ParseHex parses a #rrggbb or #rgb color
func ParseHex(s string) (types.RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return types.RGB{}, fmt.Errorf("%w: malformed color %q", types.ErrInvalidConfig, s)
	}
	r, g, b := c.RGB255()
	return types.RGB{R: r, G: g, B: b}, nil
}

// PickColor returns the RGB value of the pixel at (x, y)
func PickColor(img image.Image, x, y int) (types.RGB, error) {
	if _, err := raster.Dimensions(img); err != nil {
		return types.RGB{}, err
	}
	pt := image.Pt(x, y).Add(img.Bounds().Min)
	if !pt.In(img.Bounds()) {
		return types.RGB{}, fmt.Errorf("%w: point (%d,%d) outside image", types.ErrInvalidConfig, x, y)
	}
	c, _ := colorful.MakeColor(img.At(pt.X, pt.Y))
	r, g, b := c.Clamped().RGB255()
	return types.RGB{R: r, G: g, B: b}, nil
}

// SuggestKeyColor estimates the background color of img
func SuggestKeyColor(img image.Image, method SuggestMethod) (types.RGB, error) {
	if _, err := raster.Dimensions(img); err != nil {
		return types.RGB{}, err
	}

	switch method {
	case SuggestDominant:
		return dominantKeyColor(img)
	default:
		return borderKeyColor(img)
	}
}

func dominantKeyColor(img image.Image) (types.RGB, error) {
	candidates := dominantcolor.FindWeight(img, 4)
	if len(candidates) == 0 {
		return types.RGB{}, fmt.Errorf("%w: no opaque pixels to sample", types.ErrInvalidConfig)
	}
	best := slices.MaxFunc(candidates, func(a, b dominantcolor.Color) int {
		switch {
		case a.Weight < b.Weight:
			return -1
		case a.Weight > b.Weight:
			return 1
		}
		return 0
	})
	return types.RGB{R: best.RGBA.R, G: best.RGBA.G, B: best.RGBA.B}, nil
}

// borderSamples caps the observations handed to k-means
const borderSamples = 4000

func borderKeyColor(img image.Image) (types.RGB, error) {
	b := img.Bounds()
	perimeter := 2*(b.Dx()+b.Dy()) - 4
	step := max(1, perimeter/borderSamples)

	dataset := make(clusters.Observations, 0, min(perimeter, borderSamples)+4)
	add := func(x, y int) {
		c, ok := colorful.MakeColor(img.At(x, y))
		if !ok {
			return // fully transparent
		}
		dataset = append(dataset, clusters.Coordinates{c.R, c.G, c.B})
	}

	i := 0
	for x := b.Min.X; x < b.Max.X; x++ {
		for _, y := range []int{b.Min.Y, b.Max.Y - 1} {
			if i%step == 0 {
				add(x, y)
			}
			i++
		}
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for _, x := range []int{b.Min.X, b.Max.X - 1} {
			if i%step == 0 {
				add(x, y)
			}
			i++
		}
	}
	if len(dataset) == 0 {
		return types.RGB{}, fmt.Errorf("%w: image border is fully transparent", types.ErrInvalidConfig)
	}

	if uniform(dataset) {
		c := dataset[0].Coordinates()
		r, g, bl := colorful.Color{R: c[0], G: c[1], B: c[2]}.RGB255()
		return types.RGB{R: r, G: g, B: bl}, nil
	}

	k := min(2, len(dataset))
	cc, err := kmeans.New().Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		return types.RGB{}, fmt.Errorf("%w: border clustering failed: %v", types.ErrInvalidConfig, err)
	}

	largest := slices.MaxFunc(cc, func(a, b clusters.Cluster) int {
		return len(a.Observations) - len(b.Observations)
	})
	r, g, bl := colorful.Color{R: largest.Center[0], G: largest.Center[1], B: largest.Center[2]}.Clamped().RGB255()
	return types.RGB{R: r, G: g, B: bl}, nil
}

// uniform reports whether every observation is the same point, which k-means
// cannot split
func uniform(dataset clusters.Observations) bool {
	first := dataset[0].Coordinates()
	for _, o := range dataset[1:] {
		if !slices.Equal(o.Coordinates(), first) {
			return false
		}
	}
	return true
}
