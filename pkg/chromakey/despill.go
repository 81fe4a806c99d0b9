package chromakey

import (
	"math"

	"github.com/menta2k/sticker-kit/pkg/types"
)

// Channel indexes a color channel in an RGB(A) pixel
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return "green"
	}
}

// DominantChannel returns the channel the key color is strongest in. Red and
// blue win only when strictly greater than both other channels; every other
// case, ties included, resolves to green.
func DominantChannel(c types.RGB) Channel {
	switch {
	case c.R > c.G && c.R > c.B:
		return Red
	case c.B > c.G && c.B > c.R:
		return Blue
	default:
		return Green
	}
}

// despillPixel lowers the dominant channel of px (R, G, B) to the mean of the
// other two when it exceeds that mean. The mean is rounded half to even.
func despillPixel(px []uint8, ch Channel) {
	var a, b int
	switch ch {
	case Red:
		a, b = 1, 2
	case Blue:
		a, b = 0, 1
	default:
		a, b = 0, 2
	}

	limit := (float64(px[a]) + float64(px[b])) / 2
	if float64(px[ch]) > limit {
		px[ch] = uint8(math.RoundToEven(limit))
	}
}
