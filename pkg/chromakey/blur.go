package chromakey

// BoxBlur smooths a w x h mask with a separable box filter of the given
// radius. Each pass averages 2*radius+1 samples, repeating edge samples where
// the window runs past the border. The input slice is left unchanged.
func BoxBlur(mask []float32, w, h, radius int) []float32 {
	out := make([]float32, len(mask))
	copy(out, mask)
	if radius <= 0 || w <= 0 || h <= 0 {
		return out
	}

	taps := float32(2*radius + 1)
	tmp := make([]float32, len(mask))

	for y := 0; y < h; y++ {
		row := mask[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var sum float32
			for k := -radius; k <= radius; k++ {
				sum += row[clampIndex(x+k, w)]
			}
			tmp[y*w+x] = sum / taps
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float32
			for k := -radius; k <= radius; k++ {
				sum += tmp[clampIndex(y+k, h)*w+x]
			}
			out[y*w+x] = sum / taps
		}
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
