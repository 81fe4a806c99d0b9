package sticker

import "fmt"

// Fixed names of the two thumbnail slots.
const (
	MainName = "main.png"
	TabName  = "tab.png"
)

// SequenceName returns the export name for position i (zero based): 01.png,
// 02.png, ...
func SequenceName(i int) string {
	return fmt.Sprintf("%02d.png", i+1)
}

// Renumber returns a copy of seq whose names are assigned purely by position.
// It is the only place sequence names are derived; the input is not touched.
func Renumber(seq []ProcessedImage) []ProcessedImage {
	out := make([]ProcessedImage, len(seq))
	for i, img := range seq {
		img.Name = SequenceName(i)
		out[i] = img
	}
	return out
}

// Names lists the names of seq in order
func Names(seq []ProcessedImage) []string {
	names := make([]string, len(seq))
	for i, img := range seq {
		names[i] = img.Name
	}
	return names
}
