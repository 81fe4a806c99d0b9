package sticker

import (
	"image"

	"github.com/menta2k/sticker-kit/pkg/types"
)

// Slot identifies where an image lives in a set
type Slot string

const (
	SlotMain    Slot = "main"
	SlotTab     Slot = "tab"
	SlotSticker Slot = "sticker"
)

// ProcessedImage is one finished image of a set. Original keeps the fitted,
// un-keyed buffer so chroma-key can be re-run or reset; Image is what gets
// exported. Buffers are never modified after the image is committed.
type ProcessedImage struct {
	ID       string       `json:"id"`
	Slot     Slot         `json:"slot"`
	Name     string       `json:"name"`
	Original *image.NRGBA `json:"-"`
	Image    *image.NRGBA `json:"-"`
}

// Width returns the width of the current buffer
func (p ProcessedImage) Width() int {
	return p.Image.Rect.Dx()
}

// Height returns the height of the current buffer
func (p ProcessedImage) Height() int {
	return p.Image.Rect.Dy()
}

// Size returns the current dimensions
func (p ProcessedImage) Size() types.Size {
	return types.Size{Width: p.Width(), Height: p.Height()}
}

// Keyed reports whether the current buffer differs from the original
func (p ProcessedImage) Keyed() bool {
	return p.Image != p.Original
}
