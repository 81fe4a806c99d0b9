package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/menta2k/sticker-kit/pkg/types"
)

// createTestImage creates a gradient with a semi-transparent lower half
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			a := uint8(255)
			if y >= height/2 {
				a = 128
			}
			img.SetNRGBA(x, y, color.NRGBA{uint8((x * 255) / width), uint8((y * 255) / height), 90, a})
		}
	}
	return img
}

func TestResampleSameSizeIsCopy(t *testing.T) {
	src := createTestImage(40, 30)
	out, err := Resample(src, types.Size{Width: 40, Height: 30}, DefaultFilter)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Error("same-size resample should copy pixels verbatim")
	}
	if &out.Pix[0] == &src.Pix[0] {
		t.Error("same-size resample must not share the source buffer")
	}
}

func TestResampleDoesNotModifySource(t *testing.T) {
	src := createTestImage(64, 48)
	before := append([]uint8(nil), src.Pix...)

	out, err := Resample(src, types.Size{Width: 16, Height: 12}, DefaultFilter)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if out.Bounds().Dx() != 16 || out.Bounds().Dy() != 12 {
		t.Errorf("Expected 16x12, got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}
	if len(out.Pix) != 16*12*4 {
		t.Errorf("Expected %d bytes, got %d", 16*12*4, len(out.Pix))
	}
	if !bytes.Equal(before, src.Pix) {
		t.Error("Resample modified its source")
	}
}

func TestResampleKeepsPartialAlpha(t *testing.T) {
	src := createTestImage(100, 100)
	out, err := Resample(src, types.Size{Width: 10, Height: 10}, DefaultFilter)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if a := out.NRGBAAt(5, 1).A; a != 255 {
		t.Errorf("top half should stay opaque, got alpha %d", a)
	}
	if a := out.NRGBAAt(5, 8).A; a < 120 || a > 136 {
		t.Errorf("bottom half should stay near 128, got alpha %d", a)
	}
}

func TestResampleErrors(t *testing.T) {
	if _, err := Resample(nil, types.Size{Width: 1, Height: 1}, DefaultFilter); !errors.Is(err, types.ErrDecode) {
		t.Errorf("nil image: expected ErrDecode, got %v", err)
	}
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if _, err := Resample(empty, types.Size{Width: 1, Height: 1}, DefaultFilter); !errors.Is(err, types.ErrDecode) {
		t.Errorf("empty image: expected ErrDecode, got %v", err)
	}
	if _, err := Resample(createTestImage(4, 4), types.Size{Width: 0, Height: 1}, DefaultFilter); !errors.Is(err, types.ErrInvalidConfig) {
		t.Errorf("zero target: expected ErrInvalidConfig, got %v", err)
	}
}

func TestFitTo(t *testing.T) {
	out, err := FitTo(createTestImage(1000, 500), types.StickerSize, DefaultFilter)
	if err != nil {
		t.Fatalf("FitTo failed: %v", err)
	}
	if out.Bounds().Dx() != 370 || out.Bounds().Dy() != 185 {
		t.Errorf("Expected 370x185, got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}

	small := createTestImage(50, 40)
	out, err = FitTo(small, types.StickerSize, DefaultFilter)
	if err != nil {
		t.Fatalf("FitTo failed: %v", err)
	}
	if !bytes.Equal(out.Pix, small.Pix) {
		t.Error("FitTo should not upscale or alter images that already fit")
	}
}

func TestCloneAnchorsAtOrigin(t *testing.T) {
	src := createTestImage(20, 20).SubImage(image.Rect(5, 5, 15, 12))
	out, err := Clone(src)
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 10, 7) {
		t.Errorf("Expected bounds (0,0)-(10,7), got %v", out.Bounds())
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	if err != nil || f.Support != DefaultFilter.Support {
		t.Errorf("empty name should select the default filter, got %+v, %v", f, err)
	}
	f, err = ParseFilter("Lanczos")
	if err != nil || f.Support != imaging.Lanczos.Support {
		t.Errorf("ParseFilter(Lanczos) = %+v, %v", f, err)
	}
	if _, err := ParseFilter("bicubic-ish"); !errors.Is(err, types.ErrInvalidConfig) {
		t.Errorf("unknown filter should fail with ErrInvalidConfig, got %v", err)
	}
}

func BenchmarkFitTo(b *testing.B) {
	img := createTestImage(1920, 1080)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FitTo(img, types.StickerSize, DefaultFilter)
	}
}
