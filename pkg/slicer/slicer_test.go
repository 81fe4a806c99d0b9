package slicer

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/sticker-kit/pkg/types"
)

// cellColor gives every grid cell a distinct color so ordering can be checked
func cellColor(c, r int) color.NRGBA {
	return color.NRGBA{uint8(20 + c*40), uint8(20 + r*40), 200, 255}
}

// createSheet creates a cols x rows sheet of k x m solid cells
func createSheet(cols, rows, k, m int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, cols*k, rows*m))
	for y := 0; y < rows*m; y++ {
		for x := 0; x < cols*k; x++ {
			img.SetNRGBA(x, y, cellColor(x/k, y/m))
		}
	}
	return img
}

func TestRegionsCoverage(t *testing.T) {
	grid := types.Grid{Cols: 4, Rows: 3}
	regions, err := Regions(image.Rect(0, 0, 4*50, 3*70), grid)
	if err != nil {
		t.Fatalf("Regions failed: %v", err)
	}
	if len(regions) != 12 {
		t.Fatalf("Expected 12 regions, got %d", len(regions))
	}
	for i, rect := range regions {
		c, r := i%grid.Cols, i/grid.Cols
		expected := image.Rect(c*50, r*70, c*50+50, r*70+70)
		if rect != expected {
			t.Errorf("Region %d = %v, expected %v", i, rect, expected)
		}
	}
}

func TestRegionsDiscardRemainder(t *testing.T) {
	regions, err := Regions(image.Rect(0, 0, 103, 52), types.Grid{Cols: 2, Rows: 5})
	if err != nil {
		t.Fatalf("Regions failed: %v", err)
	}
	last := regions[len(regions)-1]
	if last != image.Rect(51, 40, 102, 50) {
		t.Errorf("Expected last region (51,40)-(102,50), got %v", last)
	}
}

func TestRegionsOffsetBounds(t *testing.T) {
	regions, err := Regions(image.Rect(10, 20, 30, 40), types.Grid{Cols: 2, Rows: 2})
	if err != nil {
		t.Fatalf("Regions failed: %v", err)
	}
	if regions[3] != image.Rect(20, 30, 30, 40) {
		t.Errorf("Expected offset region (20,30)-(30,40), got %v", regions[3])
	}
}

func TestSliceOrderAndSize(t *testing.T) {
	grid := types.Grid{Cols: 3, Rows: 2}
	sheet := createSheet(grid.Cols, grid.Rows, 40, 30)

	slices, err := New().Slice(sheet, grid)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if len(slices) != grid.Count() {
		t.Fatalf("Expected %d slices, got %d", grid.Count(), len(slices))
	}

	for i, s := range slices {
		if s.Bounds() != image.Rect(0, 0, 40, 30) {
			t.Errorf("Slice %d bounds %v, expected 40x30", i, s.Bounds())
		}
		c, r := i%grid.Cols, i/grid.Cols
		if got := s.NRGBAAt(20, 15); got != cellColor(c, r) {
			t.Errorf("Slice %d center %v, expected color of cell (%d,%d) %v", i, got, c, r, cellColor(c, r))
		}
	}
}

func TestSliceFitsStickerBox(t *testing.T) {
	sheet := createSheet(2, 2, 740, 400)
	slices, err := New().Slice(sheet, types.Grid{Cols: 2, Rows: 2})
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	for i, s := range slices {
		if s.Bounds().Dx() != 370 || s.Bounds().Dy() != 200 {
			t.Errorf("Slice %d is %dx%d, expected 370x200", i, s.Bounds().Dx(), s.Bounds().Dy())
		}
	}
}

func TestSliceCustomBox(t *testing.T) {
	s := NewWithConfig(Config{Box: types.Size{Width: 10, Height: 10}, Filter: New().config.Filter})
	slices, err := s.Slice(createSheet(2, 1, 100, 50), types.Grid{Cols: 2, Rows: 1})
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if slices[0].Bounds().Dx() != 10 || slices[0].Bounds().Dy() != 5 {
		t.Errorf("Expected 10x5, got %v", slices[0].Bounds())
	}
}

func TestSliceInvalidGrid(t *testing.T) {
	sheet := createSheet(1, 1, 10, 10)
	for _, grid := range []types.Grid{{Cols: 0, Rows: 1}, {Cols: 1, Rows: -2}, {Cols: 11, Rows: 1}} {
		if _, err := New().Slice(sheet, grid); !errors.Is(err, types.ErrInvalidConfig) {
			t.Errorf("Slice with grid %+v: expected ErrInvalidConfig, got %v", grid, err)
		}
	}
}

func TestSliceNilImage(t *testing.T) {
	if _, err := New().Slice(nil, types.Grid{Cols: 1, Rows: 1}); !errors.Is(err, types.ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}

func BenchmarkSlice(b *testing.B) {
	sheet := createSheet(4, 10, 370, 320)
	grid := types.Grid{Cols: 4, Rows: 10}
	s := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Slice(sheet, grid)
	}
}
