package stickerkit

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/menta2k/sticker-kit/pkg/codec"
	"github.com/menta2k/sticker-kit/pkg/types"
)

// createTestImage creates a green screen image with a red subject in the center
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.SetNRGBA(x, y, color.NRGBA{R: 220, G: 30, B: 30, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{G: 255, A: 255})
			}
		}
	}
	return img
}

func TestNew(t *testing.T) {
	kit := New()
	if kit == nil {
		t.Fatal("New() returned nil")
	}
	if kit.codec == nil {
		t.Error("codec component is nil")
	}
	if kit.slicer == nil {
		t.Error("slicer component is nil")
	}
	if kit.codec.Format() != codec.PNG {
		t.Errorf("Expected PNG output, got %s", kit.codec.Format())
	}
}

func TestFitSize(t *testing.T) {
	got, err := FitSize(types.Size{Width: 1000, Height: 500}, types.StickerSize)
	if err != nil {
		t.Fatalf("FitSize failed: %v", err)
	}
	if expected := (types.Size{Width: 370, Height: 185}); got != expected {
		t.Errorf("FitSize = %s, expected %s", got, expected)
	}
}

func TestMainAndTab(t *testing.T) {
	kit := New()
	img := createTestImage(600, 600)

	main, err := kit.Main(img)
	if err != nil {
		t.Fatalf("Main failed: %v", err)
	}
	if main.Rect.Dx() != 240 || main.Rect.Dy() != 240 {
		t.Errorf("Main size = %v", main.Rect)
	}

	tab, err := kit.Tab(img)
	if err != nil {
		t.Fatalf("Tab failed: %v", err)
	}
	if tab.Rect.Dx() != 74 || tab.Rect.Dy() != 74 {
		t.Errorf("Tab size = %v, expected 74x74", tab.Rect)
	}
}

func TestSliceAndRemoveColor(t *testing.T) {
	kit := New()
	cells, err := kit.Slice(createTestImage(300, 200), types.Grid{Cols: 3, Rows: 2})
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if len(cells) != 6 {
		t.Fatalf("Expected 6 cells, got %d", len(cells))
	}

	keyed, err := kit.RemoveColor(cells[0], types.DefaultChromaKeyParams())
	if err != nil {
		t.Fatalf("RemoveColor failed: %v", err)
	}
	if a := keyed.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("Expected transparent corner, got alpha %d", a)
	}
}

func TestSuggestKeyColor(t *testing.T) {
	rgb, err := New().SuggestKeyColor(createTestImage(90, 90), 0)
	if err != nil {
		t.Fatalf("SuggestKeyColor failed: %v", err)
	}
	if rgb != (types.RGB{G: 255}) {
		t.Errorf("SuggestKeyColor = %s, expected #00ff00", rgb.Hex())
	}
}

func TestSaveAndLoadImage(t *testing.T) {
	kit := New()
	dir := t.TempDir()
	img := createTestImage(40, 30)

	for _, name := range []string{"a.png", "b.webp"} {
		path := filepath.Join(dir, name)
		if err := kit.SaveImage(img, path); err != nil {
			t.Fatalf("SaveImage(%s) failed: %v", name, err)
		}
		loaded, err := kit.LoadImage(path)
		if err != nil {
			t.Fatalf("LoadImage(%s) failed: %v", name, err)
		}
		if !bytes.Equal(loaded.Pix, img.Pix) {
			t.Errorf("%s did not round trip losslessly", name)
		}
	}

	if _, err := kit.LoadImageFromReader(bytes.NewReader([]byte("nope"))); !errors.Is(err, types.ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}

func TestProcessSheetFile(t *testing.T) {
	kit := New()
	dir := t.TempDir()
	input := filepath.Join(dir, "sheet.png")
	if err := kit.SaveImage(createTestImage(200, 200), input); err != nil {
		t.Fatal(err)
	}

	params := types.DefaultChromaKeyParams()
	paths, err := kit.ProcessSheetFile(input, filepath.Join(dir, "out"), types.Grid{Cols: 2, Rows: 2}, &params)
	if err != nil {
		t.Fatalf("ProcessSheetFile failed: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("Expected 4 files, got %d", len(paths))
	}
	if filepath.Base(paths[3]) != "04.png" {
		t.Errorf("Last file = %s, expected 04.png", paths[3])
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestEncodeArchive(t *testing.T) {
	kit := New()
	c := codec.New()
	payload := func(w, h int) []byte {
		data, err := c.Encode(createTestImage(w, h))
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	data, err := kit.EncodeArchive(context.Background(), payload(300, 300), nil, [][]byte{payload(50, 50), payload(60, 60)})
	if err != nil {
		t.Fatalf("EncodeArchive failed: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if len(names) != 3 || names[0] != "main.png" || names[1] != "01.png" || names[2] != "02.png" {
		t.Errorf("Archive entries = %v", names)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("GetVersion() = %s, expected %s", GetVersion(), Version)
	}
}

func BenchmarkSliceAndKey(b *testing.B) {
	kit := New()
	img := createTestImage(1110, 960)
	params := types.DefaultChromaKeyParams()
	for i := 0; i < b.N; i++ {
		cells, err := kit.Slice(img, types.Grid{Cols: 3, Rows: 3})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := kit.RemoveColor(cells[0], params); err != nil {
			b.Fatal(err)
		}
	}
}
