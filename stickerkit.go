// Package stickerkit prepares image assets for LINE-style sticker sets.
//
// A sticker set consists of a 240x240 main image, a 96x74 tab image and an
// ordered sequence of stickers named 01.png, 02.png, ... each fitting within
// 370x320. This package combines the pipeline stages behind one type:
//
//	kit := stickerkit.New()
//
//	sheet, err := kit.LoadImage("sheet.png")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Cut a 4x2 sheet into eight stickers
//	stickers, err := kit.Slice(sheet, types.Grid{Cols: 4, Rows: 2})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Remove the green screen from the first one
//	keyed, err := kit.RemoveColor(stickers[0], types.DefaultChromaKeyParams())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := kit.SaveImage(keyed, "01.png"); err != nil {
//		log.Fatal(err)
//	}
//
// The pipeline consists of these components:
//
//  1. Geometry (pkg/geometry): fit-within-box size computation, never upscaling
//  2. Raster (pkg/raster): resampling to a computed size
//  3. Slicer (pkg/slicer): uniform grid cutting of composite sheets
//  4. Chroma key (pkg/chromakey): background color removal with feathering and despill
//  5. Sticker (pkg/sticker): the editable set with sequential naming and ZIP export
//
// Every stage returns a freshly allocated image and never modifies its input.
package stickerkit

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/menta2k/sticker-kit/pkg/chromakey"
	"github.com/menta2k/sticker-kit/pkg/codec"
	"github.com/menta2k/sticker-kit/pkg/geometry"
	"github.com/menta2k/sticker-kit/pkg/raster"
	"github.com/menta2k/sticker-kit/pkg/slicer"
	"github.com/menta2k/sticker-kit/pkg/sticker"
	"github.com/menta2k/sticker-kit/pkg/types"
)

// Version of the sticker kit library
const Version = "1.0.0"

// Config selects the resample filter and output format of a Kit
type Config struct {
	Filter      imaging.ResampleFilter
	Format      codec.Format
	MaxStickers int
}

// DefaultConfig returns linear resampling with PNG output
func DefaultConfig() Config {
	return Config{
		Filter:      raster.DefaultFilter,
		Format:      codec.PNG,
		MaxStickers: sticker.DefaultMaxStickers,
	}
}

// Kit provides a high-level interface to the sticker pipeline
type Kit struct {
	config Config
	codec  *codec.Codec
	slicer *slicer.Slicer
}

// New creates a Kit with default configuration
func New() *Kit {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Kit with custom configuration
func NewWithConfig(config Config) *Kit {
	return &Kit{
		config: config,
		codec:  codec.NewWithFormat(config.Format),
		slicer: slicer.NewWithConfig(slicer.Config{Box: types.StickerSize, Filter: config.Filter}),
	}
}

// LoadImage loads an image from file
func (k *Kit) LoadImage(path string) (*image.NRGBA, error) {
	return k.codec.LoadFile(path)
}

// LoadImageFromReader loads an image from an io.Reader
func (k *Kit) LoadImageFromReader(r io.Reader) (*image.NRGBA, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecode, err)
	}
	return k.codec.Decode(data)
}

// SaveImage encodes img losslessly and writes it to path. The extension of
// path picks png or webp; any other extension uses the configured format.
func (k *Kit) SaveImage(img image.Image, path string) error {
	c := k.codec
	if ext := filepath.Ext(path); ext != "" {
		if format, err := codec.ParseFormat(ext); err == nil {
			c = codec.NewWithFormat(format)
		}
	}
	data, err := c.Encode(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FitSize computes the largest size within box that keeps the aspect ratio
// of src and never upscales
func FitSize(src, box types.Size) (types.Size, error) {
	return geometry.Fit(src, box)
}

// Fit resizes img to fit within box
func (k *Kit) Fit(img image.Image, box types.Size) (*image.NRGBA, error) {
	return raster.FitTo(img, box, k.config.Filter)
}

// Main fits img to the main image box
func (k *Kit) Main(img image.Image) (*image.NRGBA, error) {
	return k.Fit(img, types.MainSize)
}

// Tab fits img to the tab image box
func (k *Kit) Tab(img image.Image) (*image.NRGBA, error) {
	return k.Fit(img, types.TabSize)
}

// Slice cuts a sheet into grid cells, each fitted to the sticker box
func (k *Kit) Slice(img image.Image, grid types.Grid) ([]*image.NRGBA, error) {
	return k.slicer.Slice(img, grid)
}

// RemoveColor applies chroma-key background removal
func (k *Kit) RemoveColor(img image.Image, params types.ChromaKeyParams) (*image.NRGBA, error) {
	return chromakey.Apply(img, params)
}

// SuggestKeyColor estimates the background color of img
func (k *Kit) SuggestKeyColor(img image.Image, method chromakey.SuggestMethod) (types.RGB, error) {
	return chromakey.SuggestKeyColor(img, method)
}

// NewSet creates an empty sticker set sharing the kit's filter and limit.
// Set images are always exported as PNG.
func (k *Kit) NewSet(ids sticker.IDGenerator) *sticker.Set {
	filter := k.config.Filter
	return sticker.NewSet(sticker.Options{
		Decoder:     k.codec,
		Encoder:     codec.New(),
		IDs:         ids,
		Filter:      &filter,
		MaxStickers: k.config.MaxStickers,
	})
}

// ProcessSheetFile is a convenience function that loads a sheet, slices it,
// optionally keys every cell and writes 01.png, 02.png, ... into outputDir
func (k *Kit) ProcessSheetFile(inputPath, outputDir string, grid types.Grid, params *types.ChromaKeyParams) ([]string, error) {
	img, err := k.LoadImage(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load sheet: %w", err)
	}

	cells, err := k.Slice(img, grid)
	if err != nil {
		return nil, fmt.Errorf("slicing failed: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ext := k.codec.Extension()
	paths := make([]string, 0, len(cells))
	for i, cell := range cells {
		if params != nil {
			if cell, err = k.RemoveColor(cell, *params); err != nil {
				return nil, fmt.Errorf("chroma key of cell %d failed: %w", i+1, err)
			}
		}
		path := filepath.Join(outputDir, fmt.Sprintf("%02d%s", i+1, ext))
		if err := k.SaveImage(cell, path); err != nil {
			return nil, fmt.Errorf("failed to save cell %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// EncodeArchive builds a sticker set archive from in-memory payloads in one
// call: main and tab may be nil
func (k *Kit) EncodeArchive(ctx context.Context, main, tab []byte, stickers [][]byte) ([]byte, error) {
	set := k.NewSet(nil)
	if main != nil {
		if _, err := set.SetMain(main); err != nil {
			return nil, err
		}
	}
	if tab != nil {
		if _, err := set.SetTab(tab); err != nil {
			return nil, err
		}
	}
	if _, err := set.AddStickers(ctx, stickers...); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := set.Export(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
