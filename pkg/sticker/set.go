// Package sticker assembles a sticker set: the main and tab thumbnails plus
// an ordered, sequentially named sticker list.
//
// A Set is safe for concurrent use. Decoding, resizing and keying run outside
// the set's lock on buffers owned by the running operation; only a fully
// successful result is committed, by swapping in a whole new sequence, so a
// failed or concurrent edit is never partially visible.
package sticker

import (
	"context"
	"fmt"
	"image"
	"io"
	"runtime"
	"slices"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/menta2k/sticker-kit/pkg/archive"
	"github.com/menta2k/sticker-kit/pkg/chromakey"
	"github.com/menta2k/sticker-kit/pkg/codec"
	"github.com/menta2k/sticker-kit/pkg/raster"
	"github.com/menta2k/sticker-kit/pkg/slicer"
	"github.com/menta2k/sticker-kit/pkg/types"
)

// DefaultMaxStickers is the largest sticker count the platform accepts
const DefaultMaxStickers = 40

// Decoder turns an uploaded payload into pixels
type Decoder interface {
	Decode(data []byte) (*image.NRGBA, error)
}

// Encoder turns finished pixels into a lossless PNG payload
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
}

// Options configures a Set. Zero values select defaults.
type Options struct {
	Decoder     Decoder
	Encoder     Encoder
	IDs         IDGenerator
	Filter      *imaging.ResampleFilter // nil selects raster.DefaultFilter
	MaxStickers int                     // 0 selects DefaultMaxStickers, negative disables the limit
	Concurrency int                     // parallel decodes in AddStickers, 0 selects NumCPU
}

// Set is the working collection of one sticker pack
type Set struct {
	mu       sync.RWMutex
	main     *ProcessedImage
	tab      *ProcessedImage
	stickers []ProcessedImage

	decoder     Decoder
	encoder     Encoder
	ids         IDGenerator
	filter      imaging.ResampleFilter
	slicer      *slicer.Slicer
	maxStickers int
	concurrency int
}

// NewSet creates an empty set
func NewSet(opts Options) *Set {
	c := codec.New()
	s := &Set{
		decoder:     opts.Decoder,
		encoder:     opts.Encoder,
		ids:         opts.IDs,
		filter:      raster.DefaultFilter,
		maxStickers: opts.MaxStickers,
		concurrency: opts.Concurrency,
	}
	if s.decoder == nil {
		s.decoder = c
	}
	if s.encoder == nil {
		s.encoder = c
	}
	if s.ids == nil {
		s.ids = NewSequence("img")
	}
	if opts.Filter != nil {
		s.filter = *opts.Filter
	}
	if s.maxStickers == 0 {
		s.maxStickers = DefaultMaxStickers
	}
	if s.concurrency <= 0 {
		s.concurrency = runtime.NumCPU()
	}
	s.slicer = slicer.NewWithConfig(slicer.Config{Box: types.StickerSize, Filter: s.filter})
	return s
}

// prepare decodes data and fits it into box
func (s *Set) prepare(data []byte, box types.Size, slot Slot) (ProcessedImage, error) {
	img, err := s.decoder.Decode(data)
	if err != nil {
		return ProcessedImage{}, err
	}
	fitted, err := raster.FitTo(img, box, s.filter)
	if err != nil {
		return ProcessedImage{}, err
	}
	return s.newImage(fitted, slot), nil
}

func (s *Set) newImage(img *image.NRGBA, slot Slot) ProcessedImage {
	return ProcessedImage{ID: s.ids.NewID(), Slot: slot, Original: img, Image: img}
}

// SetMain decodes data, fits it into the 240x240 main box and replaces the
// main image
func (s *Set) SetMain(data []byte) (ProcessedImage, error) {
	img, err := s.prepare(data, types.MainSize, SlotMain)
	if err != nil {
		return ProcessedImage{}, fmt.Errorf("main image: %w", err)
	}
	img.Name = MainName

	s.mu.Lock()
	s.main = &img
	s.mu.Unlock()
	return img, nil
}

// SetTab decodes data, fits it into the 96x74 tab box and replaces the tab
// image
func (s *Set) SetTab(data []byte) (ProcessedImage, error) {
	img, err := s.prepare(data, types.TabSize, SlotTab)
	if err != nil {
		return ProcessedImage{}, fmt.Errorf("tab image: %w", err)
	}
	img.Name = TabName

	s.mu.Lock()
	s.tab = &img
	s.mu.Unlock()
	return img, nil
}

// RemoveMain clears the main slot and reports whether it was set
func (s *Set) RemoveMain() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.main != nil
	s.main = nil
	return had
}

// RemoveTab clears the tab slot and reports whether it was set
func (s *Set) RemoveTab() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.tab != nil
	s.tab = nil
	return had
}

// AddSheet slices a composite sheet into grid cells, fits each into the
// sticker box and appends them in row-major order. It returns the added
// stickers with their assigned names.
func (s *Set) AddSheet(data []byte, grid types.Grid) ([]ProcessedImage, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	sheet, err := s.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("sticker sheet: %w", err)
	}
	cells, err := s.slicer.Slice(sheet, grid)
	if err != nil {
		return nil, fmt.Errorf("sticker sheet: %w", err)
	}

	items := make([]ProcessedImage, len(cells))
	for i, cell := range cells {
		items[i] = s.newImage(cell, SlotSticker)
	}
	return s.appendStickers(items)
}

// AddStickers decodes and fits every payload in parallel and appends them in
// argument order. Either all payloads are added or none is.
func (s *Set) AddStickers(ctx context.Context, payloads ...[]byte) ([]ProcessedImage, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	items := make([]ProcessedImage, len(payloads))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, data := range payloads {
		g.Go(func() error {
			// Work is only abandoned before it starts; a running decode finishes.
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := s.prepare(data, types.StickerSize, SlotSticker)
			if err != nil {
				return fmt.Errorf("sticker %d: %w", i+1, err)
			}
			items[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s.appendStickers(items)
}

func (s *Set) appendStickers(items []ProcessedImage) ([]ProcessedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.stickers)
	if s.maxStickers > 0 && n+len(items) > s.maxStickers {
		return nil, fmt.Errorf("%w: %d stickers plus %d new exceeds %d",
			types.ErrLimitExceeded, n, len(items), s.maxStickers)
	}

	s.stickers = Renumber(append(slices.Clone(s.stickers), items...))
	return slices.Clone(s.stickers[n:]), nil
}

// RemoveSticker drops a sticker and renumbers the rest
func (s *Set) RemoveSticker(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: sticker %s", types.ErrNotFound, id)
	}
	s.stickers = Renumber(slices.Delete(slices.Clone(s.stickers), i, i+1))
	return nil
}

// MoveSticker moves the sticker at index from to index to and renumbers
func (s *Set) MoveSticker(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(from, to)
}

// MoveStickerByID moves the sticker with the given ID to index to
func (s *Set) MoveStickerByID(id string, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.indexOf(id)
	if from < 0 {
		return fmt.Errorf("%w: sticker %s", types.ErrNotFound, id)
	}
	return s.move(from, to)
}

func (s *Set) move(from, to int) error {
	n := len(s.stickers)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d out of range for %d stickers", types.ErrInvalidConfig, from, to, n)
	}
	seq := slices.Clone(s.stickers)
	item := seq[from]
	seq = slices.Delete(seq, from, from+1)
	seq = slices.Insert(seq, to, item)
	s.stickers = Renumber(seq)
	return nil
}

// Reorder replaces the sticker order with ids, which must name every current
// sticker exactly once
func (s *Set) Reorder(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) != len(s.stickers) {
		return fmt.Errorf("%w: order has %d ids, set has %d stickers", types.ErrInvalidConfig, len(ids), len(s.stickers))
	}
	byID := make(map[string]ProcessedImage, len(s.stickers))
	for _, img := range s.stickers {
		byID[img.ID] = img
	}
	seq := make([]ProcessedImage, 0, len(ids))
	for _, id := range ids {
		img, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown or repeated sticker %s", types.ErrInvalidConfig, id)
		}
		delete(byID, id)
		seq = append(seq, img)
	}
	s.stickers = Renumber(seq)
	return nil
}

// Clear removes every sticker, keeping main and tab
func (s *Set) Clear() {
	s.mu.Lock()
	s.stickers = nil
	s.mu.Unlock()
}

// ApplyChromaKey keys the original buffer of image id and replaces its
// current buffer. Keying always starts from the original, so repeated calls
// do not compound.
func (s *Set) ApplyChromaKey(id string, params types.ChromaKeyParams) (ProcessedImage, error) {
	if err := params.Validate(); err != nil {
		return ProcessedImage{}, err
	}
	img, err := s.Get(id)
	if err != nil {
		return ProcessedImage{}, err
	}

	keyed, err := chromakey.Apply(img.Original, params)
	if err != nil {
		return ProcessedImage{}, err
	}
	return s.replace(id, img.Original, keyed)
}

// ResetChromaKey restores the original buffer of image id
func (s *Set) ResetChromaKey(id string) (ProcessedImage, error) {
	img, err := s.Get(id)
	if err != nil {
		return ProcessedImage{}, err
	}
	return s.replace(id, img.Original, img.Original)
}

// SuggestKeyColor estimates the background color of image id
func (s *Set) SuggestKeyColor(id string, method chromakey.SuggestMethod) (types.RGB, error) {
	img, err := s.Get(id)
	if err != nil {
		return types.RGB{}, err
	}
	return chromakey.SuggestKeyColor(img.Original, method)
}

// replace swaps the current buffer of id, provided the image still holds
// the original the new buffer was derived from
func (s *Set) replace(id string, original, next *image.NRGBA) (ProcessedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.main != nil && s.main.ID == id && s.main.Original == original:
		img := *s.main
		img.Image = next
		s.main = &img
		return img, nil
	case s.tab != nil && s.tab.ID == id && s.tab.Original == original:
		img := *s.tab
		img.Image = next
		s.tab = &img
		return img, nil
	}

	i := s.indexOf(id)
	if i < 0 || s.stickers[i].Original != original {
		return ProcessedImage{}, fmt.Errorf("%w: image %s was removed", types.ErrNotFound, id)
	}
	seq := slices.Clone(s.stickers)
	seq[i].Image = next
	s.stickers = seq
	return seq[i], nil
}

// Get returns the image with the given ID from any slot
func (s *Set) Get(id string) (ProcessedImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.main != nil && s.main.ID == id {
		return *s.main, nil
	}
	if s.tab != nil && s.tab.ID == id {
		return *s.tab, nil
	}
	if i := s.indexOf(id); i >= 0 {
		return s.stickers[i], nil
	}
	return ProcessedImage{}, fmt.Errorf("%w: image %s", types.ErrNotFound, id)
}

// Main returns the main image, if set
func (s *Set) Main() (ProcessedImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.main == nil {
		return ProcessedImage{}, false
	}
	return *s.main, true
}

// Tab returns the tab image, if set
func (s *Set) Tab() (ProcessedImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tab == nil {
		return ProcessedImage{}, false
	}
	return *s.tab, true
}

// Stickers returns a snapshot of the ordered sticker list
func (s *Set) Stickers() []ProcessedImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.stickers)
}

// Len returns the number of stickers
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stickers)
}

// Empty reports whether the set has nothing to export
func (s *Set) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.main == nil && s.tab == nil && len(s.stickers) == 0
}

// All returns main, tab and the stickers in export order
func (s *Set) All() []ProcessedImage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]ProcessedImage, 0, len(s.stickers)+2)
	if s.main != nil {
		all = append(all, *s.main)
	}
	if s.tab != nil {
		all = append(all, *s.tab)
	}
	return append(all, s.stickers...)
}

// Files encodes every image of the set, in export order
func (s *Set) Files() ([]archive.File, error) {
	all := s.All()
	files := make([]archive.File, 0, len(all))
	for _, img := range all {
		data, err := s.encoder.Encode(img.Image)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", img.Name, err)
		}
		files = append(files, archive.File{Name: img.Name, Data: data})
	}
	return files, nil
}

// Export writes the whole set as a ZIP archive
func (s *Set) Export(w io.Writer) error {
	files, err := s.Files()
	if err != nil {
		return err
	}
	return archive.Write(w, files)
}

// indexOf returns the position of sticker id, or -1. Callers hold the lock.
func (s *Set) indexOf(id string) int {
	return slices.IndexFunc(s.stickers, func(img ProcessedImage) bool {
		return img.ID == id
	})
}
