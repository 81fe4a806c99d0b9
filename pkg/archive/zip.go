// Package archive bundles named sticker files into a single ZIP.
package archive

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// DefaultName is the archive file name offered for download
const DefaultName = "line_stickers_set.zip"

// ErrInvalidName reports an empty, nested or duplicated entry name
var ErrInvalidName = errors.New("invalid archive entry name")

// File is one archive entry
type File struct {
	Name string
	Data []byte
}

// Validate checks that every name is a non-empty flat file name and that no
// two entries collide
func Validate(files []File) error {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if f.Name == "" || f.Name != path.Base(f.Name) || strings.ContainsAny(f.Name, `/\`) {
			return fmt.Errorf("%w: %q", ErrInvalidName, f.Name)
		}
		key := strings.ToLower(f.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate %q", ErrInvalidName, f.Name)
		}
		seen[key] = true
	}
	return nil
}

// Write writes files, in order, as a ZIP archive to w. Nothing is written
// when validation fails.
func Write(w io.Writer, files []File) error {
	if err := Validate(files); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	modified := time.Now()
	for _, f := range files {
		hdr := &zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: modified,
		}
		entry, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", f.Name, err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}
