package archive

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
)

func TestWriteRoundTrip(t *testing.T) {
	files := []File{
		{Name: "main.png", Data: []byte("main")},
		{Name: "tab.png", Data: []byte("tab")},
		{Name: "01.png", Data: bytes.Repeat([]byte{7}, 1000)},
		{Name: "02.png", Data: []byte{}},
	}

	var buf bytes.Buffer
	if err := Write(&buf, files); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	if len(zr.File) != len(files) {
		t.Fatalf("Expected %d entries, got %d", len(files), len(zr.File))
	}
	for i, zf := range zr.File {
		if zf.Name != files[i].Name {
			t.Errorf("entry %d = %s, expected %s", i, zf.Name, files[i].Name)
		}
		rc, err := zf.Open()
		if err != nil {
			t.Fatalf("open %s: %v", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", zf.Name, err)
		}
		if !bytes.Equal(data, files[i].Data) {
			t.Errorf("entry %s content mismatch", zf.Name)
		}
	}
}

func TestWriteRejectsBadNames(t *testing.T) {
	cases := [][]File{
		{{Name: ""}},
		{{Name: "dir/01.png"}},
		{{Name: `..\01.png`}},
		{{Name: "01.png"}, {Name: "01.png"}},
		{{Name: "Main.png"}, {Name: "main.png"}},
	}
	for _, files := range cases {
		var buf bytes.Buffer
		if err := Write(&buf, files); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Write(%v) = %v, expected ErrInvalidName", files, err)
		}
		if buf.Len() != 0 {
			t.Errorf("Write(%v) wrote %d bytes despite failing", files, buf.Len())
		}
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	if len(zr.File) != 0 {
		t.Errorf("Expected empty archive, got %d entries", len(zr.File))
	}
}
