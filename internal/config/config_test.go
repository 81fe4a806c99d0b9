package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/sticker-kit/pkg/types"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default config is invalid: %v", err)
	}

	params, err := c.Params()
	if err != nil {
		t.Fatalf("Params failed: %v", err)
	}
	if params != types.DefaultChromaKeyParams() {
		t.Errorf("Params() = %+v, expected %+v", params, types.DefaultChromaKeyParams())
	}
	if c.Grid() != (types.Grid{Cols: 3, Rows: 3}) {
		t.Errorf("Grid() = %+v", c.Grid())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero cols", func(c *Config) { c.Sheet.Cols = 0 }},
		{"bad color", func(c *Config) { c.ChromaKey.Color = "#12" }},
		{"tolerance", func(c *Config) { c.ChromaKey.Tolerance = 120 }},
		{"feather", func(c *Config) { c.ChromaKey.Feather = -1 }},
		{"suggest", func(c *Config) { c.ChromaKey.Suggest = "magic" }},
		{"filter", func(c *Config) { c.Resample.Filter = "bicubic-ish" }},
		{"format", func(c *Config) { c.Output.Format = "jpg" }},
		{"archive", func(c *Config) { c.Output.Archive = "" }},
		{"max stickers", func(c *Config) { c.Output.MaxStickers = 0 }},
		{"upload", func(c *Config) { c.Server.MaxUploadMiB = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			if err := c.Validate(); !errors.Is(err, types.ErrInvalidConfig) {
				t.Errorf("Validate() = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	c := Default()
	c.Sheet.Cols = 4
	c.ChromaKey.Color = "#0000ff"
	c.Output.Format = "webp"
	if err := c.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if *loaded != *c {
		t.Errorf("Loaded %+v, expected %+v", loaded, c)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"sheet": {"cols": 5}}`), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if c.Sheet.Cols != 5 || c.Sheet.Rows != 3 {
		t.Errorf("Sheet = %+v, expected cols 5 rows 3", c.Sheet)
	}
	if c.ChromaKey.Tolerance != 15 {
		t.Errorf("Tolerance = %g, expected default 15", c.ChromaKey.Tolerance)
	}
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Output.MaxStickers != 40 {
		t.Errorf("Expected defaults, got %+v", c.Output)
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadFromFile should fail for a missing file")
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"sheet":`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("Expected a parse error")
	}
}
