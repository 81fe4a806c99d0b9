package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/menta2k/sticker-kit/pkg/chromakey"
	"github.com/menta2k/sticker-kit/pkg/codec"
	"github.com/menta2k/sticker-kit/pkg/raster"
	"github.com/menta2k/sticker-kit/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Sheet     SheetConfig     `json:"sheet"`
	ChromaKey ChromaKeyConfig `json:"chroma_key"`
	Resample  ResampleConfig  `json:"resample"`
	Output    OutputConfig    `json:"output"`
	Server    ServerConfig    `json:"server"`
}

// SheetConfig holds the default grid for composite sheets
type SheetConfig struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// ChromaKeyConfig holds the default background removal parameters
type ChromaKeyConfig struct {
	Color     string  `json:"color"`
	Tolerance float64 `json:"tolerance"`
	Feather   float64 `json:"feather"`
	Despill   bool    `json:"despill"`
	Suggest   string  `json:"suggest"`
}

// ResampleConfig selects the resize filter
type ResampleConfig struct {
	Filter string `json:"filter"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Archive     string `json:"archive"`
	Dir         string `json:"dir"`
	Format      string `json:"format"`
	MaxStickers int    `json:"max_stickers"`
}

// ServerConfig holds configuration for the HTTP service
type ServerConfig struct {
	Addr         string `json:"addr"`
	MaxUploadMiB int    `json:"max_upload_mib"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Sheet: SheetConfig{
			Cols: 3,
			Rows: 3,
		},
		ChromaKey: ChromaKeyConfig{
			Color:     "#00ff00",
			Tolerance: 15,
			Feather:   4,
			Despill:   true,
			Suggest:   chromakey.SuggestBorderKMeans.String(),
		},
		Resample: ResampleConfig{
			Filter: "linear",
		},
		Output: OutputConfig{
			Archive:     "line_stickers_set.zip",
			Dir:         "./output",
			Format:      "png",
			MaxStickers: 40,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxUploadMiB: 32,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Keys missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads filename if it exists and falls back to the defaults otherwise
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(filename)
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Grid().Validate(); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}

	if _, err := c.Params(); err != nil {
		return fmt.Errorf("chroma_key: %w", err)
	}

	if _, err := chromakey.ParseSuggestMethod(c.ChromaKey.Suggest); err != nil {
		return fmt.Errorf("chroma_key.suggest: %w", err)
	}

	if _, err := c.Filter(); err != nil {
		return fmt.Errorf("resample.filter: %w", err)
	}

	if _, err := codec.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	if c.Output.Archive == "" {
		return fmt.Errorf("%w: output.archive cannot be empty", types.ErrInvalidConfig)
	}

	if c.Output.MaxStickers < 1 {
		return fmt.Errorf("%w: output.max_stickers must be positive", types.ErrInvalidConfig)
	}

	if c.Server.MaxUploadMiB < 1 {
		return fmt.Errorf("%w: server.max_upload_mib must be positive", types.ErrInvalidConfig)
	}

	return nil
}

// Grid returns the configured sheet grid
func (c *Config) Grid() types.Grid {
	return types.Grid{Cols: c.Sheet.Cols, Rows: c.Sheet.Rows}
}

// Params converts the chroma_key section into engine parameters
func (c *Config) Params() (types.ChromaKeyParams, error) {
	target, err := chromakey.ParseHex(c.ChromaKey.Color)
	if err != nil {
		return types.ChromaKeyParams{}, err
	}
	params := types.ChromaKeyParams{
		Target:    target,
		Tolerance: c.ChromaKey.Tolerance,
		Feather:   c.ChromaKey.Feather,
		Despill:   c.ChromaKey.Despill,
	}
	return params, params.Validate()
}

// Filter returns the configured resample filter
func (c *Config) Filter() (imaging.ResampleFilter, error) {
	return raster.ParseFilter(c.Resample.Filter)
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMiB) << 20
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "sticker-kit", "config.json")
}
