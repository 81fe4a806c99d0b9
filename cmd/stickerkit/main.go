package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/menta2k/sticker-kit/internal/config"
	"github.com/menta2k/sticker-kit/pkg/chromakey"
	"github.com/menta2k/sticker-kit/pkg/types"
)

var rootCmd = &cobra.Command{
	Use:           "stickerkit",
	Short:         "Prepare LINE sticker sets: fit, slice, remove backgrounds and export",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", config.GetConfigPath(), "Configuration file (defaults apply when missing)")
	log.SetFlags(0)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the --config file and validates it
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// addKeyFlags registers the chroma-key flags shared by several commands
func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().String("color", "", "Key color as #rrggbb (default from config)")
	cmd.Flags().String("auto", "", "Estimate the key color per image: border or dominant")
	cmd.Flags().Float64("tolerance", 0, "Match tolerance in percent (0-100)")
	cmd.Flags().Float64("feather", 0, "Edge feather radius in pixels (0-20)")
	cmd.Flags().Bool("despill", true, "Neutralize key color spill on edges")
}

// keyParams starts from the configured parameters and applies changed flags
func keyParams(cmd *cobra.Command, cfg *config.Config) (types.ChromaKeyParams, error) {
	params, err := cfg.Params()
	if err != nil {
		return params, err
	}
	flags := cmd.Flags()
	if flags.Changed("color") {
		hex, _ := flags.GetString("color")
		if params.Target, err = chromakey.ParseHex(hex); err != nil {
			return params, err
		}
	}
	if flags.Changed("tolerance") {
		params.Tolerance, _ = flags.GetFloat64("tolerance")
	}
	if flags.Changed("feather") {
		params.Feather, _ = flags.GetFloat64("feather")
	}
	if flags.Changed("despill") {
		params.Despill, _ = flags.GetBool("despill")
	}
	return params, params.Validate()
}

// autoMethod returns the --auto suggestion method, if requested
func autoMethod(cmd *cobra.Command) (chromakey.SuggestMethod, bool, error) {
	if !cmd.Flags().Changed("auto") {
		return 0, false, nil
	}
	name, _ := cmd.Flags().GetString("auto")
	method, err := chromakey.ParseSuggestMethod(name)
	return method, err == nil, err
}

// gridFlags returns the sheet grid, preferring --cols/--rows over the config
func gridFlags(cmd *cobra.Command, cfg *config.Config) types.Grid {
	grid := cfg.Grid()
	if cmd.Flags().Changed("cols") {
		grid.Cols, _ = cmd.Flags().GetInt("cols")
	}
	if cmd.Flags().Changed("rows") {
		grid.Rows, _ = cmd.Flags().GetInt("rows")
	}
	return grid
}
