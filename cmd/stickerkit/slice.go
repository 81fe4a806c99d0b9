package main

import (
	"log"

	"github.com/spf13/cobra"

	stickerkit "github.com/menta2k/sticker-kit"
	"github.com/menta2k/sticker-kit/pkg/codec"
	"github.com/menta2k/sticker-kit/pkg/sticker"
	"github.com/menta2k/sticker-kit/pkg/types"
)

var sliceCmd = &cobra.Command{
	Use:   "slice SHEET",
	Short: "Cut a composite sheet into numbered sticker files",
	Args:  cobra.ExactArgs(1),
	RunE:  runSlice,
}

func init() {
	sliceCmd.Flags().Int("cols", 0, "Grid columns (default from config)")
	sliceCmd.Flags().Int("rows", 0, "Grid rows (default from config)")
	sliceCmd.Flags().StringP("output", "o", "", "Output directory (default from config)")
	sliceCmd.Flags().String("format", "", "Output format: png or webp (default from config)")
	sliceCmd.Flags().Bool("key", false, "Remove the background of every cell")
	addKeyFlags(sliceCmd)
	rootCmd.AddCommand(sliceCmd)
}

func runSlice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	filter, err := cfg.Filter()
	if err != nil {
		return err
	}

	formatName := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		formatName, _ = cmd.Flags().GetString("format")
	}
	format, err := codec.ParseFormat(formatName)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output")
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	var params *types.ChromaKeyParams
	if key, _ := cmd.Flags().GetBool("key"); key {
		p, err := keyParams(cmd, cfg)
		if err != nil {
			return err
		}
		params = &p
	}

	kit := stickerkit.NewWithConfig(stickerkit.Config{
		Filter:      filter,
		Format:      format,
		MaxStickers: sticker.DefaultMaxStickers,
	})
	paths, err := kit.ProcessSheetFile(args[0], outDir, gridFlags(cmd, cfg), params)
	if err != nil {
		return err
	}
	for _, p := range paths {
		log.Printf("wrote %s", p)
	}
	return nil
}
