package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	stickerkit "github.com/menta2k/sticker-kit"
	"github.com/menta2k/sticker-kit/internal/utils"
)

var keyCmd = &cobra.Command{
	Use:   "key IMAGE",
	Short: "Remove a solid background color from one image",
	Example: `  stickerkit key photo.png --color "#00ff00" --tolerance 20
  stickerkit key photo.jpg --auto border -o photo.webp`,
	Args: cobra.ExactArgs(1),
	RunE: runKey,
}

func init() {
	keyCmd.Flags().StringP("output", "o", "", "Output file; .png or .webp (default INPUT_keyed.<format>)")
	addKeyFlags(keyCmd)
	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := keyParams(cmd, cfg)
	if err != nil {
		return err
	}
	method, auto, err := autoMethod(cmd)
	if err != nil {
		return err
	}

	kit := stickerkit.New()
	img, err := kit.LoadImage(args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	if auto {
		if params.Target, err = kit.SuggestKeyColor(img, method); err != nil {
			return err
		}
		log.Printf("suggested key color %s", params.Target.Hex())
	}

	keyed, err := kit.RemoveColor(img, params)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		ext := filepath.Ext(args[0])
		name := strings.TrimSuffix(filepath.Base(args[0]), ext) + "_keyed" + ext
		out = utils.OutputPath(filepath.Dir(args[0]), name, cfg.Output.Format)
	}
	if err := kit.SaveImage(keyed, out); err != nil {
		return err
	}
	log.Printf("wrote %s", out)
	return nil
}
