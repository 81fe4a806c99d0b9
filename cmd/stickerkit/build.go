package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/sticker-kit/internal/config"
	"github.com/menta2k/sticker-kit/internal/utils"
	"github.com/menta2k/sticker-kit/pkg/codec"
	"github.com/menta2k/sticker-kit/pkg/sticker"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a sticker set archive from thumbnails, sheets and single stickers",
	Example: `  stickerkit build --main cover.png --tab cover.png --sheet sheet.png --cols 4 --rows 2 --key
  stickerkit build --sticker ./stickers --sticker https://example.com/extra.png -o set.zip`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("main", "", "Main image (file or URL), fitted to 240x240")
	buildCmd.Flags().String("tab", "", "Tab image (file or URL), fitted to 96x74")
	buildCmd.Flags().StringSlice("sheet", nil, "Composite sheet(s) to slice into stickers")
	buildCmd.Flags().Int("cols", 0, "Sheet grid columns (default from config)")
	buildCmd.Flags().Int("rows", 0, "Sheet grid rows (default from config)")
	buildCmd.Flags().StringSlice("sticker", nil, "Sticker files, directories or URLs, appended in order")
	buildCmd.Flags().Bool("key", false, "Remove the background of every sticker")
	buildCmd.Flags().Bool("key-thumbnails", false, "Also remove the background of main and tab")
	buildCmd.Flags().StringP("output", "o", "", "Archive path (default from config)")
	addKeyFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	filter, err := cfg.Filter()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c := codec.New()
	set := sticker.NewSet(sticker.Options{
		Decoder:     c,
		Encoder:     c,
		IDs:         sticker.NewSequence("img"),
		Filter:      &filter,
		MaxStickers: cfg.Output.MaxStickers,
	})

	if src, _ := cmd.Flags().GetString("main"); src != "" {
		data, err := c.Read(ctx, src)
		if err != nil {
			return fmt.Errorf("main: %w", err)
		}
		if _, err := set.SetMain(data); err != nil {
			return err
		}
	}
	if src, _ := cmd.Flags().GetString("tab"); src != "" {
		data, err := c.Read(ctx, src)
		if err != nil {
			return fmt.Errorf("tab: %w", err)
		}
		if _, err := set.SetTab(data); err != nil {
			return err
		}
	}

	grid := gridFlags(cmd, cfg)
	sheets, _ := cmd.Flags().GetStringSlice("sheet")
	for _, src := range sheets {
		data, err := c.Read(ctx, src)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", src, err)
		}
		added, err := set.AddSheet(data, grid)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", src, err)
		}
		log.Printf("sliced %s into %d stickers (%dx%d)", src, len(added), grid.Cols, grid.Rows)
	}

	stickerArgs, _ := cmd.Flags().GetStringSlice("sticker")
	sources, err := expandSources(stickerArgs)
	if err != nil {
		return err
	}
	if len(sources) > 0 {
		payloads := make([][]byte, len(sources))
		for i, src := range sources {
			if payloads[i], err = c.Read(ctx, src); err != nil {
				return fmt.Errorf("sticker %s: %w", src, err)
			}
		}
		if _, err := set.AddStickers(ctx, payloads...); err != nil {
			return err
		}
	}

	if set.Empty() {
		return fmt.Errorf("nothing to export: pass --main, --tab, --sheet or --sticker")
	}

	if key, _ := cmd.Flags().GetBool("key"); key {
		thumbs, _ := cmd.Flags().GetBool("key-thumbnails")
		if err := keySet(cmd, cfg, set, thumbs); err != nil {
			return err
		}
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = cfg.Output.Archive
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	if err := set.Export(f); err != nil {
		f.Close()
		return fmt.Errorf("writing archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}

	info, _ := os.Stat(out)
	log.Printf("wrote %s (%d stickers, %s)", out, set.Len(), utils.FormatFileSize(info.Size()))
	return nil
}

// keySet applies chroma key to the stickers and optionally the thumbnails
func keySet(cmd *cobra.Command, cfg *config.Config, set *sticker.Set, thumbnails bool) error {
	params, err := keyParams(cmd, cfg)
	if err != nil {
		return err
	}
	method, auto, err := autoMethod(cmd)
	if err != nil {
		return err
	}

	for _, img := range set.All() {
		if img.Slot != sticker.SlotSticker && !thumbnails {
			continue
		}
		p := params
		if auto {
			if p.Target, err = set.SuggestKeyColor(img.ID, method); err != nil {
				return fmt.Errorf("%s: %w", img.Name, err)
			}
		}
		if _, err := set.ApplyChromaKey(img.ID, p); err != nil {
			return fmt.Errorf("%s: %w", img.Name, err)
		}
		log.Printf("keyed %s with %s", img.Name, p.Target.Hex())
	}
	return nil
}

// expandSources keeps URLs as given and expands local directories
func expandSources(args []string) ([]string, error) {
	var sources []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			sources = append(sources, arg)
			continue
		}
		files, err := utils.ExpandImageArgs([]string{arg})
		if err != nil {
			return nil, err
		}
		sources = append(sources, files...)
	}
	return sources, nil
}
