package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/menta2k/sticker-kit/internal/config"
	"github.com/menta2k/sticker-kit/internal/utils"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to --config",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		force, _ := cmd.Flags().GetBool("force")
		if utils.FileExists(path) && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().SaveToFile(path); err != nil {
			return err
		}
		log.Printf("wrote %s", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		params, _ := cfg.Params()
		fmt.Fprintf(cmd.OutOrStdout(), "sheet:      %dx%d\n", cfg.Sheet.Cols, cfg.Sheet.Rows)
		fmt.Fprintf(cmd.OutOrStdout(), "chroma key: %s tolerance=%g feather=%g despill=%v suggest=%s\n",
			params.Target.Hex(), params.Tolerance, params.Feather, params.Despill, cfg.ChromaKey.Suggest)
		fmt.Fprintf(cmd.OutOrStdout(), "resample:   %s\n", cfg.Resample.Filter)
		fmt.Fprintf(cmd.OutOrStdout(), "output:     %s dir=%s format=%s max=%d\n",
			cfg.Output.Archive, cfg.Output.Dir, cfg.Output.Format, cfg.Output.MaxStickers)
		fmt.Fprintf(cmd.OutOrStdout(), "server:     %s upload=%dMiB\n", cfg.Server.Addr, cfg.Server.MaxUploadMiB)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
