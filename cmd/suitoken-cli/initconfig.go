package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/sui-tokengen/config"
	"github.com/Klingon-tech/sui-tokengen/internal/token"
)

func newInitConfigCmd() *cobra.Command {
	var (
		dataDir    string
		force      bool
		paramsFile string
	)
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a default suitokend.conf (and optionally a params template)",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}

			path := cfg.ConfigFile()
			w := cmd.OutOrStdout()
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(w, "Config already exists: %s\n", path)
			} else {
				if err := config.WriteDefaultConfig(path); err != nil {
					return err
				}
				fmt.Fprintf(w, "Wrote %s\n", path)
			}

			if paramsFile == "" {
				return nil
			}
			if _, err := os.Stat(paramsFile); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", paramsFile)
			}
			data, err := token.MarshalYAML(token.Params{
				Decimals:    9,
				Symbol:      "MYC",
				Name:        "My Coin",
				Description: "An example coin.",
				Environment: token.Devnet,
			})
			if err != nil {
				return err
			}
			if err := os.WriteFile(paramsFile, data, 0o644); err != nil {
				return fmt.Errorf("write params template: %w", err)
			}
			fmt.Fprintf(w, "Wrote %s\n", paramsFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "datadir", "", "data directory (default: ~/.suitoken)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	cmd.Flags().StringVar(&paramsFile, "params", "", "also write a coin parameter template to this path")
	return cmd
}
