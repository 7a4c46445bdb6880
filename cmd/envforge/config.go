// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"envforge/internal/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage envforge configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return err
			}

			if path == "" {
				fmt.Println(SubtitleStyle.Render("// no config file found, showing defaults"))
			} else {
				fmt.Println(SubtitleStyle.Render("// loaded from " + path))
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.CreateDefaultConfig(); err != nil {
				return err
			}

			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Println(SuccessStyle.Render("✓ ") + "Config ready in " + CmdStyle.Render(cfgDir))
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
