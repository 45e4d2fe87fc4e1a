package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"episodic/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.Save(config.Default(), target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote default configuration to %s\n", target)
			fmt.Fprintln(out, "Set sourceDir, destDir and newName before running episodic.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a configuration file against the filesystem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read(args[0])
			if err != nil {
				return err
			}

			result := config.ValidateConfig(cfg)
			out := cmd.OutOrStdout()
			for _, w := range result.Warnings {
				fmt.Fprintf(out, "warning: %s: %s\n", w.Field, w.Message)
			}
			for _, e := range result.Errors {
				fmt.Fprintf(out, "error: %s: %s\n", e.Field, e.Message)
			}
			if !result.Valid {
				return fmt.Errorf("configuration %s is invalid (%d errors)", args[0], len(result.Errors))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
