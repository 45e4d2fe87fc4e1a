package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "episodic",
		Short: "Copy video files into numbered episode folders",
		Long: `episodic orders the video files of a source directory by the number in
their names and copies each one into its own numbered episode folder:

  DEST/episode_<n>/<name><ext>

Use subcommands to perform different operations:
  - run: organize the source directory once
  - watch: organize again whenever new episodes arrive
  - runs: list recorded runs from the audit log
  - undo: remove the files a recorded run copied
  - config: create or validate a configuration file`,
		Version:       appVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newRunsCommand())
	rootCmd.AddCommand(newUndoCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
