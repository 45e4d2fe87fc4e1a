package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"episodic/internal/audit"
	"episodic/internal/output"
)

func newUndoCommand() *cobra.Command {
	var flags auditFlags

	cmd := &cobra.Command{
		Use:   "undo [run-id]",
		Short: "Remove the files a recorded run copied",
		Long: `Remove the files copied by the given run, or by the most recent organize
run when no run ID is given. A file is only removed while its content still
matches what the run recorded; changed or missing files are left alone.
Episode folders left empty are removed as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := flags.logDirectory(cmd)
			if err != nil {
				return err
			}

			writer, err := audit.NewWriter(audit.AuditConfig{Enabled: true, LogDirectory: dir})
			if err != nil {
				return fmt.Errorf("open audit log: %w", err)
			}
			defer writer.Close()

			undoer := audit.NewUndoer(audit.NewReader(dir), writer, appVersion())
			var result *audit.UndoResult
			if len(args) == 1 {
				result, err = undoer.Undo(audit.RunID(args[0]))
			} else {
				result, err = undoer.UndoLatest()
			}
			if err != nil {
				return err
			}

			out := output.New(output.Config{Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()})
			for _, e := range result.Errors {
				out.Error("%s: %s (%s)", e.DestPath, e.Message, e.Reason)
			}
			out.Info("Undid run %s: %d removed, %d skipped, %d failed",
				result.TargetRunID, result.Removed, result.Skipped, result.Failed)
			if result.Failed > 0 {
				return fmt.Errorf("%d files could not be removed", result.Failed)
			}
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}
