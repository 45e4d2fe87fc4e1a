package main

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"episodic/internal/orchestrator"
	"episodic/internal/organizer"
	"episodic/internal/output"
)

// errRunFailed signals that the tally has already been printed and some
// files failed to copy.
var errRunFailed = errors.New("one or more files failed to copy")

func newRunCommand() *cobra.Command {
	var flags batchFlags
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Organize the source directory once",
		Long: `Collect the matching files of the source directory, order them by the
number in their names and copy each into its own episode folder.

Existing destinations are skipped unless --replace is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			logger, closer, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			outCfg := output.DefaultConfig()
			outCfg.Verbose = flags.verbose
			outCfg.Writer = cmd.OutOrStdout()
			outCfg.ErrWriter = cmd.ErrOrStderr()
			out := output.New(outCfg)

			summary, err := orchestrator.Run(cmd.Context(), cfg, orchestrator.Options{
				DryRun:     dryRun,
				AppVersion: appVersion(),
				Logger:     logger,
				Reporter:   out,
			})
			if summary != nil {
				printSummary(out, summary)
			}
			if err != nil {
				return err
			}
			if summary.HasErrors() {
				return errRunFailed
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the planned copies without touching the filesystem")
	return cmd
}

func printSummary(out *output.Output, summary *orchestrator.Summary) {
	if summary.DryRun {
		rows := make([][]string, 0, len(summary.Plan))
		for _, task := range summary.Plan {
			action := "copy"
			if task.Action == organizer.ActionSkip {
				action = "skip (exists)"
			}
			rows = append(rows, []string{
				strconv.Itoa(task.Index),
				task.Source.Name,
				task.Path,
				action,
			})
		}
		out.Info("%s", output.RenderTable(
			[]string{"Episode", "Source", "Destination", "Action"},
			rows,
			[]output.ColumnAlignment{output.AlignRight, output.AlignLeft, output.AlignLeft, output.AlignLeft},
		))
		out.Info("%s", summary.PrintSummary())
		return
	}

	out.Info("%s", output.RenderTally(summary.Tally, summary.BytesCopied, summary.Duration))
	out.Info("%s", summary.PrintSummary())
	if summary.RunID != "" {
		out.Verbose("Run ID: %s", summary.RunID)
	}
	if summary.Interrupted {
		out.Error("Interrupted: %d files were not copied", countInterrupted(summary.Outcomes))
	}
}

func countInterrupted(outcomes []organizer.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Reason == organizer.ReasonInterrupted {
			n++
		}
	}
	return n
}
