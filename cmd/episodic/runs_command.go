package main

import (
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"episodic/internal/audit"
	"episodic/internal/config"
	"episodic/internal/output"
)

// auditFlags locate the audit log for commands that only read or undo runs.
type auditFlags struct {
	configPath string
	auditDir   string
}

func (f *auditFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "JSON configuration file")
	cmd.Flags().StringVar(&f.auditDir, "audit-dir", "", "Directory holding the audit log")
}

func (f *auditFlags) logDirectory(cmd *cobra.Command) (string, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		cfg, err = config.Read(f.configPath)
		if err != nil {
			return "", err
		}
	}
	if cmd.Flags().Changed("audit-dir") {
		cfg.Audit.LogDirectory = f.auditDir
	}
	return cfg.Audit.LogDirectory, nil
}

func newRunsCommand() *cobra.Command {
	var flags auditFlags
	var showStats bool
	var top int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs from the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := flags.logDirectory(cmd)
			if err != nil {
				return err
			}
			out := output.New(output.Config{Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()})
			if showStats {
				stats, err := audit.AggregateStats(dir, audit.StatsOptions{TopN: top})
				if err != nil {
					return err
				}
				out.Info("%s", renderStats(stats))
				return nil
			}

			runs, err := audit.NewReader(dir).ListRuns()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				out.Info("No runs recorded in %s", dir)
				return nil
			}
			out.Info("%s", renderRuns(runs))
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&showStats, "stats", false, "Show totals across all runs instead of the run list")
	cmd.Flags().IntVar(&top, "top", 5, "Destinations listed with --stats (0 = all)")
	return cmd
}

func renderStats(stats *audit.AuditStats) string {
	rows := [][]string{
		{"Organize runs", strconv.Itoa(stats.OrganizeRuns)},
		{"Undo runs", strconv.Itoa(stats.UndoRuns)},
		{"Copied", strconv.Itoa(stats.Copied)},
		{"Skipped", strconv.Itoa(stats.Skipped)},
		{"Failed", strconv.Itoa(stats.Failed)},
		{"Removed by undo", strconv.Itoa(stats.Removed)},
		{"Written", humanize.IBytes(uint64(stats.BytesCopied))},
	}
	if !stats.FirstRun.IsZero() {
		rows = append(rows,
			[]string{"First run", stats.FirstRun.Local().Format(time.DateTime)},
			[]string{"Last run", stats.LastRun.Local().Format(time.DateTime)},
		)
	}

	dests := make([]string, 0, len(stats.ByDestination))
	for dest := range stats.ByDestination {
		dests = append(dests, dest)
	}
	sort.Slice(dests, func(i, j int) bool {
		a, b := stats.ByDestination[dests[i]], stats.ByDestination[dests[j]]
		if a != b {
			return a > b
		}
		return dests[i] < dests[j]
	})
	for _, dest := range dests {
		rows = append(rows, []string{dest, strconv.Itoa(stats.ByDestination[dest])})
	}

	return output.RenderTable([]string{"Metric", "Value"}, rows,
		[]output.ColumnAlignment{output.AlignLeft, output.AlignRight})
}

func renderRuns(runs []audit.RunInfo) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		target := ""
		if run.UndoTargetID != nil {
			target = string(*run.UndoTargetID)
		}
		rows = append(rows, []string{
			string(run.RunID),
			run.StartTime.Local().Format(time.DateTime),
			string(run.RunType),
			string(run.Status),
			strconv.Itoa(run.Summary.Copied),
			strconv.Itoa(run.Summary.Skipped),
			strconv.Itoa(run.Summary.Failed),
			strconv.Itoa(run.Summary.Removed),
			firstNonEmpty(run.DestDir, target),
		})
	}
	return output.RenderTable(
		[]string{"Run ID", "Started", "Type", "Status", "Copied", "Skipped", "Failed", "Removed", "Destination / Target"},
		rows,
		[]output.ColumnAlignment{
			output.AlignLeft, output.AlignLeft, output.AlignLeft, output.AlignLeft,
			output.AlignRight, output.AlignRight, output.AlignRight, output.AlignRight,
			output.AlignLeft,
		},
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
