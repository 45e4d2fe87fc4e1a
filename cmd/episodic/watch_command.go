package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"episodic/internal/orchestrator"
	"episodic/internal/output"
	"episodic/internal/scanner"
	"episodic/internal/watcher"
)

func newWatchCommand() *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Organize again whenever new episodes arrive",
		Long: `Run the batch once, then watch the source directory and run it again each
time new matching files have been written and have stopped growing.

Destinations that already exist are skipped unless --replace is given.
Press Ctrl+C to stop.`,
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

			handler := func(ctx context.Context) error {
				summary, err := orchestrator.Run(ctx, cfg, orchestrator.Options{
					AppVersion: appVersion(),
					Logger:     logger,
					Reporter:   out,
				})
				if scanner.IsNoInput(err) {
					logger.Info("no episodes to organize yet", "source", cfg.SourceDir)
					return nil
				}
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
			}

			w := watcher.New(cfg.WatcherConfig(), handler, logger)
			out.Info("Watching %s for new .%s files (Ctrl+C to stop)", cfg.SourceDir, trimDot(scanner.NormalizeExtension(cfg.Extension)))
			summary, err := w.Run(cmd.Context(), cfg.SourceDir)
			if err != nil {
				return fmt.Errorf("watch %s: %w", cfg.SourceDir, err)
			}
			out.Info("Stopped after %d batches (%d failed) in %s",
				summary.Batches, summary.Failures, output.FormatDuration(summary.Duration))
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVar(&flags.debounceMs, "debounce", 2000, "Quiet period in milliseconds before a batch runs")
	return cmd
}

func trimDot(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}
