// Package orchestrator coordinates the episode organization workflow.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"episodic/internal/audit"
	"episodic/internal/config"
	"episodic/internal/logging"
	"episodic/internal/organizer"
	"episodic/internal/planner"
	"episodic/internal/scanner"
	"episodic/internal/sortkey"
)

// LockFileName is the lock taken in the audit log directory while copying.
const LockFileName = "run.lock"

// ErrLocked is returned when another run holds the state lock.
var ErrLocked = errors.New("another episodic run is in progress")

// Reporter shows progress and per-file outcomes to the user.
type Reporter interface {
	organizer.Observer
	StartProgress(total int)
	EndProgress()
}

// Options configures one batch run.
type Options struct {
	// DryRun plans the batch and reports it without touching the filesystem.
	DryRun     bool
	AppVersion string
	Logger     *slog.Logger
	Reporter   Reporter
}

// Summary represents the overall results of a batch run.
type Summary struct {
	RunID       audit.RunID // empty for dry runs and when the audit log is disabled
	DryRun      bool
	Plan        []organizer.Task
	Outcomes    []organizer.Outcome
	Tally       organizer.Tally
	BytesCopied int64
	Duration    time.Duration
	Interrupted bool
}

// HasErrors returns true if any assignment failed.
func (s *Summary) HasErrors() bool {
	return s.Tally.Failed > 0
}

// PrintSummary returns a formatted summary string.
func (s *Summary) PrintSummary() string {
	if s.DryRun {
		copies := 0
		for _, t := range s.Plan {
			if t.Action == organizer.ActionCopy {
				copies++
			}
		}
		return fmt.Sprintf("Dry run: %d files planned, %d to copy, %d to skip",
			len(s.Plan), copies, len(s.Plan)-copies)
	}
	return fmt.Sprintf("Processed %d files: %d copied, %d skipped, %d failed",
		s.Tally.Total(), s.Tally.Copied, s.Tally.Skipped, s.Tally.Failed)
}

// Plan collects, sorts and assigns the source files and decides which
// destinations would be copied or skipped. It reads the filesystem only.
func Plan(cfg *config.Configuration) ([]planner.Assignment, []organizer.Task, error) {
	files, err := scanner.Collect(cfg.SourceDir, cfg.Extension)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to collect files: %w", err)
	}

	ranked, err := sortkey.Sort(files, cfg.DigitLength)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sort files: %w", err)
	}

	assignments := planner.Assign(ranked, cfg.DestDir, cfg.NewName, cfg.StartIndex)
	return assignments, organizer.Decide(assignments, cfg.ReplaceExisting), nil
}

// Run executes one batch: it collects and orders the source files, creates
// the episode folders and copies every file into its folder. Pre-flight
// failures abort before any copy and are returned as errors; per-file copy
// failures are reported in the Summary.
func Run(ctx context.Context, cfg *config.Configuration, opts Options) (*Summary, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	assignments, tasks, err := Plan(cfg)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		logger.Info("dry run planned", "files", len(tasks))
		return &Summary{
			DryRun:   true,
			Plan:     tasks,
			Duration: time.Since(start),
		}, nil
	}

	unlock, err := acquireLock(cfg)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := planner.Prepare(assignments); err != nil {
		return nil, fmt.Errorf("failed to prepare destination: %w", err)
	}

	// Existence is decided after the folders are created and the lock is held.
	tasks = organizer.Decide(assignments, cfg.ReplaceExisting)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	observers := organizer.Observers{logObserver{logger: logger}}
	if opts.Reporter != nil {
		observers = append(observers, opts.Reporter)
	}

	var (
		writer   *audit.Writer
		runID    audit.RunID
		recorder *auditObserver
	)
	if cfg.Audit.Enabled {
		writer, err = audit.NewWriter(cfg.Audit)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		defer writer.Close()

		runID, err = writer.StartRun(audit.RunTypeOrganize, map[string]string{
			"appVersion": opts.AppVersion,
			"sourceDir":  cfg.SourceDir,
			"destDir":    cfg.DestDir,
			"newName":    cfg.NewName,
			"threads":    strconv.Itoa(cfg.Threads),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start audit run: %w", err)
		}
		recorder = &auditObserver{writer: writer, runID: runID, onError: func(err error) {
			logger.Error("audit log write failed; stopping run", "error", err)
			cancel()
		}}
		observers = append(observers, recorder)
	}

	logger.Info("run started",
		"run_id", string(runID),
		"files", len(tasks),
		"threads", cfg.Threads,
		"destination", cfg.DestDir,
	)

	engine := organizer.NewEngine(organizer.Options{Threads: cfg.Threads, Observer: observers})
	if opts.Reporter != nil {
		opts.Reporter.StartProgress(len(tasks))
	}
	result := engine.Run(runCtx, tasks)
	if opts.Reporter != nil {
		opts.Reporter.EndProgress()
	}

	summary := &Summary{
		RunID:       runID,
		Plan:        tasks,
		Outcomes:    result.Outcomes,
		Tally:       result.Tally(),
		BytesCopied: result.BytesCopied(),
		Duration:    time.Since(start),
		Interrupted: ctx.Err() != nil,
	}

	logger.Info("run finished",
		"run_id", string(runID),
		"copied", summary.Tally.Copied,
		"skipped", summary.Tally.Skipped,
		"failed", summary.Tally.Failed,
		"duration", summary.Duration,
	)

	if writer == nil {
		return summary, nil
	}

	status := audit.RunStatusCompleted
	switch {
	case summary.Interrupted:
		status = audit.RunStatusInterrupted
	case summary.Tally.Failed > 0 || recorder.err != nil:
		status = audit.RunStatusFailed
	}
	endErr := writer.EndRun(runID, status, audit.RunSummary{
		TotalFiles: summary.Tally.Total(),
		Copied:     summary.Tally.Copied,
		Skipped:    summary.Tally.Skipped,
		Failed:     summary.Tally.Failed,
	})

	if recorder.err != nil {
		return summary, fmt.Errorf("audit log write failed: %w", recorder.err)
	}
	if endErr != nil {
		return summary, fmt.Errorf("failed to end audit run: %w", endErr)
	}
	return summary, nil
}

// acquireLock takes the non-blocking run lock in the audit log directory.
// No lock is taken when no log directory is configured.
func acquireLock(cfg *config.Configuration) (func(), error) {
	dir := cfg.Audit.LogDirectory
	if dir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, lock.Path())
	}
	return func() { lock.Unlock() }, nil
}
