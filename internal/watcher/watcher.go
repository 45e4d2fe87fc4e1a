// Package watcher re-runs the batch whenever new episodes land in the source directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"episodic/internal/logging"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	Extension       string        // Only files with this extension trigger a batch
	Debounce        time.Duration // Quiet period before a batch runs (default: 2s)
	StableThreshold time.Duration // File size stability threshold (default: 1s)
	IgnorePatterns  []string      // Glob patterns to ignore (e.g., "*.tmp", "*.part")
	RunOnStart      bool          // Run one batch before the first event
}

// DefaultWatchConfig returns a WatchConfig with sensible defaults.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		Extension:       "mp4",
		Debounce:        2 * time.Second,
		StableThreshold: time.Second,
		IgnorePatterns:  DefaultIgnorePatterns(),
		RunOnStart:      true,
	}
}

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	Batches  int // Batches run
	Failures int // Batches that returned an error
	Duration time.Duration
}

// BatchHandler runs one batch over the whole source directory.
type BatchHandler func(ctx context.Context) error

// Watcher monitors the source directory and runs the batch handler after
// matching files appear and settle.
type Watcher struct {
	config    *WatchConfig
	handler   BatchHandler
	logger    *slog.Logger
	filter    *FileFilter
	stability *StabilityChecker
	debouncer *Debouncer

	mu      sync.Mutex
	ready   map[string]struct{}
	signal  chan struct{}
	summary WatchSummary
}

// New creates a new Watcher with the given configuration.
// If config is nil, default configuration is used.
func New(config *WatchConfig, handler BatchHandler, logger *slog.Logger) *Watcher {
	if config == nil {
		config = DefaultWatchConfig()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Watcher{
		config:    config,
		handler:   handler,
		logger:    logger,
		filter:    NewFileFilter(config.Extension, config.IgnorePatterns),
		stability: NewStabilityChecker(config.StableThreshold),
		ready:     make(map[string]struct{}),
		signal:    make(chan struct{}, 1),
	}
	w.debouncer = NewDebouncer(config.Debounce, w.enqueue)
	return w
}

// Run watches dir until ctx is cancelled and returns a summary of the session.
// A handler error is logged and counted; watching continues.
func (w *Watcher) Run(ctx context.Context, dir string) (*WatchSummary, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	defer fsWatcher.Close()
	if err := fsWatcher.Add(absDir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", absDir, err)
	}

	start := time.Now()
	w.logger.Info("watching for new episodes", "directory", absDir, "extension", w.config.Extension)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.processEvents(ctx, fsWatcher)
	}()

	if w.config.RunOnStart {
		w.runBatch(ctx)
	}

	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
		case <-w.signal:
			paths := w.takeReady()
			if w.waitStable(ctx, paths) {
				w.runBatch(ctx)
			}
		}
	}

	w.debouncer.CancelAll()
	wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	summary := w.summary
	summary.Duration = time.Since(start)
	return &summary, nil
}

// processEvents feeds accepted file events into the debouncer until ctx is done.
func (w *Watcher) processEvents(ctx context.Context, fsWatcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.filter.Accept(event.Name) {
				continue
			}
			w.logger.Debug("source changed", "path", event.Name, "op", event.Op.String())
			w.debouncer.Add(event.Name)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// enqueue receives a debounced set of paths and wakes the batch loop.
func (w *Watcher) enqueue(paths []string) {
	w.mu.Lock()
	for _, p := range paths {
		w.ready[p] = struct{}{}
	}
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *Watcher) takeReady() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.ready))
	for p := range w.ready {
		paths = append(paths, p)
	}
	w.ready = make(map[string]struct{})
	return paths
}

// waitStable waits for every path to stop growing. Paths that vanished, such
// as the old name of a rename, are dropped. It reports whether a batch
// should run.
func (w *Watcher) waitStable(ctx context.Context, paths []string) bool {
	stable := 0
	for _, p := range paths {
		err := w.stability.WaitForStable(ctx, p)
		switch {
		case err == nil:
			stable++
		case errors.Is(err, ErrFileNotFound):
			w.logger.Debug("changed file is gone", "path", p)
		case ctx.Err() != nil:
			return false
		default:
			w.logger.Warn("file did not settle; running batch anyway", "path", p, "error", err)
			stable++
		}
	}
	return stable > 0
}

func (w *Watcher) runBatch(ctx context.Context) {
	if w.handler == nil {
		return
	}
	err := w.handler(ctx)

	w.mu.Lock()
	w.summary.Batches++
	if err != nil {
		w.summary.Failures++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("batch failed", "error", err)
	}
}

// Config returns the current watcher configuration.
func (w *Watcher) Config() *WatchConfig {
	return w.config
}
