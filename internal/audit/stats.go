package audit

import (
	"fmt"
	"sort"
	"time"
)

// AuditStats contains aggregate metrics across all recorded runs.
type AuditStats struct {
	OrganizeRuns  int            // Number of organize runs
	UndoRuns      int            // Number of undo runs
	Copied        int            // Files copied across organize runs
	Skipped       int            // Files skipped across organize runs
	Failed        int            // Files that failed across organize runs
	Removed       int            // Copies removed by undo runs
	BytesCopied   int64          // Sum of the recorded sizes of copied files
	ByDestination map[string]int // Files copied per destination directory (top N)
	FirstRun      time.Time      // Earliest run timestamp
	LastRun       time.Time      // Most recent run timestamp
}

// StatsOptions configures stats aggregation.
type StatsOptions struct {
	Since *time.Time // Filter to runs started at or after this time
	TopN  int        // Number of destinations to keep (0 = all)
}

// AggregateStats computes metrics across every run in the log of logDir.
func AggregateStats(logDir string, opts StatsOptions) (*AuditStats, error) {
	reader := NewReader(logDir)

	runs, err := reader.ListRuns()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	stats := &AuditStats{}
	included := make(map[RunID]RunInfo, len(runs))
	for _, run := range runs {
		if opts.Since != nil && run.StartTime.Before(*opts.Since) {
			continue
		}
		included[run.RunID] = run

		if run.RunType == RunTypeUndo {
			stats.UndoRuns++
			stats.Removed += run.Summary.Removed
		} else {
			stats.OrganizeRuns++
			stats.Copied += run.Summary.Copied
			stats.Skipped += run.Summary.Skipped
			stats.Failed += run.Summary.Failed
		}

		if stats.FirstRun.IsZero() || run.StartTime.Before(stats.FirstRun) {
			stats.FirstRun = run.StartTime
		}
		if stats.LastRun.IsZero() || run.StartTime.After(stats.LastRun) {
			stats.LastRun = run.StartTime
		}
	}

	events, err := reader.readAllEvents()
	if err != nil {
		return nil, err
	}

	byDestination := make(map[string]int)
	for _, event := range events {
		if event.EventType != EventCopy || event.Status != StatusSuccess {
			continue
		}
		run, ok := included[event.RunID]
		if !ok {
			continue
		}
		if event.FileIdentity != nil {
			stats.BytesCopied += event.FileIdentity.Size
		}
		if run.DestDir != "" {
			byDestination[run.DestDir]++
		}
	}
	stats.ByDestination = filterTopN(byDestination, opts.TopN)

	return stats, nil
}

// filterTopN returns the top N entries from a map by value.
// If n <= 0, returns all entries.
func filterTopN(counts map[string]int, n int) map[string]int {
	if n <= 0 || len(counts) <= n {
		result := make(map[string]int, len(counts))
		for k, v := range counts {
			result[k] = v
		}
		return result
	}

	type kv struct {
		key   string
		value int
	}
	sorted := make([]kv, 0, len(counts))
	for k, v := range counts {
		sorted = append(sorted, kv{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].value != sorted[j].value {
			return sorted[i].value > sorted[j].value
		}
		return sorted[i].key < sorted[j].key
	})

	result := make(map[string]int, n)
	for i := 0; i < n; i++ {
		result[sorted[i].key] = sorted[i].value
	}
	return result
}
