package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAggregateStats_EmptyDirectory(t *testing.T) {
	stats, err := AggregateStats(t.TempDir(), StatsOptions{})
	if err != nil {
		t.Fatalf("AggregateStats failed: %v", err)
	}
	if stats.OrganizeRuns != 0 || stats.UndoRuns != 0 || stats.Copied != 0 || len(stats.ByDestination) != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
	if !stats.FirstRun.IsZero() {
		t.Errorf("expected zero FirstRun, got %v", stats.FirstRun)
	}
}

func TestAggregateStats_OrganizeAndUndo(t *testing.T) {
	logDir := t.TempDir()
	destA := filepath.Join(t.TempDir(), "a")
	destB := filepath.Join(t.TempDir(), "b")
	w := newTestWriter(t, logDir)

	recordCopies(t, w, destA, 3)
	runB, _ := recordCopies(t, w, destB, 2)

	undoer := NewUndoer(NewReader(logDir), w, "test")
	if _, err := undoer.Undo(runB); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	stats, err := AggregateStats(logDir, StatsOptions{})
	if err != nil {
		t.Fatalf("AggregateStats failed: %v", err)
	}
	if stats.OrganizeRuns != 2 || stats.UndoRuns != 1 {
		t.Errorf("runs = %d organize, %d undo", stats.OrganizeRuns, stats.UndoRuns)
	}
	if stats.Copied != 5 || stats.Removed != 2 {
		t.Errorf("copied = %d, removed = %d", stats.Copied, stats.Removed)
	}
	if want := int64(5 * len("episode 1")); stats.BytesCopied != want {
		t.Errorf("BytesCopied = %d, want %d", stats.BytesCopied, want)
	}
	if stats.ByDestination[destA] != 3 || stats.ByDestination[destB] != 2 {
		t.Errorf("ByDestination = %v", stats.ByDestination)
	}
	if stats.LastRun.Before(stats.FirstRun) {
		t.Errorf("LastRun %v before FirstRun %v", stats.LastRun, stats.FirstRun)
	}

	top, err := AggregateStats(logDir, StatsOptions{TopN: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(top.ByDestination) != 1 || top.ByDestination[destA] != 3 {
		t.Errorf("TopN=1 ByDestination = %v", top.ByDestination)
	}
}

func TestAggregateStats_Since(t *testing.T) {
	logDir := t.TempDir()
	w := newTestWriter(t, logDir)
	recordCopies(t, w, filepath.Join(t.TempDir(), "old"), 1)

	future := time.Now().Add(time.Hour)
	stats, err := AggregateStats(logDir, StatsOptions{Since: &future})
	if err != nil {
		t.Fatal(err)
	}
	if stats.OrganizeRuns != 0 || stats.BytesCopied != 0 || len(stats.ByDestination) != 0 {
		t.Errorf("runs before Since were counted: %+v", stats)
	}
}

func TestFilterTopN(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("filterTopN keeps min(n, len) of the largest counts", prop.ForAll(
		func(values []int, n int) bool {
			counts := make(map[string]int, len(values))
			for i, v := range values {
				counts[string(rune('a'+i%26))+string(rune('A'+i/26))] = v
			}
			result := filterTopN(counts, n)

			want := len(counts)
			if n > 0 && n < want {
				want = n
			}
			if len(result) != want {
				return false
			}
			minKept := -1
			for k, v := range result {
				if counts[k] != v {
					return false
				}
				if minKept == -1 || v < minKept {
					minKept = v
				}
			}
			for k, v := range counts {
				if _, kept := result[k]; !kept && v > minKept {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
