package audit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// recordCopies writes count destination files and logs a completed organize run
// that copied them. It returns the run ID and the destination paths.
func recordCopies(t *testing.T, w *Writer, dest string, count int) (RunID, []string) {
	t.Helper()
	runID, err := w.StartRun(RunTypeOrganize, map[string]string{"destDir": dest})
	if err != nil {
		t.Fatal(err)
	}
	var paths []string
	for i := 1; i <= count; i++ {
		dir := filepath.Join(dest, fmt.Sprintf("episode_%d", i))
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, "Show.mp4")
		if err := os.WriteFile(path, []byte(fmt.Sprintf("episode %d", i)), 0644); err != nil {
			t.Fatal(err)
		}
		identity, err := CaptureIdentity(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.WriteEvent(NewCopyEvent(runID, fmt.Sprintf("/src/%d.mp4", i), path, i, *identity)); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	if err := w.EndRun(runID, RunStatusCompleted, RunSummary{TotalFiles: count, Copied: count}); err != nil {
		t.Fatal(err)
	}
	return runID, paths
}

func TestUndoRemovesCopiesAndEmptyFolders(t *testing.T) {
	root := t.TempDir()
	logDir := filepath.Join(root, "audit")
	dest := filepath.Join(root, "dest")
	w := newTestWriter(t, logDir)
	runID, paths := recordCopies(t, w, dest, 3)

	// An unrelated file keeps its folder alive.
	keeper := filepath.Join(filepath.Dir(paths[2]), "notes.txt")
	if err := os.WriteFile(keeper, []byte("mine"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := NewUndoer(NewReader(logDir), w, "test").Undo(runID)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if result.Removed != 3 || result.Skipped != 0 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists", p)
		}
	}
	if _, err := os.Stat(filepath.Dir(paths[0])); !os.IsNotExist(err) {
		t.Errorf("empty episode folder was not removed")
	}
	if _, err := os.Stat(keeper); err != nil {
		t.Errorf("unrelated file was touched: %v", err)
	}

	info, err := NewReader(logDir).GetRunInfo(result.UndoRunID)
	if err != nil {
		t.Fatal(err)
	}
	if info.RunType != RunTypeUndo || info.UndoTargetID == nil || *info.UndoTargetID != runID {
		t.Errorf("undo run not recorded: %+v", info)
	}
	if info.Summary.Removed != 3 {
		t.Errorf("undo summary = %+v", info.Summary)
	}
}

func TestUndoSkipsChangedAndMissingFiles(t *testing.T) {
	root := t.TempDir()
	logDir := filepath.Join(root, "audit")
	w := newTestWriter(t, logDir)
	runID, paths := recordCopies(t, w, filepath.Join(root, "dest"), 3)

	if err := os.WriteFile(paths[0], []byte("edited by the user"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(paths[1], []byte("episode X"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(paths[2]); err != nil {
		t.Fatal(err)
	}

	result, err := NewUndoer(NewReader(logDir), w, "test").Undo(runID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Removed != 0 || result.Skipped != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	reasons := make(map[string]ReasonCode)
	for _, e := range result.Errors {
		reasons[e.DestPath] = e.Reason
	}
	if reasons[paths[0]] != ReasonIdentityMismatch || reasons[paths[1]] != ReasonIdentityMismatch {
		t.Errorf("changed files not reported as mismatches: %v", reasons)
	}
	if reasons[paths[2]] != ReasonDestinationMissing {
		t.Errorf("missing file reason = %s", reasons[paths[2]])
	}
	if _, err := os.Stat(paths[0]); err != nil {
		t.Errorf("changed file was removed")
	}
}

func TestUndoTwiceIsRefused(t *testing.T) {
	root := t.TempDir()
	logDir := filepath.Join(root, "audit")
	w := newTestWriter(t, logDir)
	runID, _ := recordCopies(t, w, filepath.Join(root, "dest"), 1)

	undoer := NewUndoer(NewReader(logDir), w, "test")
	first, err := undoer.Undo(runID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := undoer.Undo(runID); !errors.Is(err, ErrAlreadyUndone) {
		t.Errorf("second undo error = %v", err)
	}
	if _, err := undoer.Undo(first.UndoRunID); !errors.Is(err, ErrUndoOfUndo) {
		t.Errorf("undo of undo error = %v", err)
	}
}

func TestUndoLatestPicksNewestOrganizeRun(t *testing.T) {
	root := t.TempDir()
	logDir := filepath.Join(root, "audit")
	w := newTestWriter(t, logDir)
	_, older := recordCopies(t, w, filepath.Join(root, "a"), 1)
	newest, newer := recordCopies(t, w, filepath.Join(root, "b"), 1)

	result, err := NewUndoer(NewReader(logDir), w, "test").UndoLatest()
	if err != nil {
		t.Fatal(err)
	}
	if result.TargetRunID != newest {
		t.Errorf("undid %s, want %s", result.TargetRunID, newest)
	}
	if _, err := os.Stat(newer[0]); !os.IsNotExist(err) {
		t.Error("newest run's copy still present")
	}
	if _, err := os.Stat(older[0]); err != nil {
		t.Error("older run's copy was removed")
	}
}

func TestUndoUnknownRun(t *testing.T) {
	logDir := t.TempDir()
	w := newTestWriter(t, logDir)
	if _, err := NewUndoer(NewReader(logDir), w, "test").Undo("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestUndoRemovesExactlyUnchangedCopies(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25

	properties := gopter.NewProperties(parameters)

	properties.Property("only copies that still match are removed", prop.ForAll(
		func(changed []bool) bool {
			root := t.TempDir()
			logDir := filepath.Join(root, "audit")
			w := newTestWriter(t, logDir)
			runID, paths := recordCopies(t, w, filepath.Join(root, "dest"), len(changed))
			for i, c := range changed {
				if c {
					os.WriteFile(paths[i], []byte("modified content"), 0644)
				}
			}

			result, err := NewUndoer(NewReader(logDir), w, "test").Undo(runID)
			if err != nil {
				t.Logf("Undo: %v", err)
				return false
			}
			removed := 0
			for i, c := range changed {
				_, statErr := os.Stat(paths[i])
				if c && statErr != nil {
					t.Logf("changed copy %s was removed", paths[i])
					return false
				}
				if !c {
					if !os.IsNotExist(statErr) {
						t.Logf("unchanged copy %s was kept", paths[i])
						return false
					}
					removed++
				}
			}
			return result.Removed == removed && result.Skipped == len(changed)-removed
		},
		gen.SliceOfN(6, gen.Bool()),
	))

	properties.TestingRun(t)
}
