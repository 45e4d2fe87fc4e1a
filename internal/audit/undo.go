package audit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrAlreadyUndone is returned when a completed undo run already targets the run.
	ErrAlreadyUndone = errors.New("run has already been undone")
	// ErrUndoOfUndo is returned when the target is itself an undo run.
	ErrUndoOfUndo = errors.New("cannot undo an UNDO run")
)

// UndoResult contains the result of an undo operation.
type UndoResult struct {
	UndoRunID   RunID       // The run ID of the undo operation itself
	TargetRunID RunID       // The run ID that was undone
	Removed     int         // Copies deleted
	Skipped     int         // Copies left in place
	Failed      int         // Copies that could not be deleted
	Errors      []UndoError // Details of skips and failures
}

// UndoError explains why one copy was not removed.
type UndoError struct {
	DestPath string
	Reason   ReasonCode
	Message  string
}

// Undoer removes the copies made by an earlier run.
type Undoer struct {
	reader     *Reader
	writer     *Writer
	appVersion string
}

// NewUndoer creates an Undoer reading from reader and recording its own run with writer.
func NewUndoer(reader *Reader, writer *Writer, appVersion string) *Undoer {
	return &Undoer{
		reader:     reader,
		writer:     writer,
		appVersion: appVersion,
	}
}

// UndoLatest undoes the most recent organize run.
func (u *Undoer) UndoLatest() (*UndoResult, error) {
	latest, err := u.reader.LatestRun(RunTypeOrganize)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return u.Undo(latest.RunID)
}

// Undo removes every file the target run copied, newest first. A destination is
// removed only while it still matches the identity recorded at copy time, and
// its episode folder is removed once it is empty.
func (u *Undoer) Undo(target RunID) (*UndoResult, error) {
	info, err := u.reader.GetRunInfo(target)
	if err != nil {
		return nil, err
	}
	if info.RunType == RunTypeUndo {
		return nil, ErrUndoOfUndo
	}
	undone, err := u.alreadyUndone(target)
	if err != nil {
		return nil, err
	}
	if undone {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyUndone, target)
	}

	events, err := u.reader.GetRun(target)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for run %s: %w", target, err)
	}
	copies := copyEventsNewestFirst(events)

	undoRunID, err := u.writer.StartRun(RunTypeUndo, map[string]string{
		"appVersion":   u.appVersion,
		"undoTargetId": string(target),
		"destDir":      info.DestDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start undo run: %w", err)
	}

	result := &UndoResult{
		UndoRunID:   undoRunID,
		TargetRunID: target,
	}

	for _, event := range copies {
		u.undoCopy(undoRunID, event, result)
	}

	summary := RunSummary{
		TotalFiles: len(copies),
		Removed:    result.Removed,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
	}
	status := RunStatusCompleted
	if result.Failed > 0 {
		status = RunStatusFailed
	}
	if err := u.writer.EndRun(undoRunID, status, summary); err != nil {
		return result, fmt.Errorf("failed to end undo run: %w", err)
	}

	return result, nil
}

func (u *Undoer) undoCopy(undoRunID RunID, event AuditEvent, result *UndoResult) {
	dest := event.DestinationPath

	skip := func(reason ReasonCode, message string) {
		result.Skipped++
		result.Errors = append(result.Errors, UndoError{DestPath: dest, Reason: reason, Message: message})
		u.writer.WriteEvent(AuditEvent{
			RunID:           undoRunID,
			EventType:       EventUndoSkip,
			Status:          StatusSkipped,
			SourcePath:      event.SourcePath,
			DestinationPath: dest,
			EpisodeIndex:    event.EpisodeIndex,
			ReasonCode:      reason,
		})
	}

	if event.FileIdentity == nil {
		skip(ReasonIdentityMismatch, "no identity recorded for copy")
		return
	}

	match, err := VerifyIdentity(dest, *event.FileIdentity)
	if err != nil {
		u.fail(undoRunID, event, result, "verify", err)
		return
	}
	switch match {
	case IdentityNotFound:
		skip(ReasonDestinationMissing, "destination no longer exists")
		return
	case IdentitySizeMismatch, IdentityHashMismatch:
		skip(ReasonIdentityMismatch, fmt.Sprintf("destination changed since copy (%s)", match))
		return
	}

	if err := os.Remove(dest); err != nil {
		u.fail(undoRunID, event, result, "remove", err)
		return
	}

	result.Removed++
	u.writer.WriteEvent(AuditEvent{
		RunID:           undoRunID,
		EventType:       EventUndoRemove,
		Status:          StatusSuccess,
		SourcePath:      event.SourcePath,
		DestinationPath: dest,
		EpisodeIndex:    event.EpisodeIndex,
		FileIdentity:    event.FileIdentity,
	})

	removeIfEmpty(filepath.Dir(dest))
}

func (u *Undoer) fail(undoRunID RunID, event AuditEvent, result *UndoResult, operation string, err error) {
	result.Failed++
	result.Errors = append(result.Errors, UndoError{
		DestPath: event.DestinationPath,
		Reason:   ReasonRemoveFailed,
		Message:  err.Error(),
	})
	u.writer.WriteEvent(NewErrorEvent(undoRunID, event.SourcePath, event.DestinationPath,
		event.EpisodeIndex, ReasonRemoveFailed, operation, err))
}

// alreadyUndone reports whether a completed undo run targets the run.
func (u *Undoer) alreadyUndone(target RunID) (bool, error) {
	runs, err := u.reader.ListRuns()
	if err != nil {
		return false, err
	}
	for _, run := range runs {
		if run.RunType != RunTypeUndo || run.UndoTargetID == nil || *run.UndoTargetID != target {
			continue
		}
		if run.Status == RunStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

// copyEventsNewestFirst keeps the COPY events, reversing log order.
func copyEventsNewestFirst(events []AuditEvent) []AuditEvent {
	var copies []AuditEvent
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].EventType == EventCopy {
			copies = append(copies, events[i])
		}
	}
	return copies
}

// removeIfEmpty deletes dir when it has no entries left.
func removeIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	os.Remove(dir)
}
