package audit

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrRunNotFound is returned when the log holds no event for a run ID.
var ErrRunNotFound = errors.New("run not found")

// Reader reads and parses audit events from the log.
type Reader struct {
	logDir string
}

// NewReader creates a new Reader for the given log directory.
func NewReader(logDir string) *Reader {
	return &Reader{logDir: logDir}
}

// ListRuns returns every run in the log, oldest first.
func (r *Reader) ListRuns() ([]RunInfo, error) {
	events, err := r.readAllEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return extractRunInfos(events), nil
}

// GetRun returns all events for a specific run in log order.
func (r *Reader) GetRun(runID RunID) ([]AuditEvent, error) {
	events, err := r.readAllEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	var runEvents []AuditEvent
	for _, event := range events {
		if event.RunID == runID {
			runEvents = append(runEvents, event)
		}
	}
	if len(runEvents) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return runEvents, nil
}

// GetRunInfo returns the summary of one run.
func (r *Reader) GetRunInfo(runID RunID) (*RunInfo, error) {
	events, err := r.GetRun(runID)
	if err != nil {
		return nil, err
	}
	info := buildRunInfo(runID, events)
	return &info, nil
}

// LatestRun returns the most recently started run of the given type.
func (r *Reader) LatestRun(runType RunType) (*RunInfo, error) {
	runs, err := r.ListRuns()
	if err != nil {
		return nil, err
	}
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].RunType == runType {
			return &runs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no %s runs in %s", ErrRunNotFound, runType, r.logDir)
}

// readAllEvents reads the whole log. A missing log reads as empty. A final
// line that does not parse is treated as an interrupted write and dropped; a
// malformed line anywhere else is an error.
func (r *Reader) readAllEvents() ([]AuditEvent, error) {
	file, err := os.Open(filepath.Join(r.logDir, LogFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	const maxScanTokenSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	var (
		events     []AuditEvent
		pendingErr error
		lineNum    int
	)
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if pendingErr != nil {
			return nil, pendingErr
		}
		event, err := UnmarshalJSONLine(line)
		if err != nil {
			pendingErr = fmt.Errorf("failed to parse line %d: %w", lineNum, err)
			continue
		}
		events = append(events, *event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	return events, nil
}

func extractRunInfos(events []AuditEvent) []RunInfo {
	var order []RunID
	runEvents := make(map[RunID][]AuditEvent)
	for _, event := range events {
		if event.RunID == "" {
			continue
		}
		if _, ok := runEvents[event.RunID]; !ok {
			order = append(order, event.RunID)
		}
		runEvents[event.RunID] = append(runEvents[event.RunID], event)
	}

	runs := make([]RunInfo, 0, len(order))
	for _, runID := range order {
		runs = append(runs, buildRunInfo(runID, runEvents[runID]))
	}

	// Runs sharing a start time keep log order.
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartTime.Before(runs[j].StartTime)
	})
	return runs
}

// buildRunInfo constructs a RunInfo from the events of one run. A run without
// RUN_END is reported IN_PROGRESS with a tally counted from its file events.
func buildRunInfo(runID RunID, events []AuditEvent) RunInfo {
	info := RunInfo{
		RunID:   runID,
		Status:  RunStatusInProgress,
		RunType: RunTypeOrganize,
	}

	var counted RunSummary
	ended := false
	for _, event := range events {
		switch event.EventType {
		case EventRunStart:
			info.StartTime = event.Timestamp
			info.AppVersion = event.Metadata["appVersion"]
			info.SourceDir = event.Metadata["sourceDir"]
			info.DestDir = event.Metadata["destDir"]
			if runType, ok := event.Metadata["runType"]; ok {
				info.RunType = RunType(runType)
			}
			if target, ok := event.Metadata["undoTargetId"]; ok {
				targetID := RunID(target)
				info.UndoTargetID = &targetID
			}
		case EventRunEnd:
			ended = true
			endTime := event.Timestamp
			info.EndTime = &endTime
			if status, ok := event.Metadata["status"]; ok {
				info.Status = RunStatus(status)
			}
			info.Summary = parseSummaryMetadata(event.Metadata)
		case EventCopy:
			counted.TotalFiles++
			counted.Copied++
		case EventSkip, EventUndoSkip:
			counted.TotalFiles++
			counted.Skipped++
		case EventError:
			counted.TotalFiles++
			counted.Failed++
		case EventUndoRemove:
			counted.TotalFiles++
			counted.Removed++
		}
	}

	if !ended {
		info.Summary = counted
	}
	return info
}
