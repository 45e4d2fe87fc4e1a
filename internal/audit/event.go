package audit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// MarshalJSONLine marshals an AuditEvent to a JSON line (no trailing newline).
func (e AuditEvent) MarshalJSONLine() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalJSONLine unmarshals a JSON line into an AuditEvent.
func UnmarshalJSONLine(data []byte) (*AuditEvent, error) {
	var e AuditEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.EventType == "" {
		return nil, fmt.Errorf("event without eventType")
	}
	return &e, nil
}

// NewCopyEvent records a successful copy together with the identity of the written file.
func NewCopyEvent(runID RunID, source, destination string, index int, identity FileIdentity) AuditEvent {
	return AuditEvent{
		Timestamp:       time.Now().UTC(),
		RunID:           runID,
		EventType:       EventCopy,
		Status:          StatusSuccess,
		SourcePath:      source,
		DestinationPath: destination,
		EpisodeIndex:    index,
		FileIdentity:    &identity,
	}
}

// NewSkipEvent records an assignment that was left untouched.
func NewSkipEvent(runID RunID, source, destination string, index int, reason ReasonCode) AuditEvent {
	return AuditEvent{
		Timestamp:       time.Now().UTC(),
		RunID:           runID,
		EventType:       EventSkip,
		Status:          StatusSkipped,
		SourcePath:      source,
		DestinationPath: destination,
		EpisodeIndex:    index,
		ReasonCode:      reason,
	}
}

// NewErrorEvent records a failed operation on one file.
func NewErrorEvent(runID RunID, source, destination string, index int, reason ReasonCode, operation string, err error) AuditEvent {
	details := &ErrorDetails{Operation: operation}
	if err != nil {
		details.ErrorType = fmt.Sprintf("%T", err)
		details.ErrorMessage = err.Error()
	}
	return AuditEvent{
		Timestamp:       time.Now().UTC(),
		RunID:           runID,
		EventType:       EventError,
		Status:          StatusFailure,
		SourcePath:      source,
		DestinationPath: destination,
		EpisodeIndex:    index,
		ReasonCode:      reason,
		ErrorDetails:    details,
	}
}

func summaryMetadata(status RunStatus, summary RunSummary) map[string]string {
	return map[string]string{
		"status":     string(status),
		"totalFiles": strconv.Itoa(summary.TotalFiles),
		"copied":     strconv.Itoa(summary.Copied),
		"skipped":    strconv.Itoa(summary.Skipped),
		"failed":     strconv.Itoa(summary.Failed),
		"removed":    strconv.Itoa(summary.Removed),
	}
}

func parseSummaryMetadata(metadata map[string]string) RunSummary {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(metadata[key])
		return n
	}
	return RunSummary{
		TotalFiles: atoi("totalFiles"),
		Copied:     atoi("copied"),
		Skipped:    atoi("skipped"),
		Failed:     atoi("failed"),
		Removed:    atoi("removed"),
	}
}
