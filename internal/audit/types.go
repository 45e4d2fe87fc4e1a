// Package audit provides the outcome log of episodic runs.
// It implements an append-only JSON Lines event log recording every copy, skip
// and failure, which also makes a run reversible.
package audit

import "time"

// RunID is a unique identifier for each program execution (UUID v4).
type RunID string

// EventType represents the type of audit event.
type EventType string

const (
	// Run lifecycle events
	EventRunStart EventType = "RUN_START"
	EventRunEnd   EventType = "RUN_END"

	// File outcome events
	EventCopy  EventType = "COPY"
	EventSkip  EventType = "SKIP"
	EventError EventType = "ERROR"

	// Undo events
	EventUndoRemove EventType = "UNDO_REMOVE"
	EventUndoSkip   EventType = "UNDO_SKIP"

	// System events
	EventLogInitialized EventType = "LOG_INITIALIZED"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "SUCCESS"
	StatusFailure OperationStatus = "FAILURE"
	StatusSkipped OperationStatus = "SKIPPED"
)

// ReasonCode explains a skip or a failure.
type ReasonCode string

const (
	ReasonDestinationExists  ReasonCode = "DESTINATION_EXISTS"
	ReasonCopyFailed         ReasonCode = "COPY_FAILED"
	ReasonInterrupted        ReasonCode = "INTERRUPTED"
	ReasonIdentityMismatch   ReasonCode = "IDENTITY_MISMATCH"
	ReasonDestinationMissing ReasonCode = "DESTINATION_MISSING"
	ReasonRemoveFailed       ReasonCode = "REMOVE_FAILED"
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusInProgress  RunStatus = "IN_PROGRESS"
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusFailed      RunStatus = "FAILED"
	RunStatusInterrupted RunStatus = "INTERRUPTED"
)

// RunType represents the type of run.
type RunType string

const (
	RunTypeOrganize RunType = "ORGANIZE"
	RunTypeUndo     RunType = "UNDO"
)

// FileIdentity captures the content of a copied destination file.
type FileIdentity struct {
	ContentHash string `json:"contentHash"` // SHA-256 hex string
	Size        int64  `json:"size"`
}

// ErrorDetails contains detailed information about an error.
type ErrorDetails struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
	Operation    string `json:"operation"`
}

// AuditEvent represents a single audit record for a file outcome or system event.
type AuditEvent struct {
	Timestamp       time.Time         `json:"timestamp"`
	RunID           RunID             `json:"runId,omitempty"`
	EventType       EventType         `json:"eventType"`
	Status          OperationStatus   `json:"status"`
	SourcePath      string            `json:"sourcePath,omitempty"`
	DestinationPath string            `json:"destinationPath,omitempty"`
	EpisodeIndex    int               `json:"episodeIndex,omitempty"`
	ReasonCode      ReasonCode        `json:"reasonCode,omitempty"`
	FileIdentity    *FileIdentity     `json:"fileIdentity,omitempty"`
	ErrorDetails    *ErrorDetails     `json:"errorDetails,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// RunSummary contains the tally of a run. For undo runs Removed counts the
// deleted files and Skipped the ones left in place.
type RunSummary struct {
	TotalFiles int `json:"totalFiles"`
	Copied     int `json:"copied"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	Removed    int `json:"removed"`
}

// RunInfo contains metadata and summary for a run.
type RunInfo struct {
	RunID        RunID      `json:"runId"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Status       RunStatus  `json:"status"`
	RunType      RunType    `json:"runType"`
	AppVersion   string     `json:"appVersion"`
	SourceDir    string     `json:"sourceDir,omitempty"`
	DestDir      string     `json:"destDir,omitempty"`
	Summary      RunSummary `json:"summary"`
	UndoTargetID *RunID     `json:"undoTargetId,omitempty"`
}

// AuditConfig holds configuration for the audit log.
type AuditConfig struct {
	Enabled      bool   `json:"enabled"`
	LogDirectory string `json:"logDirectory"`
}

// DefaultAuditConfig returns an AuditConfig with sensible defaults.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:      true,
		LogDirectory: ".episodic/audit",
	}
}
