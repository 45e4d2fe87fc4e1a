package orchestrator

import (
	"log/slog"

	"episodic/internal/audit"
	"episodic/internal/organizer"
)

// auditObserver appends one audit event per outcome. Completed is only called
// from the engine's collector, so events are written one at a time.
type auditObserver struct {
	writer  *audit.Writer
	runID   audit.RunID
	onError func(error)
	err     error
}

func (a *auditObserver) Dispatched(int, int) {}

func (a *auditObserver) Completed(o organizer.Outcome) {
	if a.err != nil {
		return
	}
	if err := a.writer.WriteEvent(outcomeEvent(a.runID, o)); err != nil {
		a.err = err
		if a.onError != nil {
			a.onError(err)
		}
	}
}

// outcomeEvent converts a copy outcome into its audit event.
func outcomeEvent(runID audit.RunID, o organizer.Outcome) audit.AuditEvent {
	src := o.Assignment.Source.FullPath
	dst := o.Assignment.Path
	index := o.Assignment.Index

	switch o.Status {
	case organizer.StatusCopied:
		return audit.NewCopyEvent(runID, src, dst, index, audit.FileIdentity{
			ContentHash: o.SHA256,
			Size:        o.Bytes,
		})
	case organizer.StatusSkipped:
		return audit.NewSkipEvent(runID, src, dst, index, audit.ReasonCode(o.Reason))
	default:
		return audit.NewErrorEvent(runID, src, dst, index, audit.ReasonCode(o.Reason), "copy", o.Err)
	}
}

// logObserver writes one structured log record per outcome.
type logObserver struct {
	logger *slog.Logger
}

func (l logObserver) Dispatched(int, int) {}

func (l logObserver) Completed(o organizer.Outcome) {
	attrs := []any{
		"source", o.Assignment.Source.FullPath,
		"destination", o.Assignment.Path,
		"index", o.Assignment.Index,
	}
	switch o.Status {
	case organizer.StatusCopied:
		l.logger.Debug("copied", append(attrs, "bytes", o.Bytes)...)
	case organizer.StatusSkipped:
		l.logger.Info("skipped", append(attrs, "reason", string(o.Reason))...)
	case organizer.StatusFailed:
		l.logger.Error("copy failed", append(attrs, "reason", string(o.Reason), "error", o.Err)...)
	}
}
