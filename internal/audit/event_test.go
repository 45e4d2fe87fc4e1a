package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEventJSONLinePreservesFields(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("copy events survive a JSON line", prop.ForAll(
		func(src, dst string, index int, size int64) bool {
			event := NewCopyEvent("run-1", src, dst, index, FileIdentity{ContentHash: "ff", Size: size})
			line, err := event.MarshalJSONLine()
			if err != nil {
				return false
			}
			back, err := UnmarshalJSONLine(line)
			if err != nil {
				t.Logf("UnmarshalJSONLine: %v", err)
				return false
			}
			return back.SourcePath == src &&
				back.DestinationPath == dst &&
				back.EpisodeIndex == index &&
				back.FileIdentity != nil && *back.FileIdentity == *event.FileIdentity &&
				back.Timestamp.Equal(event.Timestamp)
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.IntRange(0, 100000),
		gen.Int64Range(0, 1<<40),
	))

	properties.TestingRun(t)
}

func TestUnmarshalRejectsEventWithoutType(t *testing.T) {
	if _, err := UnmarshalJSONLine([]byte(`{"timestamp":"2024-01-01T00:00:00Z"}`)); err == nil {
		t.Error("expected an error for a missing eventType")
	}
	if _, err := UnmarshalJSONLine([]byte(`{"eventType":`)); err == nil {
		t.Error("expected an error for truncated JSON")
	}
}

func TestNewErrorEventDetails(t *testing.T) {
	event := NewErrorEvent("r", "/a", "/b", 3, ReasonCopyFailed, "copy", errors.New("disk full"))
	if event.EventType != EventError || event.Status != StatusFailure || event.ReasonCode != ReasonCopyFailed {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.ErrorDetails == nil || event.ErrorDetails.ErrorMessage != "disk full" || event.ErrorDetails.Operation != "copy" {
		t.Errorf("unexpected details: %+v", event.ErrorDetails)
	}
	if time.Since(event.Timestamp) > time.Minute {
		t.Errorf("timestamp not current: %v", event.Timestamp)
	}
}

func TestSummaryMetadataRoundTrip(t *testing.T) {
	summary := RunSummary{TotalFiles: 9, Copied: 5, Skipped: 2, Failed: 1, Removed: 1}
	meta := summaryMetadata(RunStatusFailed, summary)
	if meta["status"] != string(RunStatusFailed) {
		t.Errorf("status = %s", meta["status"])
	}
	if got := parseSummaryMetadata(meta); got != summary {
		t.Errorf("parseSummaryMetadata = %+v, want %+v", got, summary)
	}
}
