package organizer

import (
	"os"

	"episodic/internal/planner"
)

// Action is the decision taken for one assignment before any copy is dispatched.
type Action string

const (
	ActionCopy Action = "COPY"
	ActionSkip Action = "SKIP"
)

// Task is an assignment together with its copy/skip decision.
type Task struct {
	planner.Assignment
	Action Action
}

// Decide resolves every assignment to a copy or a skip. An existing,
// non-directory destination is skipped unless replaceExisting is set; a
// directory in the way is left to fail during the copy.
//
// Decide runs on the caller's goroutine, before any concurrency is introduced,
// so the existence checks never race with the copies themselves.
func Decide(assignments []planner.Assignment, replaceExisting bool) []Task {
	tasks := make([]Task, len(assignments))
	for i, a := range assignments {
		action := ActionCopy
		if !replaceExisting && destinationExists(a.Path) {
			action = ActionSkip
		}
		tasks[i] = Task{Assignment: a, Action: action}
	}
	return tasks
}

func destinationExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Status is the final state of one assignment.
type Status string

const (
	StatusCopied  Status = "COPIED"
	StatusSkipped Status = "SKIPPED"
	StatusFailed  Status = "FAILED"
)

// Reason qualifies a skipped or failed outcome.
type Reason string

const (
	ReasonDestinationExists Reason = "DESTINATION_EXISTS"
	ReasonCopyFailed        Reason = "COPY_FAILED"
	ReasonInterrupted       Reason = "INTERRUPTED"
)

// Outcome records what happened to one assignment.
type Outcome struct {
	Assignment planner.Assignment
	Status     Status
	Reason     Reason
	Err        error
	Bytes      int64
	SHA256     string
}

// Tally counts outcomes by status.
type Tally struct {
	Copied  int
	Skipped int
	Failed  int
}

// Total returns the number of outcomes counted.
func (t Tally) Total() int {
	return t.Copied + t.Skipped + t.Failed
}

// Add counts one outcome.
func (t *Tally) Add(o Outcome) {
	switch o.Status {
	case StatusCopied:
		t.Copied++
	case StatusSkipped:
		t.Skipped++
	case StatusFailed:
		t.Failed++
	}
}

// Result holds every outcome of an engine run, ordered by folder index.
type Result struct {
	Outcomes []Outcome
}

// Tally counts the outcomes of r.
func (r Result) Tally() Tally {
	var t Tally
	for _, o := range r.Outcomes {
		t.Add(o)
	}
	return t
}

// Failures returns the failed outcomes of r.
func (r Result) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// BytesCopied sums the bytes written by copied outcomes.
func (r Result) BytesCopied() int64 {
	var n int64
	for _, o := range r.Outcomes {
		if o.Status == StatusCopied {
			n += o.Bytes
		}
	}
	return n
}
