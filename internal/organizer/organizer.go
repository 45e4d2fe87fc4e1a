package organizer

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Observer is notified as the engine works through its tasks.
//
// Dispatched is called on the dispatching goroutine once a task has been
// handed off (sequential mode: once it has finished). Completed is called on a
// single collector goroutine, once per task, in completion order.
type Observer interface {
	Dispatched(done, total int)
	Completed(o Outcome)
}

// Observers fans notifications out to several observers in order.
type Observers []Observer

func (obs Observers) Dispatched(done, total int) {
	for _, o := range obs {
		o.Dispatched(done, total)
	}
}

func (obs Observers) Completed(outcome Outcome) {
	for _, o := range obs {
		o.Completed(outcome)
	}
}

type nopObserver struct{}

func (nopObserver) Dispatched(int, int) {}
func (nopObserver) Completed(Outcome)   {}

// Options configures an Engine.
type Options struct {
	Threads  int // Maximum copies in flight; 1 or less runs sequentially
	Observer Observer
}

// Engine performs the copy phase of a run.
type Engine struct {
	threads  int
	observer Observer
	copyFile func(src, dst string) (CopyStats, error)
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts Options) *Engine {
	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Engine{
		threads:  threads,
		observer: observer,
		copyFile: CopyFile,
	}
}

// Threads returns the configured pool width.
func (e *Engine) Threads() int {
	return e.threads
}

// Run processes every task and returns once all of them have an outcome.
//
// A failed copy never stops the others. Cancelling ctx only stops new copies
// from being dispatched; copies already running finish, and tasks that never
// started are recorded as failed with ReasonInterrupted.
func (e *Engine) Run(ctx context.Context, tasks []Task) Result {
	outcomes := make(chan Outcome)
	collected := make([]Outcome, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		defer close(done)
		for o := range outcomes {
			collected = append(collected, o)
			e.observer.Completed(o)
		}
	}()

	if e.threads == 1 {
		e.runSequential(ctx, tasks, outcomes)
	} else {
		e.runParallel(ctx, tasks, outcomes)
	}
	close(outcomes)
	<-done

	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].Assignment.Index < collected[j].Assignment.Index
	})
	return Result{Outcomes: collected}
}

func (e *Engine) runSequential(ctx context.Context, tasks []Task, outcomes chan<- Outcome) {
	total := len(tasks)
	for i, t := range tasks {
		switch {
		case t.Action == ActionSkip:
			outcomes <- skipped(t)
		case ctx.Err() != nil:
			outcomes <- interrupted(t, ctx.Err())
		default:
			outcomes <- e.perform(t)
		}
		e.observer.Dispatched(i+1, total)
	}
}

func (e *Engine) runParallel(ctx context.Context, tasks []Task, outcomes chan<- Outcome) {
	var g errgroup.Group
	g.SetLimit(e.threads)

	total := len(tasks)
	for i, t := range tasks {
		switch {
		case t.Action == ActionSkip:
			outcomes <- skipped(t)
		case ctx.Err() != nil:
			outcomes <- interrupted(t, ctx.Err())
		default:
			// Go blocks while all threads are busy.
			g.Go(func() error {
				outcomes <- e.perform(t)
				return nil
			})
		}
		e.observer.Dispatched(i+1, total)
	}

	_ = g.Wait()
}

func (e *Engine) perform(t Task) Outcome {
	stats, err := e.copyFile(t.Source.FullPath, t.Path)
	if err != nil {
		return Outcome{Assignment: t.Assignment, Status: StatusFailed, Reason: ReasonCopyFailed, Err: err}
	}
	return Outcome{
		Assignment: t.Assignment,
		Status:     StatusCopied,
		Bytes:      stats.Bytes,
		SHA256:     stats.SHA256,
	}
}

func skipped(t Task) Outcome {
	return Outcome{Assignment: t.Assignment, Status: StatusSkipped, Reason: ReasonDestinationExists}
}

func interrupted(t Task, err error) Outcome {
	return Outcome{Assignment: t.Assignment, Status: StatusFailed, Reason: ReasonInterrupted, Err: err}
}
