// Package output handles CLI output formatting including verbose mode and progress indicators.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"episodic/internal/organizer"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

// Output handles formatted output with verbose and progress support.
// It also reports copy outcomes as an organizer.Observer.
type Output struct {
	config     Config
	progressMu sync.Mutex
	bar        *progressbar.ProgressBar
}

var _ organizer.Observer = (*Output)(nil)

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{
		config: config,
	}
}

// DefaultConfig returns a Config with sensible defaults and TTY detection.
func DefaultConfig() Config {
	return Config{
		Verbose:   false,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...any) {
	if !o.config.Verbose {
		return
	}
	o.print(o.config.Writer, format, args...)
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...any) {
	o.print(o.config.Writer, format, args...)
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...any) {
	o.print(o.config.ErrWriter, format, args...)
}

func (o *Output) print(w io.Writer, format string, args ...any) {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.bar != nil {
		o.bar.Clear()
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
}

// progressEnabled reports whether a progress bar may be drawn.
func (o *Output) progressEnabled() bool {
	return o.config.IsTTY && !o.config.Verbose
}

// StartProgress begins a progress bar over total files.
// It is a no-op when output is not a terminal or verbose mode is enabled.
func (o *Output) StartProgress(total int) {
	if !o.progressEnabled() {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(o.config.Writer),
		progressbar.OptionSetDescription("Copying"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

// UpdateProgress moves the progress bar to current.
func (o *Output) UpdateProgress(current int) {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.bar == nil {
		return
	}
	o.bar.Set(current)
}

// EndProgress finishes and clears the progress bar.
func (o *Output) EndProgress() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.bar == nil {
		return
	}
	o.bar.Finish()
	o.bar = nil
}

// ProgressActive reports whether a progress bar is being drawn.
func (o *Output) ProgressActive() bool {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	return o.bar != nil
}

// Dispatched advances the progress bar as copies are handed to workers.
func (o *Output) Dispatched(done, total int) {
	o.UpdateProgress(done)
}

// Completed prints one line per outcome in verbose mode and an error line
// for every failure.
func (o *Output) Completed(outcome organizer.Outcome) {
	a := outcome.Assignment
	switch outcome.Status {
	case organizer.StatusCopied:
		o.Verbose("copied  %s -> %s", a.Source.FullPath, a.Path)
	case organizer.StatusSkipped:
		o.Verbose("skipped %s -> %s (%s)", a.Source.FullPath, a.Path, outcome.Reason)
	case organizer.StatusFailed:
		if outcome.Err != nil {
			o.Error("failed  %s -> %s: %v", a.Source.FullPath, a.Path, outcome.Err)
		} else {
			o.Error("failed  %s -> %s (%s)", a.Source.FullPath, a.Path, outcome.Reason)
		}
	}
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}
