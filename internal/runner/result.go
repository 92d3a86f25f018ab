package runner

import (
	"fmt"

	"github.com/deixis/tomorin/internal/render"
)

// Result holds the outcome of one command execution.
type Result struct {
	RunID    string        // unique identifier for this run
	ExitCode int           // process exit code; -1 if the process did not exit normally
	Report   render.Report // the final report pushed to the editor
}

// SpawnError means the process could not be started.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn `%s`: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// StreamError means reading one of the process output streams failed.
type StreamError struct {
	Channel render.Channel
	Err     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Channel, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
