// Package runner executes shell commands and renders their output live
// into a chat message.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/deixis/tomorin/internal/ctxlog"
	"github.com/deixis/tomorin/internal/render"
)

// Text shown in place of, or after, command output.
const (
	NoCommand   = "No command given"
	NoOutput    = "(no output)"
	DoneMarker  = "Done."
	FailMarker  = "✗"
	DefaultHead = "❯ "
)

// Runner executes commands and renders their output.
type Runner struct {
	Prompt  string        // echoed before the command; DefaultHead if empty
	Timeout time.Duration // kills the process after Timeout; zero means no limit
	Window  render.Window
	Cadence Cadence // zero value means DefaultCadence
}

func (r *Runner) prompt() string {
	if r.Prompt != "" {
		return r.Prompt
	}
	return DefaultHead
}

func (r *Runner) cadence() Cadence {
	c := r.Cadence
	if c.Initial <= 0 {
		c.Initial = DefaultCadence.Initial
	}
	if c.Interval <= 0 {
		c.Interval = DefaultCadence.Interval
	}
	return c
}

// Run executes req and keeps ed updated with its output until it exits.
//
// A process that cannot be started is reported inline: the returned Result
// carries the error report and the error is a *SpawnError. A *StreamError or
// *render.UpdateError aborts the execution; whatever was rendered before
// stays visible.
func (r *Runner) Run(ctx context.Context, req Request, ed render.Editor) (*Result, error) {
	runID := uuid.New().String()
	log := ctxlog.FromContext(ctx).With("run_id", runID, "program", req.Program)
	renderer := render.NewRenderer(ed)

	res := &Result{RunID: runID, ExitCode: -1}

	if req.Program == "" {
		res.Report = render.Plain(NoCommand)
		return res, renderer.Render(ctx, res.Report)
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, req.Program, req.Args...)
	cmd.WaitDelay = time.Second

	header := r.prompt() + req.Raw
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return res, r.spawnFailed(ctx, renderer, res, header, req.Program, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return res, r.spawnFailed(ctx, renderer, res, header, req.Program, err)
	}
	if err := cmd.Start(); err != nil {
		return res, r.spawnFailed(ctx, renderer, res, header, req.Program, err)
	}
	log.Debug("process started", "pid", cmd.Process.Pid)

	buf := render.NewBuffer(header)
	flush := func() error {
		return renderer.Render(ctx, r.Window.Render(buf.Lines(), render.StyleStdout))
	}

	pumpErr := pump(runCtx, stdout, stderr, buf, r.cadence(), flush)
	if pumpErr != nil && runCtx.Err() == nil {
		// Stream or render failure: stop the process and leave the last
		// render in place.
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		log.Warn("execution aborted", "error", pumpErr)
		res.Report, _ = renderer.Last()
		return res, pumpErr
	}

	waitErr := cmd.Wait()
	res.ExitCode = cmd.ProcessState.ExitCode()

	if buf.Len() == 0 {
		buf.Append(render.Stdout, NoOutput)
	}

	style := render.StyleStdout
	switch {
	case runCtx.Err() != nil && ctx.Err() == nil:
		style = render.StyleStderr
		buf.Append(render.Stderr, fmt.Sprintf("%s timed out after %s", FailMarker, r.Timeout))
	case waitErr != nil:
		style = render.StyleStderr
		buf.Append(render.Stderr, FailMarker+" "+describeExit(waitErr))
	default:
		buf.Append(render.Stdout, DoneMarker)
	}
	log.Debug("process exited", "exit_code", res.ExitCode, "lines", buf.Len())

	res.Report = r.Window.Render(buf.Lines(), style)
	return res, renderer.Render(ctx, res.Report)
}

// spawnFailed renders the spawn error as the whole report.
func (r *Runner) spawnFailed(ctx context.Context, renderer *render.Renderer, res *Result, header, program string, err error) error {
	spawnErr := &SpawnError{Program: program, Err: err}
	res.Report = r.Window.Render([]string{header, spawnErr.Error()}, render.StyleStderr)
	if rerr := renderer.Render(ctx, res.Report); rerr != nil {
		return errors.Join(spawnErr, rerr)
	}
	return spawnErr
}

// describeExit returns the exit status text of err, e.g. "exit status 2".
func describeExit(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Error()
	}
	return err.Error()
}
