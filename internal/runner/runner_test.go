package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deixis/tomorin/internal/render"
)

// recordingEditor keeps every report it receives.
type recordingEditor struct {
	mu    sync.Mutex
	edits []render.Report
	err   error
}

func (e *recordingEditor) Edit(_ context.Context, r render.Report) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.edits = append(e.edits, r)
	return nil
}

func (e *recordingEditor) all() []render.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]render.Report(nil), e.edits...)
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{
		Timeout: 10 * time.Second,
		Window:  render.Window{MaxLines: 30},
		Cadence: Cadence{Initial: 20 * time.Millisecond, Interval: 20 * time.Millisecond},
	}
}

func lines(r render.Report) []string {
	return strings.Split(r.Text, "\n")
}

func TestRun_Echo(t *testing.T) {
	r := newTestRunner(t)
	ed := &recordingEditor{}

	res, err := r.Run(context.Background(), ParseRequest("echo hi"), ed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}

	got := lines(res.Report)
	want := []string{"❯ echo hi", "hi", DoneMarker}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("report lines = %q, want %q", got, want)
	}
	if res.Report.Annotations[0].Style != render.StyleStdout {
		t.Errorf("Style = %q, want %q", res.Report.Annotations[0].Style, render.StyleStdout)
	}

	edits := ed.all()
	if len(edits) == 0 || !edits[len(edits)-1].Equal(res.Report) {
		t.Errorf("last edit does not match the final report")
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	r := newTestRunner(t)
	req := Request{Raw: "fail", Program: "sh", Args: []string{"-c", "exit 3"}}
	res, err := r.Run(context.Background(), req, &recordingEditor{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	got := lines(res.Report)
	if last := got[len(got)-1]; !strings.HasPrefix(last, FailMarker+" exit status") {
		t.Errorf("last line = %q, want failure marker with exit status", last)
	}
	if res.Report.Annotations[0].Style != render.StyleStderr {
		t.Errorf("Style = %q, want %q", res.Report.Annotations[0].Style, render.StyleStderr)
	}
}

func TestRun_StderrIsShown(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Run(context.Background(), Request{Raw: "warn", Program: "sh", Args: []string{"-c", "echo out; echo err >&2"}}, &recordingEditor{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"out", "err", DoneMarker} {
		if !strings.Contains(res.Report.Text, want) {
			t.Errorf("report %q, want to contain %q", res.Report.Text, want)
		}
	}
}

func TestRun_BinaryNotFound(t *testing.T) {
	r := newTestRunner(t)
	ed := &recordingEditor{}

	res, err := r.Run(context.Background(), ParseRequest("doesnotexist123"), ed)
	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("err = %v, want *SpawnError", err)
	}
	if !strings.Contains(res.Report.Text, "doesnotexist123") {
		t.Errorf("report = %q, want to mention the binary name", res.Report.Text)
	}
	if len(res.Report.Annotations) != 1 || res.Report.Annotations[0].Style != render.StyleStderr {
		t.Errorf("Annotations = %+v, want one %q block", res.Report.Annotations, render.StyleStderr)
	}
	if n := len(ed.all()); n != 1 {
		t.Errorf("edits = %d, want 1 (no timer renders)", n)
	}
}

func TestRun_EmptyCommand(t *testing.T) {
	r := newTestRunner(t)
	ed := &recordingEditor{}

	res, err := r.Run(context.Background(), ParseRequest("   "), ed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Report.Text != NoCommand {
		t.Errorf("Text = %q, want %q", res.Report.Text, NoCommand)
	}
}

func TestRun_NoOutputPlaceholder(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Run(context.Background(), ParseRequest("true"), &recordingEditor{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "❯ true\n" + NoOutput + "\n" + DoneMarker
	if res.Report.Text != want {
		t.Errorf("Text = %q, want %q", res.Report.Text, want)
	}
}

func TestRun_Timeout(t *testing.T) {
	r := newTestRunner(t)
	r.Timeout = 100 * time.Millisecond

	start := time.Now()
	res, err := r.Run(context.Background(), ParseRequest("sleep 10"), &recordingEditor{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("Run took %v, want the timeout to stop it", time.Since(start))
	}
	if !strings.Contains(res.Report.Text, "timed out") {
		t.Errorf("report = %q, want timeout notice", res.Report.Text)
	}
}

func TestRun_LiveRendersAreMonotonic(t *testing.T) {
	r := newTestRunner(t)
	ed := &recordingEditor{}

	req := Request{Raw: "slow", Program: "sh", Args: []string{"-c", "echo a; sleep 0.2; echo b; sleep 0.2; echo c"}}
	if _, err := r.Run(context.Background(), req, ed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edits := ed.all()
	if len(edits) < 2 {
		t.Fatalf("edits = %d, want live renders before the final one", len(edits))
	}
	for i := 1; i < len(edits); i++ {
		prev := strings.TrimSuffix(edits[i-1].Text, "\n"+DoneMarker)
		if !strings.HasPrefix(edits[i].Text, prev) {
			t.Errorf("edit %d = %q does not extend edit %d = %q", i, edits[i].Text, i-1, edits[i-1].Text)
		}
	}
}

func TestRun_Truncation(t *testing.T) {
	r := newTestRunner(t)
	r.Window = render.Window{MaxLines: 10}

	res, err := r.Run(context.Background(), ParseRequest("seq 1 50"), &recordingEditor{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := lines(res.Report)
	if len(got) != 11 {
		t.Fatalf("report has %d lines, want 11: %q", len(got), got)
	}
	if got[0] != render.DiscardHint {
		t.Errorf("first line = %q, want %q", got[0], render.DiscardHint)
	}
	if got[1] != "42" || got[10] != DoneMarker {
		t.Errorf("kept lines = %q, want 42..50 then %q", got[1:], DoneMarker)
	}
}

func TestRun_UpdateErrorAborts(t *testing.T) {
	r := newTestRunner(t)
	boom := errors.New("too many requests")

	start := time.Now()
	_, err := r.Run(context.Background(), ParseRequest("sleep 5"), &recordingEditor{err: boom})
	var ue *render.UpdateError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *render.UpdateError", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Errorf("Run took %v, want the first failed render to abort it", time.Since(start))
	}
}

func TestParseRequest(t *testing.T) {
	req := ParseRequest("  ls   -la  /tmp ")
	if req.Program != "ls" {
		t.Errorf("Program = %q, want ls", req.Program)
	}
	if strings.Join(req.Args, ",") != "-la,/tmp" {
		t.Errorf("Args = %q, want [-la /tmp]", req.Args)
	}
	if req.Raw != "ls   -la  /tmp" {
		t.Errorf("Raw = %q", req.Raw)
	}
}
