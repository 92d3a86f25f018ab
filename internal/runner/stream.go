package runner

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/deixis/tomorin/internal/render"
)

type line struct {
	text string
	err  error
}

// readLines sends every line of r on the returned channel and closes it at
// end of stream. A read error is sent as the last value. Invalid UTF-8 is
// replaced so lines are always valid text.
func readLines(r io.Reader, done <-chan struct{}) <-chan line {
	out := make(chan line)
	go func() {
		defer close(out)
		br := bufio.NewReader(r)
		for {
			s, err := br.ReadString('\n')
			if s != "" {
				s = strings.ToValidUTF8(strings.TrimSuffix(s, "\n"), "\uFFFD")
				select {
				case out <- line{text: s}:
				case <-done:
					return
				}
			}
			if err == nil {
				continue
			}
			if !errors.Is(err, io.EOF) {
				select {
				case out <- line{err: err}:
				case <-done:
				}
			}
			return
		}
	}()
	return out
}

// pump merges stdout, stderr and the render cadence into one wait set. It
// appends lines to buf as they arrive, calls flush on every tick, and
// returns once both streams are closed, after a last flush.
//
// It returns a *StreamError if a stream fails, the error of flush if a
// render fails, or ctx.Err() if ctx ends first.
func pump(ctx context.Context, stdout, stderr io.Reader, buf *render.Buffer, cadence Cadence, flush func() error) error {
	done := make(chan struct{})
	defer close(done)

	outC := readLines(stdout, done)
	errC := readLines(stderr, done)

	timer := time.NewTimer(cadence.Initial)
	defer timer.Stop()

	for outC != nil || errC != nil {
		select {
		case l, ok := <-outC:
			if !ok {
				outC = nil
				continue
			}
			if l.err != nil {
				return &StreamError{Channel: render.Stdout, Err: l.err}
			}
			buf.Append(render.Stdout, l.text)
		case l, ok := <-errC:
			if !ok {
				errC = nil
				continue
			}
			if l.err != nil {
				return &StreamError{Channel: render.Stderr, Err: l.err}
			}
			buf.Append(render.Stderr, l.text)
		case <-timer.C:
			if err := flush(); err != nil {
				return err
			}
			timer.Reset(cadence.Interval)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return flush()
}

// Cadence is the live render schedule: the first render after Initial,
// then one every Interval while output streams are open.
type Cadence struct {
	Initial  time.Duration
	Interval time.Duration
}

// DefaultCadence renders after 800ms and then every second.
var DefaultCadence = Cadence{Initial: 800 * time.Millisecond, Interval: time.Second}
