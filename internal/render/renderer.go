package render

import (
	"context"
	"errors"

	"github.com/deixis/tomorin/internal/ctxlog"
)

// Renderer pushes reports to an Editor, skipping pushes that would not
// change the message.
type Renderer struct {
	editor Editor
	last   Report
	pushed bool
	pushes int
}

// NewRenderer returns a Renderer writing to e.
func NewRenderer(e Editor) *Renderer {
	return &Renderer{editor: e}
}

// Render pushes r unless it equals the last pushed report. ErrNotModified
// from the editor is swallowed; any other failure is returned as *UpdateError.
func (p *Renderer) Render(ctx context.Context, r Report) error {
	if p.pushed && p.last.Equal(r) {
		return nil
	}

	err := p.editor.Edit(ctx, r)
	if errors.Is(err, ErrNotModified) {
		ctxlog.FromContext(ctx).Debug("render unchanged")
		err = nil
	}
	if err != nil {
		return &UpdateError{Err: err}
	}

	p.last = r
	p.pushed = true
	p.pushes++
	return nil
}

// Pushes returns how many reports reached the editor.
func (p *Renderer) Pushes() int {
	return p.pushes
}

// Last returns the last report pushed, if any.
func (p *Renderer) Last() (Report, bool) {
	return p.last, p.pushed
}
