// Package bot receives chat events, routes them to commands and runs each
// command in its own goroutine.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/deixis/tomorin/internal/ctxlog"
	"github.com/deixis/tomorin/internal/playground"
	"github.com/deixis/tomorin/internal/render"
	"github.com/deixis/tomorin/internal/report"
	"github.com/deixis/tomorin/internal/router"
	"github.com/deixis/tomorin/internal/runner"
	"github.com/deixis/tomorin/internal/snippet"
)

// Event is a new or edited chat message.
type Event struct {
	Chat    int64
	Message int
	Sender  int64
	Text    string
	Edited  bool
	Private bool // sent in a one-to-one chat
	ReplyTo int  // message replied to, 0 if none
}

// Transport connects the bot to a chat service.
type Transport interface {
	// Owner returns the only sender whose messages are commands.
	Owner() int64
	// NextUpdate blocks until the next event arrives or ctx ends.
	NextUpdate(ctx context.Context) (Event, error)
	// Editor returns the editor for the output of the command in ev.
	Editor(ev Event) render.Editor
	// Forward copies message into chat.
	Forward(ctx context.Context, chat int64, message int) error
}

// Evaluator runs Rust snippets remotely.
type Evaluator interface {
	Execute(ctx context.Context, u snippet.CompileUnit) (playground.Result, error)
	ChannelName() string
}

// NoReply is shown when "+" is not a reply to anything.
const NoReply = "Reply to a message to repeat it."

// Bot dispatches owner commands received from a Transport.
type Bot struct {
	Transport Transport
	Runner    *runner.Runner
	Evaluator Evaluator
	Version   string
	Started   time.Time
}

// Run fetches events until ctx ends. Each command runs in its own
// goroutine with a context that is not cancelled with ctx, and Run waits
// for those commands before returning.
func (b *Bot) Run(ctx context.Context) error {
	log := ctxlog.FromContext(ctx)
	if b.Started.IsZero() {
		b.Started = time.Now()
	}

	var inflight errgroup.Group
	defer func() {
		log.Debug("waiting for running commands")
		_ = inflight.Wait()
	}()

	for {
		ev, err := b.Transport.NextUpdate(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("stopped receiving updates")
				return nil
			}
			return fmt.Errorf("receiving update: %w", err)
		}
		if ev.Sender != b.Transport.Owner() {
			continue
		}
		d, ok := router.Route(ev.Text)
		if !ok {
			continue
		}

		taskCtx := ctxlog.With(context.WithoutCancel(ctx),
			"run_id", uuid.NewString(), "kind", d.Kind.String(), "chat", ev.Chat, "message", ev.Message)
		inflight.Go(func() error {
			if err := b.dispatch(taskCtx, ev, d); err != nil {
				ctxlog.FromContext(taskCtx).Error("command failed", "error", err)
			}
			return nil
		})
	}
}

// Handle routes ev and runs the matching command. Text that is not a
// command is ignored.
func (b *Bot) Handle(ctx context.Context, ev Event) error {
	d, ok := router.Route(ev.Text)
	if !ok {
		return nil
	}
	return b.dispatch(ctx, ev, d)
}

func (b *Bot) dispatch(ctx context.Context, ev Event, d router.Dispatch) error {
	log := ctxlog.FromContext(ctx)
	log.Debug("dispatching", "edited", ev.Edited)
	start := time.Now()
	defer func() { log.Debug("command finished", "elapsed", time.Since(start)) }()

	switch d.Kind {
	case router.Shell:
		_, err := b.Runner.Run(ctx, runner.ParseRequest(d.Arg), b.Transport.Editor(ev))
		return err
	case router.Eval:
		return b.eval(ctx, ev, d.Arg)
	case router.Repeat:
		if ev.ReplyTo == 0 {
			return b.reply(ctx, ev, render.Plain(NoReply))
		}
		return b.Transport.Forward(ctx, ev.Chat, ev.ReplyTo)
	case router.Help:
		return b.reply(ctx, ev, render.Plain(HelpText(b.Version)))
	case router.Status:
		return b.reply(ctx, ev, render.Plain(b.Status()))
	}
	return fmt.Errorf("unhandled command kind %v", d.Kind)
}

func (b *Bot) reply(ctx context.Context, ev Event, r render.Report) error {
	return render.NewRenderer(b.Transport.Editor(ev)).Render(ctx, r)
}

// eval runs code on the playground and replies with the formatted result.
// A failed request is shown as its raw error text.
func (b *Bot) eval(ctx context.Context, ev Event, code string) error {
	if b.Evaluator == nil {
		return errors.New("no evaluator configured")
	}
	u := snippet.Prepare(ctx, code)
	res, err := b.Evaluator.Execute(ctx, u)
	if err != nil {
		return errors.Join(err, b.reply(ctx, ev, render.Plain(err.Error())))
	}
	text := report.Format(res, b.Evaluator.ChannelName(), ev.Private)
	return b.reply(ctx, ev, render.HTML(text))
}
