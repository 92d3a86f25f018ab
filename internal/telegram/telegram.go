// Package telegram implements the bot transport on the Telegram Bot API.
package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/deixis/tomorin/internal/bot"
	"github.com/deixis/tomorin/internal/ctxlog"
	"github.com/deixis/tomorin/internal/render"
	"github.com/deixis/tomorin/internal/replies"
)

// API is the subset of *tgbotapi.BotAPI used by the transport.
type API interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// RetryDelay is the pause after a failed poll.
const RetryDelay = 3 * time.Second

// Transport long-polls for updates and sends command output as replies.
// NextUpdate must be called from one goroutine; Editor and Forward may be
// used concurrently.
type Transport struct {
	api         API
	owner       int64
	pollTimeout time.Duration
	replies     *replies.Store
	retry       time.Duration

	offset  int
	pending []bot.Event
}

// New returns a Transport for api that accepts commands from owner.
func New(api API, owner int64, pollTimeout time.Duration, store *replies.Store) *Transport {
	if store == nil {
		store = replies.New(0)
	}
	return &Transport{
		api:         api,
		owner:       owner,
		pollTimeout: pollTimeout,
		replies:     store,
		retry:       RetryDelay,
	}
}

// Dial authenticates token with the Bot API.
func Dial(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// Owner returns the account whose messages are commands.
func (t *Transport) Owner() int64 {
	return t.owner
}

type pollResult struct {
	updates []tgbotapi.Update
	err     error
}

// NextUpdate returns the next text message or edit. Poll failures are
// logged and retried until ctx ends.
func (t *Transport) NextUpdate(ctx context.Context) (bot.Event, error) {
	log := ctxlog.FromContext(ctx)
	for len(t.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return bot.Event{}, err
		}

		cfg := tgbotapi.NewUpdate(t.offset)
		cfg.Timeout = int(t.pollTimeout / time.Second)
		cfg.AllowedUpdates = []string{"message", "edited_message"}

		done := make(chan pollResult, 1)
		go func() {
			updates, err := t.api.GetUpdates(cfg)
			done <- pollResult{updates, err}
		}()

		var res pollResult
		select {
		case res = <-done:
		case <-ctx.Done():
			return bot.Event{}, ctx.Err()
		}

		if res.err != nil {
			log.Warn("polling updates failed", "error", res.err, "retry_in", t.retry)
			select {
			case <-time.After(t.retry):
			case <-ctx.Done():
				return bot.Event{}, ctx.Err()
			}
			continue
		}
		for _, u := range res.updates {
			if u.UpdateID >= t.offset {
				t.offset = u.UpdateID + 1
			}
			if ev, ok := toEvent(u); ok {
				t.pending = append(t.pending, ev)
			}
		}
	}

	ev := t.pending[0]
	t.pending = t.pending[1:]
	return ev, nil
}

func toEvent(u tgbotapi.Update) (bot.Event, bool) {
	msg, edited := u.Message, false
	if msg == nil {
		msg, edited = u.EditedMessage, true
	}
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.Text == "" {
		return bot.Event{}, false
	}
	ev := bot.Event{
		Chat:    msg.Chat.ID,
		Message: msg.MessageID,
		Sender:  msg.From.ID,
		Text:    msg.Text,
		Edited:  edited,
		Private: msg.Chat.IsPrivate(),
	}
	if msg.ReplyToMessage != nil {
		ev.ReplyTo = msg.ReplyToMessage.MessageID
	}
	return ev, true
}

// Editor returns the editor for the output of the command in ev. An
// edited command reuses the output message of its first run.
func (t *Transport) Editor(ev bot.Event) render.Editor {
	return &messageEditor{
		api:     t.api,
		replies: t.replies,
		key:     replies.Key{Chat: ev.Chat, Message: ev.Message},
	}
}

// Forward forwards message within chat.
func (t *Transport) Forward(_ context.Context, chat int64, message int) error {
	_, err := t.api.Send(tgbotapi.NewForward(chat, chat, message))
	return err
}
