package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/deixis/tomorin/internal/render"
	"github.com/deixis/tomorin/internal/replies"
)

// notModified is the Bot API error text for an edit that changes nothing.
const notModified = "message is not modified"

// messageEditor sends the first report as a reply to the command message
// and edits that reply afterwards.
type messageEditor struct {
	api     API
	replies *replies.Store
	key     replies.Key

	mu     sync.Mutex
	output int
}

func (e *messageEditor) Edit(ctx context.Context, r render.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.output == 0 {
		if id, ok := e.replies.Get(e.key); ok {
			e.output = id
		}
	}

	if e.output == 0 {
		cfg := tgbotapi.NewMessage(e.key.Chat, r.Text)
		cfg.ReplyToMessageID = e.key.Message
		cfg.DisableWebPagePreview = true
		if r.HTML {
			cfg.ParseMode = tgbotapi.ModeHTML
		} else {
			cfg.Entities = entities(r)
		}
		msg, err := e.api.Send(cfg)
		if err != nil {
			return err
		}
		e.output = msg.MessageID
		e.replies.Put(e.key, e.output)
		return nil
	}

	cfg := tgbotapi.NewEditMessageText(e.key.Chat, e.output, r.Text)
	cfg.DisableWebPagePreview = true
	if r.HTML {
		cfg.ParseMode = tgbotapi.ModeHTML
	} else {
		cfg.Entities = entities(r)
	}
	if _, err := e.api.Request(cfg); err != nil {
		if strings.Contains(err.Error(), notModified) {
			return fmt.Errorf("%w: %v", render.ErrNotModified, err)
		}
		return err
	}
	return nil
}

// entities converts annotations to message entities, whose offsets count
// UTF-16 code units.
func entities(r render.Report) []tgbotapi.MessageEntity {
	if len(r.Annotations) == 0 {
		return nil
	}
	out := make([]tgbotapi.MessageEntity, 0, len(r.Annotations))
	for _, a := range r.Annotations {
		offset, length := utf16Span(r.Text, a.Offset, a.Length)
		ent := tgbotapi.MessageEntity{Offset: offset, Length: length}
		if a.Style == render.StyleCode {
			ent.Type = "code"
		} else {
			ent.Type = "pre"
			ent.Language = string(a.Style)
		}
		out = append(out, ent)
	}
	return out
}

// utf16Span converts a span counted in runes of text to UTF-16 units.
func utf16Span(text string, offset, length int) (int, int) {
	var start, end, i int
	for _, r := range text {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if i < offset {
			start += n
		}
		if i < offset+length {
			end += n
		}
		i++
	}
	return start, end - start
}
