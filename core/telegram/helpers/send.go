package helpers

import (
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/m3rciful/vedbot/core/logger"
	"github.com/m3rciful/vedbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher routes helper sends through d. With nil they run inline.
func SetDispatcher(d *sender.Dispatcher) {
	dispatcher.Store(d)
}

// outgoing is one sendMessage call.
type outgoing struct {
	action string
	text   string
	opts   *tele.SendOptions
}

func newOutgoing(action, text string, mode tele.ParseMode, markup []*tele.ReplyMarkup) outgoing {
	opts := &tele.SendOptions{ParseMode: mode}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return outgoing{action: action, text: text, opts: opts}
}

// dispatch counts the message for the handler summary and queues it on the
// chat's worker. A full or closed queue degrades to a synchronous send.
func dispatch(c tele.Context, m outgoing, run func() error) error {
	markSent(c, m.opts)
	d := dispatcher.Load()
	if d == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, m.action, "sendMessage", run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("op", m.action),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText sends text verbatim, without a parse mode.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	m := newOutgoing("send.text", text, tele.ModeDefault, markup)
	return dispatch(c, m, func() error { return c.Send(m.text, m.opts) })
}

// SendMD sends text in legacy Markdown. If Telegram cannot parse the markup
// the text goes out again as plain text.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	m := newOutgoing("send.md", text, tele.ModeMarkdown, markup)
	return dispatch(c, m, func() error {
		err := c.Send(m.text, m.opts)
		if !IsParseError(err) {
			return err
		}
		logger.Warn(BuildContext(c), "tg.sender", "send.md.fallback",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		plain := *m.opts
		plain.ParseMode = tele.ModeDefault
		return c.Send(m.text, &plain)
	})
}

// IsParseError reports whether Telegram refused a message because of its markup.
func IsParseError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "can't parse entities")
}
