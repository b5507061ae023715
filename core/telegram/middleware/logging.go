package middleware

import (
	"log/slog"
	"sync"

	"github.com/m3rciful/vedbot/core/logger"
	tghelpers "github.com/m3rciful/vedbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// updateRing remembers the last few update ids so a redelivered update is
// not logged twice.
type updateRing struct {
	mu   sync.Mutex
	ids  [256]int
	next int
}

func (r *updateRing) firstSeen(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, seen := range r.ids {
		if seen == id && id != 0 {
			return false
		}
	}
	r.ids[r.next] = id
	r.next = (r.next + 1) % len(r.ids)
	return true
}

var received updateRing

// LoggerMiddleware attaches the request context to the update and logs a
// sampled update.received line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		if logger.ShouldSampleDebug() && received.firstSeen(c.Update().ID) {
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", describeUpdate(c)...)
		}
		return next(c)
	}
}

func describeUpdate(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil && user.LanguageCode != "" {
		attrs = append(attrs, slog.String("lang", user.LanguageCode))
	}
	msg := c.Message()
	if msg == nil {
		return attrs
	}
	payload := ""
	switch {
	case msg.Text != "":
		payload = logger.SanitizeLimit(msg.Text, 256)
	case msg.Document != nil:
		payload = "document"
	case msg.Photo != nil:
		payload = "photo"
	}
	return append(attrs, slog.String("payload", payload))
}
