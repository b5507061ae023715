package router

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/vedbot/core/logger"
	tghelpers "github.com/m3rciful/vedbot/core/telegram/helpers"
	"github.com/m3rciful/vedbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// handled is the one summary line written per routed update.
type handled struct {
	name  string
	start time.Time
}

func track(c tele.Context, name string, start time.Time) handled {
	tghelpers.WithHandler(c, name)
	return handled{name: name, start: start}
}

// run invokes h and logs the summary line for it.
func (s handled) run(c tele.Context, h tele.HandlerFunc) error {
	err := h(c)
	s.log(c, err, "")
	return err
}

// skip records an update nobody handled.
func (s handled) skip(c tele.Context) { s.log(c, nil, "skip") }

func (s handled) log(c tele.Context, err error, status string) {
	msgs, kb := middleware.GetCounters(c)
	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	attrs := []slog.Attr{
		slog.String("status", cmpOr(status, outcome)),
		slog.String("handler", s.name),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(s.start)),
	}
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	logger.LogEvent(tghelpers.BuildContext(c), logger.TG, level, "handler.handled", attrs...)
}

// summarized wraps h so every call logs a handler.handled line.
func summarized(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		return track(c, name, time.Now()).run(c, h)
	}
}

// normalizeHandlerName turns "/Start " into "start".
func normalizeHandlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// deriveErrorCode uses Code() when some error in the chain has one, else the
// concrete type name.
func deriveErrorCode(err error) string {
	var c interface{ Code() string }
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	name := strings.TrimLeft(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "<nil>" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(name)
}

func cmpOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
