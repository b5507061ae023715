package logger

import (
	"context"
	"log/slog"
)

// requestMeta is the per-request state carried through context. Each With*
// call stores a modified copy so parent contexts are never affected.
type requestMeta struct {
	rid      string
	trace    string
	handler  string
	updateID int
	userID   int64
	chatID   int64
	log      *slog.Logger
}

type metaKey struct{}

func metaFrom(ctx context.Context) requestMeta {
	if ctx == nil {
		return requestMeta{}
	}
	m, _ := ctx.Value(metaKey{}).(requestMeta)
	return m
}

func withMeta(ctx context.Context, edit func(*requestMeta)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	m := metaFrom(ctx)
	edit(&m)
	return context.WithValue(ctx, metaKey{}, m)
}

// WithLogger makes log the logger returned by FromContext. A nil log is ignored.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		return orBackground(ctx)
	}
	return withMeta(ctx, func(m *requestMeta) { m.log = log })
}

// FromContext returns the logger stored in ctx, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if l := metaFrom(ctx).log; l != nil {
		return l
	}
	return L
}

// WithRID sets the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withMeta(ctx, func(m *requestMeta) { m.rid = rid })
}

// WithUpdateMeta sets the Telegram update, user and chat ids.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withMeta(ctx, func(m *requestMeta) {
		m.updateID, m.userID, m.chatID = updateID, userID, chatID
	})
}

// WithHandler names the handler serving the request. Empty names are ignored.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return orBackground(ctx)
	}
	return withMeta(ctx, func(m *requestMeta) { m.handler = handler })
}

// WithTrace sets the id used to correlate one upstream call across log lines.
func WithTrace(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return orBackground(ctx)
	}
	return withMeta(ctx, func(m *requestMeta) { m.trace = traceID })
}

func RIDFrom(ctx context.Context) string     { return metaFrom(ctx).rid }
func HandlerFrom(ctx context.Context) string { return metaFrom(ctx).handler }
func TraceIDFrom(ctx context.Context) string { return metaFrom(ctx).trace }
func UserIDFrom(ctx context.Context) int64   { return metaFrom(ctx).userID }
func ChatIDFrom(ctx context.Context) int64   { return metaFrom(ctx).chatID }
func UpdateIDFrom(ctx context.Context) int   { return metaFrom(ctx).updateID }

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
