package logger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *lineWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders each record as one line of flat fields in a fixed
// key order, either JSON or key=value.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	prefix string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}
	json := h.cfg.format == formatJSON

	e := make(entry, 16)
	ts := r.Time.UTC()
	e["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	e["level"] = normalizeLevel(r.Level.String())
	if json {
		e["ts_unix_nano"] = ts.UnixNano()
	}
	for _, a := range h.attrs {
		e.add(h.prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		e.add(h.prefix, a)
		return true
	})
	e.fromContext(ctx)
	e.finish(r.Message, json)

	var (
		line []byte
		err  error
	)
	if json {
		line, err = encodeJSON(e, h.cfg.keyOrder)
	} else {
		line = encodeKV(e, h.cfg.keyOrder)
	}
	if err != nil {
		return err
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

// entry holds the flattened fields of one log line.
type entry map[string]any

func (e entry) add(prefix string, a slog.Attr) {
	key := joinKey(prefix, a.Key)
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			e.add(key, child)
		}
		return
	}
	if isLineKey(a.Key) {
		key = a.Key
	}
	if key == "" {
		return
	}
	if v.Kind() == slog.KindDuration {
		e[durationKey(key)] = RoundMS(v.Duration()).Milliseconds()
		return
	}
	if val, ok := plainValue(v); ok {
		e[key] = val
	}
}

// fromContext fills request ids that the record did not set explicitly.
func (e entry) fromContext(ctx context.Context) {
	m := metaFrom(ctx)
	e.setDefault("rid", m.rid, m.rid != "")
	e.setDefault("trace_id", m.trace, m.trace != "")
	e.setDefault("handler", m.handler, m.handler != "")
	e.setDefault("update_id", m.updateID, m.updateID != 0)
	e.setDefault("user_id", m.userID, m.userID != 0)
	e.setDefault("chat_id", m.chatID, m.chatID != 0)
}

func (e entry) setDefault(key string, v any, ok bool) {
	if _, exists := e[key]; ok && !exists {
		e[key] = v
	}
}

// finish applies the line-level rules: compact rid, event and component
// defaults, enum normalization and removal of empty strings.
func (e entry) finish(msg string, json bool) {
	if rid := e.str("rid"); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			e["rid"] = compact
			if json {
				e["rid_full"] = rid
			}
		}
	}
	if e.str("event") == "" {
		e["event"] = cmpOr(msg, "unknown")
	}
	if e.str("component") == "" {
		e["component"] = "app"
	}
	if s := e.str("status"); s != "" {
		e["status"] = normalizeStatus(s)
	}
	if o, present := e["outcome"]; present {
		if norm, ok := normalizeOutcome(toString(o)); ok {
			e["outcome"] = norm
		} else {
			delete(e, "outcome")
		}
	}
	for k, v := range e {
		if s, ok := v.(string); ok && s == "" {
			delete(e, k)
		}
	}
}

func (e entry) str(key string) string {
	v, ok := e[key]
	if !ok {
		return ""
	}
	return toString(v)
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

// durationKey puts the unit into the key: duration becomes duration_ms.
func durationKey(key string) string {
	if key == "duration" {
		return "duration_ms"
	}
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func cmpOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
