package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/vedbot/core/buildinfo"
	coreconfig "github.com/m3rciful/vedbot/core/config"
)

var (
	initOnce sync.Once
	stopOnce sync.Once

	sink    *lineWriter
	closers []io.Closer

	levelVar      slog.LevelVar
	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the root logger. Until InitLogger runs it discards everything.
	L = slog.New(slog.NewTextHandler(io.Discard, nil))

	DB    = L // connection pool
	MIG   = L // schema migrations
	TG    = L // Telegram transport
	TWire = L // command and route wiring
	Calc  = L // calculator transitions
	AI    = L // assistant and model calls
	Rates = L // tariff file
	Store = L // session and memory stores
)

var components = []struct {
	name string
	dst  **slog.Logger
}{
	{"db", &DB},
	{"db.migrate", &MIG},
	{"tg", &TG},
	{"tg.wire", &TWire},
	{"calc", &Calc},
	{"assistant", &AI},
	{"rates", &Rates},
	{"store", &Store},
}

// InitLogger installs the structured logger described by cfg. Calls after the
// first are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		opts := resolveOptions(cfg)
		levelVar.Set(opts.level)
		debugSampler.Set(opts.sampleNum, opts.sampleDen)
		traceOverride = opts.trace

		writers, files := openOutputs(opts)
		closers = files
		sink = newLineWriter(writers, 64*1024)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   sink,
			format:   opts.format,
			keyOrder: opts.keyOrder,
		}))
		slog.SetDefault(L)
		for _, c := range components {
			*c.dst = L.With("component", c.name)
		}
		logStartup(cfg, opts)
	})
	return nil
}

func logStartup(cfg *coreconfig.Config, opts options) {
	attrs := []slog.Attr{
		slog.String("component", "app"),
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("build", buildinfo.String()),
		slog.String("cfg_profile", opts.profile),
	}
	if cfg != nil {
		attrs = append(attrs,
			slog.String("mode", cfg.Telegram.RunMode),
			slog.String("storage", cfg.Storage.Driver),
			slog.String("model", cfg.Gemini.Model),
		)
	}
	L.LogAttrs(context.Background(), slog.LevelInfo, "", attrs...)
}

// Shutdown drains queued lines and closes log files. Only the first call
// does any work.
func Shutdown() error {
	var err error
	stopOnce.Do(func() {
		var errs []error
		if sink != nil {
			errs = append(errs, sink.Close())
		}
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		err = errors.Join(errs...)
	})
	return err
}

// Background returns context.Background() for call sites without a request.
func Background() context.Context {
	return context.Background()
}

// LogEvent writes one event line. A nil logger means the one carried by ctx.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns L tagged with the given component name.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

// ShouldSampleDebug gates high-volume debug lines. TRACE=1 lets all of them through.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}
