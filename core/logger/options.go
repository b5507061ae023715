package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreconfig "github.com/m3rciful/vedbot/core/config"
)

// options is the logging section of the config after defaults are applied.
type options struct {
	level     slog.Level
	format    logFormat
	keyOrder  []string
	profile   string
	sampleNum int
	sampleDen int
	trace     bool
	file      string
}

func resolveOptions(cfg *coreconfig.Config) options {
	opts := options{
		level:     slog.LevelInfo,
		format:    formatJSON,
		keyOrder:  append([]string(nil), defaultKeyOrder...),
		profile:   "prod",
		sampleNum: 1,
		sampleDen: 50,
		trace:     envFlag("TRACE") || envFlag("LOG_TRACE"),
	}
	if cfg == nil {
		return opts
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		opts.profile = p
	}
	if p := opts.profile; p == "debug" || p == "dev" {
		opts.format = formatKV
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		opts.format = formatKV
	case "json":
		opts.format = formatJSON
	}

	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		opts.level = slog.LevelDebug
	case "warn", "warning":
		opts.level = slog.LevelWarn
	case "error":
		opts.level = slog.LevelError
	}

	if order := splitKeys(lc.KeysOrder); len(order) > 0 {
		opts.keyOrder = order
	}

	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		switch num, den := parseRatioSpec(spec); {
		case num == 0 && den == 0:
			// "0" or garbage: no sampling, every debug line is kept.
			opts.sampleNum, opts.sampleDen = 0, 0
		case num > 0 && den > 0:
			opts.sampleNum, opts.sampleDen = num, den
		}
	}

	dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile)
	if dir != "" && name != "" {
		opts.file = filepath.Join(dir, name)
	}
	return opts
}

func splitKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// openOutputs always includes stdout. A log file that cannot be opened is
// reported on stderr and skipped.
func openOutputs(opts options) ([]io.Writer, []io.Closer) {
	writers := []io.Writer{os.Stdout}
	if opts.file == "" {
		return writers, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.file), 0o755); err != nil {
		log.Printf("logger: create log dir: %v", err)
		return writers, nil
	}
	f, err := os.OpenFile(opts.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: open log file: %v", err)
		return writers, nil
	}
	return append(writers, f), []io.Closer{f}
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
