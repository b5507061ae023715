// Package rates reads and writes the tariff file used by the logistics calculator.
//
// The file holds three decimal numbers, one per line: the per-cubic-metre rate to
// Manzhouli, the rate from Manzhouli, and the volumetric density in kg per m³.
package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/vedbot/core/logger"
)

// ErrMalformed reports a tariff file that cannot be turned into usable tariffs.
var ErrMalformed = errors.New("rates: malformed tariff file")

// Tariffs are the parameters of the two-leg cost formula.
type Tariffs struct {
	RateTo          float64
	RateFrom        float64
	KgPerCubicMeter float64
}

// Defaults are written on startup unless the file is kept.
var Defaults = Tariffs{RateTo: 50, RateFrom: 110, KgPerCubicMeter: 300}

// Validate rejects tariffs the cost formula cannot use.
func (t Tariffs) Validate() error {
	for _, v := range []float64{t.RateTo, t.RateFrom, t.KgPerCubicMeter} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrMalformed)
		}
	}
	if t.KgPerCubicMeter <= 0 {
		return fmt.Errorf("%w: kg_per_cubic_meter must be > 0", ErrMalformed)
	}
	return nil
}

// Parse decodes the three-line tariff format. Extra lines are ignored.
func Parse(data []byte) (Tariffs, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) < 3 {
		return Tariffs{}, fmt.Errorf("%w: want 3 lines, got %d", ErrMalformed, len(lines))
	}
	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(lines[i]), 64)
		if err != nil {
			return Tariffs{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, i+1, err)
		}
		vals[i] = v
	}
	t := Tariffs{RateTo: vals[0], RateFrom: vals[1], KgPerCubicMeter: vals[2]}
	if err := t.Validate(); err != nil {
		return Tariffs{}, err
	}
	return t, nil
}

// Format encodes tariffs in the file layout.
func Format(t Tariffs) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(t.RateTo) + "\n" + f(t.RateFrom) + "\n" + f(t.KgPerCubicMeter)
}

// File is a tariff source backed by a plain text file. It re-reads the file on every Load.
type File struct {
	path string
}

// NewFile returns a tariff source for path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the file location.
func (f *File) Path() string { return f.path }

// Load reads and parses the tariff file.
func (f *File) Load(ctx context.Context) (Tariffs, error) {
	start := time.Now()
	data, err := os.ReadFile(f.path)
	if err != nil {
		logger.Rates.LogAttrs(ctx, slog.LevelError, "rates.load",
			slog.String("status", "fail"),
			slog.String("path", f.path),
			slog.String("err", err.Error()),
		)
		return Tariffs{}, fmt.Errorf("read tariffs: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		logger.Rates.LogAttrs(ctx, slog.LevelError, "rates.load",
			slog.String("status", "fail"),
			slog.String("path", f.path),
			slog.String("err", err.Error()),
		)
		return Tariffs{}, err
	}
	logger.Rates.LogAttrs(ctx, slog.LevelDebug, "rates.load",
		slog.String("status", "ok"),
		slog.String("path", f.path),
		slog.Duration("duration", logger.Took(start)),
	)
	return t, nil
}

// Write replaces the file contents with t.
func (f *File) Write(t Tariffs) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := os.WriteFile(f.path, []byte(Format(t)), 0o644); err != nil {
		return fmt.Errorf("write tariffs: %w", err)
	}
	logger.Rates.Info("tariffs written",
		slog.String("event", "rates.write"),
		slog.String("path", f.path),
		slog.Float64("rate_to", t.RateTo),
		slog.Float64("rate_from", t.RateFrom),
		slog.Float64("kg_per_m3", t.KgPerCubicMeter),
	)
	return nil
}

// Seed writes Defaults. When keep is set and the file exists it is left alone.
func (f *File) Seed(keep bool) error {
	if keep {
		if _, err := os.Stat(f.path); err == nil {
			logger.Rates.Info("tariffs kept",
				slog.String("event", "rates.seed"),
				slog.String("status", "skip"),
				slog.String("path", f.path),
			)
			return nil
		}
	}
	return f.Write(Defaults)
}
