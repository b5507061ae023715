package bootstrap

import (
	"context"
	"log/slog"

	"github.com/m3rciful/vedbot/core/logger"
)

// Seeder prepares reference data before the bot starts, such as the tariff file.
type Seeder interface {
	Name() string
	Seed(ctx context.Context) error
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc struct {
	Label string
	Fn    func(ctx context.Context) error
}

// Name returns the seeder label used in logs.
func (f SeederFunc) Name() string { return f.Label }

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context) error { return f.Fn(ctx) }

// Modules groups optional bootstrapping hooks.
type Modules struct {
	Seeders []Seeder
}

func (m Modules) seed(ctx context.Context) error {
	for _, s := range m.Seeders {
		if s == nil {
			continue
		}
		if err := s.Seed(ctx); err != nil {
			return err
		}
		logger.Info(ctx, "app", "seed.done", slog.String("seeder", s.Name()))
	}
	return nil
}
