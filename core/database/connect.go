package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/vedbot/core/logger"
)

const (
	driverName     = "postgres"
	connectTimeout = 5 * time.Second
	readyTimeout   = 30 * time.Second
	readyInterval  = 2 * time.Second
)

// Connect waits for the server, opens a pooled handle and sizes the pool.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	start := time.Now()
	if err := waitReady(ctx, cfg, readyTimeout); err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect",
			append(cfg.logAttrs(), slog.Duration("duration", logger.Took(start)), slog.String("err", err.Error()))...)
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	db, err := sqlx.ConnectContext(dialCtx, driverName, cfg.DSN())
	if err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect",
			append(cfg.logAttrs(), slog.Duration("duration", logger.Took(start)), slog.String("err", err.Error()))...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pool := cfg.MaxConnections
	if pool <= 0 {
		pool = 4
	}
	db.SetMaxOpenConns(pool)
	db.SetMaxIdleConns(pool)
	db.SetConnMaxIdleTime(5 * time.Minute)

	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect",
		append(cfg.logAttrs(), slog.Int("pool", pool), slog.Duration("duration", logger.Took(start)))...)
	return db, nil
}

// waitReady pings the server until it answers, ctx ends or timeout elapses.
func waitReady(ctx context.Context, cfg Config, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := sqlx.Open(driverName, cfg.DSN())
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer db.Close()

	ticker := time.NewTicker(readyInterval)
	defer ticker.Stop()
	attempts := 0
	for {
		attempts++
		err = db.PingContext(ctx)
		if err == nil {
			return nil
		}
		logger.LogEvent(ctx, logger.DB, slog.LevelDebug, "db.wait",
			slog.Int("attempt", attempts), slog.String("err", err.Error()))
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready after %d attempts: %w", attempts, err)
		case <-ticker.C:
		}
	}
}
