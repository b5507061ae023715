package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/vedbot/core/logger"
)

// migrationFile is one *.up.sql file with its numeric version prefix.
type migrationFile struct {
	Version uint64
	Name    string
}

// RunMigrations applies every pending up migration in dir.
func RunMigrations(ctx context.Context, cfg Config, dir string) error {
	path, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve migrations dir: %w", err)
	}
	files, err := scanMigrations(path)
	if err != nil {
		return err
	}
	logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "resolve",
		slog.String("path", path),
		slog.Int("files_total", len(files)),
		slog.String("latest", latest(files)),
	)

	m, err := migrate.New("file://"+filepath.ToSlash(path), cfg.URL())
	if err != nil {
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "init", slog.String("err", err.Error()))
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	// Let a cancelled startup interrupt a long migration.
	stop := context.AfterFunc(ctx, func() {
		select {
		case m.GracefulStop <- true:
		default:
		}
	})
	defer stop()

	from := currentVersion(m)
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "apply",
			slog.Uint64("from_ver", from),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}
	to := currentVersion(m)

	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "summary",
		slog.Uint64("from_ver", from),
		slog.Uint64("to_ver", to),
		slog.Int("applied", len(between(files, from, to))),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

func currentVersion(m *migrate.Migrate) uint64 {
	v, _, err := m.Version()
	if err != nil {
		return 0
	}
	return uint64(v)
}

// scanMigrations lists up migrations in version order. Files without a
// numeric prefix are ignored; golang-migrate would reject them anyway.
func scanMigrations(dir string) ([]migrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []migrationFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, _ := strings.Cut(name, "_")
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, migrationFile{Version: v, Name: name})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// between returns the files with from < version <= to.
func between(files []migrationFile, from, to uint64) []migrationFile {
	var out []migrationFile
	for _, f := range files {
		if f.Version > from && f.Version <= to {
			out = append(out, f)
		}
	}
	return out
}

func latest(files []migrationFile) string {
	if len(files) == 0 {
		return ""
	}
	return files[len(files)-1].Name
}
