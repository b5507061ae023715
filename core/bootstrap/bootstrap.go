package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/vedbot/core/config"
	coredatabase "github.com/m3rciful/vedbot/core/database"
	"github.com/m3rciful/vedbot/core/logger"
)

// Options control the bootstrap pipeline. Zero-valued hooks use the defaults.
type Options struct {
	Config  *coreconfig.Config
	Modules Modules

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(ctx context.Context, cfg coredatabase.Config, dir string) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	// DB is nil unless the postgres storage driver is configured.
	DB *sqlx.DB
}

// Close releases the database handle if one was opened.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// DatabaseConfig converts the storage section into connection settings.
func DatabaseConfig(cfg *coreconfig.Config) coredatabase.Config {
	return coredatabase.Config(cfg.Storage.Postgres)
}

// Run initializes the logger, runs seeders and, for the postgres storage
// driver, connects to the database and applies migrations.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	if err := opts.Modules.seed(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap: seeding failed: %w", err)
	}

	res := &Result{}
	if opts.Config.Storage.Driver != coreconfig.StoragePostgres {
		return res, nil
	}

	dbCfg := DatabaseConfig(opts.Config)
	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(ctx, dbCfg, opts.Config.Storage.MigrationsDir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	res.DB = db
	return res, nil
}
