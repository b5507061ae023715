// Package app assembles the bot from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/vedbot/core/bootstrap"
	corecmd "github.com/m3rciful/vedbot/core/cmd"
	coreconfig "github.com/m3rciful/vedbot/core/config"
	"github.com/m3rciful/vedbot/core/logger"
	tg "github.com/m3rciful/vedbot/core/telegram"
	"github.com/m3rciful/vedbot/core/telegram/middleware"
	"github.com/m3rciful/vedbot/core/telegram/router"
	"github.com/m3rciful/vedbot/core/telegram/state"
	"github.com/m3rciful/vedbot/internal/assistant"
	"github.com/m3rciful/vedbot/internal/bot"
	"github.com/m3rciful/vedbot/internal/calculator"
	"github.com/m3rciful/vedbot/internal/gemini"
	"github.com/m3rciful/vedbot/internal/memory"
	"github.com/m3rciful/vedbot/internal/rates"
	"github.com/m3rciful/vedbot/internal/storage/postgres"
)

// App is the assembled bot.
type App struct {
	cfg      *coreconfig.Config
	infra    *bootstrap.Result
	registry *tg.Registry
	bot      *bot.Bot
	locker   *middleware.ChatLocker
}

var _ corecmd.TelegramApp = (*App)(nil)

// Bootstrap initializes logging, seeds the tariff file, opens storage and
// builds the handlers.
func Bootstrap(ctx context.Context, cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
	tariffs := rates.NewFile(cfg.Rates.File)
	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config: cfg,
		Modules: bootstrap.Modules{Seeders: []bootstrap.Seeder{
			bootstrap.SeederFunc{Label: "rates", Fn: func(context.Context) error {
				return tariffs.Seed(cfg.Rates.KeepExisting)
			}},
		}},
	})
	if err != nil {
		return nil, err
	}

	sessions, mem := stores(cfg, infra)

	model, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	ai := assistant.New(model, mem, assistant.Options{
		SystemPrompt: cfg.Assistant.SystemPrompt,
		MaxMemory:    cfg.Assistant.MaxMemory,
		Timeout:      time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
		ModelName:    model.Model(),
	})

	b := bot.New(bot.Deps{
		Calculator: bot.NewCalculator(sessions, mem, tariffs, cfg.Calculator.Contact),
		Assistant:  ai,
		Tariffs:    tariffs,
	})
	reg := tg.NewRegistry()
	b.Register(reg)

	logger.Info(ctx, "app", "bootstrap.done",
		slog.String("storage", cfg.Storage.Driver),
		slog.String("model", model.Model()),
		slog.Int("max_memory", cfg.Assistant.MaxMemory),
		slog.String("path", tariffs.Path()),
	)

	return &App{
		cfg:      cfg,
		infra:    infra,
		registry: reg,
		bot:      b,
		locker:   middleware.NewChatLocker(),
	}, nil
}

func stores(cfg *coreconfig.Config, infra *bootstrap.Result) (state.Store[calculator.Step], memory.Store) {
	if cfg.Storage.Driver == coreconfig.StoragePostgres && infra.DB != nil {
		return postgres.NewSessionStore(infra.DB), postgres.NewMemoryStore(infra.DB)
	}
	return state.NewMemoryStore[calculator.Step](), memory.NewInMemory()
}

// TelegramRunOptions implements corecmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	if a.registry == nil || a.bot == nil {
		return tg.RunOptions{}, fmt.Errorf("app: not bootstrapped")
	}
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: a.bot.AdminReject,
	})
	routes = append(routes, router.TextRoutes(a.bot.FSM(), a.registry, router.TextOptions{
		UnknownText:  a.bot.UnknownText(),
		UnknownMedia: a.bot.UnknownMedia(),
	})...)

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(a.locker),
		Routes:      routes,
	}, nil
}

// Close releases storage.
func (a *App) Close() error {
	return a.infra.Close()
}
