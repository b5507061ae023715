package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/vedbot/core/config"
	coretelegram "github.com/m3rciful/vedbot/core/telegram"
)

type stubApp struct {
	closed bool
}

func (a *stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *stubApp) Close() error { a.closed = true; return nil }

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("VEDBOT_CONFIG", "/etc/vedbot.yaml")
	if got := ResolveConfigPath(Options{ConfigPath: "a.yaml", ConfigEnvVar: "VEDBOT_CONFIG"}); got != "a.yaml" {
		t.Fatalf("explicit = %q", got)
	}
	if got := ResolveConfigPath(Options{ConfigEnvVar: "VEDBOT_CONFIG", DefaultConfigPath: "config.yaml"}); got != "/etc/vedbot.yaml" {
		t.Fatalf("env = %q", got)
	}
	t.Setenv("CONFIG_PATH", "")
	if got := ResolveConfigPath(Options{DefaultConfigPath: "config.yaml"}); got != "config.yaml" {
		t.Fatalf("default = %q", got)
	}
}

func TestRunWiresLifecycle(t *testing.T) {
	app := &stubApp{}
	var started, stopped bool

	err := Run(context.Background(), Options{
		ConfigPath:     "config.yaml",
		LoadConfig:     func(string) (*coreconfig.Config, error) { return &coreconfig.Config{}, nil },
		Bootstrap:      func(context.Context, *coreconfig.Config) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			started = opts.OnStart(ctx, coretelegram.Runtime{}) == nil
			stopped = opts.OnStop(ctx, coretelegram.Runtime{}) == nil
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !started || !stopped || !app.closed {
		t.Fatalf("started = %v, stopped = %v, closed = %v", started, stopped, app.closed)
	}
}

func TestRunConfigError(t *testing.T) {
	boom := errors.New("bad yaml")
	err := Run(context.Background(), Options{
		LoadConfig: func(string) (*coreconfig.Config, error) { return nil, boom },
		Bootstrap:  func(context.Context, *coreconfig.Config) (TelegramApp, error) { return nil, nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
