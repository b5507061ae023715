package main

import (
	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/vedbot/core/cmd"
	coreconfig "github.com/m3rciful/vedbot/core/config"
	"github.com/m3rciful/vedbot/internal/app"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "config.yaml"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vedbot",
		Short:         "Telegram bot: China-Russia logistics calculator and foreign-trade assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}
	cmd.PersistentFlags().String("config", "", "Config file path (default $"+configEnvVar+" or "+defaultConfigPath+").")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRatesCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}
}

func serve(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	return corecmd.Run(cmd.Context(), corecmd.Options{
		ConfigPath:        path,
		ConfigEnvVar:      configEnvVar,
		DefaultConfigPath: defaultConfigPath,
		LoadConfig:        coreconfig.Load,
		Bootstrap:         app.Bootstrap,
	})
}
