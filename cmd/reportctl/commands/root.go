// Package commands implements the reportctl CLI using cobra.
package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"taskflow/internal/app"
	"taskflow/internal/config"
	"taskflow/internal/scheduler"
	"taskflow/internal/services"
)

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Generate task reports from the command line",
	Long: `reportctl builds the same reports as the HTTP API and writes them
as JSON, Excel or PDF. It reads the server's config file for the database,
PDF engine and mail settings.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default $CONFIG_PATH or config/config.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "json", "output format: json, xlsx or pdf")
	rootCmd.PersistentFlags().StringP("out", "o", "", "output file (default stdout)")
}

// environment is what the commands need from the wired application.
type environment struct {
	gen    scheduler.Generator
	mailer services.Mailer
	chat   scheduler.ChatSender
	cfg    *config.Config
	close  func()
}

// openEnv is replaced in tests.
var openEnv = func(ctx context.Context, cmd *cobra.Command) (*environment, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	stack, err := app.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	env := &environment{gen: stack.Exports, mailer: app.Mailer(cfg), cfg: cfg, close: stack.Close}
	if cfg.Telegram.BotToken != "" {
		tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken)
		if err != nil {
			stack.Close()
			return nil, err
		}
		env.chat = tg
	}
	return env, nil
}
