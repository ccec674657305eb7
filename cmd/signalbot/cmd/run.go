package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/signalbot/auth"
	"github.com/rustyeddy/signalbot/bot"
	"github.com/rustyeddy/signalbot/telegram"
	"github.com/rustyeddy/signalbot/trade"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Telegram webhook server",
	Long: `Start the signal relay: register the webhook with the Telegram Bot
API and serve updates until the process is stopped.

Configuration comes from the environment (a .env file is honored) or from
a config file.

Example:
  signalbot run
  signalbot run --config signalbot.yaml
  signalbot run --dry-run`,
	RunE: runRun,
}

var (
	runConfigPath string
	runDryRun     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON); default is the environment")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "use an in-memory simulated account instead of the brokerage")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	account := buildAccount(cfg, runDryRun)

	audit, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer audit.Close()

	gate := auth.New(cfg.AllowedUsers)
	orch := trade.NewOrchestrator(account, cfg.RiskPercent, logger)
	b := bot.New(gate, account, orch, audit, cfg.AccountID, cfg.RiskPercent, logger)

	client := telegram.NewClient(cfg.TelegramToken)
	webhook := telegram.NewWebhook(b, client, logger)

	if cfg.PublicURL != "" && !runDryRun {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		callback := cfg.PublicURL + "/webhook"
		if err := client.SetWebhook(ctx, callback, true); err != nil {
			return fmt.Errorf("register webhook: %w", err)
		}
		logger.Info("webhook registered", zap.String("url", callback))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("listening",
		zap.String("addr", addr),
		zap.String("account", cfg.AccountID),
		zap.Float64("risk_percent", cfg.RiskPercent),
		zap.Bool("allow_all", gate.Open()),
		zap.Bool("dry_run", runDryRun),
	)
	return webhook.Run(addr)
}
