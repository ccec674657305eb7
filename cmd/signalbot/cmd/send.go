package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/signalbot/auth"
	"github.com/rustyeddy/signalbot/bot"
	"github.com/rustyeddy/signalbot/trade"
)

var sendCmd = &cobra.Command{
	Use:   "send [signal text]",
	Short: "Run one signal through the pipeline from the command line",
	Long: `Feed a single signal through parsing, sizing and order submission
without going through Telegram. Useful for smoke tests.

The allow-list does not apply: invoking the CLI is taken as authorization.

Examples:
  signalbot send --dry-run BUY EURUSD 1.08500 SL 1.08000 TP 1.09500
  signalbot send SELL XAU`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

var (
	sendConfigPath string
	sendDryRun     bool
)

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendConfigPath, "config", "f", "", "path to config file (YAML or JSON); default is the environment")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "use an in-memory simulated account instead of the brokerage")
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(sendConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	account := buildAccount(cfg, sendDryRun)

	audit, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer audit.Close()

	orch := trade.NewOrchestrator(account, cfg.RiskPercent, logger)
	b := bot.New(auth.New(""), account, orch, audit, cfg.AccountID, cfg.RiskPercent, logger)

	text := strings.Join(args, " ")
	reply := b.HandleSignal(cmd.Context(), "cli", text)
	fmt.Println(reply)
	return nil
}
