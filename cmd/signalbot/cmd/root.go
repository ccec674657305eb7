package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/rustyeddy/signalbot/broker/metaapi"
	"github.com/rustyeddy/signalbot/broker/sim"
	"github.com/rustyeddy/signalbot/config"
	"github.com/rustyeddy/signalbot/journal"
)

var rootCmd = &cobra.Command{
	Use:   "signalbot",
	Short: "A Telegram-to-brokerage trading signal relay",
	Long: `Signalbot relays short free-form trading instructions received over
Telegram into risk-sized market orders on a MetaTrader account.

It provides:
  - A webhook server for Telegram bot updates
  - Signal parsing (BUY EURUSD 1.12345 SL 1.12000 TP 1.13000)
  - Risk-based position sizing against live account equity
  - A static allow-list gate for trading commands
  - An optional audit journal of every handled command`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the effective configuration: an explicit file wins,
// otherwise the environment (with .env honored when present).
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	_ = godotenv.Load()
	return config.FromEnv()
}

// buildAccount picks the broker facade: the MetaApi client, or a seeded
// in-memory account when dry-run is set.
func buildAccount(cfg *config.Config, dryRun bool) broker.Account {
	if !dryRun {
		client := metaapi.New(cfg.MetaAPIToken, cfg.AccountID)
		if cfg.BrokerURL != "" {
			client.WithBaseURL(cfg.BrokerURL)
		}
		return client
	}

	account := sim.New(broker.Snapshot{
		Balance:    10000,
		Equity:     10000,
		FreeMargin: 9500,
		Currency:   "USD",
	})
	account.SetSpec(broker.SymbolSpec{
		Symbol: "EURUSD", PointSize: 0.0001, VolumeMin: 0.01, VolumeMax: 50, VolumeStep: 0.01,
	})
	account.SetSpec(broker.SymbolSpec{
		Symbol: "GBPUSD", PointSize: 0.0001, VolumeMin: 0.01, VolumeMax: 50, VolumeStep: 0.01,
	})
	account.SetSpec(broker.SymbolSpec{
		Symbol: "XAU", PointSize: 0.01, VolumeMin: 0.01, VolumeMax: 20, VolumeStep: 0.01,
	})
	account.SetPointValue("EURUSD", 1)
	account.SetPointValue("GBPUSD", 1)
	account.SetPointValue("XAU", 1)
	account.QueuePrices("EURUSD", broker.Price{Bid: 1.0849, Ask: 1.0851})
	account.QueuePrices("GBPUSD", broker.Price{Bid: 1.2649, Ask: 1.2651})
	account.QueuePrices("XAU", broker.Price{Bid: 2312.50, Ask: 2313.10})
	return account
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.Path)
	case "csv":
		return journal.NewCSV(cfg.Journal.Path)
	default:
		return journal.Nop{}, nil
	}
}

func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
