// Package bot routes inbound chat commands through the allow-list gate
// and the trading pipeline, producing the plain-text replies the
// transport sends back.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/signalbot/auth"
	"github.com/rustyeddy/signalbot/broker"
	"github.com/rustyeddy/signalbot/id"
	"github.com/rustyeddy/signalbot/journal"
	"github.com/rustyeddy/signalbot/signal"
	"github.com/rustyeddy/signalbot/trade"
)

const rejectionMessage = "You are not authorized to use this bot."

type Bot struct {
	gate        *auth.Allowlist
	account     broker.Account
	orch        *trade.Orchestrator
	audit       journal.Journal
	accountID   string
	riskPercent float64
	log         *zap.Logger
}

func New(gate *auth.Allowlist, account broker.Account, orch *trade.Orchestrator, audit journal.Journal, accountID string, riskPercent float64, log *zap.Logger) *Bot {
	if audit == nil {
		audit = journal.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		gate:        gate,
		account:     account,
		orch:        orch,
		audit:       audit,
		accountID:   accountID,
		riskPercent: riskPercent,
		log:         log,
	}
}

// HandleCommand routes one inbound message and returns the reply text.
// Named commands go to their handlers; anything else is treated as a
// trading signal.
func (b *Bot) HandleCommand(ctx context.Context, identity, text string) string {
	switch command(text) {
	case "/start":
		return b.Start(identity)
	case "/balance":
		return b.Balance(ctx, identity)
	default:
		return b.HandleSignal(ctx, identity, text)
	}
}

// command normalizes a message for routing. Telegram addresses commands
// in group chats as "/balance@mybot"; the bot-name suffix is stripped so
// both forms route the same way. Non-command text passes through.
func command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	name, _, _ := strings.Cut(text, "@")
	return name
}

// Start replies with the connection banner and usage example.
func (b *Bot) Start(identity string) string {
	if !b.gate.Authorized(identity) {
		return rejectionMessage
	}
	return fmt.Sprintf(
		"✅ Signal bot connected\nAccount: %s\nRisk: %.1f%%\n\nSend a signal like:\nBUY EURUSD 1.12345 SL 1.12000 TP 1.13000",
		b.accountID, b.riskPercent,
	)
}

// Balance replies with the account balance report.
func (b *Bot) Balance(ctx context.Context, identity string) string {
	if !b.gate.Authorized(identity) {
		return rejectionMessage
	}

	if err := b.account.WaitConnected(ctx); err != nil {
		b.record(identity, "balance", "/balance", "connectivity", err.Error())
		return fmt.Sprintf("Error fetching balance: %v", err)
	}
	info, err := b.account.GetAccountInformation(ctx)
	if err != nil {
		b.record(identity, "balance", "/balance", "connectivity", err.Error())
		return fmt.Sprintf("Error fetching balance: %v", err)
	}

	b.record(identity, "balance", "/balance", "ok", "")
	return fmt.Sprintf(
		"💰 Balance: $%.2f\n📊 Equity: $%.2f\n📉 Free Margin: $%.2f",
		info.Balance, info.Equity, info.FreeMargin,
	)
}

// HandleSignal runs one free-text message through gate, parser and
// orchestrator. Every path returns a user-visible reply; nothing is
// swallowed or retried.
func (b *Bot) HandleSignal(ctx context.Context, identity, text string) string {
	if !b.gate.Authorized(identity) {
		f := &trade.Failure{Kind: trade.FailAuthorization, Err: fmt.Errorf("%q not in allow-list", identity)}
		b.record(identity, "signal", text, f.Kind.String(), f.Error())
		return f.Message()
	}

	b.log.Info("signal received", zap.String("from", identity), zap.String("text", text))

	sig, err := signal.Parse(text)
	if err != nil {
		f := &trade.Failure{Kind: trade.FailParse, Err: err}
		b.record(identity, "signal", text, f.Kind.String(), f.Error())
		return f.Message()
	}

	conf, failure := b.orch.Execute(ctx, sig)
	if failure != nil {
		b.log.Error("trade failed",
			zap.String("kind", failure.Kind.String()),
			zap.Error(failure.Err),
		)
		b.record(identity, "signal", text, failure.Kind.String(), failure.Error())
		return failure.Message()
	}

	b.record(identity, "signal", text, "ok",
		fmt.Sprintf("%s %g %s @ %.5f order %s", conf.Action, conf.Volume, conf.Instrument, conf.Price, conf.OrderID))
	return conf.Message()
}

// record writes an audit entry; audit problems are logged, never surfaced
// to the user.
func (b *Bot) record(identity, command, text, outcome, detail string) {
	err := b.audit.Record(journal.Entry{
		ID:       id.New(),
		Time:     time.Now().UTC(),
		Identity: identity,
		Command:  command,
		Text:     text,
		Outcome:  outcome,
		Detail:   detail,
	})
	if err != nil {
		b.log.Warn("audit record failed", zap.Error(err))
	}
}
