package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/signalbot/auth"
	"github.com/rustyeddy/signalbot/broker"
	"github.com/rustyeddy/signalbot/broker/sim"
	"github.com/rustyeddy/signalbot/journal"
	"github.com/rustyeddy/signalbot/trade"
)

type recordingJournal struct {
	entries []journal.Entry
}

func (r *recordingJournal) Record(e journal.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *recordingJournal) Close() error { return nil }

func newTestBot(allowlist string) (*Bot, *sim.Account, *recordingJournal) {
	account := sim.New(broker.Snapshot{
		Balance:    10000,
		Equity:     10050,
		FreeMargin: 9500,
		Currency:   "USD",
	})
	account.SetSpec(broker.SymbolSpec{
		Symbol:     "EURUSD",
		PointSize:  0.0001,
		VolumeMin:  0.01,
		VolumeMax:  50,
		VolumeStep: 0.01,
	})
	account.SetPointValue("EURUSD", 1)
	account.QueuePrices("EURUSD", broker.Price{Bid: 1.0998, Ask: 1.1000})

	audit := &recordingJournal{}
	gate := auth.New(allowlist)
	orch := trade.NewOrchestrator(account, 1.0, nil)
	b := New(gate, account, orch, audit, "acct-1", 1.0, nil)
	return b, account, audit
}

func TestStart(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBot("")
	msg := b.Start("anyone")
	assert.Contains(t, msg, "✅ Signal bot connected")
	assert.Contains(t, msg, "Account: acct-1")
	assert.Contains(t, msg, "Risk: 1.0%")
	assert.Contains(t, msg, "BUY EURUSD 1.12345 SL 1.12000 TP 1.13000")
}

func TestStart_Unauthorized(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBot("alice")
	assert.Equal(t, "You are not authorized to use this bot.", b.Start("mallory"))
}

func TestBalance(t *testing.T) {
	t.Parallel()

	b, _, audit := newTestBot("")
	msg := b.Balance(context.Background(), "anyone")
	assert.Equal(t, "💰 Balance: $10000.00\n📊 Equity: $10050.00\n📉 Free Margin: $9500.00", msg)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "balance", audit.entries[0].Command)
	assert.Equal(t, "ok", audit.entries[0].Outcome)
}

func TestBalance_ConnectivityError(t *testing.T) {
	t.Parallel()

	b, account, _ := newTestBot("")
	account.FailConnect(errors.New("session expired"))

	msg := b.Balance(context.Background(), "anyone")
	assert.Contains(t, msg, "Error fetching balance: session expired")
}

func TestHandleSignal_UnauthorizedShortCircuits(t *testing.T) {
	t.Parallel()

	b, account, audit := newTestBot("alice")
	// Broker unusable: authorization must reject before any broker call.
	account.FailConnect(errors.New("must not be called"))

	msg := b.HandleSignal(context.Background(), "mallory", "BUY EURUSD 1.10000 SL 1.09500")
	assert.Equal(t, "⛔ Unauthorized", msg)
	assert.Empty(t, account.Orders())

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "authorization", audit.entries[0].Outcome)
}

func TestHandleSignal_ParseFailure(t *testing.T) {
	t.Parallel()

	b, account, audit := newTestBot("")
	msg := b.HandleSignal(context.Background(), "anyone", "hello there")
	assert.Contains(t, msg, "❌ Could not parse signal")
	assert.Empty(t, account.Orders())

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "parse", audit.entries[0].Outcome)
}

func TestHandleSignal_Success(t *testing.T) {
	t.Parallel()

	b, account, audit := newTestBot("alice")
	msg := b.HandleSignal(context.Background(), "alice", "BUY EURUSD 1.10000 SL 1.09500 TP 1.11000")

	assert.Contains(t, msg, "✅ Trade placed!")
	assert.Contains(t, msg, "BUY 2 EURUSD @ 1.10000")
	assert.Contains(t, msg, "Risk: $100.00 (1.0%)")
	require.Len(t, account.Orders(), 1)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "ok", audit.entries[0].Outcome)
	assert.NotEmpty(t, audit.entries[0].ID)
}

func TestHandleCommand_Routing(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBot("")
	ctx := context.Background()

	assert.Contains(t, b.HandleCommand(ctx, "anyone", "/start"), "Signal bot connected")
	assert.Contains(t, b.HandleCommand(ctx, "anyone", " /balance "), "💰 Balance")
	assert.Contains(t, b.HandleCommand(ctx, "anyone", "SELL EURUSD"), "✅ Trade placed!")
}

func TestHandleCommand_GroupChatSuffix(t *testing.T) {
	t.Parallel()

	b, account, _ := newTestBot("")
	ctx := context.Background()

	// In group chats Telegram delivers commands addressed to the bot, e.g.
	// "/start@mybot". These must route to the command handler, not fall
	// through to the signal parser.
	assert.Contains(t, b.HandleCommand(ctx, "anyone", "/start@signalbot"), "Signal bot connected")
	assert.Contains(t, b.HandleCommand(ctx, "anyone", "/balance@signalbot"), "💰 Balance")
	assert.Empty(t, account.Orders())
}
