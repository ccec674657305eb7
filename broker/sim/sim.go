// Package sim provides a deterministic in-memory broker.Account used by
// tests and dry runs. Prices, specs and point values are seeded by the
// caller; submitted orders are captured for inspection.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/rustyeddy/signalbot/id"
)

var ErrNoPrice = errors.New("sim: no price for instrument")

type Account struct {
	mu          sync.Mutex
	snapshot    broker.Snapshot
	specs       map[string]broker.SymbolSpec
	pointValues map[string]float64
	prices      map[string][]broker.Price
	orders      []broker.MarketOrderRequest

	connectErr error
	submitErr  error
}

func New(snapshot broker.Snapshot) *Account {
	return &Account{
		snapshot:    snapshot,
		specs:       make(map[string]broker.SymbolSpec),
		pointValues: make(map[string]float64),
		prices:      make(map[string][]broker.Price),
	}
}

func (a *Account) SetSpec(spec broker.SymbolSpec) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.specs[spec.Symbol] = spec
}

func (a *Account) SetPointValue(symbol string, value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pointValues[symbol] = value
}

// QueuePrices appends quotes for symbol. Each GetCurrentPrice call pops
// one; the last quote sticks once the queue is down to a single entry, so
// tests can model a market that moves between lookups.
func (a *Account) QueuePrices(symbol string, prices ...broker.Price) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range prices {
		p.Symbol = symbol
		a.prices[symbol] = append(a.prices[symbol], p)
	}
}

// FailConnect makes WaitConnected return err until reset with nil.
func (a *Account) FailConnect(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connectErr = err
}

// FailSubmit makes CreateMarketOrder return err until reset with nil.
func (a *Account) FailSubmit(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.submitErr = err
}

// Orders returns a copy of every submitted order, in submission order.
func (a *Account) Orders() []broker.MarketOrderRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]broker.MarketOrderRequest, len(a.orders))
	copy(out, a.orders)
	return out
}

func (a *Account) WaitConnected(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connectErr
}

func (a *Account) GetAccountInformation(ctx context.Context) (broker.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot, nil
}

func (a *Account) GetSymbolSpecification(ctx context.Context, symbol string) (broker.SymbolSpec, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	spec, ok := a.specs[symbol]
	if !ok {
		return broker.SymbolSpec{}, fmt.Errorf("sim: no specification for %q", symbol)
	}
	return spec, nil
}

func (a *Account) GetPointValue(ctx context.Context, symbol, currency string) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pv, ok := a.pointValues[symbol]
	if !ok {
		return 0, fmt.Errorf("sim: no point value for %q", symbol)
	}
	return pv, nil
}

func (a *Account) GetCurrentPrice(ctx context.Context, symbol string) (broker.Price, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	queue := a.prices[symbol]
	if len(queue) == 0 {
		return broker.Price{}, fmt.Errorf("%w: %q", ErrNoPrice, symbol)
	}
	p := queue[0]
	if len(queue) > 1 {
		a.prices[symbol] = queue[1:]
	}
	return p, nil
}

func (a *Account) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitErr != nil {
		return broker.OrderResult{}, a.submitErr
	}
	a.orders = append(a.orders, req)
	return broker.OrderResult{
		OrderID: id.New(),
		Code:    "TRADE_RETCODE_DONE",
		Message: "done",
	}, nil
}
