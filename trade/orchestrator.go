package trade

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/rustyeddy/signalbot/risk"
	"github.com/rustyeddy/signalbot/signal"
)

// Comment tags every submitted order with its source channel.
const Comment = "Telegram Signal"

// Orchestrator turns one parsed Signal into a submitted market order. It
// holds no per-request state: every account and market value is fetched
// fresh, so concurrent signals are processed independently. Two
// near-simultaneous signals can both size against the same balance,
// unaware of each other's pending order; that race is accepted, matching
// the unsynchronized behavior of the chat transport feeding it.
type Orchestrator struct {
	account     broker.Account
	riskPercent float64
	log         *zap.Logger
}

func NewOrchestrator(account broker.Account, riskPercent float64, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		account:     account,
		riskPercent: riskPercent,
		log:         log,
	}
}

// Confirmation describes a successfully submitted order, ready for
// message formatting.
type Confirmation struct {
	Action      signal.Action
	Instrument  string
	Volume      float64
	Price       float64
	StopLoss    *float64
	TakeProfit  *float64
	RiskAmount  float64
	RiskPercent float64
	OrderID     string
}

// Execute runs the lookup-size-submit sequence for one signal. It is
// terminal on the first failure; once CreateMarketOrder has been called
// there is no path that leaves a partial order behind from this side.
func (o *Orchestrator) Execute(ctx context.Context, sig signal.Signal) (Confirmation, *Failure) {
	if err := o.account.WaitConnected(ctx); err != nil {
		return Confirmation{}, failf(FailConnectivity, "broker not ready: %w", err)
	}

	info, err := o.account.GetAccountInformation(ctx)
	if err != nil {
		return Confirmation{}, fail(FailConnectivity, err)
	}
	spec, err := o.account.GetSymbolSpecification(ctx, sig.Instrument)
	if err != nil {
		return Confirmation{}, fail(FailConnectivity, err)
	}

	entry := sig.Entry
	if entry == nil {
		price, err := o.account.GetCurrentPrice(ctx, sig.Instrument)
		if err != nil {
			return Confirmation{}, fail(FailConnectivity, err)
		}
		p := price.Ask
		if sig.Action == signal.Sell {
			p = price.Bid
		}
		entry = &p
	}

	volume := spec.VolumeMin
	if sig.StopLoss != nil {
		pointValue, err := o.account.GetPointValue(ctx, sig.Instrument, info.Currency)
		if err != nil {
			return Confirmation{}, fail(FailConnectivity, err)
		}
		sized, err := risk.Calculate(risk.Inputs{
			Balance:     info.Balance,
			RiskPercent: o.riskPercent,
			Entry:       entry,
			StopLoss:    sig.StopLoss,
			Spec: risk.Spec{
				PointSize:  spec.PointSize,
				PointValue: pointValue,
				VolumeMin:  spec.VolumeMin,
				VolumeMax:  spec.VolumeMax,
				VolumeStep: spec.VolumeStep,
			},
		})
		if err != nil {
			return Confirmation{}, fail(FailSizing, err)
		}
		volume = sized.Volume
	}

	// Second quote on purpose: the market may have moved since the entry
	// lookup, and the order should carry the latest tradable price.
	price, err := o.account.GetCurrentPrice(ctx, sig.Instrument)
	if err != nil {
		return Confirmation{}, fail(FailConnectivity, err)
	}
	execPrice := price.Ask
	side := broker.Buy
	if sig.Action == signal.Sell {
		execPrice = price.Bid
		side = broker.Sell
	}

	result, err := o.account.CreateMarketOrder(ctx, broker.MarketOrderRequest{
		Symbol:     sig.Instrument,
		Side:       side,
		Volume:     volume,
		Price:      execPrice,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Comment:    Comment,
	})
	if err != nil {
		return Confirmation{}, fail(FailSubmission, err)
	}

	o.log.Info("order submitted",
		zap.String("instrument", sig.Instrument),
		zap.String("side", string(side)),
		zap.Float64("volume", volume),
		zap.Float64("price", execPrice),
		zap.Float64("mid", price.Mid()),
		zap.Float64("spread", price.Spread()),
		zap.String("order_id", result.OrderID),
	)

	return Confirmation{
		Action:      sig.Action,
		Instrument:  sig.Instrument,
		Volume:      volume,
		Price:       execPrice,
		StopLoss:    sig.StopLoss,
		TakeProfit:  sig.TakeProfit,
		RiskAmount:  info.Balance * o.riskPercent / 100,
		RiskPercent: o.riskPercent,
		OrderID:     result.OrderID,
	}, nil
}

// Message renders the trade confirmation reply.
func (c Confirmation) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Trade placed!\n")
	fmt.Fprintf(&b, "%s %s %s @ %.5f\n", c.Action, fmtVolume(c.Volume), c.Instrument, c.Price)
	fmt.Fprintf(&b, "SL: %s | TP: %s\n", fmtPrice(c.StopLoss), fmtPrice(c.TakeProfit))
	fmt.Fprintf(&b, "Risk: $%.2f (%.1f%%)", c.RiskAmount, c.RiskPercent)
	return b.String()
}

func fmtVolume(v float64) string {
	return fmt.Sprintf("%g", v)
}

func fmtPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *p)
}
