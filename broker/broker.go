package broker

import "context"

// Account is the facade over the brokerage connection. The relay core only
// talks to the broker through this interface; session lifecycle, transport
// and reconnects live behind it.
//
// Every method takes the request context so the transport layer can bound
// it; the core itself adds no timeouts.
type Account interface {
	// WaitConnected blocks until the account is tradable or the attempt
	// is abandoned.
	WaitConnected(ctx context.Context) error
	GetAccountInformation(ctx context.Context) (Snapshot, error)
	GetSymbolSpecification(ctx context.Context, symbol string) (SymbolSpec, error)
	// GetPointValue returns the value of one point of movement for 1.0
	// volume of symbol, in the given account currency.
	GetPointValue(ctx context.Context, symbol, currency string) (float64, error)
	GetCurrentPrice(ctx context.Context, symbol string) (Price, error)
	CreateMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderResult, error)
}

// Snapshot is the account state at one moment. Fetched fresh per command,
// never mutated locally.
type Snapshot struct {
	Balance    float64
	Equity     float64
	FreeMargin float64
	Currency   string
}

// SymbolSpec holds an instrument's trading constraints, authoritative for
// the single request it was fetched for.
type SymbolSpec struct {
	Symbol     string
	PointSize  float64
	VolumeMin  float64
	VolumeMax  float64
	VolumeStep float64
}

type Price struct {
	Symbol string
	Bid    float64
	Ask    float64
}

func (p Price) Mid() float64 {
	return (p.Bid + p.Ask) / 2
}

func (p Price) Spread() float64 {
	return p.Ask - p.Bid
}

// Side uses the broker's order-type vocabulary on the wire.
type Side string

const (
	Buy  Side = "ORDER_TYPE_BUY"
	Sell Side = "ORDER_TYPE_SELL"
)

// MarketOrderRequest is built once by the orchestrator and submitted
// exactly once; it is never retried or mutated after submission.
type MarketOrderRequest struct {
	Symbol     string
	Side       Side
	Volume     float64
	Price      float64
	StopLoss   *float64
	TakeProfit *float64
	Comment    string
}

type OrderResult struct {
	OrderID string
	Code    string
	Message string
}
