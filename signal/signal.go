package signal

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Action is the trade direction extracted from a message.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Signal is a structured trade instruction derived from one free-form
// message. Action and Instrument are always set; the price fields are nil
// when the message did not carry them. A Signal is immutable once parsed.
type Signal struct {
	Action     Action
	Instrument string
	Entry      *float64
	StopLoss   *float64
	TakeProfit *float64
}

var (
	ErrNoAction     = errors.New("signal: no BUY or SELL token")
	ErrNoInstrument = errors.New("signal: no instrument token")
)

var (
	actionRe = regexp.MustCompile(`\b(BUY|SELL)\b`)
	pairRe   = regexp.MustCompile(`\b([A-Z]{6})\b`)
	tickerRe = regexp.MustCompile(`\b(XAU|XAG|BTC|ETH)\b`)
	priceRe  = regexp.MustCompile(`\b(\d+\.\d+)\b`)
	slRe     = regexp.MustCompile(`SL\s*(\d+\.\d+)`)
	tpRe     = regexp.MustCompile(`TP\s*(\d+\.\d+)`)
)

// Parse scans message text left to right for a trade instruction:
// a BUY/SELL token, an instrument, and optional entry, SL and TP prices.
//
//	BUY EURUSD 1.12345 SL 1.12000 TP 1.13000
//
// Only the action and instrument are mandatory. The instrument is the
// first six-uppercase-letter token, falling back to a short list of
// metal/crypto tickers; an unrelated six-letter word before the real
// symbol will therefore be picked up instead. The entry is the first
// decimal literal anywhere in the text, so an SL or TP value written
// before the entry price is read as the entry. Both quirks are part of
// the accepted message format and are kept for compatibility.
//
// Parse is pure: the same text always yields the same result.
func Parse(text string) (Signal, error) {
	text = strings.ToUpper(strings.TrimSpace(text))

	action := actionRe.FindStringSubmatch(text)
	if action == nil {
		return Signal{}, ErrNoAction
	}

	instrument := pairRe.FindStringSubmatch(text)
	if instrument == nil {
		instrument = tickerRe.FindStringSubmatch(text)
	}
	if instrument == nil {
		return Signal{}, ErrNoInstrument
	}

	sig := Signal{
		Action:     Action(action[1]),
		Instrument: instrument[1],
		Entry:      number(priceRe, text),
		StopLoss:   number(slRe, text),
		TakeProfit: number(tpRe, text),
	}
	return sig, nil
}

func number(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}
