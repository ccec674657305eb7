// Package metaapi implements the broker.Account facade against the
// MetaApi cloud REST API.
package metaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/signalbot/broker"
)

const DefaultBaseURL = "https://mt-client-api-v1.agiliumtrade.agiliumtrade.ai"

// Client talks to one MetaTrader account through the MetaApi client API.
type Client struct {
	baseURL   string
	token     string
	accountID string
	http      *http.Client

	// WaitConnected polling knobs; overridable in tests.
	pollInterval time.Duration
	waitTimeout  time.Duration
}

func New(token, accountID string) *Client {
	return &Client{
		baseURL:      DefaultBaseURL,
		token:        token,
		accountID:    accountID,
		http:         &http.Client{Timeout: 30 * time.Second},
		pollInterval: time.Second,
		waitTimeout:  60 * time.Second,
	}
}

// WithBaseURL points the client at a different API host (regional
// endpoint, or a test server).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

func (c *Client) accountPath(suffix string) string {
	return "/users/current/accounts/" + c.accountID + suffix
}

// WaitConnected polls the account's connection status until the terminal
// session reports connected, the wait timeout elapses, or ctx is done.
func (c *Client) WaitConnected(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	var status struct {
		Status string `json:"status"`
	}
	for {
		err := c.get(ctx, c.accountPath("/connection-status"), nil, &status)
		if err == nil && status.Status == "connected" {
			return nil
		}

		select {
		case <-ctx.Done():
			if err == nil {
				err = fmt.Errorf("account status %q", status.Status)
			}
			return fmt.Errorf("wait connected: %w (last: %v)", ctx.Err(), err)
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) GetAccountInformation(ctx context.Context) (broker.Snapshot, error) {
	var info struct {
		Balance    float64 `json:"balance"`
		Equity     float64 `json:"equity"`
		FreeMargin float64 `json:"freeMargin"`
		Currency   string  `json:"currency"`
	}
	if err := c.get(ctx, c.accountPath("/account-information"), nil, &info); err != nil {
		return broker.Snapshot{}, fmt.Errorf("account information: %w", err)
	}
	return broker.Snapshot{
		Balance:    info.Balance,
		Equity:     info.Equity,
		FreeMargin: info.FreeMargin,
		Currency:   info.Currency,
	}, nil
}

func (c *Client) GetSymbolSpecification(ctx context.Context, symbol string) (broker.SymbolSpec, error) {
	var spec struct {
		Symbol     string  `json:"symbol"`
		PointSize  float64 `json:"pointSize"`
		VolumeMin  float64 `json:"volumeMin"`
		VolumeMax  float64 `json:"volumeMax"`
		VolumeStep float64 `json:"volumeStep"`
	}
	path := c.accountPath("/symbols/" + url.PathEscape(symbol) + "/specification")
	if err := c.get(ctx, path, nil, &spec); err != nil {
		return broker.SymbolSpec{}, fmt.Errorf("symbol specification %s: %w", symbol, err)
	}
	return broker.SymbolSpec{
		Symbol:     spec.Symbol,
		PointSize:  spec.PointSize,
		VolumeMin:  spec.VolumeMin,
		VolumeMax:  spec.VolumeMax,
		VolumeStep: spec.VolumeStep,
	}, nil
}

func (c *Client) GetPointValue(ctx context.Context, symbol, currency string) (float64, error) {
	var pv struct {
		PointValue float64 `json:"pointValue"`
	}
	path := c.accountPath("/symbols/" + url.PathEscape(symbol) + "/point-value")
	if err := c.get(ctx, path, map[string]string{"currency": currency}, &pv); err != nil {
		return 0, fmt.Errorf("point value %s/%s: %w", symbol, currency, err)
	}
	return pv.PointValue, nil
}

func (c *Client) GetCurrentPrice(ctx context.Context, symbol string) (broker.Price, error) {
	var price struct {
		Symbol string  `json:"symbol"`
		Bid    float64 `json:"bid"`
		Ask    float64 `json:"ask"`
	}
	path := c.accountPath("/symbols/" + url.PathEscape(symbol) + "/current-price")
	if err := c.get(ctx, path, nil, &price); err != nil {
		return broker.Price{}, fmt.Errorf("current price %s: %w", symbol, err)
	}
	return broker.Price{Symbol: symbol, Bid: price.Bid, Ask: price.Ask}, nil
}

func (c *Client) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderResult, error) {
	body := map[string]any{
		"actionType": string(req.Side),
		"symbol":     req.Symbol,
		"volume":     req.Volume,
		"price":      req.Price,
		"comment":    req.Comment,
	}
	if req.StopLoss != nil {
		body["stopLoss"] = *req.StopLoss
	}
	if req.TakeProfit != nil {
		body["takeProfit"] = *req.TakeProfit
	}

	var result struct {
		OrderID    string `json:"orderId"`
		StringCode string `json:"stringCode"`
		Message    string `json:"message"`
	}
	if err := c.post(ctx, c.accountPath("/trade"), body, &result); err != nil {
		return broker.OrderResult{}, fmt.Errorf("create market order: %w", err)
	}

	// The trade endpoint answers 200 even for rejections; the string code
	// carries the verdict.
	if result.StringCode != "" && result.StringCode != "TRADE_RETCODE_DONE" {
		msg := result.Message
		if msg == "" {
			msg = result.StringCode
		}
		return broker.OrderResult{}, fmt.Errorf("order rejected: %s", msg)
	}

	return broker.OrderResult{
		OrderID: result.OrderID,
		Code:    result.StringCode,
		Message: result.Message,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, opts map[string]string, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u.Path = path

	q := u.Query()
	for k, v := range opts {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u.Path = path

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("auth-token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("metaapi http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
