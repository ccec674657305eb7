// Package telegram is the chat transport: an outbound Bot API client and
// the inbound webhook server. It carries no trading logic; everything it
// receives is handed to the bot layer and every reply is plain text.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.telegram.org"

type Client struct {
	apiURL string
	token  string
	http   *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		apiURL: DefaultAPIURL,
		token:  token,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithAPIURL points the client at a different API host (test server).
func (c *Client) WithAPIURL(base string) *Client {
	c.apiURL = strings.TrimRight(base, "/")
	return c
}

// SendMessage delivers one plain-text reply to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"text":    {text},
	})
}

// SetWebhook registers the public callback URL with the Bot API.
// dropPending discards updates queued while the bot was down, so a
// restart does not replay stale trading instructions.
func (c *Client) SetWebhook(ctx context.Context, webhookURL string, dropPending bool) error {
	return c.call(ctx, "setWebhook", url.Values{
		"url":                  {webhookURL},
		"drop_pending_updates": {strconv.FormatBool(dropPending)},
	})
}

func (c *Client) call(ctx context.Context, method string, form url.Values) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("telegram %s: http %d: %s", method, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var apiResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram %s: %s", method, apiResp.Description)
	}
	return nil
}
