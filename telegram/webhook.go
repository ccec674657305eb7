package telegram

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler produces one reply for one inbound message. Satisfied by
// bot.Bot; an interface here so the transport is testable without the
// trading stack.
type Handler interface {
	HandleCommand(ctx context.Context, identity, text string) string
}

// Webhook is the inbound side of the transport: a small HTTP server the
// Bot API posts updates to. Each update runs on its own request
// goroutine; there is no shared per-request state.
type Webhook struct {
	handler Handler
	client  *Client
	log     *zap.Logger
}

func NewWebhook(handler Handler, client *Client, log *zap.Logger) *Webhook {
	if log == nil {
		log = zap.NewNop()
	}
	return &Webhook{handler: handler, client: client, log: log}
}

// Router builds the gin engine serving the webhook path and a health
// probe.
func (w *Webhook) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/webhook", w.handleUpdate)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

// Run serves the router on addr until the listener fails.
func (w *Webhook) Run(addr string) error {
	return w.Router().Run(addr)
}

func (w *Webhook) handleUpdate(c *gin.Context) {
	var u Update
	if err := c.ShouldBindJSON(&u); err != nil {
		w.log.Warn("malformed update", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	// Non-message updates (edits, joins) are acknowledged and dropped.
	if u.Message == nil || u.Message.Text == "" {
		c.Status(http.StatusOK)
		return
	}

	identity := ""
	if u.Message.From != nil {
		identity = u.Message.From.Username
	}

	ctx := c.Request.Context()
	reply := w.handler.HandleCommand(ctx, identity, u.Message.Text)
	if err := w.client.SendMessage(ctx, u.Message.Chat.ID, reply); err != nil {
		w.log.Error("send reply", zap.Int64("chat", u.Message.Chat.ID), zap.Error(err))
	}

	c.Status(http.StatusOK)
}
