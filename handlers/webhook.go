package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"hotelbot/services/messaging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives WhatsApp deliveries from the channel provider.
type WebhookHandler struct {
	Messaging messaging.MessagingService
}

func NewWebhookHandler(svc messaging.MessagingService) *WebhookHandler {
	return &WebhookHandler{Messaging: svc}
}

// HandleInbound always answers 200 so the provider never retries a delivery;
// the body is "OK" or "Error".
func (h *WebhookHandler) HandleInbound(c *gin.Context) {
	logger := getLogger(c)

	msg := messaging.InboundMessage{
		From:        c.PostForm("From"),
		To:          c.PostForm("To"),
		Body:        c.PostForm("Body"),
		ProfileName: c.PostForm("ProfileName"),
		AccountSid:  c.PostForm("AccountSid"),
	}

	if err := h.process(c, msg); err != nil {
		switch {
		case errors.Is(err, messaging.ErrUnknownTenant), errors.Is(err, messaging.ErrRateLimited):
			// Already logged as a silent drop.
			c.String(http.StatusOK, "OK")
		default:
			logger.Error("Failed to process inbound message",
				zap.String("from", msg.From),
				zap.String("accountSid", msg.AccountSid),
				zap.Error(err),
			)
			c.String(http.StatusOK, "Error")
		}
		return
	}
	c.String(http.StatusOK, "OK")
}

func (h *WebhookHandler) process(c *gin.Context, msg messaging.InboundMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing message: %v", r)
		}
	}()
	return h.Messaging.ProcessInbound(c.Request.Context(), msg)
}
