// File: hotelbot/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Channel webhook
	WhatsAppWebhookHandler gin.HandlerFunc

	// Hosted checkout
	ShowCheckoutHandler   gin.HandlerFunc
	VerifyCheckoutHandler gin.HandlerFunc

	// Payments API
	GetPaymentStatusHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc

	MaxRequestsPerMin int
}

// NewHandlerBundle wires the handler structs into a bundle.
func NewHandlerBundle(webhook *WebhookHandler, checkout *CheckoutHandler, payments *PaymentHandler, maxRequestsPerMin int) *HandlerBundle {
	return &HandlerBundle{
		WhatsAppWebhookHandler:  webhook.HandleInbound,
		ShowCheckoutHandler:     checkout.ShowCheckout,
		VerifyCheckoutHandler:   checkout.VerifyCheckout,
		GetPaymentStatusHandler: payments.GetPaymentStatus,
		HealthHandler:           Health,
		MaxRequestsPerMin:       maxRequestsPerMin,
	}
}
