package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"hotelbot/database/repository"
	"hotelbot/models"
	"hotelbot/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const checkoutTemplateName = "checkout.html"

var checkoutTemplate = template.Must(template.New(checkoutTemplateName).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Checkout</title>
</head>
<body>
    <h1>{{ .Hotel }}</h1>
    <p>Booking Reference: {{ .BookingID }}</p>
    <p>Amount: {{ .Amount }}</p>
    <form action="/checkout/{{ .Reference }}" method="POST">
        <button type="submit">Pay Now</button>
    </form>
</body>
</html>
`))

// CheckoutTemplate is the HTML template set on the engine for the checkout page.
func CheckoutTemplate() *template.Template {
	return checkoutTemplate
}

// PaymentNotifier tells the guest a payment went through.
type PaymentNotifier interface {
	NotifyPaymentConfirmed(ctx context.Context, reference string) error
}

// CheckoutHandler serves the hosted checkout page.
type CheckoutHandler struct {
	Tenants  repository.TenantRepository
	Bookings repository.BookingRepository
	Payments payment.PaymentService
	Notifier PaymentNotifier
	Currency string
}

func NewCheckoutHandler(store repository.Store, payments payment.PaymentService, notifier PaymentNotifier, currency string) *CheckoutHandler {
	return &CheckoutHandler{
		Tenants:  store.Tenants,
		Bookings: store.Bookings,
		Payments: payments,
		Notifier: notifier,
		Currency: currency,
	}
}

// ShowCheckout renders the checkout page for a pending payment.
func (h *CheckoutHandler) ShowCheckout(c *gin.Context) {
	logger := getLogger(c)
	reference := c.Param("reference")

	p, err := h.Bookings.GetPaymentByReference(c.Request.Context(), reference)
	if errors.Is(err, repository.ErrNotFound) {
		c.String(http.StatusNotFound, "Payment not found.")
		return
	}
	if err != nil {
		logger.Error("Failed to load payment", zap.String("reference", reference), zap.Error(err))
		c.String(http.StatusInternalServerError, "Something went wrong.")
		return
	}
	if p.Status == models.PaymentSuccess {
		c.String(http.StatusOK, "Payment already successful.")
		return
	}

	hotel := "Checkout"
	if tenant, err := h.Tenants.GetByID(c.Request.Context(), p.TenantID); err == nil {
		hotel = tenant.Name
	} else {
		logger.Warn("Failed to load tenant for checkout page", zap.String("tenantId", p.TenantID), zap.Error(err))
	}

	c.HTML(http.StatusOK, checkoutTemplateName, gin.H{
		"Hotel":     hotel,
		"BookingID": p.BookingID,
		"Amount":    p.Amount.Format(h.Currency),
		"Reference": p.Reference,
	})
}

// VerifyCheckout settles the payment and notifies the guest on success.
func (h *CheckoutHandler) VerifyCheckout(c *gin.Context) {
	logger := getLogger(c)
	reference := c.Param("reference")

	v, err := h.Payments.VerifyPayment(c.Request.Context(), reference)
	if err != nil {
		logger.Error("Payment verification error", zap.String("reference", reference), zap.Error(err))
	}
	if !v.Paid {
		c.String(http.StatusOK, "Payment verification failed.")
		return
	}

	// Only the request that settled the payment tells the guest.
	if h.Notifier != nil && v.Settled {
		if err := h.Notifier.NotifyPaymentConfirmed(c.Request.Context(), reference); err != nil {
			logger.Error("Failed to notify guest of payment", zap.String("reference", reference), zap.Error(err))
		}
	}
	c.String(http.StatusOK, "Payment successful! Your booking is confirmed.")
}
