package payment

import (
	"context"
	"fmt"
	"strings"

	"hotelbot/database/repository"
	"hotelbot/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService is the payment capability used by the booking flow and the checkout pages.
type PaymentService interface {
	// GeneratePaymentLink records a pending payment for booking and returns it with its checkout URL.
	GeneratePaymentLink(ctx context.Context, booking *models.Booking) (*models.Payment, error)
	// VerifyPayment settles the payment behind reference. On success the payment is marked
	// success and its booking confirmed; verifying an already settled payment reports Paid
	// without Settled.
	VerifyPayment(ctx context.Context, reference string) (Verification, error)
}

// Verification is the outcome of VerifyPayment.
type Verification struct {
	Paid    bool // the payment is settled
	Settled bool // this call performed the settlement; only one caller ever sees it
}

// NewReference returns a payment reference such as "REF-8F3A09C1D2".
func NewReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "REF-" + strings.ToUpper(raw[:10])
}

// CheckoutURL is the hosted checkout page for a reference.
func CheckoutURL(baseURL, reference string) string {
	return strings.TrimRight(baseURL, "/") + "/checkout/" + reference
}

// markPaid flips a pending payment to success and confirms its booking in one transaction.
// It reports false when the payment was no longer pending.
func markPaid(ctx context.Context, bookings repository.BookingRepository, tx repository.Transactor, p *models.Payment) (bool, error) {
	var changed bool
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		changed, err = bookings.TransitionPaymentStatus(ctx, p.TenantID, p.Reference, models.PaymentPending, models.PaymentSuccess)
		if err != nil || !changed {
			return err
		}
		return bookings.UpdateBookingStatus(ctx, p.TenantID, p.BookingID, models.BookingConfirmed)
	})
	if err != nil {
		return false, fmt.Errorf("failed to settle payment %s: %w", p.Reference, err)
	}
	if changed {
		p.Status = models.PaymentSuccess
	}
	return changed, nil
}

// settle runs markPaid and resolves lost races against a concurrent verification.
func settle(ctx context.Context, bookings repository.BookingRepository, tx repository.Transactor, p *models.Payment, logger *zap.Logger) (Verification, error) {
	changed, err := markPaid(ctx, bookings, tx, p)
	if err == nil && changed {
		logger.Info("Payment verified",
			zap.String("tenantId", p.TenantID),
			zap.String("reference", p.Reference),
			zap.String("provider", p.Provider),
		)
		return Verification{Paid: true, Settled: true}, nil
	}

	// Either another request settled it first or its transaction aborted ours.
	current, getErr := bookings.GetPaymentByReference(ctx, p.Reference)
	if getErr == nil && current.Status == models.PaymentSuccess {
		logger.Debug("Payment already settled by another request", zap.String("reference", p.Reference))
		return Verification{Paid: true}, nil
	}
	if err != nil {
		return Verification{}, err
	}
	return Verification{}, nil
}
