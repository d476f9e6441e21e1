package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotelbot/database"
	"hotelbot/database/repository"
	"hotelbot/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// StripePaymentService takes payments through Stripe Checkout.
type StripePaymentService struct {
	sc       *client.API
	bookings repository.BookingRepository
	tx       repository.Transactor
	currency string
	baseURL  string
	logger   *zap.Logger
}

// NewStripePaymentService builds the service. A nil backends uses Stripe's live API.
func NewStripePaymentService(key string, backends *stripe.Backends, bookings repository.BookingRepository, tx repository.Transactor, currency, baseURL string, logger *zap.Logger) *StripePaymentService {
	return &StripePaymentService{
		sc:       client.New(key, backends),
		bookings: bookings,
		tx:       tx,
		currency: currency,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (s *StripePaymentService) GeneratePaymentLink(ctx context.Context, booking *models.Booking) (*models.Payment, error) {
	reference := NewReference()
	returnURL := CheckoutURL(s.baseURL, reference)

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(reference),
		SuccessURL:        stripe.String(returnURL),
		CancelURL:         stripe.String(returnURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.currency),
					UnitAmount: stripe.Int64(booking.Amount.MinorUnitsExp(currencyExponent(s.currency))),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Booking %s (%d nights from %s)", booking.ID, booking.Nights, booking.CheckIn)),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("tenant_id", booking.TenantID)
	params.AddMetadata("booking_id", booking.ID)

	sess, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe checkout session: %w", err)
	}

	p := &models.Payment{
		TenantID:    booking.TenantID,
		BookingID:   booking.ID,
		Provider:    models.PaymentProviderStripe,
		Reference:   reference,
		ProviderRef: sess.ID,
		CheckoutURL: sess.URL,
		Amount:      booking.Amount,
		Status:      models.PaymentPending,
	}
	if err := s.bookings.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record payment for booking %s: %w", booking.ID, err)
	}
	return p, nil
}

func (s *StripePaymentService) VerifyPayment(ctx context.Context, reference string) (Verification, error) {
	p, err := s.bookings.GetPaymentByReference(ctx, reference)
	if errors.Is(err, database.ErrNotFound) {
		return Verification{}, nil
	}
	if err != nil {
		return Verification{}, err
	}
	if p.Status == models.PaymentSuccess {
		return Verification{Paid: true}, nil
	}
	if p.ProviderRef == "" {
		return Verification{}, fmt.Errorf("payment %s has no stripe session", reference)
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := s.sc.CheckoutSessions.Get(p.ProviderRef, params)
	if err != nil {
		return Verification{}, fmt.Errorf("failed to fetch stripe checkout session %s: %w", p.ProviderRef, err)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		s.logger.Info("Stripe session not paid yet",
			zap.String("reference", reference),
			zap.String("paymentStatus", string(sess.PaymentStatus)),
		)
		return Verification{}, nil
	}

	return settle(ctx, s.bookings, s.tx, p, s.logger)
}

// Currencies Stripe charges in whole units or in thousandths; everything else has cents.
var (
	zeroDecimalCurrencies = map[string]bool{
		"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
		"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
		"vuv": true, "xaf": true, "xof": true, "xpf": true,
	}
	threeDecimalCurrencies = map[string]bool{
		"bhd": true, "jod": true, "kwd": true, "omr": true, "tnd": true,
	}
)

// currencyExponent is the number of decimal places Stripe expects for currency.
func currencyExponent(currency string) int32 {
	c := strings.ToLower(strings.TrimSpace(currency))
	switch {
	case zeroDecimalCurrencies[c]:
		return 0
	case threeDecimalCurrencies[c]:
		return 3
	}
	return 2
}
