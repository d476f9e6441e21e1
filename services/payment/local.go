package payment

import (
	"context"
	"errors"
	"fmt"

	"hotelbot/database"
	"hotelbot/database/repository"
	"hotelbot/models"

	"go.uber.org/zap"
)

// LocalPaymentService is a mock provider: the checkout page itself settles the payment.
type LocalPaymentService struct {
	bookings repository.BookingRepository
	tx       repository.Transactor
	baseURL  string
	logger   *zap.Logger
}

func NewLocalPaymentService(bookings repository.BookingRepository, tx repository.Transactor, baseURL string, logger *zap.Logger) *LocalPaymentService {
	return &LocalPaymentService{bookings: bookings, tx: tx, baseURL: baseURL, logger: logger}
}

func (s *LocalPaymentService) GeneratePaymentLink(ctx context.Context, booking *models.Booking) (*models.Payment, error) {
	reference := NewReference()
	p := &models.Payment{
		TenantID:    booking.TenantID,
		BookingID:   booking.ID,
		Provider:    models.PaymentProviderLocal,
		Reference:   reference,
		CheckoutURL: CheckoutURL(s.baseURL, reference),
		Amount:      booking.Amount,
		Status:      models.PaymentPending,
	}
	if err := s.bookings.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record payment for booking %s: %w", booking.ID, err)
	}
	return p, nil
}

func (s *LocalPaymentService) VerifyPayment(ctx context.Context, reference string) (Verification, error) {
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
	return settle(ctx, s.bookings, s.tx, p, s.logger)
}
