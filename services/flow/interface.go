package flow

import (
	"context"
	"time"

	"hotelbot/database/repository"
	"hotelbot/models"

	"go.uber.org/zap"
)

// BookingFlow turns a guest's free text into the next step of the booking dialogue.
type BookingFlow interface {
	// ProcessMessage advances conv by one message and returns the reply text. Validation
	// failures produce a corrective reply and a nil error; a non-nil error means nothing
	// was persisted for this message.
	ProcessMessage(ctx context.Context, tenant *models.Tenant, conv *models.Conversation, body string) (string, error)
}

// PaymentLinker creates the payment record and checkout link for a booking.
type PaymentLinker interface {
	GeneratePaymentLink(ctx context.Context, booking *models.Booking) (*models.Payment, error)
}

// ReminderScheduler queues a follow-up for an unpaid booking.
type ReminderScheduler interface {
	SchedulePaymentReminder(ctx context.Context, tenantID, reference string) error
}

// DefaultBookingFlow implements BookingFlow.
type DefaultBookingFlow struct {
	Conversations repository.ConversationRepository
	Bookings      repository.BookingRepository
	Payments      PaymentLinker
	Tx            repository.Transactor
	Reminders     ReminderScheduler // optional
	Currency      string
	Logger        *zap.Logger
	Now           func() time.Time
}

// NewBookingFlow wires a DefaultBookingFlow with the real clock.
func NewBookingFlow(store repository.Store, payments PaymentLinker, reminders ReminderScheduler, currency string, logger *zap.Logger) *DefaultBookingFlow {
	if currency == "" {
		currency = "$"
	}
	return &DefaultBookingFlow{
		Conversations: store.Conversations,
		Bookings:      store.Bookings,
		Payments:      payments,
		Tx:            store.Tx,
		Reminders:     reminders,
		Currency:      currency,
		Logger:        logger,
		Now:           time.Now,
	}
}
