package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbot/database"
	"hotelbot/database/repository"
	"hotelbot/models"
	"hotelbot/services/flow"
	"hotelbot/services/guardrail"

	"go.uber.org/zap"
)

// InboundMessage is one webhook delivery from the channel provider.
type InboundMessage struct {
	From        string // e.g. "whatsapp:+2348000000000"
	To          string
	Body        string
	ProfileName string
	AccountSid  string
}

// MessagingService routes inbound guest messages through the booking flow and sends
// follow-ups about payments.
type MessagingService interface {
	ProcessInbound(ctx context.Context, msg InboundMessage) error
	NotifyPaymentConfirmed(ctx context.Context, reference string) error
	SendPaymentReminder(ctx context.Context, tenantID, reference string) error
}

// DefaultMessagingService implements MessagingService.
type DefaultMessagingService struct {
	Tenants       repository.TenantRepository
	Conversations repository.ConversationRepository
	Bookings      repository.BookingRepository
	Guardrail     *guardrail.Guardrail
	Flow          flow.BookingFlow
	Dispatcher    *Dispatcher
	Currency      string
	Logger        *zap.Logger
	Now           func() time.Time

	locks *keyedMutex
}

func NewMessagingService(store repository.Store, guard *guardrail.Guardrail, bookingFlow flow.BookingFlow, dispatcher *Dispatcher, currency string, logger *zap.Logger) *DefaultMessagingService {
	return &DefaultMessagingService{
		Tenants:       store.Tenants,
		Conversations: store.Conversations,
		Bookings:      store.Bookings,
		Guardrail:     guard,
		Flow:          bookingFlow,
		Dispatcher:    dispatcher,
		Currency:      currency,
		Logger:        logger,
		Now:           time.Now,
		locks:         newKeyedMutex(),
	}
}

func (s *DefaultMessagingService) ProcessInbound(ctx context.Context, msg InboundMessage) error {
	if strings.TrimSpace(msg.AccountSid) == "" {
		s.Logger.Warn("Inbound message without account identifier", zap.String("from", msg.From))
		return ErrUnknownTenant
	}

	tenant, err := s.Tenants.GetByMessagingAccountRef(ctx, msg.AccountSid)
	if errors.Is(err, database.ErrNotFound) {
		s.Logger.Warn("Inbound message to unknown account", zap.String("accountSid", msg.AccountSid))
		return ErrUnknownTenant
	}
	if err != nil {
		return fmt.Errorf("failed to resolve tenant: %w", err)
	}

	if err := s.Guardrail.AllowInbound(ctx, msg.From); err != nil {
		s.Logger.Warn("Rate limit exceeded", zap.String("from", msg.From), zap.String("tenantId", tenant.ID))
		return err
	}

	unlock := s.locks.Lock(conversationKey(tenant.ID, msg.From))
	defer unlock()

	guest, err := s.Conversations.FindOrCreateGuest(ctx, tenant.ID, msg.From, msg.ProfileName)
	if err != nil {
		return err
	}
	conv, err := s.Conversations.FindOrCreateOpenConversation(ctx, tenant.ID, guest.ID)
	if err != nil {
		return err
	}

	now := s.Now().UTC()
	if err := s.Conversations.TouchLastGuestMessage(ctx, tenant.ID, conv.ID, now); err != nil {
		return err
	}
	conv.LastGuestMessageAt = &now

	if _, err := s.Conversations.AppendMessage(ctx, tenant.ID, conv.ID, models.DirectionInbound, msg.Body); err != nil {
		return err
	}

	reply, err := s.Flow.ProcessMessage(ctx, tenant, conv, msg.Body)
	if err != nil {
		if errors.Is(err, database.ErrConversationConflict) {
			s.Logger.Warn("Conversation changed while processing message",
				zap.String("tenantId", tenant.ID),
				zap.String("conversationId", conv.ID),
			)
		}
		return fmt.Errorf("booking flow failed: %w", err)
	}
	if reply == "" {
		return nil
	}

	if _, err := s.Dispatcher.Dispatch(ctx, tenant, conv, guest.Phone, reply); err != nil {
		return err
	}
	return nil
}

// NotifyPaymentConfirmed tells the guest that the payment behind reference went through.
func (s *DefaultMessagingService) NotifyPaymentConfirmed(ctx context.Context, reference string) error {
	target, err := s.loadPaymentTarget(ctx, reference)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	body := fmt.Sprintf("Payment received! Your booking #%s is confirmed. We look forward to welcoming you on %s.",
		target.booking.ID, target.booking.CheckIn)
	return s.dispatchLocked(ctx, target, body)
}

// SendPaymentReminder nudges the guest when the payment is still pending.
func (s *DefaultMessagingService) SendPaymentReminder(ctx context.Context, tenantID, reference string) error {
	target, err := s.loadPaymentTarget(ctx, reference)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	if target.tenant.ID != tenantID {
		s.Logger.Warn("Payment reminder tenant mismatch", zap.String("reference", reference), zap.String("tenantId", tenantID))
		return nil
	}
	if target.payment.Status != models.PaymentPending {
		s.Logger.Debug("Payment no longer pending, skipping reminder", zap.String("reference", reference))
		return nil
	}

	body := fmt.Sprintf("Reminder: your booking #%s is awaiting payment of %s.\nPay here: %s",
		target.booking.ID, target.payment.Amount.Format(s.Currency), target.payment.CheckoutURL)
	return s.dispatchLocked(ctx, target, body)
}

type paymentTarget struct {
	tenant  *models.Tenant
	payment *models.Payment
	booking *models.Booking
	guest   *models.Guest
}

// loadPaymentTarget resolves everything needed to message the guest behind a payment.
// A nil target with a nil error means there is nobody to notify.
func (s *DefaultMessagingService) loadPaymentTarget(ctx context.Context, reference string) (*paymentTarget, error) {
	payment, err := s.Bookings.GetPaymentByReference(ctx, reference)
	if errors.Is(err, database.ErrNotFound) {
		s.Logger.Warn("Payment not found for notification", zap.String("reference", reference))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tenant, err := s.Tenants.GetByID(ctx, payment.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant %s: %w", payment.TenantID, err)
	}
	booking, err := s.Bookings.GetBooking(ctx, tenant.ID, payment.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", payment.BookingID, err)
	}
	guest, err := s.Conversations.GetGuest(ctx, tenant.ID, booking.GuestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guest %s: %w", booking.GuestID, err)
	}
	return &paymentTarget{tenant: tenant, payment: payment, booking: booking, guest: guest}, nil
}

func (s *DefaultMessagingService) dispatchLocked(ctx context.Context, target *paymentTarget, body string) error {
	unlock := s.locks.Lock(conversationKey(target.tenant.ID, target.guest.Phone))
	defer unlock()

	conv, err := s.Conversations.FindOpenConversation(ctx, target.tenant.ID, target.guest.ID)
	if errors.Is(err, database.ErrNotFound) {
		s.Logger.Info("No open conversation for guest, skipping notification",
			zap.String("tenantId", target.tenant.ID),
			zap.String("guestId", target.guest.ID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.Dispatcher.Dispatch(ctx, target.tenant, conv, target.guest.Phone, body)
	return err
}
