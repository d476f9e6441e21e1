package flow

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hotelbot/database"
	"hotelbot/models"

	"go.uber.org/zap"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func isResetCommand(body string) bool {
	switch strings.ToLower(body) {
	case "hi", "menu":
		return true
	}
	return false
}

func (f *DefaultBookingFlow) ProcessMessage(ctx context.Context, tenant *models.Tenant, conv *models.Conversation, body string) (string, error) {
	body = strings.TrimSpace(body)

	if isResetCommand(body) {
		return f.reset(ctx, tenant, conv)
	}

	switch conv.CurrentState {
	case models.StateGreeting:
		return f.handleGreeting(ctx, tenant, conv)
	case models.StateDateSelection:
		return f.handleDateSelection(ctx, tenant, conv, body)
	case models.StateDurationSelection:
		return f.handleDurationSelection(ctx, tenant, conv, body)
	case models.StateRoomSelection:
		return f.handleRoomSelection(ctx, tenant, conv, body)
	case models.StateConfirmation:
		return f.handleConfirmation(ctx, tenant, conv, body)
	case models.StatePaymentPending:
		return replyPaymentPending, nil
	default:
		f.Logger.Warn("Conversation in unknown state",
			zap.String("tenantId", tenant.ID),
			zap.String("conversationId", conv.ID),
			zap.String("state", string(conv.CurrentState)),
		)
		return replyNotUnderstood, nil
	}
}

// reset clears the bag and restarts the dialogue in one write. The conversation passes
// through GREETING, so it lands where the greeting leaves it.
func (f *DefaultBookingFlow) reset(ctx context.Context, tenant *models.Tenant, conv *models.Conversation) (string, error) {
	next := models.StateDateSelection
	if err := f.Conversations.UpdateConversation(ctx, tenant.ID, conv, models.ConversationUpdate{
		State:         &next,
		ResetMetadata: true,
	}); err != nil {
		return "", fmt.Errorf("failed to reset conversation: %w", err)
	}
	return greeting(tenant.Name), nil
}

func (f *DefaultBookingFlow) handleGreeting(ctx context.Context, tenant *models.Tenant, conv *models.Conversation) (string, error) {
	next := models.StateDateSelection
	if err := f.Conversations.UpdateConversation(ctx, tenant.ID, conv, models.ConversationUpdate{State: &next}); err != nil {
		return "", fmt.Errorf("failed to start date selection: %w", err)
	}
	return greeting(tenant.Name), nil
}

func (f *DefaultBookingFlow) handleDateSelection(ctx context.Context, tenant *models.Tenant, conv *models.Conversation, body string) (string, error) {
	if !datePattern.MatchString(body) {
		return f.rejected(conv, "date format", replyDateFormat), nil
	}

	loc := tenant.Location()
	checkIn, err := time.ParseInLocation(checkInInputLayout, body, loc)
	if err != nil {
		return f.rejected(conv, "date parse", replyDateInvalid), nil
	}
	now := f.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if checkIn.Before(today) {
		return f.rejected(conv, "past date", replyDatePast), nil
	}

	next := models.StateDurationSelection
	if err := f.Conversations.UpdateConversation(ctx, tenant.ID, conv, models.ConversationUpdate{
		State: &next,
		Merge: models.Metadata{models.MetaCheckIn: body},
	}); err != nil {
		return "", fmt.Errorf("failed to store check-in date: %w", err)
	}
	return nightsPrompt(checkIn.Format(checkInDisplayLayout)), nil
}

func (f *DefaultBookingFlow) handleDurationSelection(ctx context.Context, tenant *models.Tenant, conv *models.Conversation, body string) (string, error) {
	nights, err := strconv.Atoi(body)
	if err != nil || nights < 1 {
		return f.rejected(conv, "nights", replyNightsInvalid), nil
	}

	var data DurationSelectionData
	if err := decodeView(conv.Metadata, &data); err != nil {
		return f.corrupt(conv, err), nil
	}

	rooms, err := f.Bookings.ListActiveRoomTypes(ctx, tenant.ID)
	if err != nil {
		return "", fmt.Errorf("failed to list room types: %w", err)
	}
	if len(rooms) == 0 {
		f.Logger.Info("No active room types",
			zap.String("tenantId", tenant.ID),
			zap.String("conversationId", conv.ID),
		)
		return replyNoRooms, nil
	}

	options := make(map[string]string, len(rooms))
	var b strings.Builder
	b.WriteString(replyRoomListHeader)
	for i, room := range rooms {
		key := strconv.Itoa(i + 1)
		options[key] = room.ID
		fmt.Fprintf(&b, "%s. %s - %s/night\n", key, room.Name, room.PricePerNight.Format(f.Currency))
	}
	b.WriteString(replyRoomListFooter)

	next := models.StateRoomSelection
	if err := f.Conversations.UpdateConversation(ctx, tenant.ID, conv, models.ConversationUpdate{
		State: &next,
		Merge: models.Metadata{
			models.MetaNights:      nights,
			models.MetaRoomOptions: options,
		},
	}); err != nil {
		return "", fmt.Errorf("failed to store room options: %w", err)
	}
	return b.String(), nil
}

func (f *DefaultBookingFlow) handleRoomSelection(ctx context.Context, tenant *models.Tenant, conv *models.Conversation, body string) (string, error) {
	var data RoomSelectionData
	if err := decodeView(conv.Metadata, &data); err != nil {
		return f.corrupt(conv, err), nil
	}

	choice, err := strconv.Atoi(body)
	if err != nil {
		return f.rejected(conv, "room choice", replyRoomInvalid), nil
	}
	roomTypeID, ok := data.RoomOptions[strconv.Itoa(choice)]
	if !ok {
		return f.rejected(conv, "room choice", replyRoomInvalid), nil
	}

	room, err := f.Bookings.GetRoomType(ctx, tenant.ID, roomTypeID)
	if errors.Is(err, database.ErrNotFound) {
		return f.rejected(conv, "room gone", replyRoomInvalid), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load room type %s: %w", roomTypeID, err)
	}

	total := room.PricePerNight.Times(data.Nights)
	next := models.StateConfirmation
	if err := f.Conversations.UpdateConversation(ctx, tenant.ID, conv, models.ConversationUpdate{
		State: &next,
		Merge: models.Metadata{
			models.MetaRoomTypeID: room.ID,
			models.MetaTotalPrice: total.StringFixed(2),
		},
	}); err != nil {
		return "", fmt.Errorf("failed to store room selection: %w", err)
	}
	return bookingSummary(room.Name, data.CheckIn, data.Nights, total.Format(f.Currency)), nil
}

func (f *DefaultBookingFlow) handleConfirmation(ctx context.Context, tenant *models.Tenant, conv *models.Conversation, body string) (string, error) {
	if !strings.EqualFold(body, confirmKeyword) {
		return f.rejected(conv, "confirmation", replyConfirmPrompt), nil
	}

	var data ConfirmationData
	if err := decodeView(conv.Metadata, &data); err != nil {
		return f.corrupt(conv, err), nil
	}

	var (
		booking *models.Booking
		payment *models.Payment
	)
	err := f.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		booking = &models.Booking{
			TenantID:   tenant.ID,
			GuestID:    conv.GuestID,
			RoomTypeID: data.RoomTypeID,
			CheckIn:    data.CheckIn,
			Nights:     data.Nights,
			Amount:     data.TotalPrice,
			Status:     models.BookingPending,
		}
		if err := f.Bookings.CreateBooking(ctx, booking); err != nil {
			return err
		}

		var err error
		payment, err = f.Payments.GeneratePaymentLink(ctx, booking)
		if err != nil {
			return fmt.Errorf("failed to generate payment link: %w", err)
		}

		next := models.StatePaymentPending
		return f.Conversations.UpdateConversation(ctx, tenant.ID, conv, models.ConversationUpdate{State: &next})
	})
	if err != nil {
		return "", fmt.Errorf("failed to confirm booking: %w", err)
	}

	f.Logger.Info("Booking created",
		zap.String("tenantId", tenant.ID),
		zap.String("bookingId", booking.ID),
		zap.String("reference", payment.Reference),
	)

	if f.Reminders != nil {
		if err := f.Reminders.SchedulePaymentReminder(ctx, tenant.ID, payment.Reference); err != nil {
			f.Logger.Warn("Failed to schedule payment reminder",
				zap.String("reference", payment.Reference),
				zap.Error(err),
			)
		}
	}

	return bookingConfirmed(booking.ID, data.TotalPrice.Format(f.Currency), payment.CheckoutURL), nil
}

func (f *DefaultBookingFlow) rejected(conv *models.Conversation, reason, reply string) string {
	f.Logger.Debug("Input rejected",
		zap.String("conversationId", conv.ID),
		zap.String("state", string(conv.CurrentState)),
		zap.String("reason", reason),
	)
	return reply
}

func (f *DefaultBookingFlow) corrupt(conv *models.Conversation, err error) string {
	f.Logger.Warn("Conversation metadata unusable for state",
		zap.String("tenantId", conv.TenantID),
		zap.String("conversationId", conv.ID),
		zap.String("state", string(conv.CurrentState)),
		zap.Error(err),
	)
	return replyNotUnderstood
}
