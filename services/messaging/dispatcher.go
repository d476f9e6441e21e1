package messaging

import (
	"context"
	"fmt"

	"hotelbot/database/repository"
	"hotelbot/models"
	"hotelbot/services/guardrail"
	"hotelbot/services/transport"

	"go.uber.org/zap"
)

// DispatchResult describes what happened to one outbound reply. Send failures are reported
// here and never fed back into conversation state.
type DispatchResult struct {
	MessageID     string
	Sent          bool
	WindowExpired bool
	Blocked       bool
	Err           error
}

// Dispatcher records outbound replies and hands them to the send capability.
type Dispatcher struct {
	conversations repository.ConversationRepository
	guard         *guardrail.Guardrail
	sender        transport.Sender
	logger        *zap.Logger
}

func NewDispatcher(conversations repository.ConversationRepository, guard *guardrail.Guardrail, sender transport.Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{conversations: conversations, guard: guard, sender: sender, logger: logger}
}

// Dispatch applies the messaging window, persists the reply and sends it. The returned
// error is set only when the reply could not be persisted, in which case nothing was sent.
func (d *Dispatcher) Dispatch(ctx context.Context, tenant *models.Tenant, conv *models.Conversation, to, body string) (DispatchResult, error) {
	var result DispatchResult

	window := d.guard.CheckWindow(conv)
	result.WindowExpired = window.Expired
	if !window.Allowed {
		result.Blocked = true
		return result, nil
	}

	msg, err := d.conversations.AppendMessage(ctx, tenant.ID, conv.ID, models.DirectionOutbound, body)
	if err != nil {
		return result, fmt.Errorf("failed to record outbound message: %w", err)
	}
	result.MessageID = msg.ID

	if err := d.sender.Send(ctx, tenant, to, body); err != nil {
		d.logger.Error("Failed to send outbound message",
			zap.String("tenantId", tenant.ID),
			zap.String("conversationId", conv.ID),
			zap.String("messageId", msg.ID),
			zap.Error(err),
		)
		result.Err = err
		return result, nil
	}

	result.Sent = true
	d.logger.Info("Sent WhatsApp reply",
		zap.String("tenantId", tenant.ID),
		zap.String("conversationId", conv.ID),
		zap.String("to", to),
	)
	return result, nil
}
