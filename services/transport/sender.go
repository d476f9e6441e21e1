package transport

import (
	"context"

	"hotelbot/models"

	"go.uber.org/zap"
)

// Sender delivers a text message to a guest on behalf of a tenant. A nil error means the
// provider accepted the message.
type Sender interface {
	Send(ctx context.Context, tenant *models.Tenant, to, body string) error
}

// LogSender writes outbound messages to the log instead of a provider.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, tenant *models.Tenant, to, body string) error {
	s.logger.Info("Outbound message",
		zap.String("tenantId", tenant.ID),
		zap.String("to", to),
		zap.String("body", body),
	)
	return nil
}
