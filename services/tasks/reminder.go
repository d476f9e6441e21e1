package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotelbot/models"

	"github.com/hibiken/asynq"
)

const TypePaymentReminder = "payment:reminder"

func NewPaymentReminderTask(payload models.PaymentReminderPayload, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePaymentReminder, b)
	opts := []asynq.Option{
		asynq.ProcessIn(delay),
		asynq.MaxRetry(3),
		// One reminder per payment even if the booking is confirmed twice.
		asynq.TaskID("payment-reminder:" + payload.Reference),
	}

	return task, opts, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler enqueues delayed payment reminders.
type ReminderScheduler struct {
	client enqueuer
	delay  time.Duration
}

func NewReminderScheduler(client enqueuer, delay time.Duration) *ReminderScheduler {
	return &ReminderScheduler{client: client, delay: delay}
}

func (s *ReminderScheduler) SchedulePaymentReminder(ctx context.Context, tenantID, reference string) error {
	task, opts, err := NewPaymentReminderTask(models.PaymentReminderPayload{TenantID: tenantID, Reference: reference}, s.delay)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder for %s: %w", reference, err)
	}
	return nil
}
