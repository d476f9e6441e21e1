package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotelbot/config"
	"hotelbot/models"
	"hotelbot/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderSender is the part of the messaging service the worker needs.
type ReminderSender interface {
	SendPaymentReminder(ctx context.Context, tenantID, reference string) error
}

// RedisOpt is the asynq connection used by both the enqueuing client and the worker.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitReminderWorker runs the payment reminder worker in background and returns
// the server so the caller can shut it down.
func InitReminderWorker(ctx context.Context, sender ReminderSender, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePaymentReminder, HandlePaymentReminderTask(sender, logger))

	go monitorRedisConnection(ctx, logger)

	go func() {
		logger.Info("Starting payment reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("Failed to start reminder worker",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				logger.Error("Max retry attempts reached, payment reminders disabled")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()

	return srv
}

func HandlePaymentReminderTask(sender ReminderSender, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.PaymentReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			// Retrying a malformed payload never helps.
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.TenantID == "" || p.Reference == "" {
			logger.Error("Reminder payload missing fields", zap.Any("payload", p))
			return fmt.Errorf("incomplete payload: %w", asynq.SkipRetry)
		}

		logger.Info("Sending payment reminder", zap.String("tenantId", p.TenantID), zap.String("reference", p.Reference))
		if err := sender.SendPaymentReminder(ctx, p.TenantID, p.Reference); err != nil {
			logger.Error("Failed to send payment reminder", zap.String("reference", p.Reference), zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("Reminder queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
