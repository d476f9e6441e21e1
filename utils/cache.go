// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"hotelbot/config"

	"github.com/go-redis/redis/v8"
)

var (
	// GuardrailClient backs the inbound rate limiter.
	GuardrailClient *redis.Client
)

// InitRedis initializes the Redis client used by the guardrail layer.
func InitRedis() {
	GuardrailClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisGuardrailDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := GuardrailClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Guardrail): %v", err)
	}
}

// GetGuardrailClient returns the guardrail Redis client.
func GetGuardrailClient() *redis.Client {
	if GuardrailClient == nil {
		InitRedis()
	}
	return GuardrailClient
}
