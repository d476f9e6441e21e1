// File: hotelbot/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelbot/config"
	"hotelbot/cron"
	"hotelbot/database"
	"hotelbot/database/memory"
	"hotelbot/database/repository"
	"hotelbot/database/seed"
	"hotelbot/handlers"
	"hotelbot/routes"
	"hotelbot/services/flow"
	"hotelbot/services/guardrail"
	"hotelbot/services/messaging"
	"hotelbot/services/payment"
	"hotelbot/services/tasks"
	"hotelbot/services/transport"
	"hotelbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	for _, w := range config.AppConfig.Warnings() {
		logger.Warn("main: " + w)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Storage.
	var (
		store       repository.Store
		mongoClient *mongo.Client
	)
	if config.UseMemoryStore() {
		logger.Warn("main: using in-memory store, data is lost on restart")
		store = memory.NewStore().Repositories()
	} else {
		database.InitDB()
		mongoClient = database.MongoClient
		db := database.DB()
		store = repository.Store{
			Tenants:       repository.NewMongoTenantRepo(db),
			Conversations: repository.NewMongoConversationRepo(db),
			Bookings:      repository.NewMongoBookingRepo(db),
			Tx:            database.NewMongoTransactor(mongoClient),
		}
	}

	if config.AppConfig.SeedDemoTenant {
		seedCtx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
		if _, err := seed.DemoTenant(seedCtx, store.Tenants, store.Bookings, logger); err != nil {
			logger.Error("main: failed to seed demo tenant", zap.Error(err))
		}
		cancel()
	}

	// Guardrails. The memory driver runs without Redis.
	var limiter guardrail.RateLimiter
	if config.UseMemoryStore() {
		limiter = guardrail.NewMemoryRateLimiter(config.AppConfig.InboundRateLimit, config.AppConfig.InboundRateWindow)
	} else {
		utils.InitRedis()
		limiter = guardrail.NewRedisRateLimiter(utils.GetGuardrailClient(), config.AppConfig.InboundRateLimit, config.AppConfig.InboundRateWindow)
	}
	guard := guardrail.NewGuardrail(
		limiter,
		config.AppConfig.MessagingWindow,
		guardrail.ParsePolicy(config.AppConfig.MessagingWindowPolicy),
		logger.Named("guardrail"),
	)

	// Payments.
	var payments payment.PaymentService
	switch config.AppConfig.PaymentProvider {
	case "stripe":
		payments = payment.NewStripePaymentService(
			config.AppConfig.StripeKey, nil,
			store.Bookings, store.Tx,
			config.AppConfig.StripeCurrency, config.AppConfig.PublicBaseURL,
			logger.Named("stripe"),
		)
	default:
		payments = payment.NewLocalPaymentService(store.Bookings, store.Tx, config.AppConfig.PublicBaseURL, logger.Named("payment"))
	}

	// Outbound transport.
	var sender transport.Sender
	switch config.AppConfig.MessagingProvider {
	case "log":
		sender = transport.NewLogSender(logger.Named("transport"))
	default:
		sender = transport.NewTwilioSender(config.AppConfig.TwilioAPIURL, store.Tenants, logger.Named("twilio"))
	}

	// Payment reminders need the asynq queue, which lives in Redis.
	var (
		reminders   flow.ReminderScheduler
		queueClient *asynq.Client
	)
	remindersEnabled := config.AppConfig.PaymentReminderEnabled && !config.UseMemoryStore()
	if remindersEnabled {
		queueClient = asynq.NewClient(cron.RedisOpt())
		reminders = tasks.NewReminderScheduler(queueClient, config.AppConfig.PaymentReminderDelay)
	}

	// Services.
	bookingFlow := flow.NewBookingFlow(store, payments, reminders, config.AppConfig.CurrencySymbol, logger.Named("flow"))
	dispatcher := messaging.NewDispatcher(store.Conversations, guard, sender, logger.Named("dispatcher"))
	messagingService := messaging.NewMessagingService(store, guard, bookingFlow, dispatcher, config.AppConfig.CurrencySymbol, logger.Named("messaging"))

	var worker *asynq.Server
	if remindersEnabled {
		worker = cron.InitReminderWorker(rootCtx, messagingService, logger.Named("reminders"))
	}

	utils.StartHealthMonitor(rootCtx, 30*time.Second, utils.GuardrailClient, mongoClient)

	// Assemble the handler bundle.
	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewWebhookHandler(messagingService),
		handlers.NewCheckoutHandler(store, payments, messagingService, config.AppConfig.CurrencySymbol),
		handlers.NewPaymentHandler(store.Bookings),
		config.AppConfig.MaxRequestsPerMin,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	routes.RegisterRoutes(router, handlerBundle, logger)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if queueClient != nil {
		if err := queueClient.Close(); err != nil {
			logger.Warn("main: failed to close queue client", zap.Error(err))
		}
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
		}
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
