package routes

import (
	"time"

	"hotelbot/handlers"
	"hotelbot/middleware"
	"hotelbot/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterWebhookRoutes registers the channel provider webhook.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/v1/whatsapp")
	{
		api.POST("/webhook", hb.WhatsAppWebhookHandler)
	}
}

// RegisterCheckoutRoutes registers the hosted checkout page.
func RegisterCheckoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.SetHTMLTemplate(handlers.CheckoutTemplate())

	checkout := r.Group("/checkout")
	{
		checkout.Use(middleware.RateLimitMiddleware(hb.MaxRequestsPerMin))
		checkout.GET("/:reference", hb.ShowCheckoutHandler)
		checkout.POST("/:reference", hb.VerifyCheckoutHandler)
	}
}

// RegisterPaymentRoutes registers the payments API used by hosted storefronts.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/v1/payments")
	{
		api.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
		api.Use(middleware.RateLimitMiddleware(hb.MaxRequestsPerMin))
		api.GET("/:reference", hb.GetPaymentStatusHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, logger *zap.Logger) {
	r.Use(middleware.RequestLogger(logger))
	r.Use(utils.ErrorHandler())

	RegisterWebhookRoutes(r, hb)
	RegisterCheckoutRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
