package handlers

import (
	"errors"
	"net/http"

	"hotelbot/database/repository"
	"hotelbot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentStatusResponse is the public view of a payment.
type PaymentStatusResponse struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	BookingID     string `json:"bookingId"`
	BookingStatus string `json:"bookingStatus"`
	CheckIn       string `json:"checkIn"`
	Nights        int    `json:"nights"`
	CheckoutURL   string `json:"checkoutUrl"`
}

// PaymentHandler exposes payment status for hosted storefronts.
type PaymentHandler struct {
	Bookings repository.BookingRepository
}

func NewPaymentHandler(bookings repository.BookingRepository) *PaymentHandler {
	return &PaymentHandler{Bookings: bookings}
}

func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	logger := getLogger(c)
	reference := c.Param("reference")

	p, err := h.Bookings.GetPaymentByReference(c.Request.Context(), reference)
	if errors.Is(err, repository.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "Payment not found", reference)
		return
	}
	if err != nil {
		logger.Error("Failed to load payment", zap.String("reference", reference), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load payment", "")
		return
	}

	booking, err := h.Bookings.GetBooking(c.Request.Context(), p.TenantID, p.BookingID)
	if err != nil {
		logger.Error("Failed to load booking for payment", zap.String("reference", reference), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load booking", "")
		return
	}

	c.JSON(http.StatusOK, PaymentStatusResponse{
		Reference:     p.Reference,
		Status:        p.Status,
		Amount:        p.Amount.StringFixed(2),
		BookingID:     booking.ID,
		BookingStatus: booking.Status,
		CheckIn:       booking.CheckIn,
		Nights:        booking.Nights,
		CheckoutURL:   p.CheckoutURL,
	})
}
