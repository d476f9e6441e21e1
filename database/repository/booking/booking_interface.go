package bookingRepo

import (
	"context"

	"hotelbot/models"
)

// BookingRepository defines data access for room types, bookings and payments.
type BookingRepository interface {
	// Room types
	CreateRoomType(ctx context.Context, roomType *models.RoomType) error
	// ListActiveRoomTypes returns active room types ordered by creation time, then id.
	ListActiveRoomTypes(ctx context.Context, tenantID string) ([]models.RoomType, error)
	GetRoomType(ctx context.Context, tenantID, roomTypeID string) (*models.RoomType, error)

	// Bookings
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, tenantID, bookingID, status string) error
	ListBookingsByGuest(ctx context.Context, tenantID, guestID string) ([]models.Booking, error)

	// Payments
	CreatePayment(ctx context.Context, payment *models.Payment) error
	// GetPaymentByReference looks a payment up by its globally unique reference.
	GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error)
	// TransitionPaymentStatus moves the payment from one status to another and reports
	// whether this call made the change. It returns false when the payment is not in from.
	TransitionPaymentStatus(ctx context.Context, tenantID, reference, from, to string) (bool, error)
}
