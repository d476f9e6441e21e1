package memory

import (
	"context"
	"fmt"
	"sort"

	"hotelbot/database"
	"hotelbot/models"

	"github.com/google/uuid"
)

// BookingRepo implements repository.BookingRepository.
type BookingRepo struct{ s *Store }

func (r *BookingRepo) CreateRoomType(ctx context.Context, roomType *models.RoomType) error {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if roomType.ID == "" {
		roomType.ID = uuid.NewString()
	}
	if roomType.CreatedAt.IsZero() {
		roomType.CreatedAt = now()
	}
	r.s.data.roomTypes[roomType.ID] = *roomType
	return nil
}

func (r *BookingRepo) ListActiveRoomTypes(_ context.Context, tenantID string) ([]models.RoomType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.RoomType
	for _, rt := range r.s.data.roomTypes {
		if rt.TenantID == tenantID && rt.Active {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *BookingRepo) GetRoomType(_ context.Context, tenantID, roomTypeID string) (*models.RoomType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rt, ok := r.s.data.roomTypes[roomTypeID]
	if !ok || rt.TenantID != tenantID {
		return nil, database.ErrNotFound
	}
	return &rt, nil
}

func (r *BookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	ts := now()
	booking.CreatedAt = ts
	booking.UpdatedAt = ts
	r.s.data.bookings[booking.ID] = *booking
	return nil
}

func (r *BookingRepo) GetBooking(_ context.Context, tenantID, bookingID string) (*models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.data.bookings[bookingID]
	if !ok || b.TenantID != tenantID {
		return nil, database.ErrNotFound
	}
	return &b, nil
}

func (r *BookingRepo) UpdateBookingStatus(ctx context.Context, tenantID, bookingID, status string) error {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.data.bookings[bookingID]
	if !ok || b.TenantID != tenantID {
		return database.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = now()
	r.s.data.bookings[bookingID] = b
	return nil
}

func (r *BookingRepo) ListBookingsByGuest(_ context.Context, tenantID, guestID string) ([]models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Booking
	for _, b := range r.s.data.bookings {
		if b.TenantID == tenantID && b.GuestID == guestID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *BookingRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.data.payments[payment.Reference]; exists {
		return fmt.Errorf("insert payment failed: reference %s already exists", payment.Reference)
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	ts := now()
	payment.CreatedAt = ts
	payment.UpdatedAt = ts
	r.s.data.payments[payment.Reference] = *payment
	return nil
}

func (r *BookingRepo) GetPaymentByReference(_ context.Context, reference string) (*models.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.payments[reference]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (r *BookingRepo) TransitionPaymentStatus(ctx context.Context, tenantID, reference, from, to string) (bool, error) {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.data.payments[reference]
	if !ok || p.TenantID != tenantID {
		return false, database.ErrNotFound
	}
	if p.Status != from {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = now()
	r.s.data.payments[reference] = p
	return true, nil
}
