package models

import "time"

// Booking statuses.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingCancelled  = "cancelled"
	BookingCheckedIn  = "checked_in"
	BookingCheckedOut = "checked_out"
)

// Booking represents a room booking created from a confirmed conversation.
type Booking struct {
	ID         string    `bson:"id" json:"id"`
	TenantID   string    `bson:"tenant_id" json:"tenant_id"`
	GuestID    string    `bson:"guest_id" json:"guest_id"`
	RoomTypeID string    `bson:"room_type_id" json:"room_type_id"`
	CheckIn    string    `bson:"check_in" json:"check_in"` // "YYYY-MM-DD"
	Nights     int       `bson:"nights" json:"nights"`
	Amount     Money     `bson:"amount" json:"amount"`
	Status     string    `bson:"status" json:"status"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}
