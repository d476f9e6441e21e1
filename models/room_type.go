package models

import "time"

// RoomType is a bookable class of room with a nightly price.
type RoomType struct {
	ID            string    `bson:"id" json:"id"`
	TenantID      string    `bson:"tenant_id" json:"tenant_id"`
	Name          string    `bson:"name" json:"name"`
	PricePerNight Money     `bson:"price_per_night" json:"price_per_night"`
	MaxGuests     int       `bson:"max_guests" json:"max_guests"`
	Active        bool      `bson:"active" json:"active"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
