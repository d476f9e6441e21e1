package bookingRepo

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	roomTypes *mongo.Collection
	bookings  *mongo.Collection
	payments  *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	repo := &MongoBookingRepo{
		roomTypes: db.Collection("room_types"),
		bookings:  db.Collection("bookings"),
		payments:  db.Collection("payments"),
	}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("failed to create booking indexes", zap.Error(err))
	}
	return repo
}

var _ BookingRepository = (*MongoBookingRepo)(nil)
