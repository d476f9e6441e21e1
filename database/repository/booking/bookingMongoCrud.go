// File: database/repository/booking/bookingMongoCrud.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbot/database"
	"hotelbot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := r.bookings.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetBooking(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.bookings.FindOne(ctx, bson.M{"id": bookingID, "tenant_id": tenantID}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", bookingID, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) UpdateBookingStatus(ctx context.Context, tenantID, bookingID, status string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "tenant_id": tenantID}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	result, err := r.bookings.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking with id %s: %w", bookingID, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *MongoBookingRepo) ListBookingsByGuest(ctx context.Context, tenantID, guestID string) ([]models.Booking, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.bookings.Find(ctx, bson.M{"tenant_id": tenantID, "guest_id": guestID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
