// File: database/repository/booking/roomTypeMongoCrud.go
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

func (r *MongoBookingRepo) CreateRoomType(ctx context.Context, roomType *models.RoomType) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if roomType.ID == "" {
		roomType.ID = uuid.New().String()
	}
	if roomType.CreatedAt.IsZero() {
		roomType.CreatedAt = time.Now().UTC()
	}
	if _, err := r.roomTypes.InsertOne(ctx, roomType); err != nil {
		return fmt.Errorf("failed to create room type: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) ListActiveRoomTypes(ctx context.Context, tenantID string) ([]models.RoomType, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.roomTypes.Find(ctx, bson.M{"tenant_id": tenantID, "active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve room types: %w", err)
	}
	defer cursor.Close(ctx)

	var roomTypes []models.RoomType
	if err := cursor.All(ctx, &roomTypes); err != nil {
		return nil, fmt.Errorf("failed to decode room types: %w", err)
	}
	return roomTypes, nil
}

func (r *MongoBookingRepo) GetRoomType(ctx context.Context, tenantID, roomTypeID string) (*models.RoomType, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var roomType models.RoomType
	if err := r.roomTypes.FindOne(ctx, bson.M{"id": roomTypeID, "tenant_id": tenantID}).Decode(&roomType); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch room type with id %s: %w", roomTypeID, err)
	}
	return &roomType, nil
}
