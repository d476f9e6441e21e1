// File: database/repository/booking/paymentMongoCrud.go
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
)

func (r *MongoBookingRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	if _, err := r.payments.InsertOne(ctx, payment); err != nil {
		return fmt.Errorf("insert payment failed: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var payment models.Payment
	if err := r.payments.FindOne(ctx, bson.M{"reference": reference}).Decode(&payment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment %s: %w", reference, err)
	}
	return &payment, nil
}

func (r *MongoBookingRepo) TransitionPaymentStatus(ctx context.Context, tenantID, reference, from, to string) (bool, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"reference": reference, "tenant_id": tenantID, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}}
	result, err := r.payments.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update payment %s: %w", reference, err)
	}
	if result.MatchedCount == 1 {
		return true, nil
	}

	n, err := r.payments.CountDocuments(ctx, bson.M{"reference": reference, "tenant_id": tenantID})
	if err != nil {
		return false, fmt.Errorf("failed to check payment %s: %w", reference, err)
	}
	if n == 0 {
		return false, database.ErrNotFound
	}
	return false, nil
}
