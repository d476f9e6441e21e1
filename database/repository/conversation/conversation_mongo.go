package conversationRepo

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
	"go.uber.org/zap"
)

// MongoConversationRepo implements ConversationRepository using MongoDB.
type MongoConversationRepo struct {
	guests        *mongo.Collection
	conversations *mongo.Collection
	messages      *mongo.Collection
}

// NewMongoConversationRepo creates a new instance of ConversationRepository using MongoDB.
func NewMongoConversationRepo(db *mongo.Database) ConversationRepository {
	repo := &MongoConversationRepo{
		guests:        db.Collection("guests"),
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("failed to create conversation indexes", zap.Error(err))
	}
	return repo
}

// upsertOnce runs an upsert and retries a single time when a concurrent insert wins the
// unique index race; the retry then matches the winner's document.
func upsertOnce(ctx context.Context, coll *mongo.Collection, filter, update bson.M, out interface{}) error {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	if mongo.IsDuplicateKeyError(err) {
		err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	}
	return err
}

func (r *MongoConversationRepo) FindOrCreateGuest(ctx context.Context, tenantID, phone, displayName string) (*models.Guest, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if displayName == "" {
		displayName = "Guest"
	}
	filter := bson.M{"tenant_id": tenantID, "phone": phone}
	update := bson.M{"$setOnInsert": bson.M{
		"id":         uuid.New().String(),
		"name":       displayName,
		"opted_in":   true,
		"source":     models.GuestSourceWhatsApp,
		"created_at": time.Now().UTC(),
	}}

	var guest models.Guest
	if err := upsertOnce(ctx, r.guests, filter, update, &guest); err != nil {
		return nil, fmt.Errorf("failed to find or create guest %s: %w", phone, err)
	}
	return &guest, nil
}

func (r *MongoConversationRepo) GetGuest(ctx context.Context, tenantID, guestID string) (*models.Guest, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var guest models.Guest
	if err := r.guests.FindOne(ctx, bson.M{"id": guestID, "tenant_id": tenantID}).Decode(&guest); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch guest with id %s: %w", guestID, err)
	}
	return &guest, nil
}

func (r *MongoConversationRepo) FindOrCreateOpenConversation(ctx context.Context, tenantID, guestID string) (*models.Conversation, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"tenant_id": tenantID, "guest_id": guestID, "status": models.ConversationOpen}
	update := bson.M{"$setOnInsert": bson.M{
		"id":            uuid.New().String(),
		"current_state": models.StateGreeting,
		"metadata":      bson.M{},
		"version":       int64(0),
		"created_at":    now,
		"updated_at":    now,
	}}

	var conv models.Conversation
	if err := upsertOnce(ctx, r.conversations, filter, update, &conv); err != nil {
		return nil, fmt.Errorf("failed to find or create conversation for guest %s: %w", guestID, err)
	}
	if conv.Metadata == nil {
		conv.Metadata = models.Metadata{}
	}
	return &conv, nil
}

func (r *MongoConversationRepo) FindOpenConversation(ctx context.Context, tenantID, guestID string) (*models.Conversation, error) {
	return r.findConversation(ctx, bson.M{"tenant_id": tenantID, "guest_id": guestID, "status": models.ConversationOpen})
}

func (r *MongoConversationRepo) GetConversation(ctx context.Context, tenantID, conversationID string) (*models.Conversation, error) {
	return r.findConversation(ctx, bson.M{"tenant_id": tenantID, "id": conversationID})
}

func (r *MongoConversationRepo) findConversation(ctx context.Context, filter bson.M) (*models.Conversation, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var conv models.Conversation
	if err := r.conversations.FindOne(ctx, filter).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	if conv.Metadata == nil {
		conv.Metadata = models.Metadata{}
	}
	return &conv, nil
}

func (r *MongoConversationRepo) TouchLastGuestMessage(ctx context.Context, tenantID, conversationID string, at time.Time) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	at = at.UTC()
	filter := bson.M{"id": conversationID, "tenant_id": tenantID}
	update := bson.M{"$set": bson.M{"last_guest_message_at": at, "updated_at": at}}
	result, err := r.conversations.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to touch conversation %s: %w", conversationID, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *MongoConversationRepo) UpdateConversation(ctx context.Context, tenantID string, conv *models.Conversation, upd models.ConversationUpdate) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	if upd.State != nil {
		set["current_state"] = *upd.State
	}
	if upd.ResetMetadata {
		bag := bson.M{}
		for k, v := range upd.Merge {
			bag[k] = v
		}
		set["metadata"] = bag
	} else {
		for k, v := range upd.Merge {
			set["metadata."+k] = v
		}
	}

	filter := bson.M{"id": conv.ID, "tenant_id": tenantID, "version": conv.Version}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	result, err := r.conversations.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update conversation %s: %w", conv.ID, err)
	}
	if result.MatchedCount == 0 {
		n, err := r.conversations.CountDocuments(ctx, bson.M{"id": conv.ID, "tenant_id": tenantID})
		if err == nil && n == 0 {
			return database.ErrNotFound
		}
		return database.ErrConversationConflict
	}

	ApplyUpdate(conv, upd, now)
	return nil
}

func (r *MongoConversationRepo) AppendMessage(ctx context.Context, tenantID, conversationID, direction, body string) (*models.Message, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	msg := &models.Message{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		ConversationID: conversationID,
		Direction:      direction,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append %s message: %w", direction, err)
	}
	return msg, nil
}

func (r *MongoConversationRepo) ListMessages(ctx context.Context, tenantID, conversationID string) ([]models.Message, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{"tenant_id": tenantID, "conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
