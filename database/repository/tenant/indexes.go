package tenantRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoTenantRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tenantIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			// Unique among tenants that have an account; any number may have none.
			Keys: bson.D{{Key: "messaging_account_ref", Value: 1}},
			Options: options.Index().
				SetName("messaging_account_ref_unique_nonempty").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"messaging_account_ref": bson.M{"$gt": ""}}),
		},
	}
	if _, err := r.tenants.Indexes().CreateMany(ctx, tenantIndexes); err != nil {
		return fmt.Errorf("failed to create tenant indexes: %w", err)
	}

	accountIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "account_sid", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.accounts.Indexes().CreateMany(ctx, accountIndexes); err != nil {
		return fmt.Errorf("failed to create messaging account indexes: %w", err)
	}
	return nil
}
