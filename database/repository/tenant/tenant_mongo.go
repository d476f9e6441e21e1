package tenantRepo

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
	"go.uber.org/zap"
)

// MongoTenantRepo implements TenantRepository using MongoDB.
type MongoTenantRepo struct {
	tenants  *mongo.Collection
	accounts *mongo.Collection
}

// NewMongoTenantRepo creates a new instance of TenantRepository using MongoDB.
func NewMongoTenantRepo(db *mongo.Database) TenantRepository {
	repo := &MongoTenantRepo{
		tenants:  db.Collection("tenants"),
		accounts: db.Collection("messaging_accounts"),
	}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("failed to create tenant indexes", zap.Error(err))
	}
	return repo
}

// GetByMessagingAccountRef never matches tenants without a messaging account.
func (r *MongoTenantRepo) GetByMessagingAccountRef(ctx context.Context, accountRef string) (*models.Tenant, error) {
	if accountRef == "" {
		return nil, database.ErrNotFound
	}
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var tenant models.Tenant
	err := r.tenants.FindOne(ctx, bson.M{"messaging_account_ref": accountRef}).Decode(&tenant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch tenant for account %s: %w", accountRef, err)
	}
	return &tenant, nil
}

func (r *MongoTenantRepo) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var tenant models.Tenant
	if err := r.tenants.FindOne(ctx, bson.M{"id": id}).Decode(&tenant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch tenant with id %s: %w", id, err)
	}
	return &tenant, nil
}

func (r *MongoTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	if tenant.Status == "" {
		tenant.Status = models.TenantStatusActive
	}
	tenant.CreatedAt = time.Now().UTC()

	if _, err := r.tenants.InsertOne(ctx, tenant); err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

func (r *MongoTenantRepo) GetMessagingAccount(ctx context.Context, accountSID string) (*models.MessagingAccount, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var account models.MessagingAccount
	if err := r.accounts.FindOne(ctx, bson.M{"account_sid": accountSID}).Decode(&account); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch messaging account %s: %w", accountSID, err)
	}
	return &account, nil
}

func (r *MongoTenantRepo) CreateMessagingAccount(ctx context.Context, account *models.MessagingAccount) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.Status == "" {
		account.Status = models.AccountStatusActive
	}
	account.CreatedAt = time.Now().UTC()

	if _, err := r.accounts.InsertOne(ctx, account); err != nil {
		return fmt.Errorf("failed to create messaging account: %w", err)
	}
	return nil
}
