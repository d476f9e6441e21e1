package tenantRepo

import (
	"context"

	"hotelbot/models"
)

// TenantRepository defines data access for tenants and their messaging accounts.
type TenantRepository interface {
	// GetByMessagingAccountRef resolves the tenant that owns an inbound account reference.
	GetByMessagingAccountRef(ctx context.Context, accountRef string) (*models.Tenant, error)
	// GetByID retrieves a tenant by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	// Create inserts a new tenant.
	Create(ctx context.Context, tenant *models.Tenant) error
	// GetMessagingAccount retrieves the credentials for an account SID.
	GetMessagingAccount(ctx context.Context, accountSID string) (*models.MessagingAccount, error)
	// CreateMessagingAccount inserts new provider credentials.
	CreateMessagingAccount(ctx context.Context, account *models.MessagingAccount) error
}
