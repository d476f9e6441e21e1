package memory

import (
	"context"
	"fmt"

	"hotelbot/database"
	"hotelbot/models"

	"github.com/google/uuid"
)

// TenantRepo implements repository.TenantRepository.
type TenantRepo struct{ s *Store }

func (r *TenantRepo) GetByMessagingAccountRef(_ context.Context, accountRef string) (*models.Tenant, error) {
	if accountRef == "" {
		return nil, database.ErrNotFound
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.data.tenants {
		if t.MessagingAccountRef == accountRef {
			out := t
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *TenantRepo) GetByID(_ context.Context, id string) (*models.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.data.tenants[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &t, nil
}

func (r *TenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	if tenant.Status == "" {
		tenant.Status = models.TenantStatusActive
	}
	for _, t := range r.s.data.tenants {
		if tenant.MessagingAccountRef != "" && t.MessagingAccountRef == tenant.MessagingAccountRef {
			return fmt.Errorf("failed to create tenant: messaging account %s already assigned", tenant.MessagingAccountRef)
		}
	}
	tenant.CreatedAt = now()
	r.s.data.tenants[tenant.ID] = *tenant
	return nil
}

func (r *TenantRepo) GetMessagingAccount(_ context.Context, accountSID string) (*models.MessagingAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.data.accounts[accountSID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &a, nil
}

func (r *TenantRepo) CreateMessagingAccount(ctx context.Context, account *models.MessagingAccount) error {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.data.accounts[account.AccountSID]; exists {
		return fmt.Errorf("failed to create messaging account: %s already exists", account.AccountSID)
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Status == "" {
		account.Status = models.AccountStatusActive
	}
	account.CreatedAt = now()
	r.s.data.accounts[account.AccountSID] = *account
	return nil
}
