package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbot/database"
	"hotelbot/database/repository"
	"hotelbot/models"

	"go.uber.org/zap"
)

// Demo tenant identifiers used for local development.
const (
	DemoAccountSID = "ACdemo000000000000000000000000000"
	DemoTenantSlug = "seaside-hotel"
)

// DemoTenant provisions a hotel with a messaging account and two room types. It is a
// no-op when the demo account is already assigned.
func DemoTenant(ctx context.Context, tenants repository.TenantRepository, bookings repository.BookingRepository, logger *zap.Logger) (*models.Tenant, error) {
	existing, err := tenants.GetByMessagingAccountRef(ctx, DemoAccountSID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up demo tenant: %w", err)
	}

	account := &models.MessagingAccount{
		Name:       "Seaside Hotel WhatsApp",
		AccountSID: DemoAccountSID,
		AuthToken:  "demo-token",
	}
	if err := tenants.CreateMessagingAccount(ctx, account); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		Name:                "Seaside Hotel",
		Slug:                DemoTenantSlug,
		Phone:               "+14155238886",
		Address:             "1 Marina Road, Lagos",
		Timezone:            models.DefaultTimezone,
		TrustLevel:          1,
		MessagingAccountRef: DemoAccountSID,
	}
	if err := tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}

	base := time.Now().UTC()
	rooms := []models.RoomType{
		{Name: "Standard Room", PricePerNight: models.MustMoney("200.00"), MaxGuests: 2},
		{Name: "Deluxe Suite", PricePerNight: models.MustMoney("350.00"), MaxGuests: 3},
	}
	for i := range rooms {
		rooms[i].TenantID = tenant.ID
		rooms[i].Active = true
		rooms[i].CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := bookings.CreateRoomType(ctx, &rooms[i]); err != nil {
			return nil, err
		}
	}

	logger.Info("Seeded demo tenant",
		zap.String("tenantId", tenant.ID),
		zap.String("accountSid", DemoAccountSID),
	)
	return tenant, nil
}
