package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"hotelbot/config"
	"hotelbot/database"
	"hotelbot/database/repository"
	"hotelbot/database/seed"
	"hotelbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Seeds a local MongoDB with the demo hotel plus a few extra hotels so multi-tenant
// routing can be exercised from a WhatsApp sandbox.
func main() {
	config.LoadConfig()
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	database.InitDB()
	db := database.DB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Start from a clean slate.
	for _, name := range []string{"tenants", "messaging_accounts", "room_types", "guests", "conversations", "messages", "bookings", "payments"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear %s collection: %v", name, err)
		}
	}

	tenants := repository.NewMongoTenantRepo(db)
	bookings := repository.NewMongoBookingRepo(db)

	if _, err := seed.DemoTenant(ctx, tenants, bookings, logger); err != nil {
		log.Fatalf("Failed to seed demo tenant: %v", err)
	}

	hotels := []struct {
		Name     string
		Timezone string
		Rooms    map[string]string
	}{
		{"Harbour View Inn", "Africa/Lagos", map[string]string{"Single Room": "120.00", "Family Room": "260.00"}},
		{"Mountain Lodge", "Africa/Nairobi", map[string]string{"Cabin": "180.00"}},
	}

	for i, h := range hotels {
		sid := fmt.Sprintf("ACseed%027d", i+1)
		if err := tenants.CreateMessagingAccount(ctx, &models.MessagingAccount{
			Name:       h.Name + " WhatsApp",
			AccountSID: sid,
			AuthToken:  "seed-token",
		}); err != nil {
			log.Fatalf("Failed to create messaging account for %s: %v", h.Name, err)
		}

		tenant := &models.Tenant{
			Name:                h.Name,
			Slug:                fmt.Sprintf("seed-hotel-%d", i+1),
			Phone:               fmt.Sprintf("+1415555%04d", i+1),
			Timezone:            h.Timezone,
			MessagingAccountRef: sid,
		}
		if err := tenants.Create(ctx, tenant); err != nil {
			log.Fatalf("Failed to create tenant %s: %v", h.Name, err)
		}

		for name, price := range h.Rooms {
			room := &models.RoomType{
				TenantID:      tenant.ID,
				Name:          name,
				PricePerNight: models.MustMoney(price),
				MaxGuests:     2,
				Active:        true,
			}
			if err := bookings.CreateRoomType(ctx, room); err != nil {
				log.Fatalf("Failed to create room type %s: %v", name, err)
			}
		}
		fmt.Printf("Seeded %s (account %s)\n", h.Name, sid)
	}

	fmt.Println("Seeding completed successfully!")
}
