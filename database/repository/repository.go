package repository

import (
	"hotelbot/database"
	bookingRepo "hotelbot/database/repository/booking"
	conversationRepo "hotelbot/database/repository/conversation"
	tenantRepo "hotelbot/database/repository/tenant"
)

// Re-export the TenantRepository interface and constructor.
type TenantRepository = tenantRepo.TenantRepository

var NewMongoTenantRepo = tenantRepo.NewMongoTenantRepo

// Re-export the ConversationRepository interface and constructor.
type ConversationRepository = conversationRepo.ConversationRepository

var NewMongoConversationRepo = conversationRepo.NewMongoConversationRepo

// Re-export the BookingRepository interface and constructor.
type BookingRepository = bookingRepo.BookingRepository

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

// Re-export the storage sentinels.
var (
	ErrNotFound             = database.ErrNotFound
	ErrConversationConflict = database.ErrConversationConflict
)

// Transactor groups repository writes into one atomic unit.
type Transactor = database.Transactor

// Store bundles every repository the services depend on.
type Store struct {
	Tenants       TenantRepository
	Conversations ConversationRepository
	Bookings      BookingRepository
	Tx            Transactor
}
