// Package memory is an in-process implementation of the repositories, used for local
// development without MongoDB and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"hotelbot/database/repository"
	"hotelbot/models"
)

type txKey struct{}

type dataset struct {
	tenants       map[string]models.Tenant           // id -> tenant
	accounts      map[string]models.MessagingAccount // account sid -> account
	guests        map[string]models.Guest            // id -> guest
	conversations map[string]models.Conversation     // id -> conversation
	messages      []models.Message
	roomTypes     map[string]models.RoomType // id -> room type
	bookings      map[string]models.Booking  // id -> booking
	payments      map[string]models.Payment  // reference -> payment
}

func newDataset() *dataset {
	return &dataset{
		tenants:       map[string]models.Tenant{},
		accounts:      map[string]models.MessagingAccount{},
		guests:        map[string]models.Guest{},
		conversations: map[string]models.Conversation{},
		roomTypes:     map[string]models.RoomType{},
		bookings:      map[string]models.Booking{},
		payments:      map[string]models.Payment{},
	}
}

func (d *dataset) clone() *dataset {
	out := newDataset()
	for k, v := range d.tenants {
		out.tenants[k] = v
	}
	for k, v := range d.accounts {
		out.accounts[k] = v
	}
	for k, v := range d.guests {
		out.guests[k] = v
	}
	for k, v := range d.conversations {
		out.conversations[k] = copyConversation(v)
	}
	out.messages = append([]models.Message(nil), d.messages...)
	for k, v := range d.roomTypes {
		out.roomTypes[k] = v
	}
	for k, v := range d.bookings {
		out.bookings[k] = v
	}
	for k, v := range d.payments {
		out.payments[k] = v
	}
	return out
}

// Store holds every collection behind one lock so a transaction can snapshot and restore
// them together.
type Store struct {
	txMu sync.Mutex // held by a running transaction and by writes outside one
	mu   sync.RWMutex
	data *dataset
}

func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Tenants returns the tenant repository view of the store.
func (s *Store) Tenants() *TenantRepo { return &TenantRepo{s} }

// Conversations returns the conversation repository view of the store.
func (s *Store) Conversations() *ConversationRepo { return &ConversationRepo{s} }

// Bookings returns the booking repository view of the store.
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s} }

// Repositories bundles the store's views for service wiring.
func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Tenants:       s.Tenants(),
		Conversations: s.Conversations(),
		Bookings:      s.Bookings(),
		Tx:            s,
	}
}

// WithTransaction runs fn against a snapshot boundary. If fn fails every write it made is
// discarded. Writes from outside the transaction wait until it finishes, for every tenant,
// so slow work inside fn (such as a payment provider call) stalls the whole store.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// beginWrite serializes a write against running transactions and returns the release func.
func (s *Store) beginWrite(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func now() time.Time {
	return time.Now().UTC()
}

func copyConversation(c models.Conversation) models.Conversation {
	c.Metadata = c.Metadata.Clone()
	if c.LastGuestMessageAt != nil {
		t := *c.LastGuestMessageAt
		c.LastGuestMessageAt = &t
	}
	return c
}
