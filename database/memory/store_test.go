package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hotelbot/database"
	"hotelbot/database/repository"
	"hotelbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ repository.TenantRepository       = (*TenantRepo)(nil)
	_ repository.ConversationRepository = (*ConversationRepo)(nil)
	_ repository.BookingRepository      = (*BookingRepo)(nil)
	_ repository.Transactor             = (*Store)(nil)
)

func TestFindOrCreateGuest_IsScopedToTenant(t *testing.T) {
	ctx := context.Background()
	convs := NewStore().Conversations()

	g1, err := convs.FindOrCreateGuest(ctx, "tenant-a", "whatsapp:+1555", "Ada")
	require.NoError(t, err)
	again, err := convs.FindOrCreateGuest(ctx, "tenant-a", "whatsapp:+1555", "Other")
	require.NoError(t, err)
	other, err := convs.FindOrCreateGuest(ctx, "tenant-b", "whatsapp:+1555", "")
	require.NoError(t, err)

	assert.Equal(t, g1.ID, again.ID)
	assert.Equal(t, "Ada", again.Name)
	assert.NotEqual(t, g1.ID, other.ID)
	assert.Equal(t, "Guest", other.Name)
	assert.True(t, other.OptedIn)
	assert.Equal(t, models.GuestSourceWhatsApp, other.Source)

	_, err = convs.GetGuest(ctx, "tenant-b", g1.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestFindOrCreateOpenConversation_ConcurrentCallsShareOne(t *testing.T) {
	ctx := context.Background()
	convs := NewStore().Conversations()

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := convs.FindOrCreateOpenConversation(ctx, "tenant-a", "guest-1")
			if err == nil {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	c, err := convs.GetConversation(ctx, "tenant-a", ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.StateGreeting, c.CurrentState)
	assert.NotNil(t, c.Metadata)
}

func TestUpdateConversation_MergeResetAndVersion(t *testing.T) {
	ctx := context.Background()
	convs := NewStore().Conversations()
	c, err := convs.FindOrCreateOpenConversation(ctx, "tenant-a", "guest-1")
	require.NoError(t, err)

	next := models.StateDurationSelection
	require.NoError(t, convs.UpdateConversation(ctx, "tenant-a", c, models.ConversationUpdate{
		State: &next,
		Merge: models.Metadata{models.MetaCheckIn: "2099-01-01"},
	}))
	require.NoError(t, convs.UpdateConversation(ctx, "tenant-a", c, models.ConversationUpdate{
		Merge: models.Metadata{models.MetaNights: 3},
	}))
	assert.Equal(t, int64(2), c.Version)
	assert.Equal(t, models.Metadata{models.MetaCheckIn: "2099-01-01", models.MetaNights: 3}, c.Metadata)

	stored, err := convs.GetConversation(ctx, "tenant-a", c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Metadata, stored.Metadata)
	assert.Equal(t, models.StateDurationSelection, stored.CurrentState)

	reset := models.StateDateSelection
	require.NoError(t, convs.UpdateConversation(ctx, "tenant-a", c, models.ConversationUpdate{State: &reset, ResetMetadata: true}))
	assert.Empty(t, c.Metadata)
	assert.Equal(t, models.StateDateSelection, c.CurrentState)
}

func TestUpdateConversation_StaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	convs := NewStore().Conversations()
	c, err := convs.FindOrCreateOpenConversation(ctx, "tenant-a", "guest-1")
	require.NoError(t, err)
	stale := *c

	require.NoError(t, convs.UpdateConversation(ctx, "tenant-a", c, models.ConversationUpdate{Merge: models.Metadata{"a": 1}}))
	err = convs.UpdateConversation(ctx, "tenant-a", &stale, models.ConversationUpdate{Merge: models.Metadata{"b": 2}})
	assert.ErrorIs(t, err, database.ErrConversationConflict)

	err = convs.UpdateConversation(ctx, "tenant-b", c, models.ConversationUpdate{})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings := store.Bookings()

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		b := &models.Booking{TenantID: "tenant-a", GuestID: "guest-1", Nights: 2, Status: models.BookingPending}
		if err := bookings.CreateBooking(ctx, b); err != nil {
			return err
		}
		if err := bookings.CreatePayment(ctx, &models.Payment{TenantID: "tenant-a", BookingID: b.ID, Reference: "REF-1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = bookings.GetPaymentByReference(ctx, "REF-1")
	assert.ErrorIs(t, err, database.ErrNotFound)
	list, err := bookings.ListBookingsByGuest(ctx, "tenant-a", "guest-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings := store.Bookings()

	require.NoError(t, store.WithTransaction(ctx, func(ctx context.Context) error {
		return bookings.CreatePayment(ctx, &models.Payment{TenantID: "tenant-a", Reference: "REF-2", Status: models.PaymentPending})
	}))
	p, err := bookings.GetPaymentByReference(ctx, "REF-2")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status)

	_, err = bookings.TransitionPaymentStatus(ctx, "tenant-b", "REF-2", models.PaymentPending, models.PaymentSuccess)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestTransitionPaymentStatus_OnlyFromExpectedStatus(t *testing.T) {
	ctx := context.Background()
	bookings := NewStore().Bookings()
	require.NoError(t, bookings.CreatePayment(ctx, &models.Payment{TenantID: "tenant-a", Reference: "REF-3", Status: models.PaymentPending}))

	changed, err := bookings.TransitionPaymentStatus(ctx, "tenant-a", "REF-3", models.PaymentPending, models.PaymentSuccess)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = bookings.TransitionPaymentStatus(ctx, "tenant-a", "REF-3", models.PaymentPending, models.PaymentSuccess)
	require.NoError(t, err)
	assert.False(t, changed)

	p, err := bookings.GetPaymentByReference(ctx, "REF-3")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSuccess, p.Status)
}

func TestListActiveRoomTypes_OrderedAndFiltered(t *testing.T) {
	ctx := context.Background()
	bookings := NewStore().Bookings()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, bookings.CreateRoomType(ctx, &models.RoomType{ID: "b", TenantID: "t", Name: "Deluxe", Active: true, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, bookings.CreateRoomType(ctx, &models.RoomType{ID: "a", TenantID: "t", Name: "Standard", Active: true, CreatedAt: base}))
	require.NoError(t, bookings.CreateRoomType(ctx, &models.RoomType{ID: "c", TenantID: "t", Name: "Closed", Active: false, CreatedAt: base}))
	require.NoError(t, bookings.CreateRoomType(ctx, &models.RoomType{ID: "d", TenantID: "other", Name: "Elsewhere", Active: true, CreatedAt: base}))

	rooms, err := bookings.ListActiveRoomTypes(ctx, "t")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Standard", rooms[0].Name)
	assert.Equal(t, "Deluxe", rooms[1].Name)
}

func TestGetByMessagingAccountRef_EmptyRefNeverMatches(t *testing.T) {
	ctx := context.Background()
	tenants := NewStore().Tenants()

	require.NoError(t, tenants.Create(ctx, &models.Tenant{Name: "No Account A"}))
	require.NoError(t, tenants.Create(ctx, &models.Tenant{Name: "No Account B"}))
	require.NoError(t, tenants.Create(ctx, &models.Tenant{Name: "Registered", MessagingAccountRef: "AC1"}))

	_, err := tenants.GetByMessagingAccountRef(ctx, "")
	assert.ErrorIs(t, err, database.ErrNotFound)

	got, err := tenants.GetByMessagingAccountRef(ctx, "AC1")
	require.NoError(t, err)
	assert.Equal(t, "Registered", got.Name)
}
