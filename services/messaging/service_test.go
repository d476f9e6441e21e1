package messaging

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"hotelbot/database/memory"
	"hotelbot/database/repository"
	"hotelbot/models"
	"hotelbot/services/flow"
	"hotelbot/services/guardrail"
	"hotelbot/services/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type sentMessage struct {
	tenantID string
	to       string
	body     string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, tenant *models.Tenant, to, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMessage{tenantID: tenant.ID, to: to, body: body})
	return nil
}

func (r *recordingSender) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMessage(nil), r.sent...)
}

func (r *recordingSender) last() sentMessage {
	msgs := r.messages()
	if len(msgs) == 0 {
		return sentMessage{}
	}
	return msgs[len(msgs)-1]
}

type harness struct {
	svc      *DefaultMessagingService
	repos    repository.Store
	sender   *recordingSender
	payments *payment.LocalPaymentService
	logs     *observer.ObservedLogs
	tenant   *models.Tenant
}

const guestPhone = "whatsapp:+2348000000001"

func createTenant(t *testing.T, repos repository.Store, name, sid string) *models.Tenant {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repos.Tenants.CreateMessagingAccount(ctx, &models.MessagingAccount{AccountSID: sid, AuthToken: "x"}))
	tenant := &models.Tenant{Name: name, Phone: "+14155238886", Timezone: "UTC", MessagingAccountRef: sid}
	require.NoError(t, repos.Tenants.Create(ctx, tenant))
	require.NoError(t, repos.Bookings.CreateRoomType(ctx, &models.RoomType{
		TenantID: tenant.ID, Name: "Standard Room", PricePerNight: models.MustMoney("200.00"), MaxGuests: 2, Active: true,
	}))
	return tenant
}

func newHarness(t *testing.T, policy guardrail.Policy) *harness {
	t.Helper()
	repos := memory.NewStore().Repositories()
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	guard := guardrail.NewGuardrail(guardrail.NewMemoryRateLimiter(20, time.Minute), 24*time.Hour, policy, logger)
	payments := payment.NewLocalPaymentService(repos.Bookings, repos.Tx, "http://localhost:8080", logger)
	bookingFlow := flow.NewBookingFlow(repos, payments, nil, "$", logger)
	bookingFlow.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	sender := &recordingSender{}
	dispatcher := NewDispatcher(repos.Conversations, guard, sender, logger)
	svc := NewMessagingService(repos, guard, bookingFlow, dispatcher, "$", logger)

	return &harness{
		svc:      svc,
		repos:    repos,
		sender:   sender,
		payments: payments,
		logs:     logs,
		tenant:   createTenant(t, repos, "Seaside Hotel", "AC1"),
	}
}

func (h *harness) inbound(body string) InboundMessage {
	return InboundMessage{From: guestPhone, To: "whatsapp:+14155238886", Body: body, ProfileName: "Ada", AccountSid: "AC1"}
}

func (h *harness) conversation(t *testing.T) *models.Conversation {
	t.Helper()
	ctx := context.Background()
	guest, err := h.repos.Conversations.FindOrCreateGuest(ctx, h.tenant.ID, guestPhone, "")
	require.NoError(t, err)
	conv, err := h.repos.Conversations.FindOpenConversation(ctx, h.tenant.ID, guest.ID)
	require.NoError(t, err)
	return conv
}

func TestProcessInbound_UnknownTenantIsDropped(t *testing.T) {
	h := newHarness(t, guardrail.PolicyPermissive)
	msg := h.inbound("hi")
	msg.AccountSid = "AC_UNKNOWN"

	err := h.svc.ProcessInbound(context.Background(), msg)
	assert.ErrorIs(t, err, ErrUnknownTenant)
	assert.Empty(t, h.sender.messages())
	assert.Equal(t, 1, h.logs.FilterMessage("Inbound message to unknown account").Len())
}

func TestProcessInbound_MissingAccountSidIsDropped(t *testing.T) {
	h := newHarness(t, guardrail.PolicyPermissive)
	ctx := context.Background()

	// A hotel that has not been given a messaging account yet.
	unregistered := &models.Tenant{Name: "Unregistered Inn", Phone: "+14155550000", Timezone: "UTC"}
	require.NoError(t, h.repos.Tenants.Create(ctx, unregistered))

	for _, sid := range []string{"", "   "} {
		msg := h.inbound("hi")
		msg.AccountSid = sid
		assert.ErrorIs(t, h.svc.ProcessInbound(ctx, msg), ErrUnknownTenant)
	}

	guest, err := h.repos.Conversations.FindOrCreateGuest(ctx, unregistered.ID, guestPhone, "")
	require.NoError(t, err)
	_, err = h.repos.Conversations.FindOpenConversation(ctx, unregistered.ID, guest.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, h.sender.messages())
	assert.Equal(t, 2, h.logs.FilterMessage("Inbound message without account identifier").Len())
}

func TestProcessInbound_EndToEnd(t *testing.T) {
	h := newHarness(t, guardrail.PolicyPermissive)
	ctx := context.Background()

	for _, body := range []string{"hi", "2099-01-01", "3", "1", "yes"} {
		require.NoError(t, h.svc.ProcessInbound(ctx, h.inbound(body)))
	}

	sent := h.sender.messages()
	require.Len(t, sent, 5)
	assert.Equal(t, guestPhone, sent[0].to)
	assert.True(t, strings.HasPrefix(sent[0].body, "Welcome to Seaside Hotel!"))
	assert.Contains(t, sent[4].body, "Please make a payment of $600.00")
	assert.Contains(t, sent[4].body, "Pay here: http://localhost:8080/checkout/REF-")

	conv := h.conversation(t)
	assert.Equal(t, models.StatePaymentPending, conv.CurrentState)
	require.NotNil(t, conv.LastGuestMessageAt)

	msgs, err := h.repos.Conversations.ListMessages(ctx, h.tenant.ID, conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 10)
	assert.Equal(t, models.DirectionInbound, msgs[0].Direction)
	assert.Equal(t, models.DirectionOutbound, msgs[1].Direction)

	guest, err := h.repos.Conversations.GetGuest(ctx, h.tenant.ID, conv.GuestID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", guest.Name)
}

func TestProcessInbound_RateLimitDropsTwentyFirst(t *testing.T) {
	h := newHarness(t, guardrail.PolicyPermissive)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.NoError(t, h.svc.ProcessInbound(ctx, h.inbound("hello")))
	}
	conv := h.conversation(t)
	before, err := h.repos.Conversations.ListMessages(ctx, h.tenant.ID, conv.ID)
	require.NoError(t, err)
	require.Len(t, before, 40)

	err = h.svc.ProcessInbound(ctx, h.inbound("hello"))
	assert.ErrorIs(t, err, ErrRateLimited)

	after, err := h.repos.Conversations.ListMessages(ctx, h.tenant.ID, conv.ID)
	require.NoError(t, err)
	assert.Len(t, after, 40)
	assert.Equal(t, conv.Version, h.conversation(t).Version)
	assert.Len(t, h.sender.messages(), 20)
	assert.Equal(t, 1, h.logs.FilterMessage("Rate limit exceeded").Len())
}

func TestProcessInbound_SendFailureStillAdvancesState(t *testing.T) {
	h := newHarness(t, guardrail.PolicyPermissive)
	h.sender.err = errors.New("twilio down")
	ctx := context.Background()

	require.NoError(t, h.svc.ProcessInbound(ctx, h.inbound("hi")))

	conv := h.conversation(t)
	assert.Equal(t, models.StateDateSelection, conv.CurrentState)
	msgs, err := h.repos.Conversations.ListMessages(ctx, h.tenant.ID, conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, 1, h.logs.FilterMessage("Failed to send outbound message").Len())
}

func TestProcessInbound_SameGuestIsSerialized(t *testing.T) {
	h := newHarness(t, guardrail.PolicyPermissive)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- h.svc.ProcessInbound(ctx, h.inbound("hello"))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	conv := h.conversation(t)
	assert.Equal(t, models.StateDateSelection, conv.CurrentState)
	assert.Equal(t, int64(1), conv.Version)
	msgs, err := h.repos.Conversations.ListMessages(ctx, h.tenant.ID, conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 20)
}

func TestProcessInbound_TenantsAreIsolated(t *testing.T) {
	h := newHarness(t, guardrail.PolicyPermissive)
	ctx := context.Background()
	other := createTenant(t, h.repos, "Mountain Lodge", "AC2")

	require.NoError(t, h.svc.ProcessInbound(ctx, h.inbound("hi")))
	msg := h.inbound("hi")
	msg.AccountSid = "AC2"
	require.NoError(t, h.svc.ProcessInbound(ctx, msg))

	sent := h.sender.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, h.tenant.ID, sent[0].tenantID)
	assert.Contains(t, sent[0].body, "Seaside Hotel")
	assert.Equal(t, other.ID, sent[1].tenantID)
	assert.Contains(t, sent[1].body, "Mountain Lodge")

	g1, err := h.repos.Conversations.FindOrCreateGuest(ctx, h.tenant.ID, guestPhone, "")
	require.NoError(t, err)
	g2, err := h.repos.Conversations.FindOrCreateGuest(ctx, other.ID, guestPhone, "")
	require.NoError(t, err)
	assert.NotEqual(t, g1.ID, g2.ID)
}

func TestDispatch_StrictPolicyBlocksOutsideWindow(t *testing.T) {
	h := newHarness(t, guardrail.PolicyStrict)
	ctx := context.Background()

	conv, err := h.repos.Conversations.FindOrCreateOpenConversation(ctx, h.tenant.ID, "guest-1")
	require.NoError(t, err)

	result, err := h.svc.Dispatcher.Dispatch(ctx, h.tenant, conv, guestPhone, "late reply")
	require.NoError(t, err)
	assert.True(t, result.Blocked)
	assert.True(t, result.WindowExpired)
	assert.False(t, result.Sent)
	assert.Empty(t, h.sender.messages())

	msgs, err := h.repos.Conversations.ListMessages(ctx, h.tenant.ID, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestDispatch_PermissivePolicySendsOutsideWindow(t *testing.T) {
	h := newHarness(t, guardrail.PolicyPermissive)
	ctx := context.Background()

	conv, err := h.repos.Conversations.FindOrCreateOpenConversation(ctx, h.tenant.ID, "guest-1")
	require.NoError(t, err)
	stale := time.Now().Add(-25 * time.Hour)
	conv.LastGuestMessageAt = &stale

	result, err := h.svc.Dispatcher.Dispatch(ctx, h.tenant, conv, guestPhone, "late reply")
	require.NoError(t, err)
	assert.True(t, result.Sent)
	assert.True(t, result.WindowExpired)
	assert.NotEmpty(t, result.MessageID)
	assert.Equal(t, 1, h.logs.FilterMessage("Outside 24h messaging window, sending anyway").Len())
}

func TestPaymentFollowUps(t *testing.T) {
	h := newHarness(t, guardrail.PolicyPermissive)
	ctx := context.Background()
	for _, body := range []string{"hi", "2099-01-01", "2", "1", "yes"} {
		require.NoError(t, h.svc.ProcessInbound(ctx, h.inbound(body)))
	}

	conv := h.conversation(t)
	bookings, err := h.repos.Bookings.ListBookingsByGuest(ctx, h.tenant.ID, conv.GuestID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	reference := h.sender.last().body[strings.Index(h.sender.last().body, "REF-"):]

	require.NoError(t, h.svc.SendPaymentReminder(ctx, h.tenant.ID, reference))
	assert.Contains(t, h.sender.last().body, "Reminder: your booking #"+bookings[0].ID+" is awaiting payment of $400.00.")

	v, err := h.payments.VerifyPayment(ctx, reference)
	require.NoError(t, err)
	require.True(t, v.Settled)
	require.NoError(t, h.svc.NotifyPaymentConfirmed(ctx, reference))
	assert.Equal(t, "Payment received! Your booking #"+bookings[0].ID+" is confirmed. We look forward to welcoming you on 2099-01-01.", h.sender.last().body)

	count := len(h.sender.messages())
	require.NoError(t, h.svc.SendPaymentReminder(ctx, h.tenant.ID, reference))
	assert.Len(t, h.sender.messages(), count)
}
