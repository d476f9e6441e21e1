package memory

import (
	"context"
	"sort"
	"time"

	"hotelbot/database"
	conversationRepo "hotelbot/database/repository/conversation"
	"hotelbot/models"

	"github.com/google/uuid"
)

// ConversationRepo implements repository.ConversationRepository.
type ConversationRepo struct{ s *Store }

func (r *ConversationRepo) FindOrCreateGuest(ctx context.Context, tenantID, phone, displayName string) (*models.Guest, error) {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, g := range r.s.data.guests {
		if g.TenantID == tenantID && g.Phone == phone {
			out := g
			return &out, nil
		}
	}
	if displayName == "" {
		displayName = "Guest"
	}
	g := models.Guest{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Phone:     phone,
		Name:      displayName,
		OptedIn:   true,
		Source:    models.GuestSourceWhatsApp,
		CreatedAt: now(),
	}
	r.s.data.guests[g.ID] = g
	return &g, nil
}

func (r *ConversationRepo) GetGuest(_ context.Context, tenantID, guestID string) (*models.Guest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.data.guests[guestID]
	if !ok || g.TenantID != tenantID {
		return nil, database.ErrNotFound
	}
	return &g, nil
}

func (r *ConversationRepo) FindOrCreateOpenConversation(ctx context.Context, tenantID, guestID string) (*models.Conversation, error) {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c, ok := r.openLocked(tenantID, guestID); ok {
		out := copyConversation(c)
		return &out, nil
	}
	ts := now()
	c := models.Conversation{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		GuestID:      guestID,
		Status:       models.ConversationOpen,
		CurrentState: models.StateGreeting,
		Metadata:     models.Metadata{},
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	r.s.data.conversations[c.ID] = c
	out := copyConversation(c)
	return &out, nil
}

func (r *ConversationRepo) openLocked(tenantID, guestID string) (models.Conversation, bool) {
	for _, c := range r.s.data.conversations {
		if c.TenantID == tenantID && c.GuestID == guestID && c.Status == models.ConversationOpen {
			return c, true
		}
	}
	return models.Conversation{}, false
}

func (r *ConversationRepo) FindOpenConversation(_ context.Context, tenantID, guestID string) (*models.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.openLocked(tenantID, guestID)
	if !ok {
		return nil, database.ErrNotFound
	}
	out := copyConversation(c)
	return &out, nil
}

func (r *ConversationRepo) GetConversation(_ context.Context, tenantID, conversationID string) (*models.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.data.conversations[conversationID]
	if !ok || c.TenantID != tenantID {
		return nil, database.ErrNotFound
	}
	out := copyConversation(c)
	return &out, nil
}

func (r *ConversationRepo) TouchLastGuestMessage(ctx context.Context, tenantID, conversationID string, at time.Time) error {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.data.conversations[conversationID]
	if !ok || c.TenantID != tenantID {
		return database.ErrNotFound
	}
	at = at.UTC()
	c.LastGuestMessageAt = &at
	c.UpdatedAt = at
	r.s.data.conversations[conversationID] = c
	return nil
}

func (r *ConversationRepo) UpdateConversation(ctx context.Context, tenantID string, conv *models.Conversation, upd models.ConversationUpdate) error {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.data.conversations[conv.ID]
	if !ok || stored.TenantID != tenantID {
		return database.ErrNotFound
	}
	if stored.Version != conv.Version {
		return database.ErrConversationConflict
	}
	conversationRepo.ApplyUpdate(&stored, upd, now())
	r.s.data.conversations[conv.ID] = stored
	*conv = copyConversation(stored)
	return nil
}

func (r *ConversationRepo) AppendMessage(ctx context.Context, tenantID, conversationID, direction, body string) (*models.Message, error) {
	defer r.s.beginWrite(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c, ok := r.s.data.conversations[conversationID]; !ok || c.TenantID != tenantID {
		return nil, database.ErrNotFound
	}
	msg := models.Message{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		ConversationID: conversationID,
		Direction:      direction,
		Body:           body,
		CreatedAt:      now(),
	}
	r.s.data.messages = append(r.s.data.messages, msg)
	return &msg, nil
}

func (r *ConversationRepo) ListMessages(_ context.Context, tenantID, conversationID string) ([]models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Message
	for _, m := range r.s.data.messages {
		if m.TenantID == tenantID && m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
