package conversationRepo

import (
	"context"
	"time"

	"hotelbot/models"
)

// ConversationRepository defines data access for guests, conversations and their message log.
// Every method takes the tenant id explicitly; nothing is visible across tenants.
type ConversationRepository interface {
	// FindOrCreateGuest returns the tenant's guest for phone, creating it on first contact.
	FindOrCreateGuest(ctx context.Context, tenantID, phone, displayName string) (*models.Guest, error)
	GetGuest(ctx context.Context, tenantID, guestID string) (*models.Guest, error)

	// FindOrCreateOpenConversation returns the guest's open conversation, creating one in GREETING.
	FindOrCreateOpenConversation(ctx context.Context, tenantID, guestID string) (*models.Conversation, error)
	FindOpenConversation(ctx context.Context, tenantID, guestID string) (*models.Conversation, error)
	GetConversation(ctx context.Context, tenantID, conversationID string) (*models.Conversation, error)
	TouchLastGuestMessage(ctx context.Context, tenantID, conversationID string, at time.Time) error

	// UpdateConversation applies upd if conv.Version still matches the stored version, then
	// reflects the write on conv. A stale version yields ErrConversationConflict.
	UpdateConversation(ctx context.Context, tenantID string, conv *models.Conversation, upd models.ConversationUpdate) error

	AppendMessage(ctx context.Context, tenantID, conversationID, direction, body string) (*models.Message, error)
	ListMessages(ctx context.Context, tenantID, conversationID string) ([]models.Message, error)
}

// ApplyUpdate reflects a successful write on the in-memory conversation.
func ApplyUpdate(conv *models.Conversation, upd models.ConversationUpdate, at time.Time) {
	if upd.State != nil {
		conv.CurrentState = *upd.State
	}
	if upd.ResetMetadata {
		conv.Metadata = models.Metadata{}
	} else if conv.Metadata == nil {
		conv.Metadata = models.Metadata{}
	} else {
		conv.Metadata = conv.Metadata.Clone()
	}
	for k, v := range upd.Merge {
		conv.Metadata[k] = v
	}
	conv.Version++
	conv.UpdatedAt = at
}
