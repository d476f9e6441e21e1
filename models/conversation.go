package models

import "time"

// Conversation statuses.
const (
	ConversationOpen    = "open"
	ConversationClosed  = "closed"
	ConversationPending = "pending"
)

// ConversationState is a step of the booking dialogue.
type ConversationState string

const (
	StateGreeting          ConversationState = "GREETING"
	StateDateSelection     ConversationState = "DATE_SELECTION"
	StateDurationSelection ConversationState = "DURATION_SELECTION"
	StateRoomSelection     ConversationState = "ROOM_SELECTION"
	StateConfirmation      ConversationState = "CONFIRMATION"
	StatePaymentPending    ConversationState = "PAYMENT_PENDING"
)

// Valid reports whether s is one of the defined dialogue states.
func (s ConversationState) Valid() bool {
	switch s {
	case StateGreeting, StateDateSelection, StateDurationSelection,
		StateRoomSelection, StateConfirmation, StatePaymentPending:
		return true
	}
	return false
}

// Metadata keys written by the booking flow.
const (
	MetaCheckIn     = "check_in"
	MetaNights      = "nights"
	MetaRoomOptions = "room_options"
	MetaRoomTypeID  = "room_type_id"
	MetaTotalPrice  = "total_price"
)

// Metadata is the conversation's scratch bag. Its shape depends on the current state.
type Metadata map[string]any

// Clone returns a shallow copy.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Conversation is the dialogue session between one guest and one tenant.
type Conversation struct {
	ID                 string            `bson:"id" json:"id"`
	TenantID           string            `bson:"tenant_id" json:"tenant_id"`
	GuestID            string            `bson:"guest_id" json:"guest_id"`
	Status             string            `bson:"status" json:"status"`
	CurrentState       ConversationState `bson:"current_state" json:"current_state"`
	Metadata           Metadata          `bson:"metadata" json:"metadata"`
	LastGuestMessageAt *time.Time        `bson:"last_guest_message_at,omitempty" json:"last_guest_message_at,omitempty"`
	Version            int64             `bson:"version" json:"version"` // Bumped on every state/metadata write
	CreatedAt          time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `bson:"updated_at" json:"updated_at"`
}

// ConversationUpdate describes a single write to a conversation.
// A nil State leaves the state unchanged. Merge is applied key by key unless
// ResetMetadata is set, in which case the bag is replaced by Merge.
type ConversationUpdate struct {
	State         *ConversationState
	Merge         Metadata
	ResetMetadata bool
}
