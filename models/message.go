package models

import "time"

// Message directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message is one entry of a conversation's append-only log.
type Message struct {
	ID                string    `bson:"id" json:"id"`
	TenantID          string    `bson:"tenant_id" json:"tenant_id"`
	ConversationID    string    `bson:"conversation_id" json:"conversation_id"`
	Direction         string    `bson:"direction" json:"direction"`
	Body              string    `bson:"body" json:"body"`
	ProviderMessageID *string   `bson:"provider_message_id,omitempty" json:"provider_message_id,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}
