package models

import (
	"time"
	_ "time/tzdata"
)

// Tenant statuses.
const (
	TenantStatusPending   = "pending"
	TenantStatusActive    = "active"
	TenantStatusPaused    = "paused"
	TenantStatusSuspended = "suspended"
)

// DefaultTimezone is used when a tenant has no timezone configured.
const DefaultTimezone = "Africa/Lagos"

// Tenant is a hotel account. Every guest, conversation, booking and payment belongs to exactly one tenant.
type Tenant struct {
	ID                  string    `bson:"id" json:"id"`
	Name                string    `bson:"name" json:"name"`
	Slug                string    `bson:"slug" json:"slug"`
	Phone               string    `bson:"phone" json:"phone"`     // Hotel's channel number, used as the sender
	Address             string    `bson:"address" json:"address"` // Free text
	Timezone            string    `bson:"timezone" json:"timezone"`
	Status              string    `bson:"status" json:"status"`
	TrustLevel          int       `bson:"trust_level" json:"trust_level"`
	MessagingAccountRef string    `bson:"messaging_account_ref" json:"messaging_account_ref"` // Account SID carried on every webhook
	CreatedAt           time.Time `bson:"created_at" json:"created_at"`
}

// Location returns the tenant's timezone, falling back to DefaultTimezone and then UTC.
func (t *Tenant) Location() *time.Location {
	name := t.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Messaging account statuses.
const (
	AccountStatusActive    = "active"
	AccountStatusInactive  = "inactive"
	AccountStatusSuspended = "suspended"
)

// MessagingAccount holds the channel provider credentials a tenant sends through.
type MessagingAccount struct {
	ID         string    `bson:"id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	AccountSID string    `bson:"account_sid" json:"account_sid"`
	AuthToken  string    `bson:"auth_token" json:"-"`
	Status     string    `bson:"status" json:"status"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
