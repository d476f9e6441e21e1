package models

import "time"

// GuestSourceWhatsApp marks guests created from an inbound WhatsApp message.
const GuestSourceWhatsApp = "whatsapp"

// Guest is a hotel guest identified by phone number within a tenant.
type Guest struct {
	ID        string    `bson:"id" json:"id"`
	TenantID  string    `bson:"tenant_id" json:"tenant_id"`
	Phone     string    `bson:"phone" json:"phone"` // Raw channel address, e.g. "whatsapp:+2348000000000"
	Name      string    `bson:"name" json:"name"`
	OptedIn   bool      `bson:"opted_in" json:"opted_in"`
	Source    string    `bson:"source" json:"source"` // "whatsapp", "manual" or "import"
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
