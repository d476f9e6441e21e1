package models

import "time"

// Payment providers.
const (
	PaymentProviderLocal       = "local"
	PaymentProviderStripe      = "stripe"
	PaymentProviderPaystack    = "paystack"
	PaymentProviderFlutterwave = "flutterwave"
	PaymentProviderManual      = "manual"
)

// Payment statuses.
const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

// Payment tracks the settlement of a booking through a payment provider.
type Payment struct {
	ID          string    `bson:"id" json:"id"`
	TenantID    string    `bson:"tenant_id" json:"tenant_id"`
	BookingID   string    `bson:"booking_id" json:"booking_id"`
	Provider    string    `bson:"provider" json:"provider"`
	Reference   string    `bson:"reference" json:"reference"`                           // Globally unique, e.g. "REF-8K2M0QX1ZD"
	ProviderRef string    `bson:"provider_ref,omitempty" json:"provider_ref,omitempty"` // e.g. Stripe checkout session id
	CheckoutURL string    `bson:"checkout_url" json:"checkout_url"`
	Amount      Money     `bson:"amount" json:"amount"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// PaymentReminderPayload is the task payload for a pending-payment reminder.
type PaymentReminderPayload struct {
	TenantID  string `json:"tenantId"`
	Reference string `json:"reference"`
}
