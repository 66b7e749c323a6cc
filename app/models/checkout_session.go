package models

import "time"

const (
	CheckoutSessionStatusPending   = "pending"
	CheckoutSessionStatusCompleted = "completed"
	CheckoutSessionStatusExpired   = "expired"
)

// CheckoutSessionTTL is the advisory lifetime of a hosted checkout attempt.
// It is stamped into expires_at at creation time; no sweeper enforces it.
const CheckoutSessionTTL = 15 * time.Minute

// CheckoutSession tracks one provider-hosted purchase attempt. The row is
// created before the hosted session exists, initially keyed by the
// "plan_<planId>" placeholder, and rewritten to the provider's checkout id
// once that id is known. The metadata column is the durable cart snapshot:
// the provider is not guaranteed to echo metadata back on the webhook, so
// this row is the source of truth for what was bought and at which price.
type CheckoutSession struct {
	CheckoutID  string     `gorm:"column:checkout_id;primaryKey;type:varchar(191)" json:"checkout_id"`
	ProductID   uint       `gorm:"not null;index" json:"product_id"`
	PlanID      string     `gorm:"type:varchar(191);index" json:"plan_id"`
	Metadata    string     `gorm:"type:text" json:"metadata"`
	ExpiresAt   time.Time  `gorm:"type:timestamp;not null" json:"expires_at"`
	Status      string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	CompletedAt *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
}

// IsExpired reports whether the advisory expiry window has passed.
func (s *CheckoutSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
