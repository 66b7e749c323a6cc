package models

import "time"

const OrderStatusCompleted = "completed"

// Order is the authoritative record of a confirmed purchase, created exactly
// once by the webhook fulfillment engine and never mutated afterwards. The
// buyer-facing payload (email, amount, addons) is stored as a JSON blob in
// encrypted_data, copied verbatim from the checkout session's cart snapshot
// so the price at purchase time survives later catalog changes.
type Order struct {
	OrderID       string    `gorm:"column:order_id;primaryKey;type:varchar(64)" json:"order_id"`
	ProductID     uint      `gorm:"not null;index" json:"product_id"`
	EncryptedData string    `gorm:"type:text" json:"encrypted_data"`
	Status        string    `gorm:"type:varchar(16);not null;default:'completed';index" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
