package models

import "time"

const GatewayTypeWhop = "whop"

// PaymentGateway is the structured gateway-configuration table consulted by
// the secret resolver when no environment configuration is present. Multiple
// rows per gateway type may exist; the newest enabled row with a non-empty
// secret column wins.
type PaymentGateway struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	GatewayType   string    `gorm:"type:varchar(20);not null;index:idx_payment_gateways_type_enabled,priority:1" json:"gateway_type"`
	Enabled       bool      `gorm:"default:false;index:idx_payment_gateways_type_enabled,priority:2" json:"enabled"`
	APIKey        string    `gorm:"type:text" json:"-"`
	WebhookSecret string    `gorm:"type:text" json:"-"`
	CompanyID     string    `gorm:"type:varchar(191)" json:"company_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
