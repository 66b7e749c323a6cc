package models

import "time"

// SettingKeyPaymentGatewayConfig is the legacy single-row JSON blob that
// predates the payment_gateways table. Its value looks like:
//
//	{"whop": {"api_key": "...", "webhook_secret": "..."}}
//
// The secret resolver parses it defensively as its last tier.
const SettingKeyPaymentGatewayConfig = "payment_gateway_config"

// Setting represents a system setting
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:50;not null" json:"type"` // string, boolean, integer, float
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
