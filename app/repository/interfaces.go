package repository

import (
	"time"

	"github.com/wishclip/wishclip/app/models"
)

// ProductRepository defines the read surface of the catalog used by checkout.
// Catalog maintenance happens in the admin back-office, not here.
type ProductRepository interface {
	GetByID(id uint) (*models.Product, error)
}

// CheckoutSessionRepository defines the database operations on checkout
// session rows. Rows are append-mostly: created once, re-keyed once when the
// provider assigns the real checkout id, completed once by the webhook
// engine, and kept afterwards as an audit trail.
type CheckoutSessionRepository interface {
	Create(session *models.CheckoutSession) error
	GetByCheckoutID(checkoutID string) (*models.CheckoutSession, error)
	// RenameCheckoutID rewrites the primary key of an existing row in place
	// so metadata persisted under the placeholder id survives the rewrite.
	RenameCheckoutID(oldID, newID string) error
	// MarkCompleted sets status=completed and completed_at. It is a no-op by
	// value on repeated calls for the same session.
	MarkCompleted(checkoutID string, completedAt time.Time) error
}

// OrderRepository defines the database operations for order records.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByOrderID(orderID string) (*models.Order, error)
	CountByCheckoutSessionID(checkoutSessionID string) (int64, error)
}

// PaymentGatewayRepository resolves structured gateway configuration rows.
type PaymentGatewayRepository interface {
	// GetNewestEnabled returns the most recently created enabled row for the
	// given gateway type.
	GetNewestEnabled(gatewayType string) (*models.PaymentGateway, error)
}

// SettingRepository exposes key/value system settings, including the legacy
// gateway configuration blob.
type SettingRepository interface {
	GetValue(key string) (string, error)
	SetValue(key, value string) error
}

// Repositories holds all repository instances
type Repositories struct {
	Product         ProductRepository
	CheckoutSession CheckoutSessionRepository
	Order           OrderRepository
	PaymentGateway  PaymentGatewayRepository
	Setting         SettingRepository
}
