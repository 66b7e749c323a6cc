package repository

import (
	"time"

	"github.com/wishclip/wishclip/app/models"
	"gorm.io/gorm"
)

// checkoutSessionRepository implements the CheckoutSessionRepository interface
type checkoutSessionRepository struct {
	db *gorm.DB
}

// NewCheckoutSessionRepository creates a new checkout session repository instance
func NewCheckoutSessionRepository(db *gorm.DB) CheckoutSessionRepository {
	return &checkoutSessionRepository{db: db}
}

func (r *checkoutSessionRepository) Create(session *models.CheckoutSession) error {
	return r.db.Create(session).Error
}

func (r *checkoutSessionRepository) GetByCheckoutID(checkoutID string) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	err := r.db.Where("checkout_id = ?", checkoutID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// RenameCheckoutID updates the primary key column in place. A single-row
// UPDATE keeps metadata, product_id and expires_at untouched, which an
// insert-then-delete would not guarantee under concurrent webhook delivery.
func (r *checkoutSessionRepository) RenameCheckoutID(oldID, newID string) error {
	result := r.db.Model(&models.CheckoutSession{}).
		Where("checkout_id = ?", oldID).
		Update("checkout_id", newID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *checkoutSessionRepository) MarkCompleted(checkoutID string, completedAt time.Time) error {
	return r.db.Model(&models.CheckoutSession{}).
		Where("checkout_id = ?", checkoutID).
		Updates(map[string]interface{}{
			"status":       models.CheckoutSessionStatusCompleted,
			"completed_at": &completedAt,
		}).Error
}
