package repository

import (
	"github.com/wishclip/wishclip/app/models"
	"gorm.io/gorm"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByOrderID(orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CountByCheckoutSessionID counts orders whose payload references the given
// checkout session. The JSON extraction keeps this usable for audits even
// though the pipeline itself does not pre-check before insert.
func (r *orderRepository) CountByCheckoutSessionID(checkoutSessionID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("JSON_UNQUOTE(JSON_EXTRACT(encrypted_data, '$.checkout_session_id')) = ?", checkoutSessionID).
		Count(&count).Error
	return count, err
}
