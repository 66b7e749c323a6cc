package repository

import (
	"github.com/wishclip/wishclip/app/models"
	"gorm.io/gorm"
)

// paymentGatewayRepository implements the PaymentGatewayRepository interface
type paymentGatewayRepository struct {
	db *gorm.DB
}

// NewPaymentGatewayRepository creates a new payment gateway repository instance
func NewPaymentGatewayRepository(db *gorm.DB) PaymentGatewayRepository {
	return &paymentGatewayRepository{db: db}
}

func (r *paymentGatewayRepository) GetNewestEnabled(gatewayType string) (*models.PaymentGateway, error) {
	var gateway models.PaymentGateway
	err := r.db.
		Where("gateway_type = ? AND enabled = ?", gatewayType, true).
		Order("created_at DESC").
		First(&gateway).Error
	if err != nil {
		return nil, err
	}
	return &gateway, nil
}
