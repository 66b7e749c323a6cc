package models

import "time"

// Product is the catalog read model consumed by the checkout pipeline. The
// admin CRUD surface that maintains these rows lives outside this service;
// checkout only reads price information and the provider product mapping.
type Product struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Title               string    `gorm:"type:varchar(255);not null" json:"title"`
	Slug                string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Price               float64   `gorm:"not null;default:0" json:"price"`
	SalePrice           float64   `gorm:"not null;default:0" json:"sale_price"`
	WhopProductID       string    `gorm:"type:varchar(191);index" json:"whop_product_id"`
	DeliveryTimeMinutes int       `gorm:"default:0" json:"delivery_time_minutes"`
	IsActive            bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EffectivePrice returns the price checkout falls back to when the client
// does not supply a usable amount. A set sale price wins over the list price.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}
