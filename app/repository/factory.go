package repository

import (
	"sync"

	"gorm.io/gorm"
)

// NewRepositories creates all repository instances backed by the given DB.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:         NewProductRepository(db),
		CheckoutSession: NewCheckoutSessionRepository(db),
		Order:           NewOrderRepository(db),
		PaymentGateway:  NewPaymentGatewayRepository(db),
		Setting:         NewSettingRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetProductRepository returns the product repository instance
func (f *Factory) GetProductRepository() ProductRepository {
	return f.GetRepositories().Product
}

// GetCheckoutSessionRepository returns the checkout session repository instance
func (f *Factory) GetCheckoutSessionRepository() CheckoutSessionRepository {
	return f.GetRepositories().CheckoutSession
}

// GetOrderRepository returns the order repository instance
func (f *Factory) GetOrderRepository() OrderRepository {
	return f.GetRepositories().Order
}

// GetPaymentGatewayRepository returns the payment gateway repository instance
func (f *Factory) GetPaymentGatewayRepository() PaymentGatewayRepository {
	return f.GetRepositories().PaymentGateway
}

// GetSettingRepository returns the setting repository instance
func (f *Factory) GetSettingRepository() SettingRepository {
	return f.GetRepositories().Setting
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
