package constants

// API route constants
const (
	APIPrefix           = "/api"
	CheckoutCreateRoute = "/checkout/create"
	PaymentWebhookRoute = "/webhook/payment"
	OrderStatusRoute    = "/order/:order_id"
	HealthRoute         = "/health"
)
