package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/wishclip/wishclip/app/repository"
)

var orderRepository repository.OrderRepository

// InitializeOrderController wires the order store used by the read endpoint.
func InitializeOrderController(repo repository.OrderRepository) {
	orderRepository = repo
}

// HandleOrderStatus serves the order confirmation lookup behind the
// notification's order_url: GET /api/order/:order_id. Only non-sensitive
// fields are exposed; the encrypted_data blob stays server-side.
func HandleOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("order_id")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "order_id is required"})
	}

	order, err := orderRepository.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load order"})
	}

	return c.JSON(fiber.Map{
		"order_id":   order.OrderID,
		"product_id": order.ProductID,
		"status":     order.Status,
		"created_at": order.CreatedAt,
	})
}
