package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/agrolink/internal/services"
)

// ProductHandler manages product listing endpoints.
type ProductHandler struct {
	products *services.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// CreateProduct validates and persists a new product listing.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req services.NewProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product, err := h.products.Create(req)
	if err != nil {
		return err
	}

	return c.JSON(product)
}
