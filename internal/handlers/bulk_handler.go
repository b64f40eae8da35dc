package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopadmin/internal/apperrors"
	"shopadmin/internal/middleware"
	"shopadmin/internal/services"
)

// BulkHandler handles bulk catalog uploads.
type BulkHandler struct {
	service *services.BulkImportService
}

// NewBulkHandler creates a new BulkHandler.
func NewBulkHandler(service *services.BulkImportService) *BulkHandler {
	return &BulkHandler{service: service}
}

// RegisterRoutes registers the bulk upload route behind staffOnly.
func (h *BulkHandler) RegisterRoutes(router fiber.Router, staffOnly fiber.Handler) {
	router.Post("/bulk-upload", staffOnly, h.HandleBulkUpload)
}

// HandleBulkUpload imports categories, then products, skipping ones that already exist.
func (h *BulkHandler) HandleBulkUpload(c *fiber.Ctx) error {
	var req services.BulkImportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}

	result, err := h.service.Import(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":            "Bulk upload successful",
		"created_categories": result.CreatedCategories,
		"created_products":   result.CreatedProducts,
	})
}
