package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopadmin/internal/services"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service  *services.CategoryService
	validate *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the category routes. Writes additionally pass through staffOnly.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router, staffOnly fiber.Handler) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleListCategories)
	categoryRoutes.Get("/:id", h.HandleGetCategory)
	categoryRoutes.Post("/", staffOnly, h.HandleCreateCategory)
	categoryRoutes.Patch("/:id", staffOnly, h.HandleUpdateCategory)
	categoryRoutes.Put("/:id", staffOnly, h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", staffOnly, h.HandleDeleteCategory)
}

// CategoryRequest is the body for creating a category.
type CategoryRequest struct {
	CategoryName string `json:"category_name" validate:"required,max=255"`
	Description  string `json:"description"`
}

// CategoryPatchRequest is the body for a partial category update.
type CategoryPatchRequest struct {
	CategoryName *string `json:"category_name" validate:"omitempty,max=255"`
	Description  *string `json:"description"`
}

// HandleListCategories retrieves all live categories.
func (h *CategoryHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

// HandleGetCategory retrieves a single live category by its ID.
func (h *CategoryHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(category)
}

// HandleCreateCategory creates a new category.
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	category, err := h.service.Create(c.UserContext(), req.CategoryName, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateCategory changes only the fields present in the body.
func (h *CategoryHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var req CategoryPatchRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	category, err := h.service.Update(c.UserContext(), c.Params("id"), services.CategoryPatch{
		CategoryName: req.CategoryName,
		Description:  req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(category)
}

// HandleDeleteCategory soft-deletes a category.
func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
