package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shopadmin/internal/models"
	"shopadmin/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the product routes. Writes additionally pass through staffOnly.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, staffOnly fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", staffOnly, h.HandleCreateProduct)
	productRoutes.Patch("/:id", staffOnly, h.HandleUpdateProduct)
	productRoutes.Put("/:id", staffOnly, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", staffOnly, h.HandleDeleteProduct)
}

// ProductRequest is the body for creating or partially updating a product.
type ProductRequest struct {
	Category           *string          `json:"category"`
	ProductName        *string          `json:"product_name" validate:"omitempty,max=255"`
	ProductDescription *string          `json:"product_description"`
	ProductPrice       *decimal.Decimal `json:"product_price"`
	Currency           *string          `json:"currency" validate:"omitempty,max=3"`
	StockQuantity      *int             `json:"stock_quantity" validate:"omitempty,min=0"`
	SKU                *string          `json:"sku" validate:"omitempty,max=100"`
	ImageURL           *string          `json:"image_url" validate:"omitempty,max=500"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		CategoryID:         r.Category,
		ProductName:        r.ProductName,
		ProductDescription: r.ProductDescription,
		ProductPrice:       r.ProductPrice,
		Currency:           r.Currency,
		StockQuantity:      r.StockQuantity,
		SKU:                r.SKU,
		ImageURL:           r.ImageURL,
	}
}

// ProductResponse is a product with its read-only category name and a fixed two-place price.
type ProductResponse struct {
	models.Product
	ProductPrice string `json:"product_price"`
	CategoryName string `json:"category_name"`
}

func newProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		Product:      *p,
		ProductPrice: p.ProductPrice.StringFixed(2),
		CategoryName: p.CategoryName(),
	}
}

// HandleGetProducts retrieves all live products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, newProductResponse(&products[i]))
	}
	return c.JSON(resp)
}

// HandleGetProductByID retrieves a single live product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newProductResponse(product))
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	product, err := h.service.Create(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newProductResponse(product))
}

// HandleUpdateProduct changes only the fields present in the body.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	product, err := h.service.Update(c.UserContext(), c.Params("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(newProductResponse(product))
}

// HandleDeleteProduct soft-deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
