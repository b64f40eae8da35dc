package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shopadmin/internal/apperrors"
	"shopadmin/internal/handlers"
	"shopadmin/internal/logger"
	"shopadmin/internal/metrics"
	"shopadmin/internal/middleware"
	"shopadmin/internal/services"
)

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Auth       *services.AuthService
	Categories *services.CategoryService
	Products   *services.ProductService
	Bulk       *services.BulkImportService
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

// New builds the Fiber app with middleware, the /api/v1 routes, /health and /metrics.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "shopadmin",
		ErrorHandler: apperrors.FiberErrorHandler(deps.Log),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Middleware(deps.Log))
	if deps.Metrics != nil {
		app.Use(middleware.Metrics(deps.Metrics))
	}

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(deps.Auth)
	staffOnly := middleware.StaffRequired()

	handlers.NewAuthHandler(deps.Auth).RegisterRoutes(apiV1, authRequired)

	// Protected routes (require a valid access token)
	protected := apiV1.Group("", authRequired)
	handlers.NewCategoryHandler(deps.Categories).RegisterRoutes(protected, staffOnly)
	handlers.NewProductHandler(deps.Products).RegisterRoutes(protected, staffOnly)
	handlers.NewBulkHandler(deps.Bulk).RegisterRoutes(protected, staffOnly)

	return app
}
