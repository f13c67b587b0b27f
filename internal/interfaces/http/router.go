package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appop "github.com/jhoicas/stock-operations/internal/application/operation"
	"github.com/jhoicas/stock-operations/internal/application/usecase"
	"github.com/jhoicas/stock-operations/pkg/logger"
	"github.com/jhoicas/stock-operations/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName  string
	Submit       *appop.SubmitOperationUseCase
	Rollback     *appop.RollbackUseCase
	Query        *appop.QueryUseCase
	References   *appop.ReferenceCache
	DepartmentUC *usecase.DepartmentUseCase
	Metrics      *metrics.Metrics
	Logger       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Logger != nil {
		app.Use(RequestLogger(deps.Logger))
	}
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")

	// Operaciones de stock
	operations := api.Group("/operations")
	operationHandler := NewOperationHandler(deps.Submit, deps.Rollback, deps.Query)
	operations.Post("/validate", operationHandler.Validate)
	operations.Post("/", operationHandler.Submit)
	operations.Get("/", operationHandler.Search)
	operations.Get("/:id", operationHandler.GetByID)
	operations.Get("/:id/items", operationHandler.Items)
	operations.Get("/:id/transactions", operationHandler.Transactions)
	operations.Post("/:id/rollback", operationHandler.Rollback)
	operations.Post("/:id/cancel", operationHandler.Cancel)

	// Colecciones de referencia
	references := api.Group("/references")
	referenceHandler := NewReferenceHandler(deps.References)
	references.Get("/:kind", referenceHandler.List)
	references.Post("/:kind/refresh", referenceHandler.Refresh)

	// Departments
	departments := api.Group("/departments")
	departmentHandler := NewDepartmentHandler(deps.DepartmentUC)
	departments.Post("/", departmentHandler.Create)
	departments.Get("/", departmentHandler.List)
	departments.Get("/:id", departmentHandler.GetByID)
	departments.Put("/:id", departmentHandler.Update)
	departments.Delete("/:id", departmentHandler.Delete)
}
