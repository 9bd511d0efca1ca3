package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/reservas-api/internal/application/auth"
	"github.com/jhoicas/reservas-api/internal/application/inventory"
	"github.com/jhoicas/reservas-api/internal/application/usecase"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// RouterDeps dependencias para el router. AuthUC y UserUC nil = sin login (BD deshabilitada).
type RouterDeps struct {
	Inventory   *inventory.Service
	Workflow    *inventory.ValidationWorkflow
	ProductUC   *usecase.ProductUseCase
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	JWTSecret   string
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	const (
		admin     = entity.RoleAdmin
		bodeguero = entity.RoleBodeguero
		vendedor  = entity.RoleVendedor
	)

	app.Get("/health", NewHealthHandler(deps.Inventory, deps.ServiceName).Health)

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	if deps.AuthUC != nil {
		api.Post("/auth/login", authHandler.Login)
	}

	// Rutas protegidas (requieren Bearer Token con rol)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole())
	if deps.UserUC != nil {
		protected.Get("/auth/me", authHandler.Me)
	}

	// Catálogo
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:name", productHandler.GetByName)
	products.Put("/:name", RequireRole(admin), productHandler.Upsert)

	// Stock
	inventoryHandler := NewInventoryHandler(deps.Inventory, deps.ProductUC)
	stock := protected.Group("/stock")
	stock.Get("/", inventoryHandler.Lines)
	stock.Post("/adjustments", RequireRole(admin, bodeguero), inventoryHandler.Adjust)
	stock.Get("/:location/:product", inventoryHandler.Available)
	protected.Get("/movements", inventoryHandler.Movements)

	// Contenedores
	containers := protected.Group("/containers")
	containerHandler := NewContainerHandler(deps.Inventory)
	containers.Post("/", RequireRole(admin, bodeguero), containerHandler.Create)
	containers.Get("/", containerHandler.List)
	containers.Get("/:id", containerHandler.GetByID)
	containers.Get("/:id/available", containerHandler.Available)
	containers.Post("/:id/arrive", RequireRole(admin, bodeguero), containerHandler.Arrive)
	containers.Post("/:id/delay", RequireRole(admin, bodeguero), containerHandler.Delay)
	containers.Post("/:id/resume", RequireRole(admin, bodeguero), containerHandler.Resume)

	// Reservas
	reservations := protected.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Inventory, deps.Workflow)
	reservations.Post("/", RequireRole(admin, vendedor), reservationHandler.Create)
	reservations.Get("/", reservationHandler.List)
	reservations.Post("/expire", RequireRole(admin), reservationHandler.Expire)
	reservations.Get("/:id", reservationHandler.GetByID)
	reservations.Get("/:id/history", reservationHandler.History)
	reservations.Put("/:id", RequireRole(admin, vendedor), reservationHandler.Update)
	reservations.Delete("/:id", RequireRole(admin, vendedor), reservationHandler.Delete)
	reservations.Post("/:id/approve", RequireRole(admin), reservationHandler.Approve)
	reservations.Post("/:id/reject", RequireRole(admin), reservationHandler.Reject)
	reservations.Post("/:id/dispatch", RequireRole(admin, bodeguero), reservationHandler.Dispatch)

	// Traslados
	transferHandler := NewTransferHandler(deps.Inventory)
	protected.Post("/transfers", RequireRole(admin, bodeguero), transferHandler.Create)
}
