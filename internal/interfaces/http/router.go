package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/permission"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *stock.Ledger
	Movements     *stock.MovementUseCase
	Transfers     *stock.TransferUseCase
	Inventories   *stock.InventoryUseCase
	Cycles        *stock.CycleUseCase
	Reservations  *stock.ReservationUseCase
	Replenishment *stock.ReplenishmentUseCase
	ProductUC     *usecase.ProductUseCase
	WarehouseUC   *usecase.WarehouseUseCase
	JWTSecret     string
	Log           *logger.Logger
}

var (
	canView     = RequirePermission(permission.Of(permission.ModuleStock, permission.ActionView))
	canCreate   = RequirePermission(permission.Of(permission.ModuleStock, permission.ActionCreate))
	canEdit     = RequirePermission(permission.Of(permission.ModuleStock, permission.ActionEdit))
	canValidate = RequirePermission(permission.Of(permission.ModuleStock, permission.ActionValidate))
)

// Router registra las rutas de la API. Todo /api/stock exige Bearer Token y un permiso stock.<acción>.
func Router(app *fiber.App, deps RouterDeps) {
	errs := errorResponder{log: deps.Log}
	api := app.Group("/api/stock", RequestLogger(deps.Log), AuthMiddleware(deps.JWTSecret))

	// Movimientos
	movements := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.Movements, errs)
	movements.Post("/", canCreate, movementHandler.Create)
	movements.Get("/", canView, movementHandler.List)
	movements.Get("/:id", canView, movementHandler.GetByID)
	movements.Put("/:id", canEdit, movementHandler.Update)
	movements.Post("/:id/validate", canValidate, movementHandler.Validate)
	movements.Post("/:id/cancel", canValidate, movementHandler.Cancel)

	// Traslados
	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers, errs)
	transfers.Post("/", canCreate, transferHandler.Create)
	transfers.Get("/", canView, transferHandler.List)
	transfers.Get("/:id", canView, transferHandler.GetByID)
	transfers.Put("/:id", canEdit, transferHandler.Update)
	transfers.Post("/:id/validate", canValidate, transferHandler.Validate)
	transfers.Post("/:id/ship", canEdit, transferHandler.Ship)
	transfers.Post("/:id/receive", canEdit, transferHandler.Receive)
	transfers.Post("/:id/cancel", canValidate, transferHandler.Cancel)

	// Inventarios físicos
	inventories := api.Group("/inventories")
	inventoryHandler := NewInventoryHandler(deps.Inventories, errs)
	inventories.Post("/", canCreate, inventoryHandler.Create)
	inventories.Get("/", canView, inventoryHandler.List)
	inventories.Get("/:id", canView, inventoryHandler.GetByID)
	inventories.Post("/:id/lines", canEdit, inventoryHandler.AddLine)
	inventories.Put("/:id/lines/:line_id", canEdit, inventoryHandler.UpdateLine)
	inventories.Post("/:id/start", canEdit, inventoryHandler.Start)
	inventories.Post("/:id/validate", canValidate, inventoryHandler.Validate)
	inventories.Post("/:id/cancel", canValidate, inventoryHandler.Cancel)

	// Ciclos de conteo
	cycles := api.Group("/cycles")
	cycleHandler := NewCycleHandler(deps.Cycles, errs)
	cycles.Post("/", canCreate, cycleHandler.Create)
	cycles.Post("/generate", canCreate, cycleHandler.Generate)
	cycles.Get("/", canView, cycleHandler.List)
	cycles.Post("/:id/start", canEdit, cycleHandler.Start)
	cycles.Post("/:id/complete", canEdit, cycleHandler.Complete)
	cycles.Post("/:id/cancel", canValidate, cycleHandler.Cancel)

	// Reservas (release-by-reference antes de /:id)
	reservations := api.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Reservations, errs)
	reservations.Post("/", canCreate, reservationHandler.Create)
	reservations.Get("/", canView, reservationHandler.List)
	reservations.Post("/release-by-reference", canEdit, reservationHandler.ReleaseByReference)
	reservations.Get("/:id", canView, reservationHandler.GetByID)
	reservations.Post("/:id/release", canEdit, reservationHandler.Release)

	// Niveles
	levels := api.Group("/levels")
	levelHandler := NewLevelHandler(deps.Ledger, errs)
	levels.Get("/available", canView, levelHandler.Available)
	levels.Get("/", canView, levelHandler.List)

	// Reposición
	replenishment := api.Group("/replenishment")
	replenishmentHandler := NewReplenishmentHandler(deps.Replenishment, errs)
	replenishment.Get("/suggestions", canView, replenishmentHandler.Suggestions)
	replenishment.Get("/consumption/:product_id", canView, replenishmentHandler.Consumption)
	replenishment.Post("/reorder-points", canEdit, replenishmentHandler.ReorderPoints)
	replenishment.Post("/abc-classification", canEdit, replenishmentHandler.ABCClassification)

	// Catálogo
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, errs)
	products.Post("/", canCreate, productHandler.Create)
	products.Get("/", canView, productHandler.List)
	products.Get("/:id", canView, productHandler.GetByID)

	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, errs)
	warehouses.Post("/", canCreate, warehouseHandler.Create)
	warehouses.Get("/", canView, warehouseHandler.List)
	warehouses.Get("/:id", canView, warehouseHandler.GetByID)
	warehouses.Post("/:id/locations", canCreate, warehouseHandler.CreateLocation)
	warehouses.Get("/:id/locations", canView, warehouseHandler.ListLocations)
}
