package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-obra-api/internal/application/auth"
	"github.com/jhoicas/Almacen-obra-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-obra-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	WarehouseUC *usecase.WarehouseUseCase
	MaterialUC  *usecase.MaterialUseCase
	ObraUC      *usecase.ObraUseCase
	LedgerUC    *ledger.LedgerUseCase
	BalanceUC   *ledger.BalanceUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Quien escribe en el libro: admin y almacenista. Residente solo consulta.
	writer := RequireRole(entity.RoleAdmin, entity.RoleAlmacenista)
	admin := RequireRole(entity.RoleAdmin)

	// Obras y etapas (protegido)
	obras := protected.Group("/obras")
	obraHandler := NewObraHandler(deps.ObraUC)
	obras.Post("/", admin, obraHandler.Create)
	obras.Get("/", obraHandler.List)
	obras.Get("/:id", obraHandler.GetByID)
	obras.Get("/:id/stages", obraHandler.ListStages)
	protected.Post("/stages", admin, obraHandler.CreateStage)

	// Warehouses (protegido)
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", admin, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", admin, warehouseHandler.Update)
	warehouses.Delete("/:id", admin, warehouseHandler.Delete)

	// Materials (protegido)
	materials := protected.Group("/materials")
	materialHandler := NewMaterialHandler(deps.MaterialUC)
	materials.Post("/", writer, materialHandler.Create)
	materials.Get("/", materialHandler.Search)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Put("/:id", writer, materialHandler.Update)
	materials.Delete("/:id", admin, materialHandler.Delete)

	// Libro de movimientos (protegido)
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.LedgerUC)
	balanceHandler := NewBalanceHandler(deps.BalanceUC)
	movements.Post("/entries", writer, movementHandler.RecordEntry)
	movements.Post("/exits", writer, movementHandler.RecordExit)
	movements.Post("/transfers", writer, movementHandler.RecordTransfer)
	movements.Get("/:id", balanceHandler.GetMovement)
	movements.Put("/:id", writer, movementHandler.Amend)
	movements.Delete("/:id", writer, movementHandler.Delete)

	// Saldos y consultas derivadas (protegido)
	protected.Get("/balances", balanceHandler.ListBalances)
	warehouses.Get("/:warehouse_id/materials/:material_id/balance", balanceHandler.GetBalance)
	warehouses.Get("/:warehouse_id/materials/:material_id/average-cost", balanceHandler.GetAverageCost)
	warehouses.Get("/:warehouse_id/movements", balanceHandler.ListByWarehouse)
	materials.Get("/:material_id/movements", balanceHandler.ListByMaterial)
}
