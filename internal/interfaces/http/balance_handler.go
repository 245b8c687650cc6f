package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-obra-api/internal/application/dto"
	"github.com/jhoicas/Almacen-obra-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
)

// BalanceHandler maneja las lecturas derivadas del libro: saldos, costo
// promedio y consultas de movimientos (protegido).
type BalanceHandler struct {
	uc *ledger.BalanceUseCase
}

// NewBalanceHandler construye el handler.
func NewBalanceHandler(uc *ledger.BalanceUseCase) *BalanceHandler {
	return &BalanceHandler{uc: uc}
}

// GetBalance godoc
// @Summary      Saldo de una pareja (bodega, material)
// @Description  Con as_of devuelve el saldo histórico a ese instante; exclude_id
//               omite un movimiento del cálculo (para previsualizar correcciones).
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "ID de la bodega"
// @Param        material_id   path   string  true   "ID del material"
// @Param        as_of         query  string  false  "Instante RFC3339; vacío = saldo actual"
// @Param        exclude_id    query  string  false  "Movimiento a excluir del cálculo"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{warehouse_id}/materials/{material_id}/balance [get]
func (h *BalanceHandler) GetBalance(c *fiber.Ctx) error {
	warehouseID := c.Params("warehouse_id")
	materialID := c.Params("material_id")

	resp := dto.BalanceResponse{WarehouseID: warehouseID, MaterialID: materialID}
	if raw := c.Query("as_of"); raw != "" {
		asOf, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "as_of debe ser RFC3339"})
		}
		qty, err := h.uc.BalanceAsOf(warehouseID, materialID, asOf, c.Query("exclude_id"))
		if err != nil {
			return movementError(c, err)
		}
		resp.Quantity = qty
		resp.AsOf = &asOf
		return c.JSON(resp)
	}

	qty, err := h.uc.CurrentBalance(warehouseID, materialID)
	if err != nil {
		return movementError(c, err)
	}
	resp.Quantity = qty
	return c.JSON(resp)
}

// GetAverageCost godoc
// @Summary      Costo promedio ponderado de un material en una bodega
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Param        material_id   path  string  true  "ID del material"
// @Success      200  {object}  dto.AverageCostResponse
// @Router       /api/warehouses/{warehouse_id}/materials/{material_id}/average-cost [get]
func (h *BalanceHandler) GetAverageCost(c *fiber.Ctx) error {
	warehouseID := c.Params("warehouse_id")
	materialID := c.Params("material_id")
	cost, err := h.uc.AverageUnitCost(warehouseID, materialID)
	if err != nil {
		return movementError(c, err)
	}
	return c.JSON(dto.AverageCostResponse{WarehouseID: warehouseID, MaterialID: materialID, UnitCost: cost})
}

// ListBalances godoc
// @Summary      Saldo actual de todas las parejas con movimientos
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/balances [get]
func (h *BalanceHandler) ListBalances(c *fiber.Ctx) error {
	balances, err := h.uc.AllBalances()
	if err != nil {
		return movementError(c, err)
	}
	out := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.BalanceResponse{WarehouseID: b.WarehouseID, MaterialID: b.MaterialID, Quantity: b.Quantity})
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Consultar un movimiento por ID
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *BalanceHandler) GetMovement(c *fiber.Ctx) error {
	m, err := h.uc.GetMovement(c.Params("id"))
	if err != nil {
		return movementError(c, err)
	}
	if m == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
	}
	return c.JSON(toMovementResponse(m))
}

// ListByWarehouse godoc
// @Summary      Diario de movimientos de una bodega
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "ID de la bodega"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Param        limit         query  int     false  "Tamaño de página (default 20)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/warehouses/{warehouse_id}/movements [get]
func (h *BalanceHandler) ListByWarehouse(c *fiber.Ctx) error {
	from, to, page, err := listParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	movs, err := h.uc.ListByWarehouse(c.Params("warehouse_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return movementError(c, err)
	}
	return c.JSON(toMovementList(movs, page))
}

// ListByMaterial godoc
// @Summary      Kardex de un material en todas las bodegas
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        material_id  path   string  true   "ID del material"
// @Param        from         query  string  false  "Desde (RFC3339)"
// @Param        to           query  string  false  "Hasta (RFC3339)"
// @Param        limit        query  int     false  "Tamaño de página (default 20)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/materials/{material_id}/movements [get]
func (h *BalanceHandler) ListByMaterial(c *fiber.Ctx) error {
	from, to, page, err := listParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	movs, err := h.uc.ListByMaterial(c.Params("material_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return movementError(c, err)
	}
	return c.JSON(toMovementList(movs, page))
}

func listParams(c *fiber.Ctx) (from, to *time.Time, page dto.PageRequest, err error) {
	if raw := c.Query("from"); raw != "" {
		t, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			return nil, nil, page, fiber.NewError(fiber.StatusBadRequest, "from debe ser RFC3339")
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			return nil, nil, page, fiber.NewError(fiber.StatusBadRequest, "to debe ser RFC3339")
		}
		to = &t
	}
	page.Limit = c.QueryInt("limit", 0)
	page.Offset = c.QueryInt("offset", 0)
	page.DefaultPage()
	return from, to, page, nil
}

func toMovementList(movs []*entity.Movement, page dto.PageRequest) dto.MovementListResponse {
	items := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, toMovementResponse(m))
	}
	return dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
}
