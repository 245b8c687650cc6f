package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-obra-api/internal/application/dto"
	"github.com/jhoicas/Almacen-obra-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
	ledgerdomain "github.com/jhoicas/Almacen-obra-api/internal/domain/ledger"
)

// MovementHandler maneja las escrituras del libro de almacén: entradas,
// salidas, traslados, correcciones y anulaciones (protegido).
type MovementHandler struct {
	uc *ledger.LedgerUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *ledger.LedgerUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// RecordEntry godoc
// @Summary      Registrar entrada a bodega
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordEntryRequest  true  "warehouse_id, material_id, date, quantity, value"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements/entries [post]
func (h *MovementHandler) RecordEntry(c *fiber.Ctx) error {
	var in dto.RecordEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	id, err := h.uc.RecordEntry(c.Context(), ledger.EntryInput{
		WarehouseID:  in.WarehouseID,
		MaterialID:   in.MaterialID,
		Date:         in.Date,
		Quantity:     in.Quantity,
		Value:        in.Value,
		Reference:    in.Reference,
		Counterparty: in.Counterparty,
		Notes:        in.Notes,
		UserID:       GetUserID(c),
	})
	if err != nil {
		return movementError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// RecordExit godoc
// @Summary      Registrar salida hacia etapas de obra
// @Description  Sin value, la salida se valora al costo promedio ponderado de la
//               bodega. Los porcentajes del reparto deben sumar 100 (±0.01).
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordExitRequest  true  "warehouse_id, material_id, date, quantity, allocations"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/exits [post]
func (h *MovementHandler) RecordExit(c *fiber.Ctx) error {
	var in dto.RecordExitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	id, err := h.uc.RecordExit(c.Context(), ledger.ExitInput{
		WarehouseID:  in.WarehouseID,
		MaterialID:   in.MaterialID,
		Date:         in.Date,
		Quantity:     in.Quantity,
		Value:        in.Value,
		Allocations:  toAllocations(in.Allocations),
		Reference:    in.Reference,
		Counterparty: in.Counterparty,
		Notes:        in.Notes,
		UserID:       GetUserID(c),
	})
	if err != nil {
		return movementError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// RecordTransfer godoc
// @Summary      Registrar traslado entre bodegas
// @Description  Escribe las dos mitades (TRANSFER_OUT y TRANSFER_IN) en la misma
//               transacción; ambas comparten transfer_id.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordTransferRequest  true  "from_warehouse_id, to_warehouse_id, material_id, date, quantity"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/transfers [post]
func (h *MovementHandler) RecordTransfer(c *fiber.Ctx) error {
	var in dto.RecordTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	transferID, err := h.uc.RecordTransfer(c.Context(), ledger.TransferInput{
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		MaterialID:      in.MaterialID,
		Date:            in.Date,
		Quantity:        in.Quantity,
		Value:           in.Value,
		Reference:       in.Reference,
		Notes:           in.Notes,
		UserID:          GetUserID(c),
	})
	if err != nil {
		return movementError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transfer_id": transferID})
}

// Amend godoc
// @Summary      Corregir un movimiento
// @Description  Reemplazo completo de los campos editables. Si el movimiento es
//               mitad de un traslado, ambas mitades se corrigen juntas.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Param        body  body  dto.AmendMovementRequest  true  "date, quantity, value, allocations"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [put]
func (h *MovementHandler) Amend(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.AmendMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	err := h.uc.AmendMovement(c.Context(), id, ledger.AmendInput{
		Date:         in.Date,
		Quantity:     in.Quantity,
		Value:        in.Value,
		Allocations:  toAllocations(in.Allocations),
		Reference:    in.Reference,
		Counterparty: in.Counterparty,
		Notes:        in.Notes,
		UserID:       GetUserID(c),
	})
	if err != nil {
		return movementError(c, err)
	}
	return c.JSON(fiber.Map{"message": "movimiento corregido"})
}

// Delete godoc
// @Summary      Anular un movimiento
// @Description  Si el movimiento es mitad de un traslado, ambas mitades se anulan
//               juntas. Se rechaza si el borrado dejaría algún saldo negativo.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteMovement(c.Context(), c.Params("id")); err != nil {
		return movementError(c, err)
	}
	return c.JSON(fiber.Map{"message": "movimiento anulado"})
}

// movementError mapea errores de dominio a respuestas HTTP. Los tipos *Error
// del dominio aportan el detalle numérico (solicitado, disponible, faltante).
func movementError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"code":         "INSUFFICIENT_STOCK",
			"message":      stockErr.Error(),
			"warehouse_id": stockErr.WarehouseID,
			"material_id":  stockErr.MaterialID,
			"requested":    stockErr.Requested,
			"available":    stockErr.Available,
			"shortfall":    stockErr.Shortfall(),
			"as_of":        stockErr.AsOf,
		})
	}
	var allocErr *domain.InvalidAllocationError
	if errors.As(err, &allocErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ALLOCATION", Message: allocErr.Error()})
	}
	var sameErr *domain.SameWarehouseError
	if errors.As(err, &sameErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "SAME_WAREHOUSE", Message: sameErr.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrTransaction):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "TRANSACTION", Message: "la operación no pudo completarse"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toAllocations(in []dto.AllocationDTO) []entity.Allocation {
	if len(in) == 0 {
		return nil
	}
	out := make([]entity.Allocation, len(in))
	for i, a := range in {
		out[i] = entity.Allocation{StageID: a.StageID, Percentage: a.Percentage}
	}
	return out
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:           m.ID,
		TransferID:   m.TransferID,
		WarehouseID:  m.WarehouseID,
		MaterialID:   m.MaterialID,
		Kind:         m.Kind,
		Quantity:     m.Quantity,
		Value:        m.Value,
		Date:         m.Date,
		Reference:    m.Reference,
		Counterparty: m.Counterparty,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
		CreatedBy:    m.CreatedBy,
	}
	// Valor por etapa: la primera fila absorbe el residuo de redondeo para que
	// los repartos sumen exactamente el valor de la salida.
	splits := ledgerdomain.SplitValue(m.Value.Abs(), m.Allocations)
	for i, a := range m.Allocations {
		v := splits[i]
		resp.Allocations = append(resp.Allocations, dto.AllocationDTO{StageID: a.StageID, Percentage: a.Percentage, Value: &v})
	}
	return resp
}
