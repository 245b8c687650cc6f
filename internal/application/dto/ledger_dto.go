package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationDTO reparto de una salida hacia una etapa de obra. Value solo se
// puebla en respuestas: la porción del valor de la salida asignada a la etapa.
type AllocationDTO struct {
	StageID    string           `json:"stage_id" validate:"required"`
	Percentage decimal.Decimal  `json:"percentage" validate:"required"`
	Value      *decimal.Decimal `json:"value,omitempty"`
}

// RecordEntryRequest alta de una entrada a bodega.
type RecordEntryRequest struct {
	WarehouseID  string          `json:"warehouse_id" validate:"required"`
	MaterialID   string          `json:"material_id" validate:"required"`
	Date         time.Time       `json:"date" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
	Value        decimal.Decimal `json:"value"`
	Reference    string          `json:"reference"`
	Counterparty string          `json:"counterparty"`
	Notes        string          `json:"notes"`
}

// RecordExitRequest alta de una salida. Value nulo = valorar al costo promedio.
type RecordExitRequest struct {
	WarehouseID  string           `json:"warehouse_id" validate:"required"`
	MaterialID   string           `json:"material_id" validate:"required"`
	Date         time.Time        `json:"date" validate:"required"`
	Quantity     decimal.Decimal  `json:"quantity" validate:"required"`
	Value        *decimal.Decimal `json:"value"`
	Allocations  []AllocationDTO  `json:"allocations" validate:"required,min=1,dive"`
	Reference    string           `json:"reference"`
	Counterparty string           `json:"counterparty"`
	Notes        string           `json:"notes"`
}

// RecordTransferRequest alta de un traslado entre bodegas.
type RecordTransferRequest struct {
	FromWarehouseID string           `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string           `json:"to_warehouse_id" validate:"required"`
	MaterialID      string           `json:"material_id" validate:"required"`
	Date            time.Time        `json:"date" validate:"required"`
	Quantity        decimal.Decimal  `json:"quantity" validate:"required"`
	Value           *decimal.Decimal `json:"value"`
	Reference       string           `json:"reference"`
	Notes           string           `json:"notes"`
}

// AmendMovementRequest reemplazo completo de los campos editables de un movimiento.
type AmendMovementRequest struct {
	Date         time.Time        `json:"date" validate:"required"`
	Quantity     decimal.Decimal  `json:"quantity" validate:"required"`
	Value        *decimal.Decimal `json:"value"`
	Allocations  []AllocationDTO  `json:"allocations" validate:"omitempty,dive"`
	Reference    string           `json:"reference"`
	Counterparty string           `json:"counterparty"`
	Notes        string           `json:"notes"`
}

// MovementResponse representación de un movimiento en respuestas.
type MovementResponse struct {
	ID           string          `json:"id"`
	TransferID   string          `json:"transfer_id,omitempty"`
	WarehouseID  string          `json:"warehouse_id"`
	MaterialID   string          `json:"material_id"`
	Kind         string          `json:"kind"`
	Quantity     decimal.Decimal `json:"quantity"`
	Value        decimal.Decimal `json:"value"`
	Date         time.Time       `json:"date"`
	Allocations  []AllocationDTO `json:"allocations,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	CreatedBy    string          `json:"created_by,omitempty"`
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BalanceResponse saldo de una pareja (bodega, material).
type BalanceResponse struct {
	WarehouseID string          `json:"warehouse_id"`
	MaterialID  string          `json:"material_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	AsOf        *time.Time      `json:"as_of,omitempty"`
}

// AverageCostResponse costo promedio ponderado de un material en una bodega.
type AverageCostResponse struct {
	WarehouseID string          `json:"warehouse_id"`
	MaterialID  string          `json:"material_id"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}
