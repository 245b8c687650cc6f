package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de almacén.
const (
	MovementKindEntry       = "ENTRY"        // entrada a bodega
	MovementKindExit        = "EXIT"         // salida hacia una etapa de obra
	MovementKindTransferIn  = "TRANSFER_IN"  // mitad destino de un traslado
	MovementKindTransferOut = "TRANSFER_OUT" // mitad origen de un traslado
)

// Movement representa un movimiento del libro de almacén (entrada, salida o mitad de traslado).
// Quantity y Value comparten signo: positivos en entradas y TRANSFER_IN, negativos en salidas
// y TRANSFER_OUT. El saldo de una pareja (bodega, material) nunca se persiste: siempre se
// deriva sumando estos movimientos.
type Movement struct {
	ID           string
	TransferID   string // ambas mitades de un traslado comparten este ID; vacío si no es traslado
	WarehouseID  string
	MaterialID   string
	Kind         string
	Quantity     decimal.Decimal
	Value        decimal.Decimal // valor total del movimiento, mismo signo que Quantity
	Date         time.Time       // instante en que el movimiento es efectivo
	Allocations  []Allocation    // solo salidas: reparto del valor entre etapas
	Reference    string          // factura, remisión, vale de combustible, etc.
	Counterparty string          // proveedor o receptor
	Notes        string
	CreatedAt    time.Time
	CreatedBy    string
}

// IsTransferHalf indica si el movimiento es una de las dos mitades de un traslado.
func (m *Movement) IsTransferHalf() bool {
	return m.TransferID != ""
}

// Allocation reparte el costo de una salida entre centros de costo (etapas de obra).
type Allocation struct {
	StageID    string
	Percentage decimal.Decimal // 0 < Percentage <= 100
}
