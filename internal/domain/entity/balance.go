package entity

import "github.com/shopspring/decimal"

// WarehouseMaterialBalance es el saldo derivado de una pareja (bodega, material).
// Nunca se almacena como contador mutable; se recalcula desde los movimientos.
type WarehouseMaterialBalance struct {
	WarehouseID string
	MaterialID  string
	Quantity    decimal.Decimal
}
