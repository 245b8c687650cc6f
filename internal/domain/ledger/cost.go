package ledger

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
)

// AverageUnitCost calcula el costo promedio ponderado de un material en una
// bodega: valor total ingresado / cantidad total ingresada, sobre ENTRY y
// TRANSFER_IN (la mitad destino de un traslado entra al valor que trae, fijado
// por el caller al momento del traslado; no se recalcula aquí). Las salidas no
// participan del promedio. Devuelve 0 si no hay entradas; nunca falla.
//
// Se recalcula completo en cada lectura en vez de mantenerse incremental: los
// volúmenes de movimientos por pareja son operacionalmente pequeños.
func AverageUnitCost(movs []*entity.Movement) decimal.Decimal {
	totalQty := decimal.Zero
	totalValue := decimal.Zero
	for _, m := range movs {
		if m.Kind != entity.MovementKindEntry && m.Kind != entity.MovementKindTransferIn {
			continue
		}
		totalQty = totalQty.Add(m.Quantity)
		totalValue = totalValue.Add(m.Value)
	}
	if totalQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return totalValue.Div(totalQty)
}
