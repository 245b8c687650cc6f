package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/ledger"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/repository"
)

// BalanceUseCase consultas de saldo y costo. Cada lectura recalcula desde el
// libro de movimientos: no hay caché de saldos en proceso que pueda quedar
// obsoleta frente a ediciones de registros históricos.
type BalanceUseCase struct {
	movementRepo repository.MovementRepository
}

// NewBalanceUseCase construye el caso de uso de lecturas.
func NewBalanceUseCase(movementRepo repository.MovementRepository) *BalanceUseCase {
	return &BalanceUseCase{movementRepo: movementRepo}
}

// CurrentBalance saldo actual de la pareja. 0 si no hay movimientos.
func (uc *BalanceUseCase) CurrentBalance(warehouseID, materialID string) (decimal.Decimal, error) {
	return uc.BalanceAsOf(warehouseID, materialID, time.Now(), "")
}

// BalanceAsOf saldo de la pareja al instante asOf, excluyendo opcionalmente un
// movimiento (validación de ediciones y vistas de "stock disponible entonces").
func (uc *BalanceUseCase) BalanceAsOf(warehouseID, materialID string, asOf time.Time, excludeID string) (decimal.Decimal, error) {
	movs, err := uc.movementRepo.ListByPair(warehouseID, materialID, &asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.BalanceAsOf(movs, asOf, excludeID), nil
}

// Available cantidad retirable al instante from sin dejar negativo ningún
// saldo posterior (lo que valida el registrador de salidas).
func (uc *BalanceUseCase) Available(warehouseID, materialID string, from time.Time) (decimal.Decimal, error) {
	movs, err := uc.movementRepo.ListByPair(warehouseID, materialID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Available(movs, from), nil
}

// AllBalances saldo actual de cada pareja (bodega, material) con al menos un
// movimiento, para el tablero de existencias.
func (uc *BalanceUseCase) AllBalances() ([]*entity.WarehouseMaterialBalance, error) {
	return uc.movementRepo.AggregateBalances()
}

// AverageUnitCost costo promedio ponderado del material en la bodega. 0 sin entradas.
func (uc *BalanceUseCase) AverageUnitCost(warehouseID, materialID string) (decimal.Decimal, error) {
	movs, err := uc.movementRepo.ListByPair(warehouseID, materialID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.AverageUnitCost(movs), nil
}

// GetMovement devuelve un movimiento con sus repartos, o nil si no existe.
func (uc *BalanceUseCase) GetMovement(id string) (*entity.Movement, error) {
	return uc.movementRepo.GetByID(id)
}

// ListByWarehouse diario de movimientos de una bodega en un rango de fechas.
func (uc *BalanceUseCase) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return uc.movementRepo.ListByWarehouse(warehouseID, from, to, limit, offset)
}

// ListByMaterial kardex de un material en un rango de fechas.
func (uc *BalanceUseCase) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return uc.movementRepo.ListByMaterial(materialID, from, to, limit, offset)
}
