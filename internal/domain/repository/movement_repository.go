package repository

import (
	"time"

	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro de movimientos
// (event store append-only del almacén). No calcula saldos ni valida reglas de
// negocio: eso vive en las capas de dominio y aplicación.
type MovementRepository interface {
	// Create persiste un movimiento validado. domain.ErrDuplicate si el ID ya existe.
	Create(movement *entity.Movement) error
	// GetByID devuelve el movimiento con sus repartos, o nil si no existe.
	GetByID(id string) (*entity.Movement, error)
	// Replace reemplaza atómicamente todos los campos (incluidos los repartos).
	// domain.ErrNotFound si no existe. Nunca actualizaciones parciales: cantidad,
	// valor y repartos se desincronizarían.
	Replace(movement *entity.Movement) error
	// Delete borra un movimiento. domain.ErrNotFound si no existe.
	Delete(id string) error
	// ListByPair devuelve los movimientos de una pareja (bodega, material) con
	// fecha <= asOf (nil = todos), ordenados por fecha, created_at, id.
	ListByPair(warehouseID, materialID string, asOf *time.Time) ([]*entity.Movement, error)
	// ListByTransfer devuelve las dos mitades de un traslado.
	ListByTransfer(transferID string) ([]*entity.Movement, error)
	// ListByWarehouse lista movimientos de una bodega en un rango de fechas (journal).
	ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	// ListByMaterial lista movimientos de un material en un rango de fechas (kardex).
	ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	// AggregateBalances devuelve el saldo actual de cada pareja con al menos un movimiento.
	AggregateBalances() ([]*entity.WarehouseMaterialBalance, error)
	// LockPair toma un bloqueo exclusivo sobre la pareja por la duración de la
	// transacción en curso (cierra la carrera check-then-act entre escritores
	// concurrentes; el análogo del SELECT FOR UPDATE cuando no hay fila de stock).
	LockPair(warehouseID, materialID string) error
}
