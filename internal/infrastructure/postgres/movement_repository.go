package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, transfer_id, warehouse_id, material_id, kind, quantity, value, date, reference, counterparty, notes, created_at, created_by`

// MovementRepo implementación del puerto MovementRepository sobre PostgreSQL
// (usable con pool o tx). Los repartos viven en movement_allocations y se
// reescriben completos en cada Replace.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento con sus repartos.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, nullable(movement.TransferID), movement.WarehouseID, movement.MaterialID,
		movement.Kind, movement.Quantity, movement.Value, movement.Date,
		nullable(movement.Reference), nullable(movement.Counterparty), nullable(movement.Notes),
		movement.CreatedAt, nullable(movement.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return r.insertAllocations(movement.ID, movement.Allocations)
}

// GetByID obtiene un movimiento con sus repartos, o nil si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	m, err := scanMovement(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if err := r.loadAllocations([]*entity.Movement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// Replace reemplaza todos los campos del movimiento y reescribe sus repartos.
func (r *MovementRepo) Replace(movement *entity.Movement) error {
	query := `
		UPDATE movements
		SET transfer_id = $2, warehouse_id = $3, material_id = $4, kind = $5,
		    quantity = $6, value = $7, date = $8, reference = $9,
		    counterparty = $10, notes = $11, created_by = $12
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		movement.ID, nullable(movement.TransferID), movement.WarehouseID, movement.MaterialID,
		movement.Kind, movement.Quantity, movement.Value, movement.Date,
		nullable(movement.Reference), nullable(movement.Counterparty), nullable(movement.Notes),
		nullable(movement.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(context.Background(),
		`DELETE FROM movement_allocations WHERE movement_id = $1`, movement.ID); err != nil {
		return fmt.Errorf("clear allocations: %w", err)
	}
	return r.insertAllocations(movement.ID, movement.Allocations)
}

// Delete borra un movimiento; los repartos caen por ON DELETE CASCADE.
func (r *MovementRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByPair devuelve el historial completo de una pareja (bodega, material)
// hasta asOf, en el orden canónico que usan los cálculos de saldo.
func (r *MovementRepo) ListByPair(warehouseID, materialID string, asOf *time.Time) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements WHERE warehouse_id = $1 AND material_id = $2`
	args := []any{warehouseID, materialID}
	if asOf != nil {
		query += " AND date <= $3"
		args = append(args, *asOf)
	}
	query += " ORDER BY date, created_at, id"
	return r.list(query, args...)
}

// ListByTransfer devuelve las dos mitades de un traslado.
func (r *MovementRepo) ListByTransfer(transferID string) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements WHERE transfer_id = $1
		ORDER BY date, created_at, id`
	return r.list(query, transferID)
}

// ListByWarehouse lista movimientos de una bodega en un rango de fechas.
func (r *MovementRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE warehouse_id = $1`
	args := []any{warehouseID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// ListByMaterial lista movimientos de un material en un rango de fechas (kardex).
func (r *MovementRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE material_id = $1`
	args := []any{materialID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// AggregateBalances deriva el saldo actual de cada pareja sumando movimientos.
func (r *MovementRepo) AggregateBalances() ([]*entity.WarehouseMaterialBalance, error) {
	query := `
		SELECT warehouse_id, material_id, SUM(quantity)
		FROM movements
		GROUP BY warehouse_id, material_id
		ORDER BY warehouse_id, material_id`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("aggregate balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.WarehouseMaterialBalance
	for rows.Next() {
		var b entity.WarehouseMaterialBalance
		if err := rows.Scan(&b.WarehouseID, &b.MaterialID, &b.Quantity); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// LockPair toma un advisory lock transaccional sobre la pareja. Como el saldo
// es derivado no hay fila de stock que bloquear con FOR UPDATE; el advisory
// lock serializa a los escritores de la misma pareja hasta el commit.
func (r *MovementRepo) LockPair(warehouseID, materialID string) error {
	_, err := r.q.Exec(context.Background(),
		`SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))`,
		warehouseID, materialID)
	if err != nil {
		return fmt.Errorf("lock pair: %w", err)
	}
	return nil
}

func (r *MovementRepo) list(query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadAllocations(list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *MovementRepo) insertAllocations(movementID string, allocs []entity.Allocation) error {
	for _, a := range allocs {
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO movement_allocations (movement_id, stage_id, percentage) VALUES ($1, $2, $3)`,
			movementID, a.StageID, a.Percentage)
		if err != nil {
			return fmt.Errorf("insert allocation: %w", err)
		}
	}
	return nil
}

func (r *MovementRepo) loadAllocations(movs []*entity.Movement) error {
	if len(movs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(movs))
	byID := make(map[string]*entity.Movement, len(movs))
	for _, m := range movs {
		ids = append(ids, m.ID)
		byID[m.ID] = m
	}
	rows, err := r.q.Query(context.Background(),
		`SELECT movement_id, stage_id, percentage
		 FROM movement_allocations WHERE movement_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("load allocations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var movementID string
		var a entity.Allocation
		if err := rows.Scan(&movementID, &a.StageID, &a.Percentage); err != nil {
			return fmt.Errorf("scan allocation: %w", err)
		}
		if m, ok := byID[movementID]; ok {
			m.Allocations = append(m.Allocations, a)
		}
	}
	return rows.Err()
}

func scanMovement(scan func(dest ...any) error) (*entity.Movement, error) {
	var m entity.Movement
	var transferID, reference, counterparty, notes, createdBy *string
	err := scan(&m.ID, &transferID, &m.WarehouseID, &m.MaterialID, &m.Kind,
		&m.Quantity, &m.Value, &m.Date, &reference, &counterparty, &notes,
		&m.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	m.TransferID = deref(transferID)
	m.Reference = deref(reference)
	m.Counterparty = deref(counterparty)
	m.Notes = deref(notes)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}
