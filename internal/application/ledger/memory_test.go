package ledger_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
	domledger "github.com/jhoicas/Almacen-obra-api/internal/domain/ledger"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/repository"
)

// Fakes en memoria para los casos de uso: mismo contrato que los adaptadores
// de PostgreSQL, con rollback por snapshot para ejercitar la atomicidad.

type memStore struct {
	movements  map[string]*entity.Movement
	warehouses map[string]*entity.Warehouse
	materials  map[string]*entity.Material
	stages     map[string]*entity.Stage
}

func newMemStore() *memStore {
	return &memStore{
		movements:  map[string]*entity.Movement{},
		warehouses: map[string]*entity.Warehouse{},
		materials:  map[string]*entity.Material{},
		stages:     map[string]*entity.Stage{},
	}
}

func cloneMovement(m *entity.Movement) *entity.Movement {
	c := *m
	c.Allocations = append([]entity.Allocation(nil), m.Allocations...)
	return &c
}

type memMovementRepo struct{ store *memStore }

var _ repository.MovementRepository = (*memMovementRepo)(nil)

func (r *memMovementRepo) Create(m *entity.Movement) error {
	if _, ok := r.store.movements[m.ID]; ok {
		return domain.ErrDuplicate
	}
	r.store.movements[m.ID] = cloneMovement(m)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.Movement, error) {
	m, ok := r.store.movements[id]
	if !ok {
		return nil, nil
	}
	return cloneMovement(m), nil
}

func (r *memMovementRepo) Replace(m *entity.Movement) error {
	if _, ok := r.store.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.movements[m.ID] = cloneMovement(m)
	return nil
}

func (r *memMovementRepo) Delete(id string) error {
	if _, ok := r.store.movements[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.movements, id)
	return nil
}

func (r *memMovementRepo) ListByPair(warehouseID, materialID string, asOf *time.Time) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.store.movements {
		if m.WarehouseID != warehouseID || m.MaterialID != materialID {
			continue
		}
		if asOf != nil && m.Date.After(*asOf) {
			continue
		}
		out = append(out, cloneMovement(m))
	}
	domledger.SortByDate(out)
	return out, nil
}

func (r *memMovementRepo) ListByTransfer(transferID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.store.movements {
		if m.TransferID == transferID {
			out = append(out, cloneMovement(m))
		}
	}
	domledger.SortByDate(out)
	return out, nil
}

func (r *memMovementRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.store.movements {
		if m.WarehouseID != warehouseID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		out = append(out, cloneMovement(m))
	}
	domledger.SortByDate(out)
	return page(out, limit, offset), nil
}

func (r *memMovementRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.store.movements {
		if m.MaterialID != materialID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		out = append(out, cloneMovement(m))
	}
	domledger.SortByDate(out)
	return page(out, limit, offset), nil
}

func (r *memMovementRepo) AggregateBalances() ([]*entity.WarehouseMaterialBalance, error) {
	type key struct{ w, m string }
	acc := map[key]decimal.Decimal{}
	for _, m := range r.store.movements {
		k := key{m.WarehouseID, m.MaterialID}
		acc[k] = acc[k].Add(m.Quantity)
	}
	var out []*entity.WarehouseMaterialBalance
	for k, q := range acc {
		out = append(out, &entity.WarehouseMaterialBalance{WarehouseID: k.w, MaterialID: k.m, Quantity: q})
	}
	return out, nil
}

func (r *memMovementRepo) LockPair(warehouseID, materialID string) error { return nil }

func page(movs []*entity.Movement, limit, offset int) []*entity.Movement {
	if offset >= len(movs) {
		return nil
	}
	movs = movs[offset:]
	if limit > 0 && limit < len(movs) {
		movs = movs[:limit]
	}
	return movs
}

// memTxRunner simula la transacción: si fn falla, restaura el snapshot para
// que ninguna escritura parcial quede visible.
type memTxRunner struct{ store *memStore }

func (r *memTxRunner) Run(ctx context.Context, fn func(movRepo repository.MovementRepository) error) error {
	snapshot := make(map[string]*entity.Movement, len(r.store.movements))
	for id, m := range r.store.movements {
		snapshot[id] = cloneMovement(m)
	}
	if err := fn(&memMovementRepo{store: r.store}); err != nil {
		r.store.movements = snapshot
		return err
	}
	return nil
}

type memWarehouseRepo struct{ store *memStore }

func (r *memWarehouseRepo) Create(w *entity.Warehouse) error { r.store.warehouses[w.ID] = w; return nil }
func (r *memWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	return r.store.warehouses[id], nil
}
func (r *memWarehouseRepo) Update(w *entity.Warehouse) error { r.store.warehouses[w.ID] = w; return nil }
func (r *memWarehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) { return nil, nil }
func (r *memWarehouseRepo) Delete(id string) error {
	delete(r.store.warehouses, id)
	return nil
}

type memMaterialRepo struct{ store *memStore }

func (r *memMaterialRepo) Create(m *entity.Material) error { r.store.materials[m.ID] = m; return nil }
func (r *memMaterialRepo) GetByID(id string) (*entity.Material, error) {
	return r.store.materials[id], nil
}
func (r *memMaterialRepo) GetByCode(code string) (*entity.Material, error) { return nil, nil }
func (r *memMaterialRepo) Update(m *entity.Material) error                 { return nil }
func (r *memMaterialRepo) Search(query string, limit, offset int) ([]*entity.Material, error) {
	return nil, nil
}
func (r *memMaterialRepo) Delete(id string) error { return nil }

type memStageRepo struct{ store *memStore }

func (r *memStageRepo) Create(s *entity.Stage) error { r.store.stages[s.ID] = s; return nil }
func (r *memStageRepo) GetByID(id string) (*entity.Stage, error) {
	return r.store.stages[id], nil
}
func (r *memStageRepo) ListByObra(obraID string) ([]*entity.Stage, error) { return nil, nil }
func (r *memStageRepo) Update(s *entity.Stage) error                      { return nil }
func (r *memStageRepo) Delete(id string) error                            { return nil }
