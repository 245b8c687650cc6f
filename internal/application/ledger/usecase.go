package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/ledger"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/repository"
)

// LedgerUseCase registra movimientos del libro de almacén (entradas, salidas y
// traslados) de forma transaccional, con bloqueo por pareja (bodega, material)
// y validación temporal de saldo antes de cualquier escritura.
type LedgerUseCase struct {
	txRunner      TxRunner
	warehouseRepo repository.WarehouseRepository
	materialRepo  repository.MaterialRepository
	stageRepo     repository.StageRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	warehouseRepo repository.WarehouseRepository,
	materialRepo repository.MaterialRepository,
	stageRepo repository.StageRepository,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		materialRepo:  materialRepo,
		stageRepo:     stageRepo,
	}
}

// EntryInput entrada para registrar una entrada a bodega.
// Quantity y Value son magnitudes positivas; el signo lo fija el caso de uso.
type EntryInput struct {
	WarehouseID  string
	MaterialID   string
	Date         time.Time
	Quantity     decimal.Decimal
	Value        decimal.Decimal // valor total de la entrada
	Reference    string
	Counterparty string
	Notes        string
	UserID       string
}

// ExitInput entrada para registrar una salida hacia etapas de obra.
// Value nil = valorar al costo promedio ponderado de la bodega.
type ExitInput struct {
	WarehouseID  string
	MaterialID   string
	Date         time.Time
	Quantity     decimal.Decimal
	Value        *decimal.Decimal
	Allocations  []entity.Allocation
	Reference    string
	Counterparty string
	Notes        string
	UserID       string
}

// TransferInput entrada para un traslado entre bodegas.
// Value nil = valorar al costo promedio de la bodega origen.
type TransferInput struct {
	FromWarehouseID string
	ToWarehouseID   string
	MaterialID      string
	Date            time.Time
	Quantity        decimal.Decimal
	Value           *decimal.Decimal
	Reference       string
	Notes           string
	UserID          string
}

// RecordEntry registra una entrada a bodega y devuelve el ID del movimiento.
func (uc *LedgerUseCase) RecordEntry(ctx context.Context, in EntryInput) (string, error) {
	if in.WarehouseID == "" || in.MaterialID == "" || in.Date.IsZero() {
		return "", domain.ErrInvalidInput
	}
	if !in.Quantity.GreaterThan(decimal.Zero) || in.Value.IsNegative() {
		return "", domain.ErrInvalidInput
	}
	if err := uc.checkPair(in.WarehouseID, in.MaterialID); err != nil {
		return "", err
	}

	now := time.Now()
	mov := &entity.Movement{
		ID:           uuid.New().String(),
		WarehouseID:  in.WarehouseID,
		MaterialID:   in.MaterialID,
		Kind:         entity.MovementKindEntry,
		Quantity:     in.Quantity,
		Value:        in.Value,
		Date:         in.Date,
		Reference:    in.Reference,
		Counterparty: in.Counterparty,
		Notes:        in.Notes,
		CreatedAt:    now,
		CreatedBy:    in.UserID,
	}
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		if err := movRepo.LockPair(in.WarehouseID, in.MaterialID); err != nil {
			return err
		}
		return movRepo.Create(mov)
	})
	if err != nil {
		return "", err
	}
	return mov.ID, nil
}

// RecordExit valida el reparto por etapas y el saldo temporal, valora la
// salida (costo promedio si no viene valor) y la persiste. Devuelve el ID.
func (uc *LedgerUseCase) RecordExit(ctx context.Context, in ExitInput) (string, error) {
	if in.WarehouseID == "" || in.MaterialID == "" || in.Date.IsZero() {
		return "", domain.ErrInvalidInput
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return "", domain.ErrInvalidInput
	}
	if in.Value != nil && in.Value.IsNegative() {
		return "", domain.ErrInvalidInput
	}
	allocs, err := ledger.NormalizeAllocations(in.Allocations)
	if err != nil {
		return "", err
	}
	if err := uc.checkPair(in.WarehouseID, in.MaterialID); err != nil {
		return "", err
	}
	if err := uc.checkStages(allocs); err != nil {
		return "", err
	}

	now := time.Now()
	mov := &entity.Movement{
		ID:           uuid.New().String(),
		WarehouseID:  in.WarehouseID,
		MaterialID:   in.MaterialID,
		Kind:         entity.MovementKindExit,
		Quantity:     in.Quantity.Neg(),
		Date:         in.Date,
		Allocations:  allocs,
		Reference:    in.Reference,
		Counterparty: in.Counterparty,
		Notes:        in.Notes,
		CreatedAt:    now,
		CreatedBy:    in.UserID,
	}
	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		if err := movRepo.LockPair(in.WarehouseID, in.MaterialID); err != nil {
			return err
		}
		movs, err := movRepo.ListByPair(in.WarehouseID, in.MaterialID, nil)
		if err != nil {
			return err
		}
		avail := ledger.Available(movs, in.Date)
		if avail.LessThan(in.Quantity) {
			return &domain.InsufficientStockError{
				WarehouseID: in.WarehouseID,
				MaterialID:  in.MaterialID,
				Requested:   in.Quantity,
				Available:   avail,
				AsOf:        in.Date,
			}
		}
		// Valor sugerido al costo promedio; nunca pisa un valor del caller.
		value := decimal.Zero
		if in.Value != nil {
			value = *in.Value
		} else {
			value = ledger.AverageUnitCost(movs).Mul(in.Quantity).Round(2)
		}
		mov.Value = value.Neg()
		return movRepo.Create(mov)
	})
	if err != nil {
		return "", err
	}
	return mov.ID, nil
}

// RecordTransfer compone la salida en origen y la entrada en destino como una
// sola operación atómica: ambas mitades comparten TransferID y se persisten en
// la misma transacción. Devuelve el TransferID.
func (uc *LedgerUseCase) RecordTransfer(ctx context.Context, in TransferInput) (string, error) {
	if in.FromWarehouseID == "" || in.ToWarehouseID == "" || in.MaterialID == "" || in.Date.IsZero() {
		return "", domain.ErrInvalidInput
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return "", &domain.SameWarehouseError{WarehouseID: in.FromWarehouseID}
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return "", domain.ErrInvalidInput
	}
	if in.Value != nil && in.Value.IsNegative() {
		return "", domain.ErrInvalidInput
	}
	if err := uc.checkPair(in.FromWarehouseID, in.MaterialID); err != nil {
		return "", err
	}
	if wh, err := uc.warehouseRepo.GetByID(in.ToWarehouseID); err != nil || wh == nil {
		return "", domain.ErrNotFound
	}

	now := time.Now()
	transferID := uuid.New().String()
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		// Bloqueo de ambas parejas en orden determinista para evitar interbloqueos.
		pairs := []string{in.FromWarehouseID, in.ToWarehouseID}
		sort.Strings(pairs)
		for _, wh := range pairs {
			if err := movRepo.LockPair(wh, in.MaterialID); err != nil {
				return err
			}
		}
		movs, err := movRepo.ListByPair(in.FromWarehouseID, in.MaterialID, nil)
		if err != nil {
			return err
		}
		avail := ledger.Available(movs, in.Date)
		if avail.LessThan(in.Quantity) {
			return &domain.InsufficientStockError{
				WarehouseID: in.FromWarehouseID,
				MaterialID:  in.MaterialID,
				Requested:   in.Quantity,
				Available:   avail,
				AsOf:        in.Date,
			}
		}
		value := decimal.Zero
		if in.Value != nil {
			value = *in.Value
		} else {
			value = ledger.AverageUnitCost(movs).Mul(in.Quantity).Round(2)
		}
		out := &entity.Movement{
			ID:          uuid.New().String(),
			TransferID:  transferID,
			WarehouseID: in.FromWarehouseID,
			MaterialID:  in.MaterialID,
			Kind:        entity.MovementKindTransferOut,
			Quantity:    in.Quantity.Neg(),
			Value:       value.Neg(),
			Date:        in.Date,
			Reference:   in.Reference,
			Notes:       in.Notes,
			CreatedAt:   now,
			CreatedBy:   in.UserID,
		}
		if err := movRepo.Create(out); err != nil {
			return err
		}
		entrante := &entity.Movement{
			ID:          uuid.New().String(),
			TransferID:  transferID,
			WarehouseID: in.ToWarehouseID,
			MaterialID:  in.MaterialID,
			Kind:        entity.MovementKindTransferIn,
			Quantity:    in.Quantity,
			Value:       value,
			Date:        in.Date,
			Reference:   in.Reference,
			Notes:       in.Notes,
			CreatedAt:   now,
			CreatedBy:   in.UserID,
		}
		return movRepo.Create(entrante)
	})
	if err != nil {
		return "", err
	}
	return transferID, nil
}

// checkPair verifica que bodega y material existan.
func (uc *LedgerUseCase) checkPair(warehouseID, materialID string) error {
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.ErrNotFound
	}
	mat, err := uc.materialRepo.GetByID(materialID)
	if err != nil {
		return err
	}
	if mat == nil {
		return domain.ErrNotFound
	}
	return nil
}

// checkStages verifica que cada etapa del reparto exista.
func (uc *LedgerUseCase) checkStages(allocs []entity.Allocation) error {
	for _, a := range allocs {
		stage, err := uc.stageRepo.GetByID(a.StageID)
		if err != nil {
			return err
		}
		if stage == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}
