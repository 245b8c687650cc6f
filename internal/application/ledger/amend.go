package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/ledger"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/repository"
)

// AmendInput reemplazo completo de los campos editables de un movimiento.
// Nunca actualizaciones parciales: cantidad, valor y repartos viajan juntos
// para que no puedan desincronizarse. Tipo y pareja (bodega, material) son
// inmutables; mover un movimiento de bodega es borrar y crear.
type AmendInput struct {
	Date         time.Time
	Quantity     decimal.Decimal  // magnitud > 0
	Value        *decimal.Decimal // nil = recalcular al costo promedio (salidas y traslados)
	Allocations  []entity.Allocation
	Reference    string
	Counterparty string
	Notes        string
	UserID       string
}

// AmendMovement reemplaza atómicamente un movimiento. Si el movimiento es
// mitad de un traslado, ambas mitades se corrigen juntas en la misma
// transacción. La validación de saldo excluye al propio movimiento para no
// contarlo dos veces contra sí mismo.
func (uc *LedgerUseCase) AmendMovement(ctx context.Context, id string, in AmendInput) error {
	if id == "" || in.Date.IsZero() || !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if in.Value != nil && in.Value.IsNegative() {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		cur, err := movRepo.GetByID(id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		if cur.IsTransferHalf() {
			return uc.amendTransfer(movRepo, cur, in)
		}
		switch cur.Kind {
		case entity.MovementKindEntry:
			return uc.amendEntry(movRepo, cur, in)
		case entity.MovementKindExit:
			return uc.amendExit(movRepo, cur, in)
		}
		return domain.ErrConflict
	})
}

func (uc *LedgerUseCase) amendEntry(movRepo repository.MovementRepository, cur *entity.Movement, in AmendInput) error {
	if in.Value == nil {
		return domain.ErrInvalidInput
	}
	if err := movRepo.LockPair(cur.WarehouseID, cur.MaterialID); err != nil {
		return err
	}
	movs, err := movRepo.ListByPair(cur.WarehouseID, cur.MaterialID, nil)
	if err != nil {
		return err
	}
	next := replacement(cur, in)
	next.Quantity = in.Quantity
	next.Value = *in.Value
	// Reducir la entrada o moverla hacia adelante puede sobregirar saldos
	// intermedios: se valida el historial candidato completo.
	if err := checkCandidate(movs, cur, next); err != nil {
		return err
	}
	return movRepo.Replace(next)
}

func (uc *LedgerUseCase) amendExit(movRepo repository.MovementRepository, cur *entity.Movement, in AmendInput) error {
	allocs, err := ledger.NormalizeAllocations(in.Allocations)
	if err != nil {
		return err
	}
	if err := uc.checkStages(allocs); err != nil {
		return err
	}
	if err := movRepo.LockPair(cur.WarehouseID, cur.MaterialID); err != nil {
		return err
	}
	movs, err := movRepo.ListByPair(cur.WarehouseID, cur.MaterialID, nil)
	if err != nil {
		return err
	}
	avail := ledger.Available(movs, in.Date, cur.ID)
	if avail.LessThan(in.Quantity) {
		return &domain.InsufficientStockError{
			WarehouseID: cur.WarehouseID,
			MaterialID:  cur.MaterialID,
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
	next := replacement(cur, in)
	next.Quantity = in.Quantity.Neg()
	next.Value = value.Neg()
	next.Allocations = allocs
	return movRepo.Replace(next)
}

// amendTransfer corrige las dos mitades juntas: comparten cantidad, valor y
// fecha. La persistencia parcial de una sola mitad es un estado de corrupción
// que no debe ser observable.
func (uc *LedgerUseCase) amendTransfer(movRepo repository.MovementRepository, cur *entity.Movement, in AmendInput) error {
	halves, err := movRepo.ListByTransfer(cur.TransferID)
	if err != nil {
		return err
	}
	if len(halves) != 2 {
		return domain.ErrConflict
	}
	var out, entrante *entity.Movement
	for _, h := range halves {
		if h.Kind == entity.MovementKindTransferOut {
			out = h
		} else {
			entrante = h
		}
	}
	if out == nil || entrante == nil {
		return domain.ErrConflict
	}

	pairs := []*entity.Movement{out, entrante}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].WarehouseID < pairs[j].WarehouseID })
	for _, p := range pairs {
		if err := movRepo.LockPair(p.WarehouseID, p.MaterialID); err != nil {
			return err
		}
	}

	srcMovs, err := movRepo.ListByPair(out.WarehouseID, out.MaterialID, nil)
	if err != nil {
		return err
	}
	avail := ledger.Available(srcMovs, in.Date, out.ID)
	if avail.LessThan(in.Quantity) {
		return &domain.InsufficientStockError{
			WarehouseID: out.WarehouseID,
			MaterialID:  out.MaterialID,
			Requested:   in.Quantity,
			Available:   avail,
			AsOf:        in.Date,
		}
	}
	value := decimal.Zero
	if in.Value != nil {
		value = *in.Value
	} else {
		value = ledger.AverageUnitCost(srcMovs).Mul(in.Quantity).Round(2)
	}

	nextOut := replacement(out, in)
	nextOut.Quantity = in.Quantity.Neg()
	nextOut.Value = value.Neg()

	nextIn := replacement(entrante, in)
	nextIn.Quantity = in.Quantity
	nextIn.Value = value

	// Reducir la mitad entrante puede sobregirar el destino.
	dstMovs, err := movRepo.ListByPair(entrante.WarehouseID, entrante.MaterialID, nil)
	if err != nil {
		return err
	}
	if err := checkCandidate(dstMovs, entrante, nextIn); err != nil {
		return err
	}

	if err := movRepo.Replace(nextOut); err != nil {
		return err
	}
	return movRepo.Replace(nextIn)
}

// DeleteMovement borra un movimiento; si es mitad de un traslado borra ambas
// mitades en la misma transacción. Borrar una entrada (o la mitad entrante de
// un traslado) solo se admite si ningún saldo posterior queda negativo.
func (uc *LedgerUseCase) DeleteMovement(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		cur, err := movRepo.GetByID(id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		victims := []*entity.Movement{cur}
		if cur.IsTransferHalf() {
			halves, err := movRepo.ListByTransfer(cur.TransferID)
			if err != nil {
				return err
			}
			if len(halves) != 2 {
				return domain.ErrConflict
			}
			victims = halves
		}

		sort.Slice(victims, func(i, j int) bool {
			return victims[i].WarehouseID+victims[i].MaterialID < victims[j].WarehouseID+victims[j].MaterialID
		})
		for _, v := range victims {
			if err := movRepo.LockPair(v.WarehouseID, v.MaterialID); err != nil {
				return err
			}
		}
		ids := make([]string, len(victims))
		for i, v := range victims {
			ids[i] = v.ID
		}
		for _, v := range victims {
			// Quitar cantidad negativa solo sube saldos; no requiere validación.
			if !v.Quantity.GreaterThan(decimal.Zero) {
				continue
			}
			movs, err := movRepo.ListByPair(v.WarehouseID, v.MaterialID, nil)
			if err != nil {
				return err
			}
			avail := ledger.Available(movs, v.Date)
			if avail.LessThan(v.Quantity) {
				return &domain.InsufficientStockError{
					WarehouseID: v.WarehouseID,
					MaterialID:  v.MaterialID,
					Requested:   v.Quantity,
					Available:   avail,
					AsOf:        v.Date,
				}
			}
		}
		for _, victimID := range ids {
			if err := movRepo.Delete(victimID); err != nil {
				return err
			}
		}
		return nil
	})
}

// replacement copia los campos inmutables del movimiento y aplica los editables.
func replacement(cur *entity.Movement, in AmendInput) *entity.Movement {
	return &entity.Movement{
		ID:           cur.ID,
		TransferID:   cur.TransferID,
		WarehouseID:  cur.WarehouseID,
		MaterialID:   cur.MaterialID,
		Kind:         cur.Kind,
		Date:         in.Date,
		Reference:    in.Reference,
		Counterparty: in.Counterparty,
		Notes:        in.Notes,
		CreatedAt:    cur.CreatedAt,
		CreatedBy:    in.UserID,
	}
}

// checkCandidate valida que el historial con cur reemplazado por next mantenga
// el saldo no negativo en todo instante.
func checkCandidate(movs []*entity.Movement, cur, next *entity.Movement) error {
	candidate := make([]*entity.Movement, 0, len(movs)+1)
	for _, m := range movs {
		if m.ID != cur.ID {
			candidate = append(candidate, m)
		}
	}
	candidate = append(candidate, next)
	min := ledger.MinBalance(candidate)
	if !min.IsNegative() {
		return nil
	}
	req := next.Quantity.Abs()
	return &domain.InsufficientStockError{
		WarehouseID: next.WarehouseID,
		MaterialID:  next.MaterialID,
		Requested:   req,
		Available:   req.Add(min),
		AsOf:        next.Date,
	}
}
