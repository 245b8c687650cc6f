package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
)

// Motor de saldos: suma firmada sobre el historial de movimientos de una pareja
// (bodega, material). El saldo nunca se persiste; todas las consultas recalculan
// desde los movimientos para que ediciones y borrados de registros históricos no
// puedan divergir del stock mostrado.

// BalanceAsOf devuelve el saldo de la pareja al instante asOf: suma de las
// cantidades de los movimientos con fecha <= asOf, excluyendo los IDs dados
// (usado al validar la edición de un movimiento para no contarlo dos veces).
// Devuelve 0 si no hay movimientos; nunca falla.
func BalanceAsOf(movs []*entity.Movement, asOf time.Time, excludeIDs ...string) decimal.Decimal {
	ex := idSet(excludeIDs)
	bal := decimal.Zero
	for _, m := range movs {
		if ex[m.ID] || m.Date.After(asOf) {
			continue
		}
		bal = bal.Add(m.Quantity)
	}
	return bal
}

// Available devuelve la cantidad máxima que puede retirarse en el instante from
// sin dejar el saldo negativo en NINGÚN instante posterior del historial: el
// mínimo entre el saldo en from y los saldos en cada instante futuro con
// movimientos. Un retiro fechado en el pasado resta de todos los saldos
// posteriores, así que validar solo contra el saldo en from no basta.
func Available(movs []*entity.Movement, from time.Time, excludeIDs ...string) decimal.Decimal {
	ex := idSet(excludeIDs)
	sorted := make([]*entity.Movement, 0, len(movs))
	for _, m := range movs {
		if !ex[m.ID] {
			sorted = append(sorted, m)
		}
	}
	SortByDate(sorted)

	bal := decimal.Zero
	avail := decimal.Zero
	seeded := false
	for i, m := range sorted {
		if !seeded && m.Date.After(from) {
			// saldo exactamente en from: todo lo acumulado hasta aquí
			avail = bal
			seeded = true
		}
		bal = bal.Add(m.Quantity)
		if !seeded {
			continue
		}
		// El saldo solo está definido al cierre de cada instante: con fechas
		// repetidas se evalúa tras el último movimiento de esa fecha.
		lastOfInstant := i == len(sorted)-1 || !sorted[i+1].Date.Equal(m.Date)
		if lastOfInstant && bal.LessThan(avail) {
			avail = bal
		}
	}
	if !seeded {
		avail = bal
	}
	return avail
}

// MinBalance devuelve el saldo mínimo alcanzado en cualquier instante del
// historial completo. Un historial válido mantiene MinBalance >= 0; se usa
// para validar ediciones y borrados que reducen saldos pasados.
func MinBalance(movs []*entity.Movement, excludeIDs ...string) decimal.Decimal {
	if len(movs) == 0 {
		return decimal.Zero
	}
	earliest := movs[0].Date
	for _, m := range movs[1:] {
		if m.Date.Before(earliest) {
			earliest = m.Date
		}
	}
	// Un instante antes del primer movimiento: Available recorre así todo el historial.
	return Available(movs, earliest.Add(-time.Nanosecond), excludeIDs...)
}

// SortByDate ordena movimientos por fecha; desempate estable por CreatedAt y
// luego ID (solo relevante para despliegue, la suma es conmutativa).
func SortByDate(movs []*entity.Movement) {
	sort.SliceStable(movs, func(i, j int) bool {
		if !movs[i].Date.Equal(movs[j].Date) {
			return movs[i].Date.Before(movs[j].Date)
		}
		if !movs[i].CreatedAt.Equal(movs[j].CreatedAt) {
			return movs[i].CreatedAt.Before(movs[j].CreatedAt)
		}
		return movs[i].ID < movs[j].ID
	})
}

func idSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = true
		}
	}
	return set
}
