package ledger

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
)

// Validador de repartos: toda salida debe repartir su costo entre etapas de
// obra en porcentajes que sumen exactamente 100%.

var (
	cien = decimal.NewFromInt(100)

	// Tolerancia sobre la suma de porcentajes (captura redondeos de captura manual).
	allocationEpsilon = decimal.NewFromFloat(0.01)
)

// ValidateAllocations rechaza el reparto si está vacío, algún porcentaje es <= 0,
// alguna etapa se repite, o la suma se desvía de 100 en más de la tolerancia.
func ValidateAllocations(allocs []entity.Allocation) error {
	if len(allocs) == 0 {
		return &domain.InvalidAllocationError{Reason: "el reparto no puede estar vacío"}
	}
	seen := make(map[string]bool, len(allocs))
	sum := decimal.Zero
	for _, a := range allocs {
		if a.StageID == "" {
			return &domain.InvalidAllocationError{Reason: "etapa sin identificador"}
		}
		if seen[a.StageID] {
			return &domain.InvalidAllocationError{Reason: "etapa repetida: " + a.StageID}
		}
		seen[a.StageID] = true
		if a.Percentage.LessThanOrEqual(decimal.Zero) {
			return &domain.InvalidAllocationError{Reason: "porcentaje no positivo para etapa " + a.StageID}
		}
		sum = sum.Add(a.Percentage)
	}
	if sum.Sub(cien).Abs().GreaterThan(allocationEpsilon) {
		return &domain.InvalidAllocationError{Reason: "la suma de porcentajes debe ser 100", Sum: sum}
	}
	return nil
}

// NormalizeAllocations valida y reescala los porcentajes para que sumen
// exactamente 100: así los repartos de valor aguas abajo cierran sin deriva de
// centavos. La primera etapa absorbe la diferencia residual del reescalado.
func NormalizeAllocations(allocs []entity.Allocation) ([]entity.Allocation, error) {
	if err := ValidateAllocations(allocs); err != nil {
		return nil, err
	}
	sum := decimal.Zero
	for _, a := range allocs {
		sum = sum.Add(a.Percentage)
	}
	out := make([]entity.Allocation, len(allocs))
	copy(out, allocs)
	if sum.Equal(cien) {
		return out, nil
	}
	rest := decimal.Zero
	for i := 1; i < len(out); i++ {
		out[i].Percentage = out[i].Percentage.Mul(cien).Div(sum)
		rest = rest.Add(out[i].Percentage)
	}
	out[0].Percentage = cien.Sub(rest)
	return out, nil
}

// SplitValue reparte el valor total de una salida entre sus etapas:
// valor_i = total * (porcentaje_i / 100), redondeado a 2 decimales, y la
// primera etapa absorbe el residuo de redondeo para que la suma de los
// repartos sea exactamente el total (conciliación en una sola fila, no
// redondeo independiente por fila).
func SplitValue(total decimal.Decimal, allocs []entity.Allocation) []decimal.Decimal {
	splits := make([]decimal.Decimal, len(allocs))
	if len(allocs) == 0 {
		return splits
	}
	assigned := decimal.Zero
	for i, a := range allocs {
		splits[i] = total.Mul(a.Percentage).Div(cien).Round(2)
		assigned = assigned.Add(splits[i])
	}
	splits[0] = splits[0].Add(total.Sub(assigned))
	return splits
}
