package ledger_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/ledger"
)

func alloc(stage, pct string) entity.Allocation {
	return entity.Allocation{StageID: stage, Percentage: d(pct)}
}

func TestValidateAllocations_Rechazos(t *testing.T) {
	tests := []struct {
		name   string
		allocs []entity.Allocation
	}{
		{"vacío", nil},
		{"porcentaje cero", []entity.Allocation{alloc("s1", "0")}},
		{"porcentaje negativo", []entity.Allocation{alloc("s1", "110"), alloc("s2", "-10")}},
		{"etapa repetida", []entity.Allocation{alloc("s1", "50"), alloc("s1", "50")}},
		{"etapa sin id", []entity.Allocation{alloc("", "100")}},
		{"suma 99 fuera de tolerancia", []entity.Allocation{alloc("s1", "60"), alloc("s2", "39")}},
		{"suma 101 fuera de tolerancia", []entity.Allocation{alloc("s1", "60"), alloc("s2", "41")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ledger.ValidateAllocations(tt.allocs)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidAllocation)
		})
	}
}

func TestValidateAllocations_SumaExacta(t *testing.T) {
	err := ledger.ValidateAllocations([]entity.Allocation{alloc("s1", "70"), alloc("s2", "30")})
	assert.NoError(t, err)
}

func TestValidateAllocations_DentroDeTolerancia(t *testing.T) {
	// 33.33*3 = 99.99: dentro de la tolerancia 0.01
	err := ledger.ValidateAllocations([]entity.Allocation{
		alloc("s1", "33.33"), alloc("s2", "33.33"), alloc("s3", "33.33"),
	})
	assert.NoError(t, err)
}

func TestNormalizeAllocations_ReescalaExactoA100(t *testing.T) {
	out, err := ledger.NormalizeAllocations([]entity.Allocation{
		alloc("s1", "33.33"), alloc("s2", "33.33"), alloc("s3", "33.33"),
	})
	require.NoError(t, err)
	sum := decimal.Zero
	for _, a := range out {
		sum = sum.Add(a.Percentage)
	}
	assert.True(t, sum.Equal(d("100")), "la suma normalizada debe ser exactamente 100, obtenida %s", sum)
}

func TestNormalizeAllocations_NoAlteraSumaExacta(t *testing.T) {
	in := []entity.Allocation{alloc("s1", "70"), alloc("s2", "30")}
	out, err := ledger.NormalizeAllocations(in)
	require.NoError(t, err)
	assert.True(t, out[0].Percentage.Equal(d("70")))
	assert.True(t, out[1].Percentage.Equal(d("30")))
}

func TestSplitValue_Escenario70_30(t *testing.T) {
	// Salida de $150 repartida 70%/30% => $105.00 y $45.00, suma exacta $150.00
	splits := ledger.SplitValue(d("150"), []entity.Allocation{alloc("s1", "70"), alloc("s2", "30")})
	require.Len(t, splits, 2)
	assert.True(t, splits[0].Equal(d("105")), "esperado 105, obtenido %s", splits[0])
	assert.True(t, splits[1].Equal(d("45")), "esperado 45, obtenido %s", splits[1])
}

func TestSplitValue_PrimeraEtapaAbsorbeResiduo(t *testing.T) {
	// 100/3: redondeo independiente daría 33.33*3 = 99.99; la primera fila absorbe el centavo.
	allocs := []entity.Allocation{
		alloc("s1", "33.33"), alloc("s2", "33.33"), alloc("s3", "33.34"),
	}
	splits := ledger.SplitValue(d("100"), allocs)
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s)
	}
	assert.True(t, total.Equal(d("100")), "la suma de repartos debe ser exactamente el total, obtenida %s", total)
}

// TestCierreDeReparto_Aleatorio: para cualquier reparto válido, la suma de los
// valores por etapa es exactamente el valor total de la salida.
func TestCierreDeReparto_Aleatorio(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for caso := 0; caso < 200; caso++ {
		n := 1 + rng.Intn(6)
		raw := make([]int, n)
		sum := 0
		for i := range raw {
			raw[i] = 1 + rng.Intn(100)
			sum += raw[i]
		}
		allocs := make([]entity.Allocation, n)
		acc := decimal.Zero
		for i := range raw {
			pct := decimal.NewFromInt(int64(raw[i])).Mul(d("100")).DivRound(decimal.NewFromInt(int64(sum)), 2)
			allocs[i] = entity.Allocation{StageID: fmt.Sprintf("s%d", i), Percentage: pct}
			acc = acc.Add(pct)
		}
		// corrige el último para que la suma quede dentro de la tolerancia
		allocs[n-1].Percentage = allocs[n-1].Percentage.Add(d("100").Sub(acc))

		norm, err := ledger.NormalizeAllocations(allocs)
		require.NoError(t, err, "caso %d", caso)

		total := decimal.NewFromInt(int64(1 + rng.Intn(100000))).DivRound(d("100"), 2)
		splits := ledger.SplitValue(total, norm)
		got := decimal.Zero
		for _, s := range splits {
			got = got.Add(s)
		}
		require.True(t, got.Equal(total), "caso %d: repartos suman %s, total %s", caso, got, total)
	}
}
