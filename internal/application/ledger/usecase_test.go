package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	applledger "github.com/jhoicas/Almacen-obra-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
)

var (
	t1 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t3 = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type testEnv struct {
	store   *memStore
	uc      *applledger.LedgerUseCase
	queries *applledger.BalanceUseCase
}

// newTestEnv monta los casos de uso sobre los fakes, con bodegas W y X,
// material M y etapas S1/S2 ya sembradas.
func newTestEnv() *testEnv {
	store := newMemStore()
	store.warehouses["W"] = &entity.Warehouse{ID: "W", Name: "Bodega obra norte"}
	store.warehouses["X"] = &entity.Warehouse{ID: "X", Name: "Bodega patio"}
	store.materials["M"] = &entity.Material{ID: "M", Code: "CEM-50", Name: "Cemento 50kg", Unit: "und"}
	store.stages["S1"] = &entity.Stage{ID: "S1", ObraID: "O1", Name: "Cimentación"}
	store.stages["S2"] = &entity.Stage{ID: "S2", ObraID: "O1", Name: "Estructura"}
	uc := applledger.NewLedgerUseCase(
		&memTxRunner{store: store},
		&memWarehouseRepo{store: store},
		&memMaterialRepo{store: store},
		&memStageRepo{store: store},
	)
	return &testEnv{
		store:   store,
		uc:      uc,
		queries: applledger.NewBalanceUseCase(&memMovementRepo{store: store}),
	}
}

func (e *testEnv) entry(t *testing.T, qty, value string, at time.Time) string {
	t.Helper()
	id, err := e.uc.RecordEntry(context.Background(), applledger.EntryInput{
		WarehouseID: "W", MaterialID: "M", Date: at,
		Quantity: d(qty), Value: d(value), UserID: "u1",
	})
	require.NoError(t, err)
	return id
}

func TestRecordEntry_SaldoYCosto(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)

	bal, err := env.queries.CurrentBalance("W", "M")
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("100")), "esperado 100, obtenido %s", bal)

	cost, err := env.queries.AverageUnitCost("W", "M")
	require.NoError(t, err)
	assert.True(t, cost.Equal(d("5")), "esperado 5.00, obtenido %s", cost)
}

func TestRecordEntry_Invalido(t *testing.T) {
	env := newTestEnv()
	_, err := env.uc.RecordEntry(context.Background(), applledger.EntryInput{
		WarehouseID: "W", MaterialID: "M", Date: t1,
		Quantity: decimal.Zero, Value: d("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero nunca se admite")

	_, err = env.uc.RecordEntry(context.Background(), applledger.EntryInput{
		WarehouseID: "W", MaterialID: "desconocida", Date: t1,
		Quantity: d("10"), Value: d("10"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordExit_RepartoYSaldo(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)

	id, err := env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2,
		Quantity: d("30"), Value: dp("150"),
		Allocations: []entity.Allocation{
			{StageID: "S1", Percentage: d("70")},
			{StageID: "S2", Percentage: d("30")},
		},
		UserID: "u1",
	})
	require.NoError(t, err)

	bal, err := env.queries.BalanceAsOf("W", "M", t2, "")
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("70")), "esperado 70, obtenido %s", bal)

	mov, err := env.queries.GetMovement(id)
	require.NoError(t, err)
	require.NotNil(t, mov)
	assert.Equal(t, entity.MovementKindExit, mov.Kind)
	assert.True(t, mov.Quantity.Equal(d("-30")))
	assert.True(t, mov.Value.Equal(d("-150")))
	require.Len(t, mov.Allocations, 2)
}

func TestRecordExit_ValorPorDefectoAlCostoPromedio(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)

	id, err := env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2,
		Quantity:    d("30"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.NoError(t, err)
	mov, err := env.queries.GetMovement(id)
	require.NoError(t, err)
	assert.True(t, mov.Value.Equal(d("-150")), "30 unidades a costo 5.00 => -150, obtenido %s", mov.Value)
}

func TestRecordExit_StockInsuficiente(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)
	_, err := env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2,
		Quantity:    d("30"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.NoError(t, err)

	// Saldo 70: pedir 80 falla con faltante 10 y no escribe nada.
	_, err = env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2.Add(time.Minute),
		Quantity:    d("80"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.Error(t, err)
	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, insufficientErr.Shortfall().Equal(d("10")), "faltante esperado 10, obtenido %s", insufficientErr.Shortfall())

	bal, err := env.queries.CurrentBalance("W", "M")
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("70")), "el rechazo no debe alterar el libro")
}

func TestRecordExit_ValidaHaciaAdelante(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)
	_, err := env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t3,
		Quantity:    d("80"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.NoError(t, err)

	// En t2 el saldo es 100, pero una salida de 30 fechada en t2 dejaría el
	// saldo en -10 a partir de t3: debe rechazarse.
	_, err = env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2,
		Quantity:    d("30"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.True(t, insufficientErr.Available.Equal(d("20")), "disponible esperado 20, obtenido %s", insufficientErr.Available)
}

func TestRecordExit_RepartoInvalido(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)
	_, err := env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2,
		Quantity: d("10"),
		Allocations: []entity.Allocation{
			{StageID: "S1", Percentage: d("60")},
			{StageID: "S2", Percentage: d("39")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAllocation, "suma 99 fuera de tolerancia")
}

func TestRecordExit_EtapaInexistente(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)
	_, err := env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2,
		Quantity:    d("10"),
		Allocations: []entity.Allocation{{StageID: "S9", Percentage: d("100")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordTransfer_ConservacionYBorrado(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)
	_, err := env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2,
		Quantity:    d("30"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.NoError(t, err)

	before, _ := env.queries.CurrentBalance("W", "M")
	transferID, err := env.uc.RecordTransfer(context.Background(), applledger.TransferInput{
		FromWarehouseID: "W", ToWarehouseID: "X", MaterialID: "M",
		Date: t3, Quantity: d("20"), UserID: "u1",
	})
	require.NoError(t, err)

	balW, _ := env.queries.BalanceAsOf("W", "M", t3, "")
	balX, _ := env.queries.BalanceAsOf("X", "M", t3, "")
	assert.True(t, balW.Equal(d("50")), "esperado 50 en origen, obtenido %s", balW)
	assert.True(t, balX.Equal(d("20")), "esperado 20 en destino, obtenido %s", balX)
	assert.True(t, balW.Add(balX).Equal(before), "el traslado conserva la cantidad total")

	// La mitad destino entra al costo promedio del origen: 20 * 5.00.
	halves := transferHalves(t, env, transferID)
	assert.True(t, halves[entity.MovementKindTransferIn].Value.Equal(d("100")))
	assert.True(t, halves[entity.MovementKindTransferOut].Value.Equal(d("-100")))

	// Borrar cualquiera de las mitades elimina ambas y restaura los saldos.
	err = env.uc.DeleteMovement(context.Background(), halves[entity.MovementKindTransferIn].ID)
	require.NoError(t, err)
	balW, _ = env.queries.CurrentBalance("W", "M")
	balX, _ = env.queries.CurrentBalance("X", "M")
	assert.True(t, balW.Equal(d("70")))
	assert.True(t, balX.IsZero())
}

func TestRecordTransfer_MismaBodega(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)
	_, err := env.uc.RecordTransfer(context.Background(), applledger.TransferInput{
		FromWarehouseID: "W", ToWarehouseID: "W", MaterialID: "M",
		Date: t2, Quantity: d("10"),
	})
	assert.ErrorIs(t, err, domain.ErrSameWarehouse)
}

func TestRecordTransfer_StockInsuficienteNoDejaMitades(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "10", "50", t1)
	_, err := env.uc.RecordTransfer(context.Background(), applledger.TransferInput{
		FromWarehouseID: "W", ToWarehouseID: "X", MaterialID: "M",
		Date: t2, Quantity: d("20"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Ninguna mitad puede quedar visible.
	balX, _ := env.queries.CurrentBalance("X", "M")
	assert.True(t, balX.IsZero())
	assert.Len(t, env.store.movements, 1, "solo la entrada original")
}

func TestAmendMovement_AutoExclusion(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)
	exitID, err := env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2,
		Quantity:    d("30"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.NoError(t, err)

	// Subir la salida a 70 cabe porque su cantidad previa no cuenta en contra.
	err = env.uc.AmendMovement(context.Background(), exitID, applledger.AmendInput{
		Date: t2, Quantity: d("70"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.NoError(t, err)
	bal, _ := env.queries.CurrentBalance("W", "M")
	assert.True(t, bal.Equal(d("30")))

	// 120 excede la entrada de 100 incluso excluyéndose a sí misma.
	err = env.uc.AmendMovement(context.Background(), exitID, applledger.AmendInput{
		Date: t2, Quantity: d("120"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	bal, _ = env.queries.CurrentBalance("W", "M")
	assert.True(t, bal.Equal(d("30")), "el rechazo no altera el libro")
}

func TestAmendMovement_EntradaNoPuedeQuedarCorta(t *testing.T) {
	env := newTestEnv()
	entryID := env.entry(t, "100", "500", t1)
	_, err := env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2,
		Quantity:    d("80"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.NoError(t, err)

	// Reducir la entrada a 50 dejaría el día t2 en -30.
	err = env.uc.AmendMovement(context.Background(), entryID, applledger.AmendInput{
		Date: t1, Quantity: d("50"), Value: dp("250"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// A 90 sí cabe, y el costo promedio cambia con el reemplazo atómico.
	err = env.uc.AmendMovement(context.Background(), entryID, applledger.AmendInput{
		Date: t1, Quantity: d("90"), Value: dp("270"),
	})
	require.NoError(t, err)
	cost, _ := env.queries.AverageUnitCost("W", "M")
	assert.True(t, cost.Equal(d("3")), "esperado 3.00, obtenido %s", cost)
}

func TestAmendMovement_TrasladoCorrigeAmbasMitades(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)
	transferID, err := env.uc.RecordTransfer(context.Background(), applledger.TransferInput{
		FromWarehouseID: "W", ToWarehouseID: "X", MaterialID: "M",
		Date: t2, Quantity: d("20"),
	})
	require.NoError(t, err)
	halves := transferHalves(t, env, transferID)

	err = env.uc.AmendMovement(context.Background(), halves[entity.MovementKindTransferOut].ID, applledger.AmendInput{
		Date: t2, Quantity: d("35"), Value: dp("175"),
	})
	require.NoError(t, err)

	balW, _ := env.queries.CurrentBalance("W", "M")
	balX, _ := env.queries.CurrentBalance("X", "M")
	assert.True(t, balW.Equal(d("65")))
	assert.True(t, balX.Equal(d("35")), "la mitad destino se corrige junto con la origen")
}

func TestAmendMovement_NoExiste(t *testing.T) {
	env := newTestEnv()
	err := env.uc.AmendMovement(context.Background(), "nope", applledger.AmendInput{
		Date: t1, Quantity: d("1"), Value: dp("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteMovement_EntradaConSalidasPosteriores(t *testing.T) {
	env := newTestEnv()
	entryID := env.entry(t, "100", "500", t1)
	exitID, err := env.uc.RecordExit(context.Background(), applledger.ExitInput{
		WarehouseID: "W", MaterialID: "M", Date: t2,
		Quantity:    d("80"),
		Allocations: []entity.Allocation{{StageID: "S1", Percentage: d("100")}},
	})
	require.NoError(t, err)

	// Borrar la entrada dejaría t2 en -80.
	err = env.uc.DeleteMovement(context.Background(), entryID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Borrando primero la salida, la entrada sale limpia.
	require.NoError(t, env.uc.DeleteMovement(context.Background(), exitID))
	require.NoError(t, env.uc.DeleteMovement(context.Background(), entryID))
	bal, _ := env.queries.CurrentBalance("W", "M")
	assert.True(t, bal.IsZero())
}

func TestDeleteMovement_NoExiste(t *testing.T) {
	env := newTestEnv()
	assert.ErrorIs(t, env.uc.DeleteMovement(context.Background(), "nope"), domain.ErrNotFound)
}

func TestAllBalances_NuncaNegativoEnOperacionCorrecta(t *testing.T) {
	env := newTestEnv()
	env.entry(t, "100", "500", t1)
	_, err := env.uc.RecordTransfer(context.Background(), applledger.TransferInput{
		FromWarehouseID: "W", ToWarehouseID: "X", MaterialID: "M",
		Date: t2, Quantity: d("40"),
	})
	require.NoError(t, err)

	balances, err := env.queries.AllBalances()
	require.NoError(t, err)
	require.Len(t, balances, 2)
	for _, b := range balances {
		assert.False(t, b.Quantity.IsNegative(), "pareja %s/%s negativa", b.WarehouseID, b.MaterialID)
	}
}

func transferHalves(t *testing.T, env *testEnv, transferID string) map[string]*entity.Movement {
	t.Helper()
	repo := &memMovementRepo{store: env.store}
	halves, err := repo.ListByTransfer(transferID)
	require.NoError(t, err)
	require.Len(t, halves, 2, "un traslado siempre tiene exactamente dos mitades")
	out := map[string]*entity.Movement{}
	for _, h := range halves {
		out[h.Kind] = h
	}
	return out
}
