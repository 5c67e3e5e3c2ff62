package stock_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Salida validada y cancelada devuelve el ledger a su estado previo.
func TestMovement_SalidaValidadaYCancelada(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "100")

	m, err := env.movements.Create(env.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
		Type: entity.MovementTypeOut, ProductID: "p1", SourceLocationID: env.loc1.ID, Quantity: d("30"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusDraft, m.Status)
	env.requireLevel(t, "p1", env.loc1.ID, "100", "0")

	_, err = env.movements.Validate(env.ctx, testCompanyID, testUserID, m.ID)
	require.NoError(t, err)
	env.requireLevel(t, "p1", env.loc1.ID, "70", "0")

	cancelled, err := env.movements.Cancel(env.ctx, testCompanyID, testUserID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCancelled, cancelled.Status)
	env.requireLevel(t, "p1", env.loc1.ID, "100", "0")
}

// Una reserva activa impide que una salida deje el físico por debajo de lo reservado.
func TestMovement_SalidaRespetaReservas(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "100")

	_, err := env.reservations.Reserve(env.ctx, testCompanyID, testUserID, dto.CreateReservationRequest{
		ProductID: "p1", LocationID: env.loc1.ID, Quantity: d("40"), ReferenceType: "sale_order", ReferenceID: "SO-1",
	})
	require.NoError(t, err)
	lvl, err := env.ledger.GetAvailable(env.ctx, testCompanyID, entity.StockKey{ProductID: "p1", LocationID: env.loc1.ID})
	require.NoError(t, err)
	assert.True(t, lvl.Available().Equal(d("60")))

	m, err := env.movements.Create(env.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
		Type: entity.MovementTypeOut, ProductID: "p1", SourceLocationID: env.loc1.ID, Quantity: d("70"),
	})
	require.NoError(t, err)
	_, err = env.movements.Validate(env.ctx, testCompanyID, testUserID, m.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	got, err := env.movements.Get(env.ctx, testCompanyID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusDraft, got.Status, "el movimiento sigue en borrador")
	env.requireLevel(t, "p1", env.loc1.ID, "100", "40")
}

// Dos validaciones concurrentes: exactamente una gana.
func TestMovement_ValidacionConcurrenteSoloUnaGana(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	m, err := env.movements.Create(env.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
		Type: entity.MovementTypeIn, ProductID: "p1", DestinationLocationID: env.loc1.ID, Quantity: d("10"),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.movements.Validate(env.ctx, testCompanyID, testUserID, m.ID)
		}(i)
	}
	wg.Wait()

	ok, invalid := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInvalidState):
			invalid++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, invalid)
	env.requireLevel(t, "p1", env.loc1.ID, "10", "0")
}

func TestMovement_CancelarDosVecesEsEstadoInvalido(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	m := env.receive(t, "p1", env.loc1.ID, "5")

	_, err := env.movements.Cancel(env.ctx, testCompanyID, testUserID, m.ID)
	require.NoError(t, err)
	_, err = env.movements.Cancel(env.ctx, testCompanyID, testUserID, m.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	env.requireLevel(t, "p1", env.loc1.ID, "0", "0")
}

func TestMovement_TrasladoInternoMueveEntreUbicaciones(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "12")

	m, err := env.movements.Create(env.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
		Type: entity.MovementTypeTransfer, ProductID: "p1",
		SourceLocationID: env.loc1.ID, DestinationLocationID: env.loc2.ID, Quantity: d("5"),
	})
	require.NoError(t, err)
	_, err = env.movements.Validate(env.ctx, testCompanyID, testUserID, m.ID)
	require.NoError(t, err)
	env.requireLevel(t, "p1", env.loc1.ID, "7", "0")
	env.requireLevel(t, "p1", env.loc2.ID, "5", "0")
}

func TestMovement_AjusteNegativoSegunPolitica(t *testing.T) {
	create := func(env *testEnv) *entity.StockMovement {
		m, err := env.movements.Create(env.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
			Type: entity.MovementTypeAdjustment, ProductID: "p1", SourceLocationID: env.loc1.ID, Quantity: d("3"),
		})
		require.NoError(t, err)
		return m
	}

	strict := newTestEnv(t, stock.DefaultPolicy())
	strict.seedProduct(t, "p1", "SKU-1")
	_, err := strict.movements.Validate(strict.ctx, testCompanyID, testUserID, create(strict).ID)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	policy := stock.DefaultPolicy()
	policy.AllowNegativeAdjustments = true
	lax := newTestEnv(t, policy)
	lax.seedProduct(t, "p1", "SKU-1")
	_, err = lax.movements.Validate(lax.ctx, testCompanyID, testUserID, create(lax).ID)
	require.NoError(t, err)
	lax.requireLevel(t, "p1", lax.loc1.ID, "-3", "0")
}

func TestMovement_ValidacionesDeEntrada(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")

	cases := map[string]dto.CreateMovementRequest{
		"cantidad cero":        {Type: entity.MovementTypeIn, ProductID: "p1", DestinationLocationID: env.loc1.ID, Quantity: decimal.Zero},
		"entrada sin destino":  {Type: entity.MovementTypeIn, ProductID: "p1", Quantity: d("1")},
		"salida con destino":   {Type: entity.MovementTypeOut, ProductID: "p1", SourceLocationID: env.loc1.ID, DestinationLocationID: env.loc2.ID, Quantity: d("1")},
		"traslado mismo lugar": {Type: entity.MovementTypeTransfer, ProductID: "p1", SourceLocationID: env.loc1.ID, DestinationLocationID: env.loc1.ID, Quantity: d("1")},
		"ajuste sin ubicación": {Type: entity.MovementTypeAdjustment, ProductID: "p1", Quantity: d("1")},
		"tipo desconocido":     {Type: "scrap", ProductID: "p1", SourceLocationID: env.loc1.ID, Quantity: d("1")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.movements.Create(env.ctx, testCompanyID, testUserID, in)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "error: %v", err)
		})
	}

	_, err := env.movements.Create(env.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
		Type: entity.MovementTypeIn, ProductID: "no-existe", DestinationLocationID: env.loc1.ID, Quantity: d("1"),
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMovement_ReferenciaDiariaSecuencial(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	a := env.receive(t, "p1", env.loc1.ID, "1")
	b := env.receive(t, "p1", env.loc1.ID, "1")
	assert.Equal(t, "MOV-20240115-0001", a.Reference)
	assert.Equal(t, "MOV-20240115-0002", b.Reference)
}

func TestMovement_EntradaConCostoActualizaPromedio(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")

	in := func(qty, cost string) {
		c := d(cost)
		m, err := env.movements.Create(env.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
			Type: entity.MovementTypeIn, ProductID: "p1", DestinationLocationID: env.loc1.ID, Quantity: d(qty), UnitCost: &c,
		})
		require.NoError(t, err)
		_, err = env.movements.Validate(env.ctx, testCompanyID, testUserID, m.ID)
		require.NoError(t, err)
	}
	in("10", "100")
	in("10", "200")

	p, err := env.store.Repos().Products.GetByID(env.ctx, testCompanyID, "p1")
	require.NoError(t, err)
	assert.True(t, p.Cost.Equal(d("150")), "costo promedio: %s", p.Cost)
}

// El promedio usa el físico del producto en todas sus ubicaciones y no el de otros productos.
func TestMovement_CostoPromedioSoloConStockDelProducto(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1", func(p *entity.Product) { p.Cost = d("100") })
	env.seedProduct(t, "p2", "SKU-2")
	env.receive(t, "p1", env.loc1.ID, "10")
	env.receive(t, "p1", env.loc2.ID, "10")
	env.receive(t, "p2", env.loc1.ID, "1000")

	cost := d("200")
	m, err := env.movements.Create(env.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
		Type: entity.MovementTypeIn, ProductID: "p1", DestinationLocationID: env.loc1.ID, Quantity: d("20"), UnitCost: &cost,
	})
	require.NoError(t, err)
	_, err = env.movements.Validate(env.ctx, testCompanyID, testUserID, m.ID)
	require.NoError(t, err)

	p, err := env.store.Repos().Products.GetByID(env.ctx, testCompanyID, "p1")
	require.NoError(t, err)
	assert.Truef(t, p.Cost.Equal(d("150")), "(20×100 + 20×200) / 40 = 150, obtenido %s", p.Cost)
}

func TestMovement_EdicionSoloEnBorrador(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	m, err := env.movements.Create(env.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
		Type: entity.MovementTypeIn, ProductID: "p1", DestinationLocationID: env.loc1.ID, Quantity: d("1"),
	})
	require.NoError(t, err)

	qty := d("8")
	updated, err := env.movements.Update(env.ctx, testCompanyID, m.ID, dto.UpdateMovementRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.True(t, updated.Quantity.Equal(qty))

	_, err = env.movements.Validate(env.ctx, testCompanyID, testUserID, m.ID)
	require.NoError(t, err)
	_, err = env.movements.Update(env.ctx, testCompanyID, m.ID, dto.UpdateMovementRequest{Quantity: &qty})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	env.requireLevel(t, "p1", env.loc1.ID, "8", "0")
}

// Reaplicar los deltas de los movimientos validados reproduce el ledger.
func TestMovement_ReplayReproduceElLedger(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.seedProduct(t, "p2", "SKU-2")
	env.receive(t, "p1", env.loc1.ID, "50")
	env.receive(t, "p2", env.loc2.ID, "20")
	env.issue(t, "p1", env.loc1.ID, "15")
	cancelled := env.issue(t, "p2", env.loc2.ID, "5")
	_, err := env.movements.Cancel(env.ctx, testCompanyID, testUserID, cancelled.ID)
	require.NoError(t, err)

	list, _, err := env.store.Repos().Movements.List(env.ctx, testCompanyID, repository.MovementFilter{Status: entity.MovementStatusValidated})
	require.NoError(t, err)
	replay := map[entity.StockKey]decimal.Decimal{}
	for _, m := range list {
		for _, delta := range m.Deltas() {
			replay[delta.Key] = replay[delta.Key].Add(delta.Quantity)
		}
	}
	for key, qty := range replay {
		lvl, err := env.ledger.GetAvailable(env.ctx, testCompanyID, key)
		require.NoError(t, err)
		assert.Truef(t, lvl.Quantity.Equal(qty), "clave %s: ledger %s, replay %s", key, lvl.Quantity, qty)
	}
}

func TestMovement_PublicaEventosTrasElCommit(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	m := env.receive(t, "p1", env.loc1.ID, "2")
	_, err := env.movements.Cancel(env.ctx, testCompanyID, testUserID, m.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{stock.EventMovementValidated, stock.EventMovementCancelled}, env.events.types())

	// Un intento fallido no publica nada.
	out, err := env.movements.Create(env.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
		Type: entity.MovementTypeOut, ProductID: "p1", SourceLocationID: env.loc1.ID, Quantity: d("1"),
	})
	require.NoError(t, err)
	_, err = env.movements.Validate(env.ctx, testCompanyID, testUserID, out.ID)
	require.Error(t, err)
	assert.Len(t, env.events.types(), 2)
}

func TestMovement_AislamientoPorEmpresa(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	m := env.receive(t, "p1", env.loc1.ID, "2")

	_, err := env.movements.Get(env.ctx, "otra-empresa", m.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = env.movements.Cancel(env.ctx, "otra-empresa", testUserID, m.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	list, total, err := env.movements.List(env.ctx, testCompanyID, repository.MovementFilter{Search: "mov-2024"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.True(t, strings.HasPrefix(list[0].Reference, "MOV-"))
}
