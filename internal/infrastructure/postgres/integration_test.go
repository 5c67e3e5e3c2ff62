package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// pgEnv base real (POSTGRES_TEST_URL) con una empresa nueva por test.
type pgEnv struct {
	ctx        context.Context
	pool       *pgxpool.Pool
	companyID  string
	userID     string
	ledger     *stock.Ledger
	movements  *stock.MovementUseCase
	productID  string
	locA, locB string
}

func newPgEnv(t *testing.T) *pgEnv {
	t.Helper()
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL no configurado")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = postgres.Migrate(ctx, pool)
	require.NoError(t, err)

	runner := postgres.NewTxRunner(pool)
	env := &pgEnv{ctx: ctx, pool: pool, companyID: uuid.NewString(), userID: uuid.NewString()}
	env.ledger = stock.NewLedger(stock.Deps{Tx: runner, Repos: runner.Repos()})
	env.movements = stock.NewMovementUseCase(env.ledger)

	repos := runner.Repos()
	wh := &entity.Warehouse{ID: uuid.NewString(), CompanyID: env.companyID, Code: "WH1", Name: "Bodega", IsActive: true}
	require.NoError(t, repos.Warehouses.Create(ctx, wh))
	for _, code := range []string{"A", "B"} {
		loc := &entity.Location{
			ID: uuid.NewString(), CompanyID: env.companyID, WarehouseID: wh.ID, Code: "WH1/" + code,
			Name: code, LocationType: entity.LocationTypeInternal, IsActive: true,
		}
		require.NoError(t, repos.Locations.Create(ctx, loc))
		if code == "A" {
			env.locA = loc.ID
		} else {
			env.locB = loc.ID
		}
	}
	p := &entity.Product{
		ID: uuid.NewString(), CompanyID: env.companyID, SKU: "SKU-1", Name: "Producto",
		ProductType: entity.ProductTypeStockable, IsActive: true, UnitMeasure: "unit",
	}
	require.NoError(t, repos.Products.Create(ctx, p))
	env.productID = p.ID
	return env
}

func (e *pgEnv) create(t *testing.T, req dto.CreateMovementRequest) *entity.StockMovement {
	t.Helper()
	req.ProductID = e.productID
	m, err := e.movements.Create(e.ctx, e.companyID, e.userID, req)
	require.NoError(t, err)
	return m
}

func (e *pgEnv) level(t *testing.T, locationID string) *entity.StockLevel {
	t.Helper()
	lvl, err := e.ledger.GetAvailable(e.ctx, e.companyID, entity.StockKey{ProductID: e.productID, LocationID: locationID})
	require.NoError(t, err)
	return lvl
}

// Dos validaciones simultáneas del mismo borrador: el FOR UPDATE deja pasar solo una.
func TestPostgres_ValidacionConcurrenteSoloUnaGana(t *testing.T) {
	env := newPgEnv(t)
	m := env.create(t, dto.CreateMovementRequest{Type: entity.MovementTypeIn, DestinationLocationID: env.locA, Quantity: decimal.NewFromInt(10)})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.movements.Validate(env.ctx, env.companyID, env.userID, m.ID)
		}(i)
	}
	wg.Wait()

	ok, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrConflict):
			lost++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, lost)
	assert.True(t, env.level(t, env.locA).Quantity.Equal(decimal.NewFromInt(10)))
}

// Traslados internos en sentidos opuestos bloquean las claves en el mismo orden y no se interbloquean.
func TestPostgres_TrasladosCruzadosSinDeadlock(t *testing.T) {
	env := newPgEnv(t)
	for _, loc := range []string{env.locA, env.locB} {
		in := env.create(t, dto.CreateMovementRequest{Type: entity.MovementTypeIn, DestinationLocationID: loc, Quantity: decimal.NewFromInt(50)})
		_, err := env.movements.Validate(env.ctx, env.companyID, env.userID, in.ID)
		require.NoError(t, err)
	}

	const rounds = 10
	var drafts []*entity.StockMovement
	for i := 0; i < rounds; i++ {
		drafts = append(drafts,
			env.create(t, dto.CreateMovementRequest{Type: entity.MovementTypeTransfer, SourceLocationID: env.locA, DestinationLocationID: env.locB, Quantity: decimal.NewFromInt(1)}),
			env.create(t, dto.CreateMovementRequest{Type: entity.MovementTypeTransfer, SourceLocationID: env.locB, DestinationLocationID: env.locA, Quantity: decimal.NewFromInt(1)}),
		)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(drafts))
	for i, m := range drafts {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = env.movements.Validate(env.ctx, env.companyID, env.userID, id)
		}(i, m.ID)
	}
	wg.Wait()
	for i, err := range errs {
		assert.NoErrorf(t, err, "traslado %d", i)
	}

	a, b := env.level(t, env.locA), env.level(t, env.locB)
	assert.True(t, a.Quantity.Add(b.Quantity).Equal(decimal.NewFromInt(100)), "el total se conserva")
	assert.True(t, a.Quantity.Equal(decimal.NewFromInt(50)))
}

// Un rollback deja el ledger intacto: la salida sin stock no crea ni modifica filas.
func TestPostgres_RollbackDejaElLedgerIntacto(t *testing.T) {
	env := newPgEnv(t)
	in := env.create(t, dto.CreateMovementRequest{Type: entity.MovementTypeIn, DestinationLocationID: env.locA, Quantity: decimal.NewFromInt(5)})
	_, err := env.movements.Validate(env.ctx, env.companyID, env.userID, in.ID)
	require.NoError(t, err)

	out := env.create(t, dto.CreateMovementRequest{Type: entity.MovementTypeOut, SourceLocationID: env.locA, Quantity: decimal.NewFromInt(6)})
	_, err = env.movements.Validate(env.ctx, env.companyID, env.userID, out.ID)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.True(t, env.level(t, env.locA).Quantity.Equal(decimal.NewFromInt(5)))
	got, err := env.movements.Get(env.ctx, env.companyID, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusDraft, got.Status)
}
