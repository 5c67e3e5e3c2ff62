package stock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

const (
	testCompanyID = "00000000-0000-0000-0000-0000000000c1"
	testUserID    = "00000000-0000-0000-0000-0000000000a1"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(dur time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(dur)
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []stock.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...stock.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// testEnv núcleo de stock sobre el almacenamiento en memoria con dos bodegas sembradas.
type testEnv struct {
	ctx          context.Context
	store        *memory.Store
	clock        *fakeClock
	events       *recordingPublisher
	ledger       *stock.Ledger
	movements    *stock.MovementUseCase
	reservations *stock.ReservationUseCase
	transfers    *stock.TransferUseCase
	inventories  *stock.InventoryUseCase
	cycles       *stock.CycleUseCase
	replenish    *stock.ReplenishmentUseCase

	wh1, wh2   *entity.Warehouse
	loc1, loc2 *entity.Location
}

func newTestEnv(t *testing.T, policy stock.Policy) *testEnv {
	t.Helper()
	env := &testEnv{
		ctx:    context.Background(),
		store:  memory.New(),
		clock:  &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
		events: &recordingPublisher{},
	}
	env.ledger = stock.NewLedger(stock.Deps{
		Tx:     env.store,
		Repos:  env.store.Repos(),
		Events: env.events,
		Clock:  env.clock,
		Policy: policy,
	})
	env.movements = stock.NewMovementUseCase(env.ledger)
	env.reservations = stock.NewReservationUseCase(env.ledger)
	env.transfers = stock.NewTransferUseCase(env.ledger, env.movements)
	env.inventories = stock.NewInventoryUseCase(env.ledger, env.movements)
	env.cycles = stock.NewCycleUseCase(env.ledger, env.inventories)
	env.replenish = stock.NewReplenishmentUseCase(env.ledger)

	env.wh1, env.loc1 = env.seedWarehouse(t, "wh-1", "WH1")
	env.wh2, env.loc2 = env.seedWarehouse(t, "wh-2", "WH2")
	return env
}

func (e *testEnv) seedWarehouse(t *testing.T, id, code string) (*entity.Warehouse, *entity.Location) {
	t.Helper()
	repos := e.store.Repos()
	wh := &entity.Warehouse{ID: id, CompanyID: testCompanyID, Code: code, Name: "Bodega " + code, IsActive: true}
	require.NoError(t, repos.Warehouses.Create(e.ctx, wh))
	loc := &entity.Location{
		ID: "loc-" + id, CompanyID: testCompanyID, WarehouseID: id, Code: code + "/STOCK",
		Name: code + " stock", LocationType: entity.LocationTypeInternal, IsActive: true,
	}
	require.NoError(t, repos.Locations.Create(e.ctx, loc))
	return wh, loc
}

func (e *testEnv) seedProduct(t *testing.T, id, sku string, mutate ...func(p *entity.Product)) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID: id, CompanyID: testCompanyID, SKU: sku, Name: "Producto " + sku,
		ProductType: entity.ProductTypeStockable, IsActive: true, UnitMeasure: "unit",
	}
	for _, fn := range mutate {
		fn(p)
	}
	require.NoError(t, e.store.Repos().Products.Create(e.ctx, p))
	return p
}

// receive crea y valida una entrada.
func (e *testEnv) receive(t *testing.T, productID, locationID, qty string) *entity.StockMovement {
	t.Helper()
	m, err := e.movements.Create(e.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
		Type: entity.MovementTypeIn, ProductID: productID, DestinationLocationID: locationID, Quantity: d(qty),
	})
	require.NoError(t, err)
	m, err = e.movements.Validate(e.ctx, testCompanyID, testUserID, m.ID)
	require.NoError(t, err)
	return m
}

// issue crea y valida una salida.
func (e *testEnv) issue(t *testing.T, productID, locationID, qty string) *entity.StockMovement {
	t.Helper()
	m, err := e.movements.Create(e.ctx, testCompanyID, testUserID, dto.CreateMovementRequest{
		Type: entity.MovementTypeOut, ProductID: productID, SourceLocationID: locationID, Quantity: d(qty),
	})
	require.NoError(t, err)
	m, err = e.movements.Validate(e.ctx, testCompanyID, testUserID, m.ID)
	require.NoError(t, err)
	return m
}

// requireLevel verifica físico y reservado de una clave sin lote.
func (e *testEnv) requireLevel(t *testing.T, productID, locationID, qty, reserved string) {
	t.Helper()
	lvl, err := e.ledger.GetAvailable(e.ctx, testCompanyID, entity.StockKey{ProductID: productID, LocationID: locationID})
	require.NoError(t, err)
	require.Truef(t, lvl.Quantity.Equal(d(qty)), "físico esperado %s, obtenido %s", qty, lvl.Quantity)
	require.Truef(t, lvl.ReservedQuantity.Equal(d(reserved)), "reservado esperado %s, obtenido %s", reserved, lvl.ReservedQuantity)
}
