package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestScheduler_BarridoUsaElRelojDelLedger(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "10")

	req := reserveReq("p1", env.loc1.ID, "3", "SO-1")
	exp := env.clock.Now().Add(time.Hour)
	req.ExpiryDate = &exp
	r, err := env.reservations.Reserve(env.ctx, testCompanyID, testUserID, req)
	require.NoError(t, err)

	s := stock.NewScheduler(stock.SchedulerConfig{}, env.reservations, env.replenish, env.ledger)
	require.NoError(t, s.SweepReservations(env.ctx))
	env.requireLevel(t, "p1", env.loc1.ID, "10", "3")

	env.clock.Advance(time.Hour)
	require.NoError(t, s.SweepReservations(env.ctx))
	env.requireLevel(t, "p1", env.loc1.ID, "10", "0")

	got, err := env.reservations.Get(env.ctx, testCompanyID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusExpired, got.Status)
}

func TestScheduler_RecalculoClasificaProductos(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1", func(p *entity.Product) { p.Cost = d("2") })
	env.receive(t, "p1", env.loc1.ID, "10")
	env.issue(t, "p1", env.loc1.ID, "5")

	s := stock.NewScheduler(stock.SchedulerConfig{Companies: []string{testCompanyID}}, env.reservations, env.replenish, env.ledger)
	require.NoError(t, s.Recompute(env.ctx))

	p, err := env.store.Repos().Products.GetByID(env.ctx, testCompanyID, "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.ABCClassA, p.ABCClassification)
}

func TestScheduler_RunTerminaAlCancelar(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	s := stock.NewScheduler(stock.SchedulerConfig{
		ReservationSweep: 5 * time.Millisecond,
		Recompute:        5 * time.Millisecond,
	}, env.reservations, env.replenish, env.ledger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("el planificador no terminó tras cancelar el contexto")
	}
}

func TestScheduler_SinIntervalosNoBloquea(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	s := stock.NewScheduler(stock.SchedulerConfig{}, env.reservations, env.replenish, env.ledger)
	assert.NoError(t, s.Run(context.Background()))
}
