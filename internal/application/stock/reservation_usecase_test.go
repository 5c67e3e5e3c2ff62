package stock_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func reserveReq(productID, locationID, qty, ref string) dto.CreateReservationRequest {
	return dto.CreateReservationRequest{
		ProductID: productID, LocationID: locationID, Quantity: d(qty),
		ReferenceType: "sale_order", ReferenceID: ref,
	}
}

func TestReservation_ReservarYLiberarRestauraDisponible(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "10")

	r, err := env.reservations.Reserve(env.ctx, testCompanyID, testUserID, reserveReq("p1", env.loc1.ID, "4", "SO-1"))
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusActive, r.Status)
	env.requireLevel(t, "p1", env.loc1.ID, "10", "4")

	released, err := env.reservations.Release(env.ctx, testCompanyID, testUserID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusReleased, released.Status)
	require.NotNil(t, released.ReleasedAt)
	env.requireLevel(t, "p1", env.loc1.ID, "10", "0")

	_, err = env.reservations.Release(env.ctx, testCompanyID, testUserID, r.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "liberar dos veces no descuenta de nuevo")
	env.requireLevel(t, "p1", env.loc1.ID, "10", "0")
}

func TestReservation_SinDisponibleSuficiente(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "5")

	_, err := env.reservations.Reserve(env.ctx, testCompanyID, testUserID, reserveReq("p1", env.loc1.ID, "3", "SO-1"))
	require.NoError(t, err)
	_, err = env.reservations.Reserve(env.ctx, testCompanyID, testUserID, reserveReq("p1", env.loc1.ID, "3", "SO-2"))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	env.requireLevel(t, "p1", env.loc1.ID, "5", "3")
}

func TestReservation_ValidacionesDeEntrada(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "5")

	zero := reserveReq("p1", env.loc1.ID, "0", "SO-1")
	_, err := env.reservations.Reserve(env.ctx, testCompanyID, testUserID, zero)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	noRef := reserveReq("p1", env.loc1.ID, "1", "SO-1")
	noRef.ReferenceType = ""
	_, err = env.reservations.Reserve(env.ctx, testCompanyID, testUserID, noRef)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	past := env.clock.Now().Add(-time.Minute)
	expired := reserveReq("p1", env.loc1.ID, "1", "SO-1")
	expired.ExpiryDate = &past
	_, err = env.reservations.Reserve(env.ctx, testCompanyID, testUserID, expired)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestReservation_ExpiracionDescuentaUnaSolaVez(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "10")

	expiry := env.clock.Now().Add(time.Hour)
	req := reserveReq("p1", env.loc1.ID, "6", "SO-1")
	req.ExpiryDate = &expiry
	r, err := env.reservations.Reserve(env.ctx, testCompanyID, testUserID, req)
	require.NoError(t, err)
	_, err = env.reservations.Reserve(env.ctx, testCompanyID, testUserID, reserveReq("p1", env.loc1.ID, "2", "SO-2"))
	require.NoError(t, err)

	n, err := env.reservations.ExpireDue(env.ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, n, "nada vence antes de la fecha")

	env.clock.Advance(2 * time.Hour)
	n, err = env.reservations.ExpireDue(env.ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	env.requireLevel(t, "p1", env.loc1.ID, "10", "2")

	n, err = env.reservations.ExpireDue(env.ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := env.reservations.Get(env.ctx, testCompanyID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusExpired, got.Status)
	_, err = env.reservations.Release(env.ctx, testCompanyID, testUserID, r.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.Contains(t, env.events.types(), stock.EventReservationExpired)
}

func TestReservation_LiberarPorReferencia(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.seedProduct(t, "p2", "SKU-2")
	env.receive(t, "p1", env.loc1.ID, "10")
	env.receive(t, "p2", env.loc1.ID, "10")

	for _, req := range []dto.CreateReservationRequest{
		reserveReq("p1", env.loc1.ID, "3", "SO-9"),
		reserveReq("p2", env.loc1.ID, "4", "SO-9"),
		reserveReq("p1", env.loc1.ID, "1", "SO-10"),
	} {
		_, err := env.reservations.Reserve(env.ctx, testCompanyID, testUserID, req)
		require.NoError(t, err)
	}

	n, err := env.reservations.ReleaseByReference(env.ctx, testCompanyID, testUserID,
		dto.ReleaseByReferenceRequest{ReferenceType: "sale_order", ReferenceID: "SO-9"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	env.requireLevel(t, "p1", env.loc1.ID, "10", "1")
	env.requireLevel(t, "p2", env.loc1.ID, "10", "0")

	active, total, err := env.reservations.List(env.ctx, testCompanyID, repository.ReservationFilter{Status: entity.ReservationStatusActive})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "SO-10", active[0].ReferenceID)
}
