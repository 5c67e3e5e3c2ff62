package stock_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func newTransfer(t *testing.T, env *testEnv, lines ...dto.TransferLineRequest) *entity.StockTransfer {
	t.Helper()
	tr, err := env.transfers.Create(env.ctx, testCompanyID, testUserID, dto.CreateTransferRequest{
		SourceWarehouseID: env.wh1.ID, DestinationWarehouseID: env.wh2.ID, Lines: lines,
	})
	require.NoError(t, err)
	return tr
}

// Ciclo completo con una diferencia de recepción.
func TestTransfer_CicloCompletoConVariacion(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "80")

	tr := newTransfer(t, env, dto.TransferLineRequest{ProductID: "p1", QuantitySent: d("50")})
	assert.Equal(t, "TRF-20240115-0001", tr.Reference)

	tr, err := env.transfers.Validate(env.ctx, testCompanyID, testUserID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusValidated, tr.Status)
	assert.NotEmpty(t, tr.Lines[0].OutMovementID)
	env.requireLevel(t, "p1", env.loc1.ID, "30", "0")

	tr, err = env.transfers.Ship(env.ctx, testCompanyID, testUserID, tr.ID, dto.ShipTransferRequest{Transporter: "TCC", TrackingNumber: "G-1"})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusInTransit, tr.Status)

	tr, err = env.transfers.Receive(env.ctx, testCompanyID, testUserID, tr.ID, dto.ReceiveTransferRequest{
		Lines: []dto.ReceiveLineRequest{{LineID: tr.Lines[0].ID, QuantityReceived: d("48")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusReceived, tr.Status)
	require.NotNil(t, tr.ActualArrivalDate)
	require.NotNil(t, tr.Lines[0].Variance())
	assert.True(t, tr.Lines[0].Variance().Equal(d("-2")))
	env.requireLevel(t, "p1", env.loc2.ID, "48", "0")
	env.requireLevel(t, "p1", env.loc1.ID, "30", "0")

	moves, _, err := env.movements.List(env.ctx, testCompanyID, repository.MovementFilter{OriginType: entity.OriginTransfer, OriginID: tr.ID})
	require.NoError(t, err)
	assert.Len(t, moves, 2)
}

// Una línea sin stock revierte la validación completa e indica la línea.
func TestTransfer_ValidacionAtomicaConLinea(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.seedProduct(t, "p2", "SKU-2")
	env.receive(t, "p1", env.loc1.ID, "10")

	tr := newTransfer(t, env,
		dto.TransferLineRequest{ProductID: "p1", QuantitySent: d("5")},
		dto.TransferLineRequest{ProductID: "p2", QuantitySent: d("1")},
	)
	_, err := env.transfers.Validate(env.ctx, testCompanyID, testUserID, tr.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 2, domain.LineOf(err))

	env.requireLevel(t, "p1", env.loc1.ID, "10", "0")
	got, err := env.transfers.Get(env.ctx, testCompanyID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusDraft, got.Status)
	assert.Empty(t, got.Lines[0].OutMovementID)
}

func TestTransfer_RecepcionParcialEnVariasLlamadas(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.seedProduct(t, "p2", "SKU-2")
	env.receive(t, "p1", env.loc1.ID, "10")
	env.receive(t, "p2", env.loc1.ID, "10")

	tr := newTransfer(t, env,
		dto.TransferLineRequest{ProductID: "p1", QuantitySent: d("4")},
		dto.TransferLineRequest{ProductID: "p2", QuantitySent: d("6")},
	)
	_, err := env.transfers.Validate(env.ctx, testCompanyID, testUserID, tr.ID)
	require.NoError(t, err)
	tr, err = env.transfers.Ship(env.ctx, testCompanyID, testUserID, tr.ID, dto.ShipTransferRequest{})
	require.NoError(t, err)

	tr, err = env.transfers.Receive(env.ctx, testCompanyID, testUserID, tr.ID, dto.ReceiveTransferRequest{
		Lines: []dto.ReceiveLineRequest{{LineID: tr.Lines[0].ID, QuantityReceived: d("4")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusInTransit, tr.Status)

	_, err = env.transfers.Receive(env.ctx, testCompanyID, testUserID, tr.ID, dto.ReceiveTransferRequest{
		Lines: []dto.ReceiveLineRequest{{LineID: tr.Lines[0].ID, QuantityReceived: d("1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "una línea se recibe una sola vez")

	_, err = env.transfers.Cancel(env.ctx, testCompanyID, testUserID, tr.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "no se cancela con líneas recibidas")

	tr, err = env.transfers.Receive(env.ctx, testCompanyID, testUserID, tr.ID, dto.ReceiveTransferRequest{
		Lines: []dto.ReceiveLineRequest{{LineID: tr.Lines[1].ID, QuantityReceived: d("0")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusReceived, tr.Status)
	assert.Empty(t, tr.Lines[1].InMovementID, "recibir cero no genera movimiento")
	env.requireLevel(t, "p1", env.loc2.ID, "4", "0")
	env.requireLevel(t, "p2", env.loc2.ID, "0", "0")
}

func TestTransfer_CancelarDevuelveStockAlOrigen(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "10")

	tr := newTransfer(t, env, dto.TransferLineRequest{ProductID: "p1", QuantitySent: d("7")})
	tr, err := env.transfers.Validate(env.ctx, testCompanyID, testUserID, tr.ID)
	require.NoError(t, err)
	env.requireLevel(t, "p1", env.loc1.ID, "3", "0")

	_, err = env.movements.Cancel(env.ctx, testCompanyID, testUserID, tr.Lines[0].OutMovementID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "la salida pertenece al traslado")

	tr, err = env.transfers.Cancel(env.ctx, testCompanyID, testUserID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, tr.Status)
	env.requireLevel(t, "p1", env.loc1.ID, "10", "0")

	_, err = env.transfers.Cancel(env.ctx, testCompanyID, testUserID, tr.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestTransfer_TransicionesInvalidas(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	tr := newTransfer(t, env, dto.TransferLineRequest{ProductID: "p1", QuantitySent: d("1")})

	_, err := env.transfers.Ship(env.ctx, testCompanyID, testUserID, tr.ID, dto.ShipTransferRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	_, err = env.transfers.Receive(env.ctx, testCompanyID, testUserID, tr.ID, dto.ReceiveTransferRequest{
		Lines: []dto.ReceiveLineRequest{{LineID: tr.Lines[0].ID, QuantityReceived: d("1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	_, err = env.transfers.Create(env.ctx, testCompanyID, testUserID, dto.CreateTransferRequest{
		SourceWarehouseID: env.wh1.ID, DestinationWarehouseID: env.wh1.ID,
		Lines: []dto.TransferLineRequest{{ProductID: "p1", QuantitySent: d("1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = env.transfers.Create(env.ctx, testCompanyID, testUserID, dto.CreateTransferRequest{
		SourceWarehouseID: env.wh1.ID, DestinationWarehouseID: env.wh2.ID,
		Lines: []dto.TransferLineRequest{{ProductID: "p1", QuantitySent: d("1")}, {ProductID: "p1", QuantitySent: d("-1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, 2, domain.LineOf(err))
}
