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

func countLine(t *testing.T, env *testEnv, inv *entity.Inventory, productID, counted string) *entity.Inventory {
	t.Helper()
	for _, l := range inv.Lines {
		if l.ProductID != productID {
			continue
		}
		out, err := env.inventories.UpdateLine(env.ctx, testCompanyID, inv.ID, l.ID, dto.UpdateInventoryLineRequest{CountedQuantity: d(counted)})
		require.NoError(t, err)
		return out
	}
	t.Fatalf("el inventario no tiene línea para %s", productID)
	return nil
}

func TestInventory_ValidarGeneraAjustes(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.seedProduct(t, "p2", "SKU-2")
	env.seedProduct(t, "p3", "SKU-3")
	env.receive(t, "p1", env.loc1.ID, "10")
	env.receive(t, "p2", env.loc1.ID, "10")
	env.receive(t, "p3", env.loc1.ID, "10")

	inv, err := env.inventories.Create(env.ctx, testCompanyID, testUserID, dto.CreateInventoryRequest{Name: "Cierre enero", WarehouseID: env.wh1.ID})
	require.NoError(t, err)
	assert.Equal(t, "INV-20240115-0001", inv.Reference)
	require.Len(t, inv.Lines, 3, "se autopobla una línea por fila con existencias")

	inv, err = env.inventories.Start(env.ctx, testCompanyID, inv.ID)
	require.NoError(t, err)
	countLine(t, env, inv, "p1", "12")
	countLine(t, env, inv, "p2", "7")
	countLine(t, env, inv, "p3", "10")

	inv, err = env.inventories.Validate(env.ctx, testCompanyID, testUserID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InventoryStatusValidated, inv.Status)
	env.requireLevel(t, "p1", env.loc1.ID, "12", "0")
	env.requireLevel(t, "p2", env.loc1.ID, "7", "0")
	env.requireLevel(t, "p3", env.loc1.ID, "10", "0")

	adjustments, total, err := env.movements.List(env.ctx, testCompanyID, repository.MovementFilter{OriginType: entity.OriginInventory, OriginID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total, "las líneas sin diferencia no generan ajuste")
	for _, m := range adjustments {
		assert.Equal(t, entity.MovementTypeAdjustment, m.Type)
		assert.Equal(t, entity.MovementStatusValidated, m.Status)
	}

	_, err = env.inventories.Cancel(env.ctx, testCompanyID, inv.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "un inventario validado no se revierte")
}

// Un ajuste negativo que invadiría lo reservado rechaza la validación completa.
func TestInventory_AjusteNoInvadeReservas(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.seedProduct(t, "p2", "SKU-2")
	env.receive(t, "p1", env.loc1.ID, "5")
	env.receive(t, "p2", env.loc1.ID, "20")

	inv, err := env.inventories.Create(env.ctx, testCompanyID, testUserID, dto.CreateInventoryRequest{Name: "Conteo", WarehouseID: env.wh1.ID})
	require.NoError(t, err)
	require.Len(t, inv.Lines, 2)
	assert.True(t, inv.Lines[1].ExpectedQuantity.Equal(d("20")))

	// Después de la foto se consumen 8 y se reservan 10: quedan (12, 10).
	env.issue(t, "p2", env.loc1.ID, "8")
	_, err = env.reservations.Reserve(env.ctx, testCompanyID, testUserID, reserveReq("p2", env.loc1.ID, "10", "SO-1"))
	require.NoError(t, err)

	inv, err = env.inventories.Start(env.ctx, testCompanyID, inv.ID)
	require.NoError(t, err)
	countLine(t, env, inv, "p1", "9")
	countLine(t, env, inv, "p2", "15")

	_, err = env.inventories.Validate(env.ctx, testCompanyID, testUserID, inv.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 2, domain.LineOf(err))

	env.requireLevel(t, "p1", env.loc1.ID, "5", "0")
	env.requireLevel(t, "p2", env.loc1.ID, "12", "10")
	got, err := env.inventories.Get(env.ctx, testCompanyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InventoryStatusInProgress, got.Status)
	for _, l := range got.Lines {
		assert.Empty(t, l.AdjustmentMovementID)
	}
}

// Faltante de 5 sobre (20, 10): se rechaza aunque el físico cubriría lo reservado;
// liberada la reserva el mismo conteo se ajusta.
func TestInventory_FaltanteConReservasSeRechaza(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "20")
	r, err := env.reservations.Reserve(env.ctx, testCompanyID, testUserID, reserveReq("p1", env.loc1.ID, "10", "SO-1"))
	require.NoError(t, err)

	inv, err := env.inventories.Create(env.ctx, testCompanyID, testUserID, dto.CreateInventoryRequest{Name: "Conteo", WarehouseID: env.wh1.ID})
	require.NoError(t, err)
	require.Len(t, inv.Lines, 1)
	inv, err = env.inventories.Start(env.ctx, testCompanyID, inv.ID)
	require.NoError(t, err)
	inv = countLine(t, env, inv, "p1", "15")
	require.True(t, inv.Lines[0].Difference().Equal(d("-5")))

	_, err = env.inventories.Validate(env.ctx, testCompanyID, testUserID, inv.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 1, domain.LineOf(err))
	env.requireLevel(t, "p1", env.loc1.ID, "20", "10")

	_, err = env.reservations.Release(env.ctx, testCompanyID, testUserID, r.ID)
	require.NoError(t, err)
	got, err := env.inventories.Validate(env.ctx, testCompanyID, testUserID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InventoryStatusValidated, got.Status)
	env.requireLevel(t, "p1", env.loc1.ID, "15", "0")
}

// Un sobrante se ajusta aunque haya reservas en la clave.
func TestInventory_SobranteConReservasSeAjusta(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "20")
	_, err := env.reservations.Reserve(env.ctx, testCompanyID, testUserID, reserveReq("p1", env.loc1.ID, "10", "SO-1"))
	require.NoError(t, err)

	inv, err := env.inventories.Create(env.ctx, testCompanyID, testUserID, dto.CreateInventoryRequest{Name: "Conteo", WarehouseID: env.wh1.ID})
	require.NoError(t, err)
	inv, err = env.inventories.Start(env.ctx, testCompanyID, inv.ID)
	require.NoError(t, err)
	countLine(t, env, inv, "p1", "22")

	_, err = env.inventories.Validate(env.ctx, testCompanyID, testUserID, inv.ID)
	require.NoError(t, err)
	env.requireLevel(t, "p1", env.loc1.ID, "22", "10")
}

func TestInventory_LineasManuales(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1")
	env.receive(t, "p1", env.loc1.ID, "4")

	inv, err := env.inventories.Create(env.ctx, testCompanyID, testUserID, dto.CreateInventoryRequest{Name: "Manual", WarehouseID: env.wh1.ID, Empty: true})
	require.NoError(t, err)
	assert.Empty(t, inv.Lines)

	inv, err = env.inventories.AddLine(env.ctx, testCompanyID, inv.ID, dto.AddInventoryLineRequest{ProductID: "p1", LocationID: env.loc1.ID})
	require.NoError(t, err)
	require.Len(t, inv.Lines, 1)
	assert.True(t, inv.Lines[0].ExpectedQuantity.Equal(d("4")))
	assert.Nil(t, inv.Lines[0].Difference(), "sin conteo no hay diferencia")

	_, err = env.inventories.AddLine(env.ctx, testCompanyID, inv.ID, dto.AddInventoryLineRequest{ProductID: "p1", LocationID: env.loc1.ID})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "clave repetida")

	_, err = env.inventories.AddLine(env.ctx, testCompanyID, inv.ID, dto.AddInventoryLineRequest{ProductID: "p1", LocationID: env.loc2.ID})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "ubicación de otra bodega")

	_, err = env.inventories.UpdateLine(env.ctx, testCompanyID, inv.ID, inv.Lines[0].ID, dto.UpdateInventoryLineRequest{CountedQuantity: d("1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "solo se cuenta en curso")

	_, err = env.inventories.Start(env.ctx, testCompanyID, inv.ID)
	require.NoError(t, err)
	_, err = env.inventories.UpdateLine(env.ctx, testCompanyID, inv.ID, inv.Lines[0].ID, dto.UpdateInventoryLineRequest{CountedQuantity: d("-1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	// Líneas sin contar se ignoran al validar.
	inv, err = env.inventories.Validate(env.ctx, testCompanyID, testUserID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InventoryStatusValidated, inv.Status)
	env.requireLevel(t, "p1", env.loc1.ID, "4", "0")
	assert.Contains(t, env.events.types(), stock.EventInventoryValidated)
}

func TestInventory_CancelarDesdeBorrador(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	inv, err := env.inventories.Create(env.ctx, testCompanyID, testUserID, dto.CreateInventoryRequest{Name: "X", WarehouseID: env.wh1.ID})
	require.NoError(t, err)

	inv, err = env.inventories.Cancel(env.ctx, testCompanyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InventoryStatusCancelled, inv.Status)

	_, err = env.inventories.Start(env.ctx, testCompanyID, inv.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}
