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

func TestCycle_GenerarPorClase(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	cycles, err := env.cycles.Generate(env.ctx, testCompanyID, dto.GenerateCyclesRequest{WarehouseID: env.wh1.ID, StartDate: from, EndDate: to})
	require.NoError(t, err)

	perClass := map[string]int{}
	for _, c := range cycles {
		perClass[c.Classification]++
		assert.Equal(t, entity.CycleStatusPlanned, c.Status)
	}
	assert.Equal(t, map[string]int{"A": 6, "B": 2, "C": 1}, perClass)
	assert.Equal(t, "Conteo A WH1 2024-01-01", cycles[0].Name)

	listed, total, err := env.cycles.List(env.ctx, testCompanyID, repository.CycleFilter{Classification: "B"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.True(t, listed[0].StartDate.Before(listed[1].StartDate))

	_, err = env.cycles.Generate(env.ctx, testCompanyID, dto.GenerateCyclesRequest{WarehouseID: env.wh1.ID, StartDate: to, EndDate: from})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCycle_IniciarContarYCompletar(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1", func(p *entity.Product) { p.ABCClassification = entity.ABCClassA })
	env.seedProduct(t, "p2", "SKU-2", func(p *entity.Product) { p.ABCClassification = entity.ABCClassC })
	env.receive(t, "p1", env.loc1.ID, "3")
	env.receive(t, "p2", env.loc1.ID, "3")

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := env.cycles.Create(env.ctx, testCompanyID, dto.CreateCycleRequest{
		Name: "Clase A enero", Frequency: entity.CycleFrequencyMonthly, Classification: entity.ABCClassA,
		WarehouseID: env.wh1.ID, StartDate: from, EndDate: from.AddDate(0, 1, -1),
	})
	require.NoError(t, err)

	c, err = env.cycles.Start(env.ctx, testCompanyID, testUserID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CycleStatusInProgress, c.Status)
	require.NotEmpty(t, c.InventoryID)

	inv, err := env.inventories.Get(env.ctx, testCompanyID, c.InventoryID)
	require.NoError(t, err)
	assert.Equal(t, entity.InventoryStatusInProgress, inv.Status)
	require.Len(t, inv.Lines, 1, "solo productos de la clase del ciclo")
	assert.Equal(t, "p1", inv.Lines[0].ProductID)

	_, err = env.cycles.Complete(env.ctx, testCompanyID, c.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "el inventario aún no está validado")

	countLine(t, env, inv, "p1", "2")
	_, err = env.inventories.Validate(env.ctx, testCompanyID, testUserID, inv.ID)
	require.NoError(t, err)
	env.requireLevel(t, "p1", env.loc1.ID, "2", "0")

	c, err = env.cycles.Complete(env.ctx, testCompanyID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CycleStatusCompleted, c.Status)

	_, err = env.cycles.Cancel(env.ctx, testCompanyID, c.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

// Un ciclo en curso cuyo inventario se canceló puede cancelarse; con el inventario activo no.
func TestCycle_CancelarEnCursoTrasCancelarInventario(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	env.seedProduct(t, "p1", "SKU-1", func(p *entity.Product) { p.ABCClassification = entity.ABCClassA })
	env.receive(t, "p1", env.loc1.ID, "3")

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := env.cycles.Create(env.ctx, testCompanyID, dto.CreateCycleRequest{
		Name: "Clase A enero", Frequency: entity.CycleFrequencyMonthly, Classification: entity.ABCClassA,
		WarehouseID: env.wh1.ID, StartDate: from, EndDate: from.AddDate(0, 1, -1),
	})
	require.NoError(t, err)
	c, err = env.cycles.Start(env.ctx, testCompanyID, testUserID, c.ID)
	require.NoError(t, err)

	_, err = env.cycles.Cancel(env.ctx, testCompanyID, c.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "el inventario sigue en curso")

	_, err = env.inventories.Cancel(env.ctx, testCompanyID, c.InventoryID)
	require.NoError(t, err)
	_, err = env.cycles.Complete(env.ctx, testCompanyID, c.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	c, err = env.cycles.Cancel(env.ctx, testCompanyID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CycleStatusCancelled, c.Status)
	env.requireLevel(t, "p1", env.loc1.ID, "3", "0")
}

func TestCycle_ValidacionesDeEntrada(t *testing.T) {
	env := newTestEnv(t, stock.DefaultPolicy())
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := env.cycles.Create(env.ctx, testCompanyID, dto.CreateCycleRequest{
		Name: "X", Frequency: "weekly", WarehouseID: env.wh1.ID, StartDate: from, EndDate: from,
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = env.cycles.Create(env.ctx, testCompanyID, dto.CreateCycleRequest{
		Name: "X", Frequency: entity.CycleFrequencyYearly, WarehouseID: "no-existe", StartDate: from, EndDate: from,
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	c, err := env.cycles.Create(env.ctx, testCompanyID, dto.CreateCycleRequest{
		Name: "X", Frequency: entity.CycleFrequencyYearly, WarehouseID: env.wh1.ID, StartDate: from, EndDate: from,
	})
	require.NoError(t, err)
	c, err = env.cycles.Cancel(env.ctx, testCompanyID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CycleStatusCancelled, c.Status)
}
