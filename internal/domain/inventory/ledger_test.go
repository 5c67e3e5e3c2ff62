package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func level(q, r string) *entity.StockLevel {
	l := entity.NewStockLevel("c1", entity.StockKey{ProductID: "p", LocationID: "l"})
	l.Quantity = d(q)
	l.ReservedQuantity = d(r)
	return l
}

func TestApplyDelta_EntradaYSalida(t *testing.T) {
	l := level("0", "0")
	require.NoError(t, inventory.ApplyDelta(l, d("10"), decimal.Zero, false))
	require.NoError(t, inventory.ApplyDelta(l, d("-4"), decimal.Zero, false))
	assert.True(t, l.Quantity.Equal(d("6")))
}

func TestApplyDelta_SalidaSinStockNoModifica(t *testing.T) {
	l := level("3", "0")
	err := inventory.ApplyDelta(l, d("-5"), decimal.Zero, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, l.Quantity.Equal(d("3")), "la fila no debe cambiar ante un error")
}

func TestApplyDelta_ReservaNoSuperaFisico(t *testing.T) {
	l := level("10", "0")
	require.NoError(t, inventory.ApplyDelta(l, decimal.Zero, d("7"), false))
	err := inventory.ApplyDelta(l, decimal.Zero, d("4"), false)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	// Salida que invadiría lo reservado.
	err = inventory.ApplyDelta(l, d("-5"), decimal.Zero, false)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, l.Available().Equal(d("3")))
}

func TestApplyDelta_ReservadoNegativoEsEstadoInvalido(t *testing.T) {
	l := level("10", "2")
	err := inventory.ApplyDelta(l, decimal.Zero, d("-3"), false)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestApplyDelta_PermitirNegativo(t *testing.T) {
	l := level("1", "0")
	require.NoError(t, inventory.ApplyDelta(l, d("-3"), decimal.Zero, true))
	assert.True(t, l.Quantity.Equal(d("-2")))

	conReserva := level("5", "1")
	err := inventory.ApplyDelta(conReserva, d("-6"), decimal.Zero, true)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestCostCalculator(t *testing.T) {
	got := inventory.CostCalculator(d("10"), d("100"), d("10"), d("200"))
	assert.True(t, got.Equal(d("150")), got.String())

	sinStock := inventory.CostCalculator(decimal.Zero, d("100"), d("5"), d("80"))
	assert.True(t, sinStock.Equal(d("80")))
}

func TestClassifyABC(t *testing.T) {
	values := []inventory.ProductValue{
		{ProductID: "a", Value: d("700")},
		{ProductID: "b", Value: d("150")},
		{ProductID: "c", Value: d("100")},
		{ProductID: "d", Value: d("50")},
		{ProductID: "e", Value: decimal.Zero},
	}
	got := inventory.ClassifyABC(values, d("0.80"), d("0.95"))
	assert.Equal(t, map[string]string{"a": "A", "b": "A", "c": "B", "d": "C", "e": "C"}, got)
}

func TestClassifyABC_SinConsumo(t *testing.T) {
	got := inventory.ClassifyABC([]inventory.ProductValue{{ProductID: "x"}}, d("0.8"), d("0.95"))
	assert.Equal(t, "C", got["x"])
}

func TestReorderPoint(t *testing.T) {
	rp, ok := inventory.ReorderPoint(d("2.5"), 4, d("5"))
	require.True(t, ok)
	assert.True(t, rp.Equal(d("15")))

	_, ok = inventory.ReorderPoint(d("2.5"), 0, d("5"))
	assert.False(t, ok)
}

func TestSuggestedQuantity(t *testing.T) {
	assert.True(t, inventory.SuggestedQuantity(d("10"), d("20"), d("4")).Equal(d("26")))
	assert.True(t, inventory.SuggestedQuantity(d("10"), d("0"), d("15")).IsZero())
}
