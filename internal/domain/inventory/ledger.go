package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ApplyDelta aplica deltas de cantidad física y reservada sobre la fila.
// La fila solo se modifica si el resultado respeta 0 <= reservado <= físico;
// allowNegative relaja únicamente físico >= 0 (y entonces reservado debe ser 0).
func ApplyDelta(level *entity.StockLevel, quantityDelta, reservedDelta decimal.Decimal, allowNegative bool) error {
	q := level.Quantity.Add(quantityDelta)
	r := level.ReservedQuantity.Add(reservedDelta)
	if r.IsNegative() {
		return domain.InvalidState("cantidad reservada negativa en %s", level.Key())
	}
	if q.IsNegative() && !allowNegative {
		return domain.Insufficient("stock insuficiente en %s: disponible %s, requerido %s",
			level.Key(), level.Available().String(), quantityDelta.Neg().String())
	}
	if r.IsPositive() && r.GreaterThan(q) {
		if reservedDelta.IsPositive() {
			return domain.Insufficient("disponible insuficiente para reservar en %s: disponible %s, solicitado %s",
				level.Key(), level.Available().String(), reservedDelta.String())
		}
		return domain.Insufficient("la operación dejaría reservas sin respaldo en %s: disponible %s, requerido %s",
			level.Key(), level.Available().String(), quantityDelta.Neg().String())
	}
	level.Quantity = q
	level.ReservedQuantity = r
	return nil
}
