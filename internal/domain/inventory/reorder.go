package inventory

import (
	"github.com/shopspring/decimal"
)

// AverageDailyConsumption consumo total dividido por los días de la ventana, a 4 decimales.
func AverageDailyConsumption(total decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(days))).Round(4)
}

// ReorderPoint consumo diario × lead time + stock mínimo. Sin lead time no hay punto calculable.
func ReorderPoint(avgDaily decimal.Decimal, leadTimeDays int, minStock decimal.Decimal) (decimal.Decimal, bool) {
	if leadTimeDays <= 0 {
		return decimal.Zero, false
	}
	return avgDaily.Mul(decimal.NewFromInt(int64(leadTimeDays))).Add(minStock).Round(4), true
}

// SuggestedQuantity max(0, punto de reorden + cantidad de reorden − disponible).
func SuggestedQuantity(reorderPoint, reorderQuantity, available decimal.Decimal) decimal.Decimal {
	s := reorderPoint.Add(reorderQuantity).Sub(available)
	if s.IsNegative() {
		return decimal.Zero
	}
	return s
}

// Deficit déficit relativo (punto de reorden − disponible) / punto de reorden; mayor = más urgente.
func Deficit(reorderPoint, available decimal.Decimal) decimal.Decimal {
	if !reorderPoint.IsPositive() {
		return decimal.Zero
	}
	return reorderPoint.Sub(available).Div(reorderPoint)
}
