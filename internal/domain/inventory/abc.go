package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductValue valor de consumo de un producto en la ventana de análisis.
type ProductValue struct {
	ProductID string
	Value     decimal.Decimal
}

// ClassifyABC asigna A/B/C por porcentaje acumulado del valor total, de mayor a menor.
// Un producto es A mientras el acumulado previo esté por debajo de cutoffA (el primero siempre es A),
// B por debajo de cutoffB y C en otro caso. Sin valor total todos quedan en C.
func ClassifyABC(values []ProductValue, cutoffA, cutoffB decimal.Decimal) map[string]string {
	sorted := make([]ProductValue, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Value.Equal(sorted[j].Value) {
			return sorted[i].Value.GreaterThan(sorted[j].Value)
		}
		return sorted[i].ProductID < sorted[j].ProductID
	})

	total := decimal.Zero
	for _, v := range sorted {
		if v.Value.IsPositive() {
			total = total.Add(v.Value)
		}
	}

	out := make(map[string]string, len(sorted))
	if !total.IsPositive() {
		for _, v := range sorted {
			out[v.ProductID] = entity.ABCClassC
		}
		return out
	}

	cumulative := decimal.Zero
	for _, v := range sorted {
		before := cumulative.Div(total)
		if v.Value.IsPositive() {
			cumulative = cumulative.Add(v.Value)
		}
		switch {
		case !v.Value.IsPositive():
			out[v.ProductID] = entity.ABCClassC
		case before.LessThan(cutoffA):
			out[v.ProductID] = entity.ABCClassA
		case before.LessThan(cutoffB):
			out[v.ProductID] = entity.ABCClassB
		default:
			out[v.ProductID] = entity.ABCClassC
		}
	}
	return out
}
