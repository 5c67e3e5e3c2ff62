package inventory

import "github.com/shopspring/decimal"

// CostCalculator costo promedio ponderado (CUMP) tras una entrada.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con stock previo negativo o cero el costo de la entrada reemplaza al anterior.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockActual.LessThanOrEqual(decimal.Zero) {
		if cantEntrada.IsPositive() {
			return costoEntrada
		}
		return costoActual
	}
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(4)
}
