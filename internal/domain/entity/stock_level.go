package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica una fila del ledger: producto, ubicación y lote ("" = sin lote).
type StockKey struct {
	ProductID  string
	LocationID string
	LotID      string
}

// String representación estable para logs y claves de caché.
func (k StockKey) String() string {
	return k.ProductID + ":" + k.LocationID + ":" + k.LotID
}

// Less orden canónico; las operaciones multiclave bloquean filas en este orden para evitar deadlocks.
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	if k.LocationID != o.LocationID {
		return k.LocationID < o.LocationID
	}
	return k.LotID < o.LotID
}

// SortedKeys devuelve las claves sin duplicados y en orden canónico.
func SortedKeys(keys []StockKey) []StockKey {
	seen := make(map[StockKey]struct{}, len(keys))
	out := make([]StockKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// StockLevel cantidad física y reservada de un producto en una ubicación/lote.
// Invariante: 0 <= ReservedQuantity <= Quantity. Se crea en (0,0) y nunca se borra.
type StockLevel struct {
	CompanyID string
	StockKey
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	UpdatedAt        time.Time
}

// Key devuelve la clave de la fila.
func (s *StockLevel) Key() StockKey { return s.StockKey }

// Available cantidad comprometible: físico menos reservado.
func (s *StockLevel) Available() decimal.Decimal {
	return s.Quantity.Sub(s.ReservedQuantity)
}

// NewStockLevel fila vacía para una clave.
func NewStockLevel(companyID string, key StockKey) *StockLevel {
	return &StockLevel{CompanyID: companyID, StockKey: key, Quantity: decimal.Zero, ReservedQuantity: decimal.Zero}
}

// StockTotals agregados por producto (sumando ubicaciones y lotes).
type StockTotals struct {
	Quantity decimal.Decimal
	Reserved decimal.Decimal
}

// Available total disponible.
func (t StockTotals) Available() decimal.Decimal { return t.Quantity.Sub(t.Reserved) }
