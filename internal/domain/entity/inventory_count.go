package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un inventario (conteo cíclico).
const (
	InventoryStatusDraft      = "draft"
	InventoryStatusInProgress = "in_progress"
	InventoryStatusValidated  = "validated"
	InventoryStatusCancelled  = "cancelled"
)

// Inventory sesión de conteo que concilia lo esperado con lo contado en una bodega.
type Inventory struct {
	ID          string
	CompanyID   string
	Reference   string
	Name        string
	WarehouseID string
	Status      string
	StartedAt   *time.Time
	CompletedAt *time.Time
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int
	Lines       []InventoryLine
}

// InventoryLine línea de conteo. ExpectedQuantity es una foto del ledger al agregar la línea.
type InventoryLine struct {
	ID string
	StockKey
	ExpectedQuantity     decimal.Decimal
	CountedQuantity      *decimal.Decimal
	Notes                string
	AdjustmentMovementID string
}

// Difference contado menos esperado; nil si la línea no fue contada.
func (l *InventoryLine) Difference() *decimal.Decimal {
	if l.CountedQuantity == nil {
		return nil
	}
	d := l.CountedQuantity.Sub(l.ExpectedQuantity)
	return &d
}

// AcceptsLines indica si el inventario admite nuevas líneas.
func (i *Inventory) AcceptsLines() bool {
	return i.Status == InventoryStatusDraft || i.Status == InventoryStatusInProgress
}

// Line busca una línea por ID.
func (i *Inventory) Line(id string) (*InventoryLine, int) {
	for idx := range i.Lines {
		if i.Lines[idx].ID == id {
			return &i.Lines[idx], idx
		}
	}
	return nil, -1
}

// HasKey indica si ya existe una línea para la clave.
func (i *Inventory) HasKey(k StockKey) bool {
	for idx := range i.Lines {
		if i.Lines[idx].StockKey == k {
			return true
		}
	}
	return false
}

// CloneLines copia las líneas.
func (i *Inventory) CloneLines() []InventoryLine {
	out := make([]InventoryLine, len(i.Lines))
	copy(out, i.Lines)
	return out
}
