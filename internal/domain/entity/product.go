package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de producto. Solo los stockable participan en reposición y clasificación ABC.
const (
	ProductTypeStockable  = "stockable"
	ProductTypeConsumable = "consumable"
	ProductTypeService    = "service"
)

// Clasificaciones ABC.
const (
	ABCClassA = "A"
	ABCClassB = "B"
	ABCClassC = "C"
)

// Product representa un producto o SKU del catálogo.
// Cost es el costo promedio ponderado (CUMP) recalculado al validar entradas con costo.
type Product struct {
	ID                      string
	CompanyID               string
	SKU                     string // código único por empresa
	Name                    string
	Description             string
	CategoryID              string
	ProductType             string
	IsActive                bool
	Price                   decimal.Decimal
	Cost                    decimal.Decimal
	UnitMeasure             string
	MinStockLevel           decimal.Decimal
	ReorderPoint            decimal.Decimal
	ReorderQuantity         decimal.Decimal
	LeadTimeDays            int
	AverageDailyConsumption decimal.Decimal
	ABCClassification       string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsStockable indica si el producto lleva existencias.
func (p *Product) IsStockable() bool { return p.ProductType == ProductTypeStockable }

// IsValidProductType indica si t es un tipo conocido.
func IsValidProductType(t string) bool {
	switch t {
	case ProductTypeStockable, ProductTypeConsumable, ProductTypeService:
		return true
	}
	return false
}

// IsValidABC indica si c es una clasificación ABC válida.
func IsValidABC(c string) bool {
	return c == ABCClassA || c == ABCClassB || c == ABCClassC
}
