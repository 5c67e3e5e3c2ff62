package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Tipos de movimiento de stock.
const (
	MovementTypeIn         = "in"         // entrada
	MovementTypeOut        = "out"        // salida
	MovementTypeTransfer   = "transfer"   // entre ubicaciones
	MovementTypeAdjustment = "adjustment" // ajuste (destino = aumento, origen = disminución)
)

// Estados de un movimiento.
const (
	MovementStatusDraft     = "draft"
	MovementStatusValidated = "validated"
	MovementStatusCancelled = "cancelled"
)

// Origen de movimientos emitidos por otros procesos.
const (
	OriginTransfer  = "transfer"
	OriginInventory = "inventory"
)

// StockMovement cambio atómico y tipado de la cantidad física en una o dos ubicaciones.
// Solo afecta el ledger al pasar a validated; cancelar desde validated aplica el delta inverso.
type StockMovement struct {
	ID                    string
	CompanyID             string
	Reference             string
	Type                  string
	ProductID             string
	LotID                 string
	SourceLocationID      string
	DestinationLocationID string
	Quantity              decimal.Decimal
	UnitCost              *decimal.Decimal
	Status                string
	Reason                string
	Notes                 string
	OriginType            string
	OriginID              string
	CreatedAt             time.Time
	CreatedBy             string
	ValidatedAt           *time.Time
	ValidatedBy           string
	CancelledAt           *time.Time
	Version               int
}

// StockDelta variación de cantidad física sobre una clave.
type StockDelta struct {
	Key      StockKey
	Quantity decimal.Decimal
}

// IsValidMovementType indica si t es un tipo conocido.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeTransfer, MovementTypeAdjustment:
		return true
	}
	return false
}

// CheckEndpoints valida cantidad y ubicaciones requeridas según el tipo.
func (m *StockMovement) CheckEndpoints() error {
	if m.ProductID == "" {
		return domain.Invalid("product_id es requerido")
	}
	if !m.Quantity.IsPositive() {
		return domain.Invalid("la cantidad debe ser positiva")
	}
	if m.UnitCost != nil && m.UnitCost.IsNegative() {
		return domain.Invalid("unit_cost no puede ser negativo")
	}
	switch m.Type {
	case MovementTypeIn:
		if m.DestinationLocationID == "" {
			return domain.Invalid("ubicación destino requerida para una entrada")
		}
		if m.SourceLocationID != "" {
			return domain.Invalid("una entrada no admite ubicación origen")
		}
	case MovementTypeOut:
		if m.SourceLocationID == "" {
			return domain.Invalid("ubicación origen requerida para una salida")
		}
		if m.DestinationLocationID != "" {
			return domain.Invalid("una salida no admite ubicación destino")
		}
	case MovementTypeTransfer:
		if m.SourceLocationID == "" || m.DestinationLocationID == "" {
			return domain.Invalid("origen y destino requeridos para un traslado")
		}
		if m.SourceLocationID == m.DestinationLocationID {
			return domain.Invalid("origen y destino deben ser distintos")
		}
	case MovementTypeAdjustment:
		hasSrc, hasDst := m.SourceLocationID != "", m.DestinationLocationID != ""
		if hasSrc == hasDst {
			return domain.Invalid("un ajuste requiere exactamente una ubicación: destino (aumento) u origen (disminución)")
		}
	default:
		return domain.Invalid("tipo de movimiento desconocido: %q", m.Type)
	}
	return nil
}

// Deltas devuelve los deltas exactos que aplica la validación. Cancelar aplica su negación.
func (m *StockMovement) Deltas() []StockDelta {
	src := StockKey{ProductID: m.ProductID, LocationID: m.SourceLocationID, LotID: m.LotID}
	dst := StockKey{ProductID: m.ProductID, LocationID: m.DestinationLocationID, LotID: m.LotID}
	switch m.Type {
	case MovementTypeIn:
		return []StockDelta{{Key: dst, Quantity: m.Quantity}}
	case MovementTypeOut:
		return []StockDelta{{Key: src, Quantity: m.Quantity.Neg()}}
	case MovementTypeTransfer:
		return []StockDelta{{Key: src, Quantity: m.Quantity.Neg()}, {Key: dst, Quantity: m.Quantity}}
	case MovementTypeAdjustment:
		if m.DestinationLocationID != "" {
			return []StockDelta{{Key: dst, Quantity: m.Quantity}}
		}
		return []StockDelta{{Key: src, Quantity: m.Quantity.Neg()}}
	}
	return nil
}

// IsDraft, IsValidated y IsCancelled atajos de estado.
func (m *StockMovement) IsDraft() bool     { return m.Status == MovementStatusDraft }
func (m *StockMovement) IsValidated() bool { return m.Status == MovementStatusValidated }
func (m *StockMovement) IsCancelled() bool { return m.Status == MovementStatusCancelled }
