package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un traslado entre bodegas.
const (
	TransferStatusDraft     = "draft"
	TransferStatusValidated = "validated"
	TransferStatusInTransit = "in_transit"
	TransferStatusReceived  = "received"
	TransferStatusCancelled = "cancelled"
)

// StockTransfer flujo entre dos bodegas: se descuenta en origen al validar y se ingresa en destino al recibir.
// Es dueño de sus líneas.
type StockTransfer struct {
	ID                     string
	CompanyID              string
	Reference              string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Status                 string
	TransferDate           time.Time
	ExpectedArrivalDate    *time.Time
	ActualArrivalDate      *time.Time
	Transporter            string
	TrackingNumber         string
	Notes                  string
	CreatedBy              string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	Version                int
	Lines                  []TransferLine
}

// TransferLine línea de traslado. QuantityReceived es nil hasta que se registra la recepción.
type TransferLine struct {
	ID               string
	ProductID        string
	LotID            string
	QuantitySent     decimal.Decimal
	QuantityReceived *decimal.Decimal
	OutMovementID    string
	InMovementID     string
}

// Variance recibido menos enviado; nil mientras no se haya recibido.
func (l *TransferLine) Variance() *decimal.Decimal {
	if l.QuantityReceived == nil {
		return nil
	}
	v := l.QuantityReceived.Sub(l.QuantitySent)
	return &v
}

// IsReceived indica si la línea tiene cantidad recibida registrada.
func (l *TransferLine) IsReceived() bool { return l.QuantityReceived != nil }

// Line busca una línea por ID.
func (t *StockTransfer) Line(id string) (*TransferLine, int) {
	for i := range t.Lines {
		if t.Lines[i].ID == id {
			return &t.Lines[i], i
		}
	}
	return nil, -1
}

// AllReceived indica si todas las líneas tienen recepción registrada.
func (t *StockTransfer) AllReceived() bool {
	for i := range t.Lines {
		if !t.Lines[i].IsReceived() {
			return false
		}
	}
	return len(t.Lines) > 0
}

// AnyReceived indica si al menos una línea fue recibida.
func (t *StockTransfer) AnyReceived() bool {
	for i := range t.Lines {
		if t.Lines[i].IsReceived() {
			return true
		}
	}
	return false
}

// StockDeducted indica si el stock de origen ya fue descontado (validated o in_transit).
func (t *StockTransfer) StockDeducted() bool {
	return t.Status == TransferStatusValidated || t.Status == TransferStatusInTransit
}

// CloneLines copia las líneas para que el llamador no comparta el slice.
func (t *StockTransfer) CloneLines() []TransferLine {
	out := make([]TransferLine, len(t.Lines))
	copy(out, t.Lines)
	return out
}
