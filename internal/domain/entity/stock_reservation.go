package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva.
const (
	ReservationStatusActive   = "active"
	ReservationStatusReleased = "released"
	ReservationStatusExpired  = "expired"
)

// StockReservation reclamo blando sobre la cantidad disponible; no mueve stock físico.
// Mientras está active suma Quantity al reserved_quantity de su clave.
type StockReservation struct {
	ID        string
	CompanyID string
	StockKey
	Quantity       decimal.Decimal
	ReferenceType  string
	ReferenceID    string
	ReferenceLabel string
	Status         string
	ExpiryDate     *time.Time
	ReservedBy     string
	CreatedAt      time.Time
	ReleasedAt     *time.Time
}

// IsActive indica si la reserva todavía retiene cantidad.
func (r *StockReservation) IsActive() bool { return r.Status == ReservationStatusActive }

// IsExpiredAt indica si la reserva activa venció en now.
func (r *StockReservation) IsExpiredAt(now time.Time) bool {
	return r.IsActive() && r.ExpiryDate != nil && !r.ExpiryDate.After(now)
}
