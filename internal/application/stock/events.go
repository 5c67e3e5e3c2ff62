package stock

import "time"

// Tipos de evento publicados por el núcleo de stock.
const (
	EventMovementValidated   = "stock.movement.validated"
	EventMovementCancelled   = "stock.movement.cancelled"
	EventReservationCreated  = "stock.reservation.created"
	EventReservationReleased = "stock.reservation.released"
	EventReservationExpired  = "stock.reservation.expired"
	EventTransferValidated   = "stock.transfer.validated"
	EventTransferShipped     = "stock.transfer.shipped"
	EventTransferReceived    = "stock.transfer.received"
	EventTransferCancelled   = "stock.transfer.cancelled"
	EventInventoryValidated  = "stock.inventory.validated"
	EventClassificationDone  = "stock.abc.recomputed"
)

// Event evento de dominio; AggregateID es la clave de partición en el broker.
type Event struct {
	Type        string         `json:"type"`
	CompanyID   string         `json:"company_id"`
	AggregateID string         `json:"aggregate_id"`
	Reference   string         `json:"reference,omitempty"`
	UserID      string         `json:"user_id,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Data        map[string]any `json:"data,omitempty"`
}
