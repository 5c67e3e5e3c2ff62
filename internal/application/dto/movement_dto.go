package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateMovementRequest body para POST /api/stock/movements.
type CreateMovementRequest struct {
	Type                  string           `json:"type" validate:"required,oneof=in out transfer adjustment"`
	ProductID             string           `json:"product_id" validate:"required"`
	LotID                 string           `json:"lot_id,omitempty"`
	SourceLocationID      string           `json:"source_location_id,omitempty"`
	DestinationLocationID string           `json:"destination_location_id,omitempty"`
	Quantity              decimal.Decimal  `json:"quantity"`
	UnitCost              *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason                string           `json:"reason,omitempty" validate:"max=500"`
	Notes                 string           `json:"notes,omitempty"`
}

// UpdateMovementRequest campos editables de un movimiento en borrador.
type UpdateMovementRequest struct {
	LotID                 *string          `json:"lot_id"`
	SourceLocationID      *string          `json:"source_location_id"`
	DestinationLocationID *string          `json:"destination_location_id"`
	Quantity              *decimal.Decimal `json:"quantity"`
	UnitCost              *decimal.Decimal `json:"unit_cost"`
	Reason                *string          `json:"reason" validate:"omitempty,max=500"`
	Notes                 *string          `json:"notes"`
}

// MovementListRequest filtros de GET /api/stock/movements.
type MovementListRequest struct {
	Type       string `query:"type" validate:"omitempty,oneof=in out transfer adjustment"`
	Status     string `query:"status" validate:"omitempty,oneof=draft validated cancelled"`
	ProductID  string `query:"product_id"`
	LocationID string `query:"location_id"`
	Search     string `query:"search"`
	PageRequest
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID                    string           `json:"id"`
	CompanyID             string           `json:"company_id"`
	Reference             string           `json:"reference"`
	Type                  string           `json:"movement_type"`
	ProductID             string           `json:"product_id"`
	LotID                 string           `json:"lot_id,omitempty"`
	SourceLocationID      string           `json:"source_location_id,omitempty"`
	DestinationLocationID string           `json:"destination_location_id,omitempty"`
	Quantity              decimal.Decimal  `json:"quantity"`
	UnitCost              *decimal.Decimal `json:"unit_cost,omitempty"`
	Status                string           `json:"status"`
	Reason                string           `json:"reason,omitempty"`
	Notes                 string           `json:"notes,omitempty"`
	OriginType            string           `json:"origin_type,omitempty"`
	OriginID              string           `json:"origin_id,omitempty"`
	CreatedBy             string           `json:"created_by"`
	CreatedAt             time.Time        `json:"created_at"`
	ValidatedAt           *time.Time       `json:"validated_at,omitempty"`
	CancelledAt           *time.Time       `json:"cancelled_at,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// NewMovementResponse mapea la entidad a la salida HTTP.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                    m.ID,
		CompanyID:             m.CompanyID,
		Reference:             m.Reference,
		Type:                  m.Type,
		ProductID:             m.ProductID,
		LotID:                 m.LotID,
		SourceLocationID:      m.SourceLocationID,
		DestinationLocationID: m.DestinationLocationID,
		Quantity:              m.Quantity,
		UnitCost:              m.UnitCost,
		Status:                m.Status,
		Reason:                m.Reason,
		Notes:                 m.Notes,
		OriginType:            m.OriginType,
		OriginID:              m.OriginID,
		CreatedBy:             m.CreatedBy,
		CreatedAt:             m.CreatedAt,
		ValidatedAt:           m.ValidatedAt,
		CancelledAt:           m.CancelledAt,
	}
}

// NewMovementListResponse mapea una página de movimientos.
func NewMovementListResponse(list []*entity.StockMovement, total int, page PageRequest) MovementListResponse {
	items := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, NewMovementResponse(m))
	}
	return MovementListResponse{Items: items, Page: PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total}}
}
