package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateReservationRequest body para POST /api/stock/reservations.
type CreateReservationRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	LocationID     string          `json:"location_id" validate:"required"`
	LotID          string          `json:"lot_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	ReferenceType  string          `json:"reference_type" validate:"required,max=50"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	ReferenceLabel string          `json:"reference_label,omitempty" validate:"max=200"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
}

// ReleaseByReferenceRequest body para liberar todas las reservas de una referencia externa.
type ReleaseByReferenceRequest struct {
	ReferenceType string `json:"reference_type" validate:"required"`
	ReferenceID   string `json:"reference_id" validate:"required"`
}

// ReservationListRequest filtros de GET /api/stock/reservations.
type ReservationListRequest struct {
	Status        string `query:"status" validate:"omitempty,oneof=active released expired"`
	ProductID     string `query:"product_id"`
	LocationID    string `query:"location_id"`
	ReferenceType string `query:"reference_type"`
	ReferenceID   string `query:"reference_id"`
	PageRequest
}

// ReservationResponse salida de una reserva.
type ReservationResponse struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	ProductID      string          `json:"product_id"`
	LocationID     string          `json:"location_id"`
	LotID          string          `json:"lot_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	ReferenceLabel string          `json:"reference_label,omitempty"`
	Status         string          `json:"status"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
	ReservedBy     string          `json:"reserved_by"`
	CreatedAt      time.Time       `json:"created_at"`
	ReleasedAt     *time.Time      `json:"released_at,omitempty"`
}

// ReservationListResponse lista paginada de reservas.
type ReservationListResponse struct {
	Items []ReservationResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// NewReservationResponse mapea la entidad a la salida HTTP.
func NewReservationResponse(r *entity.StockReservation) ReservationResponse {
	return ReservationResponse{
		ID:             r.ID,
		CompanyID:      r.CompanyID,
		ProductID:      r.ProductID,
		LocationID:     r.LocationID,
		LotID:          r.LotID,
		Quantity:       r.Quantity,
		ReferenceType:  r.ReferenceType,
		ReferenceID:    r.ReferenceID,
		ReferenceLabel: r.ReferenceLabel,
		Status:         r.Status,
		ExpiryDate:     r.ExpiryDate,
		ReservedBy:     r.ReservedBy,
		CreatedAt:      r.CreatedAt,
		ReleasedAt:     r.ReleasedAt,
	}
}

// NewReservationListResponse mapea una página de reservas.
func NewReservationListResponse(list []*entity.StockReservation, total int, page PageRequest) ReservationListResponse {
	items := make([]ReservationResponse, 0, len(list))
	for _, r := range list {
		items = append(items, NewReservationResponse(r))
	}
	return ReservationListResponse{Items: items, Page: PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total}}
}
