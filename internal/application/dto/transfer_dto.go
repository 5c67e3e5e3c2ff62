package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferLineRequest línea de un traslado.
type TransferLineRequest struct {
	ProductID    string          `json:"product_id" validate:"required"`
	LotID        string          `json:"lot_id,omitempty"`
	QuantitySent decimal.Decimal `json:"quantity_sent"`
}

// CreateTransferRequest body para POST /api/stock/transfers.
type CreateTransferRequest struct {
	SourceWarehouseID      string                `json:"source_warehouse_id" validate:"required"`
	DestinationWarehouseID string                `json:"destination_warehouse_id" validate:"required,nefield=SourceWarehouseID"`
	TransferDate           *time.Time            `json:"transfer_date,omitempty"`
	ExpectedArrivalDate    *time.Time            `json:"expected_arrival_date,omitempty"`
	Notes                  string                `json:"notes,omitempty"`
	Lines                  []TransferLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateTransferRequest edición de un traslado en borrador; Lines reemplaza todas las líneas.
type UpdateTransferRequest struct {
	ExpectedArrivalDate *time.Time            `json:"expected_arrival_date"`
	Notes               *string               `json:"notes"`
	Lines               []TransferLineRequest `json:"lines" validate:"omitempty,min=1,dive"`
}

// ShipTransferRequest body para POST /transfers/:id/ship.
type ShipTransferRequest struct {
	Transporter    string `json:"transporter,omitempty" validate:"max=200"`
	TrackingNumber string `json:"tracking_number,omitempty" validate:"max=100"`
}

// ReceiveLineRequest cantidad recibida para una línea.
type ReceiveLineRequest struct {
	LineID           string          `json:"line_id" validate:"required"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
}

// ReceiveTransferRequest body para POST /transfers/:id/receive.
type ReceiveTransferRequest struct {
	Lines []ReceiveLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// TransferListRequest filtros de GET /api/stock/transfers.
type TransferListRequest struct {
	Status      string `query:"status" validate:"omitempty,oneof=draft validated in_transit received cancelled"`
	WarehouseID string `query:"warehouse_id"`
	Search      string `query:"search"`
	PageRequest
}

// TransferLineResponse salida de una línea.
type TransferLineResponse struct {
	ID               string           `json:"id"`
	ProductID        string           `json:"product_id"`
	LotID            string           `json:"lot_id,omitempty"`
	QuantitySent     decimal.Decimal  `json:"quantity_sent"`
	QuantityReceived *decimal.Decimal `json:"quantity_received,omitempty"`
	Variance         *decimal.Decimal `json:"variance,omitempty"`
	OutMovementID    string           `json:"out_movement_id,omitempty"`
	InMovementID     string           `json:"in_movement_id,omitempty"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	CompanyID              string                 `json:"company_id"`
	Reference              string                 `json:"reference"`
	SourceWarehouseID      string                 `json:"source_warehouse_id"`
	DestinationWarehouseID string                 `json:"destination_warehouse_id"`
	Status                 string                 `json:"status"`
	TransferDate           time.Time              `json:"transfer_date"`
	ExpectedArrivalDate    *time.Time             `json:"expected_arrival_date,omitempty"`
	ActualArrivalDate      *time.Time             `json:"actual_arrival_date,omitempty"`
	Transporter            string                 `json:"transporter,omitempty"`
	TrackingNumber         string                 `json:"tracking_number,omitempty"`
	Notes                  string                 `json:"notes,omitempty"`
	CreatedBy              string                 `json:"created_by"`
	CreatedAt              time.Time              `json:"created_at"`
	Lines                  []TransferLineResponse `json:"lines"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// NewTransferResponse mapea la entidad con sus líneas.
func NewTransferResponse(t *entity.StockTransfer) TransferResponse {
	lines := make([]TransferLineResponse, 0, len(t.Lines))
	for i := range t.Lines {
		l := &t.Lines[i]
		lines = append(lines, TransferLineResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			LotID:            l.LotID,
			QuantitySent:     l.QuantitySent,
			QuantityReceived: l.QuantityReceived,
			Variance:         l.Variance(),
			OutMovementID:    l.OutMovementID,
			InMovementID:     l.InMovementID,
		})
	}
	return TransferResponse{
		ID:                     t.ID,
		CompanyID:              t.CompanyID,
		Reference:              t.Reference,
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		Status:                 t.Status,
		TransferDate:           t.TransferDate,
		ExpectedArrivalDate:    t.ExpectedArrivalDate,
		ActualArrivalDate:      t.ActualArrivalDate,
		Transporter:            t.Transporter,
		TrackingNumber:         t.TrackingNumber,
		Notes:                  t.Notes,
		CreatedBy:              t.CreatedBy,
		CreatedAt:              t.CreatedAt,
		Lines:                  lines,
	}
}

// NewTransferListResponse mapea una página de traslados.
func NewTransferListResponse(list []*entity.StockTransfer, total int, page PageRequest) TransferListResponse {
	items := make([]TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, NewTransferResponse(t))
	}
	return TransferListResponse{Items: items, Page: PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total}}
}
