package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AvailableRequest query de GET /api/stock/levels/available.
type AvailableRequest struct {
	ProductID  string `query:"product_id" validate:"required"`
	LocationID string `query:"location_id" validate:"required"`
	LotID      string `query:"lot_id"`
}

// LevelListRequest query de GET /api/stock/levels; se requiere uno de los dos filtros.
type LevelListRequest struct {
	LocationID string `query:"location_id" validate:"required_without=ProductID"`
	ProductID  string `query:"product_id" validate:"required_without=LocationID"`
}

// StockLevelResponse fila del ledger.
type StockLevelResponse struct {
	ProductID        string          `json:"product_id"`
	LocationID       string          `json:"location_id"`
	LotID            string          `json:"lot_id,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	Available        decimal.Decimal `json:"available_quantity"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewStockLevelResponse mapea una fila.
func NewStockLevelResponse(l *entity.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ProductID:        l.ProductID,
		LocationID:       l.LocationID,
		LotID:            l.LotID,
		Quantity:         l.Quantity,
		ReservedQuantity: l.ReservedQuantity,
		Available:        l.Available(),
		UpdatedAt:        l.UpdatedAt,
	}
}

// NewStockLevelList mapea varias filas.
func NewStockLevelList(list []*entity.StockLevel) []StockLevelResponse {
	out := make([]StockLevelResponse, 0, len(list))
	for _, l := range list {
		out = append(out, NewStockLevelResponse(l))
	}
	return out
}
