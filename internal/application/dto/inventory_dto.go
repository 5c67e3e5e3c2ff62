package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateInventoryRequest body para POST /api/stock/inventories.
// Sin líneas explícitas se toma una foto de todas las filas del ledger en la bodega.
type CreateInventoryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	WarehouseID string `json:"warehouse_id" validate:"required"`
	Notes       string `json:"notes,omitempty"`
	Empty       bool   `json:"empty,omitempty"` // true = sin autopoblar líneas
}

// AddInventoryLineRequest body para POST /inventories/:id/lines.
type AddInventoryLineRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	LotID      string `json:"lot_id,omitempty"`
}

// UpdateInventoryLineRequest body para PUT /inventories/:id/lines/:line_id.
type UpdateInventoryLineRequest struct {
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	Notes           *string         `json:"notes"`
}

// InventoryListRequest filtros de GET /api/stock/inventories.
type InventoryListRequest struct {
	Status      string `query:"status" validate:"omitempty,oneof=draft in_progress validated cancelled"`
	WarehouseID string `query:"warehouse_id"`
	Search      string `query:"search"`
	PageRequest
}

// InventoryLineResponse salida de una línea de conteo.
type InventoryLineResponse struct {
	ID                   string           `json:"id"`
	ProductID            string           `json:"product_id"`
	LocationID           string           `json:"location_id"`
	LotID                string           `json:"lot_id,omitempty"`
	ExpectedQuantity     decimal.Decimal  `json:"expected_quantity"`
	CountedQuantity      *decimal.Decimal `json:"counted_quantity,omitempty"`
	Difference           *decimal.Decimal `json:"difference,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	AdjustmentMovementID string           `json:"adjustment_movement_id,omitempty"`
}

// InventoryResponse salida de un inventario.
type InventoryResponse struct {
	ID          string                  `json:"id"`
	CompanyID   string                  `json:"company_id"`
	Reference   string                  `json:"reference"`
	Name        string                  `json:"name"`
	WarehouseID string                  `json:"warehouse_id"`
	Status      string                  `json:"status"`
	StartedAt   *time.Time              `json:"started_at,omitempty"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	Notes       string                  `json:"notes,omitempty"`
	CreatedBy   string                  `json:"created_by"`
	CreatedAt   time.Time               `json:"created_at"`
	Lines       []InventoryLineResponse `json:"lines"`
}

// InventoryListResponse lista paginada de inventarios.
type InventoryListResponse struct {
	Items []InventoryResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// NewInventoryResponse mapea la entidad con sus líneas.
func NewInventoryResponse(inv *entity.Inventory) InventoryResponse {
	lines := make([]InventoryLineResponse, 0, len(inv.Lines))
	for i := range inv.Lines {
		l := &inv.Lines[i]
		lines = append(lines, InventoryLineResponse{
			ID:                   l.ID,
			ProductID:            l.ProductID,
			LocationID:           l.LocationID,
			LotID:                l.LotID,
			ExpectedQuantity:     l.ExpectedQuantity,
			CountedQuantity:      l.CountedQuantity,
			Difference:           l.Difference(),
			Notes:                l.Notes,
			AdjustmentMovementID: l.AdjustmentMovementID,
		})
	}
	return InventoryResponse{
		ID:          inv.ID,
		CompanyID:   inv.CompanyID,
		Reference:   inv.Reference,
		Name:        inv.Name,
		WarehouseID: inv.WarehouseID,
		Status:      inv.Status,
		StartedAt:   inv.StartedAt,
		CompletedAt: inv.CompletedAt,
		Notes:       inv.Notes,
		CreatedBy:   inv.CreatedBy,
		CreatedAt:   inv.CreatedAt,
		Lines:       lines,
	}
}

// NewInventoryListResponse mapea una página de inventarios.
func NewInventoryListResponse(list []*entity.Inventory, total int, page PageRequest) InventoryListResponse {
	items := make([]InventoryResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, NewInventoryResponse(inv))
	}
	return InventoryListResponse{Items: items, Page: PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total}}
}
