package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateCycleRequest body para POST /api/stock/cycles.
type CreateCycleRequest struct {
	Name           string    `json:"name" validate:"required,max=200"`
	Frequency      string    `json:"frequency" validate:"required,oneof=monthly quarterly yearly"`
	Classification string    `json:"classification,omitempty" validate:"omitempty,oneof=A B C"`
	CategoryID     string    `json:"category_id,omitempty"`
	WarehouseID    string    `json:"warehouse_id" validate:"required"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required"`
	AssignedTo     string    `json:"assigned_to,omitempty"`
}

// GenerateCyclesRequest body para POST /api/stock/cycles/generate.
type GenerateCyclesRequest struct {
	WarehouseID     string    `json:"warehouse_id" validate:"required"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" validate:"required"`
	Classifications []string  `json:"classifications,omitempty" validate:"omitempty,dive,oneof=A B C"`
	AssignedTo      string    `json:"assigned_to,omitempty"`
}

// CycleListRequest filtros de GET /api/stock/cycles.
type CycleListRequest struct {
	Status         string `query:"status" validate:"omitempty,oneof=planned in_progress completed cancelled"`
	Classification string `query:"classification" validate:"omitempty,oneof=A B C"`
	WarehouseID    string `query:"warehouse_id"`
	PageRequest
}

// CycleResponse salida de un ciclo.
type CycleResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Frequency      string    `json:"frequency"`
	Classification string    `json:"classification,omitempty"`
	CategoryID     string    `json:"category_id,omitempty"`
	WarehouseID    string    `json:"warehouse_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	AssignedTo     string    `json:"assigned_to,omitempty"`
	Status         string    `json:"status"`
	InventoryID    string    `json:"inventory_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CycleListResponse lista paginada de ciclos.
type CycleListResponse struct {
	Items []CycleResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// NewCycleResponse mapea un ciclo.
func NewCycleResponse(c *entity.InventoryCycle) CycleResponse {
	return CycleResponse{
		ID:             c.ID,
		Name:           c.Name,
		Frequency:      c.Frequency,
		Classification: c.Classification,
		CategoryID:     c.CategoryID,
		WarehouseID:    c.WarehouseID,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		AssignedTo:     c.AssignedTo,
		Status:         c.Status,
		InventoryID:    c.InventoryID,
		CreatedAt:      c.CreatedAt,
	}
}

// NewCycleList mapea varios ciclos.
func NewCycleList(list []*entity.InventoryCycle) []CycleResponse {
	out := make([]CycleResponse, 0, len(list))
	for _, c := range list {
		out = append(out, NewCycleResponse(c))
	}
	return out
}

// NewCycleListResponse mapea una página de ciclos.
func NewCycleListResponse(list []*entity.InventoryCycle, total int, page PageRequest) CycleListResponse {
	return CycleListResponse{Items: NewCycleList(list), Page: PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total}}
}
