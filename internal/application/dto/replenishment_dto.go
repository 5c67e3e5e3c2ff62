package dto

import "github.com/shopspring/decimal"

// ReplenishmentFilterRequest filtros de GET /api/stock/replenishment/suggestions.
type ReplenishmentFilterRequest struct {
	WarehouseID       string `query:"warehouse_id"`
	CategoryID        string `query:"category_id"`
	ABCClassification string `query:"abc_classification" validate:"omitempty,oneof=A B C"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU en o bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	CategoryID        string          `json:"category_id,omitempty"`
	ABCClassification string          `json:"abc_classification,omitempty"`
	OnHand            decimal.Decimal `json:"on_hand"`
	Reserved          decimal.Decimal `json:"reserved"`
	Available         decimal.Decimal `json:"available"`
	ReorderPoint      decimal.Decimal `json:"reorder_point"`
	ReorderQuantity   decimal.Decimal `json:"reorder_quantity"`
	SuggestedQuantity decimal.Decimal `json:"suggested_quantity"` // max(0, reorden + cantidad de reorden − disponible)
	UnitCost          decimal.Decimal `json:"unit_cost"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"` // SuggestedQuantity * UnitCost
	LeadTimeDays      int             `json:"lead_time_days"`
	Priority          int             `json:"priority"` // 1 = más urgente
}

// ConsumptionWindowDTO consumo en una ventana de días.
type ConsumptionWindowDTO struct {
	Days         int             `json:"days"`
	Total        decimal.Decimal `json:"total"`
	DailyAverage decimal.Decimal `json:"daily_average"`
}

// ConsumptionStatsDTO estadísticas de salidas validadas de un producto.
type ConsumptionStatsDTO struct {
	ProductID               string                 `json:"product_id"`
	Windows                 []ConsumptionWindowDTO `json:"windows"`
	AverageDailyConsumption decimal.Decimal        `json:"average_daily_consumption"`
	ReorderPoint            decimal.Decimal        `json:"reorder_point"`
	LeadTimeDays            int                    `json:"lead_time_days"`
}

// RecomputeResultDTO resultado de los procesos batch de reposición.
type RecomputeResultDTO struct {
	Processed int            `json:"processed"`
	Updated   int            `json:"updated"`
	Classes   map[string]int `json:"classes,omitempty"`
}
