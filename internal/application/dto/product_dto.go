package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU             string          `json:"sku" validate:"required,min=1,max=100"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     string          `json:"description"`
	CategoryID      string          `json:"category_id,omitempty"`
	ProductType     string          `json:"product_type" validate:"omitempty,oneof=stockable consumable service"`
	Price           decimal.Decimal `json:"price"`
	UnitMeasure     string          `json:"unit_measure"`
	MinStockLevel   decimal.Decimal `json:"min_stock_level"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	LeadTimeDays    int             `json:"lead_time_days" validate:"min=0"`
}

// ProductListRequest filtros de GET /api/stock/products.
type ProductListRequest struct {
	CategoryID        string `query:"category_id"`
	ABCClassification string `query:"abc_classification" validate:"omitempty,oneof=A B C"`
	ProductType       string `query:"product_type" validate:"omitempty,oneof=stockable consumable service"`
	Search            string `query:"search"`
	PageRequest
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                      string          `json:"id"`
	CompanyID               string          `json:"company_id"`
	SKU                     string          `json:"sku"`
	Name                    string          `json:"name"`
	Description             string          `json:"description"`
	CategoryID              string          `json:"category_id,omitempty"`
	ProductType             string          `json:"product_type"`
	IsActive                bool            `json:"is_active"`
	Price                   decimal.Decimal `json:"price"`
	Cost                    decimal.Decimal `json:"cost"`
	UnitMeasure             string          `json:"unit_measure"`
	MinStockLevel           decimal.Decimal `json:"min_stock_level"`
	ReorderPoint            decimal.Decimal `json:"reorder_point"`
	ReorderQuantity         decimal.Decimal `json:"reorder_quantity"`
	LeadTimeDays            int             `json:"lead_time_days"`
	AverageDailyConsumption decimal.Decimal `json:"average_daily_consumption"`
	ABCClassification       string          `json:"abc_classification,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
