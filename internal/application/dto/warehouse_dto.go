package dto

import "time"

// CreateWarehouseRequest entrada para crear una bodega. Sin ubicaciones explícitas se crea
// una ubicación interna por defecto con el mismo código.
type CreateWarehouseRequest struct {
	Code    string `json:"code" validate:"required,min=1,max=50"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address"`
}

// CreateLocationRequest entrada para crear una ubicación en una bodega.
type CreateLocationRequest struct {
	Code         string `json:"code" validate:"required,min=1,max=50"`
	Name         string `json:"name" validate:"required,min=1,max=200"`
	LocationType string `json:"location_type" validate:"omitempty,oneof=internal transit scrap"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID           string    `json:"id"`
	WarehouseID  string    `json:"warehouse_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	LocationType string    `json:"location_type"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
