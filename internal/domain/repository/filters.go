package repository

import "time"

// Page paginación común de los listados. Limit <= 0 devuelve todas las filas.
type Page struct {
	Limit  int
	Offset int
}

// MovementFilter filtros de listado de movimientos.
type MovementFilter struct {
	Type       string
	Status     string
	ProductID  string
	LocationID string
	OriginType string
	OriginID   string
	Search     string // coincidencia parcial sobre la referencia
	From       *time.Time
	To         *time.Time
	Page
}

// ReservationFilter filtros de listado de reservas.
type ReservationFilter struct {
	Status        string
	ProductID     string
	LocationID    string
	ReferenceType string
	ReferenceID   string
	Page
}

// TransferFilter filtros de listado de traslados; WarehouseID coincide con origen o destino.
type TransferFilter struct {
	Status      string
	WarehouseID string
	Search      string
	Page
}

// InventoryFilter filtros de listado de inventarios.
type InventoryFilter struct {
	Status      string
	WarehouseID string
	Search      string
	Page
}

// CycleFilter filtros de listado de ciclos.
type CycleFilter struct {
	Status         string
	Classification string
	WarehouseID    string
	Page
}

// ProductFilter filtros de catálogo.
type ProductFilter struct {
	CategoryID        string
	ABCClassification string
	ProductType       string
	ActiveOnly        bool
	Search            string
	Page
}
