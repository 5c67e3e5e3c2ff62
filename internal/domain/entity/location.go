package entity

import "time"

// Tipos de ubicación.
const (
	LocationTypeInternal = "internal"
	LocationTypeTransit  = "transit"
	LocationTypeScrap    = "scrap"
)

// Warehouse bodega: agrupa ubicaciones y es el origen/destino de los traslados.
type Warehouse struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location ubicación física dentro de una bodega. Es la granularidad del ledger.
// La ubicación por defecto de una bodega es la primera interna activa por código
// (o la primera activa si no hay internas).
type Location struct {
	ID           string
	CompanyID    string
	WarehouseID  string
	Code         string
	Name         string
	LocationType string
	IsActive     bool
	CreatedAt    time.Time
}

// IsValidLocationType indica si t es un tipo de ubicación conocido.
func IsValidLocationType(t string) bool {
	switch t {
	case LocationTypeInternal, LocationTypeTransit, LocationTypeScrap:
		return true
	}
	return false
}
