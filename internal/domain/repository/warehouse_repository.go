package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Warehouse, error)
	List(ctx context.Context, companyID string, page Page) ([]*entity.Warehouse, int, error)
}

// LocationRepository puerto de ubicaciones dentro de bodegas.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Location, error)
	ListByWarehouse(ctx context.Context, companyID, warehouseID string, activeOnly bool) ([]*entity.Location, error)
	// DefaultForWarehouse primera ubicación activa por código; nil si no hay.
	DefaultForWarehouse(ctx context.Context, companyID, warehouseID string) (*entity.Location, error)
}
