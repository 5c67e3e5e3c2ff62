package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryRepository persiste inventarios (conteos) junto con sus líneas.
type InventoryRepository interface {
	Create(ctx context.Context, inv *entity.Inventory) error
	Update(ctx context.Context, inv *entity.Inventory) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Inventory, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Inventory, error)
	List(ctx context.Context, companyID string, f InventoryFilter) ([]*entity.Inventory, int, error)
}

// InventoryCycleRepository persiste ciclos de conteo.
type InventoryCycleRepository interface {
	Create(ctx context.Context, c *entity.InventoryCycle) error
	Update(ctx context.Context, c *entity.InventoryCycle) error
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.InventoryCycle, error)
	List(ctx context.Context, companyID string, f CycleFilter) ([]*entity.InventoryCycle, int, error)
}
