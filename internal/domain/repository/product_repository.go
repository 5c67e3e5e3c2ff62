package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	List(ctx context.Context, companyID string, f ProductFilter) ([]*entity.Product, int, error)
	// UpdateCost actualiza solo el costo (usado por el motor de movimientos).
	UpdateCost(ctx context.Context, companyID, productID string, cost decimal.Decimal) error
	// UpdatePlanning guarda consumo diario y, si reorderPoint no es nil, el punto de reorden.
	UpdatePlanning(ctx context.Context, companyID, productID string, avgDaily decimal.Decimal, reorderPoint *decimal.Decimal) error
	UpdateClassification(ctx context.Context, companyID, productID, class string) error
	// CompanyIDs empresas con al menos un producto activo; lo usan los procesos batch.
	CompanyIDs(ctx context.Context) ([]string, error)
}
