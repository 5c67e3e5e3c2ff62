package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para movimientos de stock (DIP).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	Update(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, companyID, id string) (*entity.StockMovement, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockMovement, error)
	List(ctx context.Context, companyID string, f MovementFilter) ([]*entity.StockMovement, int, error)
	// ConsumptionByProduct suma salidas validadas desde since, por producto.
	ConsumptionByProduct(ctx context.Context, companyID string, since time.Time) (map[string]decimal.Decimal, error)
	// SumValidatedOut suma salidas validadas de un producto desde since.
	SumValidatedOut(ctx context.Context, companyID, productID string, since time.Time) (decimal.Decimal, error)
}
