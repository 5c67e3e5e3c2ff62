package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockLevelRepository puerto del ledger de existencias por (producto, ubicación, lote).
type StockLevelRepository interface {
	// Get lectura sin bloqueo; nil si la fila no existe.
	Get(ctx context.Context, companyID string, key entity.StockKey) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción, creándola en (0,0) si no existe.
	GetForUpdate(ctx context.Context, companyID string, key entity.StockKey) (*entity.StockLevel, error)
	Save(ctx context.Context, level *entity.StockLevel) error
	ListByLocations(ctx context.Context, companyID string, locationIDs []string) ([]*entity.StockLevel, error)
	ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.StockLevel, error)
	// TotalsByProduct suma por producto; sin ubicaciones suma todas las de la empresa.
	TotalsByProduct(ctx context.Context, companyID string, locationIDs []string) (map[string]entity.StockTotals, error)
}
