package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockTransferRepository persiste traslados junto con sus líneas.
type StockTransferRepository interface {
	Create(ctx context.Context, t *entity.StockTransfer) error
	// Update reescribe cabecera y líneas.
	Update(ctx context.Context, t *entity.StockTransfer) error
	GetByID(ctx context.Context, companyID, id string) (*entity.StockTransfer, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockTransfer, error)
	List(ctx context.Context, companyID string, f TransferFilter) ([]*entity.StockTransfer, int, error)
}
