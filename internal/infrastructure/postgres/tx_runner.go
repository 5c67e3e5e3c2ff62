package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Repos repositorios sobre el pool, para lecturas fuera de transacción.
func (r *TxRunner) Repos() repository.Repos {
	return NewRepos(r.pool)
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Timeout de lock, deadlock o conflicto de serialización se devuelven como domain.ErrConflict:
// se detectan antes de confirmar nada y el llamador puede reintentar.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return asConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return asConflict(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// NewRepos arma todos los repositorios sobre el mismo Querier (pool o tx).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Levels:       NewStockLevelRepository(q),
		Movements:    NewStockMovementRepository(q),
		Reservations: NewStockReservationRepository(q),
		Transfers:    NewStockTransferRepository(q),
		Inventories:  NewInventoryRepository(q),
		Cycles:       NewInventoryCycleRepository(q),
		Products:     NewProductRepository(q),
		Warehouses:   NewWarehouseRepository(q),
		Locations:    NewLocationRepository(q),
		Sequences:    NewSequenceRepository(q),
	}
}
