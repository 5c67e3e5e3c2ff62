package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo ledger de existencias sobre PostgreSQL (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

const levelColumns = `company_id, product_id, location_id, lot_id, quantity, reserved_quantity, updated_at`

func scanLevel(row pgx.Row) (*entity.StockLevel, error) {
	var l entity.StockLevel
	err := row.Scan(&l.CompanyID, &l.ProductID, &l.LocationID, &l.LotID, &l.Quantity, &l.ReservedQuantity, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *StockLevelRepo) Get(ctx context.Context, companyID string, key entity.StockKey) (*entity.StockLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM stock_levels
		WHERE company_id = $1 AND product_id = $2 AND location_id = $3 AND lot_id = $4`
	l, err := scanLevel(r.q.QueryRow(ctx, query, companyID, key.ProductID, key.LocationID, key.LotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return l, nil
}

// GetForUpdate crea la fila en (0,0) si falta y la bloquea con FOR UPDATE hasta el fin de la tx.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, companyID string, key entity.StockKey) (*entity.StockLevel, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_levels (company_id, product_id, location_id, lot_id, quantity, reserved_quantity, updated_at)
		VALUES ($1, $2, $3, $4, 0, 0, now())
		ON CONFLICT (company_id, product_id, location_id, lot_id) DO NOTHING`,
		companyID, key.ProductID, key.LocationID, key.LotID)
	if err != nil {
		return nil, fmt.Errorf("ensure stock level: %w", err)
	}
	query := `SELECT ` + levelColumns + ` FROM stock_levels
		WHERE company_id = $1 AND product_id = $2 AND location_id = $3 AND lot_id = $4
		FOR UPDATE`
	l, err := scanLevel(r.q.QueryRow(ctx, query, companyID, key.ProductID, key.LocationID, key.LotID))
	if err != nil {
		return nil, fmt.Errorf("lock stock level: %w", err)
	}
	return l, nil
}

func (r *StockLevelRepo) Save(ctx context.Context, level *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (company_id, product_id, location_id, lot_id, quantity, reserved_quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id, product_id, location_id, lot_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, reserved_quantity = EXCLUDED.reserved_quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, level.CompanyID, level.ProductID, level.LocationID, level.LotID,
		level.Quantity, level.ReservedQuantity, level.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save stock level: %w", err)
	}
	return nil
}

func (r *StockLevelRepo) ListByLocations(ctx context.Context, companyID string, locationIDs []string) ([]*entity.StockLevel, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + levelColumns + ` FROM stock_levels
		WHERE company_id = $1 AND location_id = ANY($2::uuid[])
		ORDER BY product_id, location_id, lot_id`
	return r.list(ctx, query, companyID, locationIDs)
}

func (r *StockLevelRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.StockLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM stock_levels
		WHERE company_id = $1 AND product_id = $2
		ORDER BY product_id, location_id, lot_id`
	return r.list(ctx, query, companyID, productID)
}

func (r *StockLevelRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func (r *StockLevelRepo) TotalsByProduct(ctx context.Context, companyID string, locationIDs []string) (map[string]entity.StockTotals, error) {
	w := newWhere("company_id", companyID)
	if len(locationIDs) > 0 {
		w.add("location_id = ANY($%d::uuid[])", locationIDs)
	}
	query := `SELECT product_id, COALESCE(SUM(quantity), 0), COALESCE(SUM(reserved_quantity), 0)
		FROM stock_levels` + w.sql() + ` GROUP BY product_id`
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("stock totals: %w", err)
	}
	defer rows.Close()
	out := map[string]entity.StockTotals{}
	for rows.Next() {
		var productID string
		var qty, reserved decimal.Decimal
		if err := rows.Scan(&productID, &qty, &reserved); err != nil {
			return nil, fmt.Errorf("scan stock totals: %w", err)
		}
		out[productID] = entity.StockTotals{Quantity: qty, Reserved: reserved}
	}
	return out, rows.Err()
}
