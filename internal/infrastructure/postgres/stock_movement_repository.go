package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del puerto StockMovementRepository sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, company_id, reference, movement_type, product_id, lot_id,
	source_location_id, destination_location_id, quantity, unit_cost, status, reason, notes,
	origin_type, origin_id, created_by, created_at, validated_by, validated_at, cancelled_at, version`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var src, dst, originID, createdBy, validatedBy *string
	err := row.Scan(&m.ID, &m.CompanyID, &m.Reference, &m.Type, &m.ProductID, &m.LotID,
		&src, &dst, &m.Quantity, &m.UnitCost, &m.Status, &m.Reason, &m.Notes,
		&m.OriginType, &originID, &createdBy, &m.CreatedAt, &validatedBy, &m.ValidatedAt, &m.CancelledAt, &m.Version)
	if err != nil {
		return nil, err
	}
	m.SourceLocationID = deref(src)
	m.DestinationLocationID = deref(dst)
	m.OriginID = deref(originID)
	m.CreatedBy = deref(createdBy)
	m.ValidatedBy = deref(validatedBy)
	return &m, nil
}

// Create persiste un movimiento. Referencia repetida en la empresa → ErrDuplicate.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.Reference, m.Type, m.ProductID, m.LotID,
		nullable(m.SourceLocationID), nullable(m.DestinationLocationID), m.Quantity, m.UnitCost, m.Status, m.Reason, m.Notes,
		m.OriginType, nullable(m.OriginID), nullable(m.CreatedBy), m.CreatedAt, nullable(m.ValidatedBy), m.ValidatedAt, m.CancelledAt, m.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// Update reescribe los campos mutables y sube la versión.
func (r *StockMovementRepo) Update(ctx context.Context, m *entity.StockMovement) error {
	query := `
		UPDATE stock_movements SET
			movement_type = $3, product_id = $4, lot_id = $5, source_location_id = $6, destination_location_id = $7,
			quantity = $8, unit_cost = $9, status = $10, reason = $11, notes = $12,
			validated_by = $13, validated_at = $14, cancelled_at = $15, version = version + 1
		WHERE company_id = $1 AND id = $2
		RETURNING version`
	err := r.q.QueryRow(ctx, query, m.CompanyID, m.ID,
		m.Type, m.ProductID, m.LotID, nullable(m.SourceLocationID), nullable(m.DestinationLocationID),
		m.Quantity, m.UnitCost, m.Status, m.Reason, m.Notes,
		nullable(m.ValidatedBy), m.ValidatedAt, m.CancelledAt,
	).Scan(&m.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update stock movement: %w", err)
	}
	return nil
}

func (r *StockMovementRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockMovement, error) {
	return r.get(ctx, companyID, id, "")
}

func (r *StockMovementRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockMovement, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *StockMovementRepo) get(ctx context.Context, companyID, id, lock string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE company_id = $1 AND id = $2` + lock
	m, err := scanMovement(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// List lista movimientos con filtros, más recientes primero, y devuelve el total sin paginar.
func (r *StockMovementRepo) List(ctx context.Context, companyID string, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	w := newWhere("company_id", companyID)
	w.addIf("movement_type = $%d", f.Type)
	w.addIf("status = $%d", f.Status)
	w.addIf("product_id = $%d", f.ProductID)
	w.addIf("origin_type = $%d", f.OriginType)
	w.addIf("origin_id = $%d", f.OriginID)
	if f.LocationID != "" {
		w.addAny([]string{"source_location_id", "destination_location_id"}, "=", f.LocationID)
	}
	if f.Search != "" {
		w.add("reference ILIKE $%d", "%"+f.Search+"%")
	}
	if f.From != nil {
		w.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= $%d", *f.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock movements: %w", err)
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements` + w.sql() +
		` ORDER BY created_at DESC, reference DESC` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// ConsumptionByProduct salidas validadas desde since agrupadas por producto.
func (r *StockMovementRepo) ConsumptionByProduct(ctx context.Context, companyID string, since time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT product_id, SUM(quantity) FROM stock_movements
		WHERE company_id = $1 AND movement_type = $2 AND status = $3 AND validated_at >= $4
		GROUP BY product_id`
	rows, err := r.q.Query(ctx, query, companyID, entity.MovementTypeOut, entity.MovementStatusValidated, since)
	if err != nil {
		return nil, fmt.Errorf("consumption by product: %w", err)
	}
	defer rows.Close()
	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var productID string
		var total decimal.Decimal
		if err := rows.Scan(&productID, &total); err != nil {
			return nil, fmt.Errorf("scan consumption: %w", err)
		}
		out[productID] = total
	}
	return out, rows.Err()
}

func (r *StockMovementRepo) SumValidatedOut(ctx context.Context, companyID, productID string, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0) FROM stock_movements
		WHERE company_id = $1 AND product_id = $2 AND movement_type = $3 AND status = $4 AND validated_at >= $5`
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, query, companyID, productID, entity.MovementTypeOut, entity.MovementStatusValidated, since).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum validated out: %w", err)
	}
	return total, nil
}
