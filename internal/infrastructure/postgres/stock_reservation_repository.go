package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockReservationRepository = (*StockReservationRepo)(nil)

// StockReservationRepo reservas sobre PostgreSQL.
type StockReservationRepo struct {
	q Querier
}

// NewStockReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockReservationRepository(q Querier) *StockReservationRepo {
	return &StockReservationRepo{q: q}
}

const reservationColumns = `id, company_id, product_id, location_id, lot_id, quantity, reference_type,
	reference_id, reference_label, status, expiry_date, reserved_by, created_at, released_at`

func scanReservation(row pgx.Row) (*entity.StockReservation, error) {
	var r entity.StockReservation
	var reservedBy *string
	err := row.Scan(&r.ID, &r.CompanyID, &r.ProductID, &r.LocationID, &r.LotID, &r.Quantity, &r.ReferenceType,
		&r.ReferenceID, &r.ReferenceLabel, &r.Status, &r.ExpiryDate, &reservedBy, &r.CreatedAt, &r.ReleasedAt)
	if err != nil {
		return nil, err
	}
	r.ReservedBy = deref(reservedBy)
	return &r, nil
}

func (r *StockReservationRepo) Create(ctx context.Context, res *entity.StockReservation) error {
	query := `INSERT INTO stock_reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query, res.ID, res.CompanyID, res.ProductID, res.LocationID, res.LotID, res.Quantity,
		res.ReferenceType, res.ReferenceID, res.ReferenceLabel, res.Status, res.ExpiryDate,
		nullable(res.ReservedBy), res.CreatedAt, res.ReleasedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock reservation: %w", err)
	}
	return nil
}

// Update solo cambian estado y fecha de liberación.
func (r *StockReservationRepo) Update(ctx context.Context, res *entity.StockReservation) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE stock_reservations SET status = $3, released_at = $4 WHERE company_id = $1 AND id = $2`,
		res.CompanyID, res.ID, res.Status, res.ReleasedAt)
	if err != nil {
		return fmt.Errorf("update stock reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StockReservationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockReservation, error) {
	return r.get(ctx, companyID, id, "")
}

func (r *StockReservationRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockReservation, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *StockReservationRepo) get(ctx context.Context, companyID, id, lock string) (*entity.StockReservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM stock_reservations WHERE company_id = $1 AND id = $2` + lock
	res, err := scanReservation(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock reservation: %w", err)
	}
	return res, nil
}

func (r *StockReservationRepo) List(ctx context.Context, companyID string, f repository.ReservationFilter) ([]*entity.StockReservation, int, error) {
	w := newWhere("company_id", companyID)
	w.addIf("status = $%d", f.Status)
	w.addIf("product_id = $%d", f.ProductID)
	w.addIf("location_id = $%d", f.LocationID)
	w.addIf("reference_type = $%d", f.ReferenceType)
	w.addIf("reference_id = $%d", f.ReferenceID)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_reservations`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock reservations: %w", err)
	}
	query := `SELECT ` + reservationColumns + ` FROM stock_reservations` + w.sql() +
		` ORDER BY created_at DESC, id DESC` + w.page(f.Limit, f.Offset)
	list, err := r.list(ctx, query, w.args...)
	return list, total, err
}

func (r *StockReservationRepo) ListActiveByReferenceForUpdate(ctx context.Context, companyID, referenceType, referenceID string) ([]*entity.StockReservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM stock_reservations
		WHERE company_id = $1 AND reference_type = $2 AND reference_id = $3 AND status = $4
		ORDER BY id FOR UPDATE`
	return r.list(ctx, query, companyID, referenceType, referenceID, entity.ReservationStatusActive)
}

// ListDue candidatas a expirar; el llamador vuelve a bloquear y comprobar cada una.
func (r *StockReservationRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.StockReservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM stock_reservations
		WHERE status = $1 AND expiry_date IS NOT NULL AND expiry_date <= $2
		ORDER BY expiry_date, id LIMIT $3`
	return r.list(ctx, query, entity.ReservationStatusActive, now, limit)
}

func (r *StockReservationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockReservation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockReservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}
