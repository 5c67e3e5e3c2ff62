package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo traslados y sus líneas sobre PostgreSQL.
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

const transferColumns = `id, company_id, reference, source_warehouse_id, destination_warehouse_id, status,
	transfer_date, expected_arrival_date, actual_arrival_date, transporter, tracking_number, notes,
	created_by, created_at, updated_at, version`

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	var createdBy *string
	err := row.Scan(&t.ID, &t.CompanyID, &t.Reference, &t.SourceWarehouseID, &t.DestinationWarehouseID, &t.Status,
		&t.TransferDate, &t.ExpectedArrivalDate, &t.ActualArrivalDate, &t.Transporter, &t.TrackingNumber, &t.Notes,
		&createdBy, &t.CreatedAt, &t.UpdatedAt, &t.Version)
	if err != nil {
		return nil, err
	}
	t.CreatedBy = deref(createdBy)
	return &t, nil
}

func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `INSERT INTO stock_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query, t.ID, t.CompanyID, t.Reference, t.SourceWarehouseID, t.DestinationWarehouseID, t.Status,
		t.TransferDate, t.ExpectedArrivalDate, t.ActualArrivalDate, t.Transporter, t.TrackingNumber, t.Notes,
		nullable(t.CreatedBy), t.CreatedAt, t.UpdatedAt, t.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock transfer: %w", err)
	}
	return r.insertLines(ctx, t)
}

// Update reescribe cabecera y reemplaza las líneas.
func (r *StockTransferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers SET
			source_warehouse_id = $3, destination_warehouse_id = $4, status = $5, transfer_date = $6,
			expected_arrival_date = $7, actual_arrival_date = $8, transporter = $9, tracking_number = $10,
			notes = $11, updated_at = $12, version = version + 1
		WHERE company_id = $1 AND id = $2
		RETURNING version`
	err := r.q.QueryRow(ctx, query, t.CompanyID, t.ID, t.SourceWarehouseID, t.DestinationWarehouseID, t.Status,
		t.TransferDate, t.ExpectedArrivalDate, t.ActualArrivalDate, t.Transporter, t.TrackingNumber,
		t.Notes, t.UpdatedAt).Scan(&t.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update stock transfer: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_transfer_lines WHERE transfer_id = $1`, t.ID); err != nil {
		return fmt.Errorf("delete transfer lines: %w", err)
	}
	return r.insertLines(ctx, t)
}

func (r *StockTransferRepo) insertLines(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfer_lines (id, transfer_id, line_no, product_id, lot_id, quantity_sent, quantity_received, out_movement_id, in_movement_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, l := range t.Lines {
		_, err := r.q.Exec(ctx, query, l.ID, t.ID, i+1, l.ProductID, l.LotID, l.QuantitySent, l.QuantityReceived,
			nullable(l.OutMovementID), nullable(l.InMovementID))
		if err != nil {
			return fmt.Errorf("insert transfer line %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *StockTransferRepo) loadLines(ctx context.Context, t *entity.StockTransfer) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, lot_id, quantity_sent, quantity_received, out_movement_id, in_movement_id
		FROM stock_transfer_lines WHERE transfer_id = $1 ORDER BY line_no`, t.ID)
	if err != nil {
		return fmt.Errorf("list transfer lines: %w", err)
	}
	defer rows.Close()
	t.Lines = nil
	for rows.Next() {
		var l entity.TransferLine
		var out, in *string
		if err := rows.Scan(&l.ID, &l.ProductID, &l.LotID, &l.QuantitySent, &l.QuantityReceived, &out, &in); err != nil {
			return fmt.Errorf("scan transfer line: %w", err)
		}
		l.OutMovementID = deref(out)
		l.InMovementID = deref(in)
		t.Lines = append(t.Lines, l)
	}
	return rows.Err()
}

func (r *StockTransferRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, companyID, id, "")
}

func (r *StockTransferRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *StockTransferRepo) get(ctx context.Context, companyID, id, lock string) (*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE company_id = $1 AND id = $2` + lock
	t, err := scanTransfer(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}
	if err := r.loadLines(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *StockTransferRepo) List(ctx context.Context, companyID string, f repository.TransferFilter) ([]*entity.StockTransfer, int, error) {
	w := newWhere("company_id", companyID)
	w.addIf("status = $%d", f.Status)
	if f.WarehouseID != "" {
		w.addAny([]string{"source_warehouse_id", "destination_warehouse_id"}, "=", f.WarehouseID)
	}
	if f.Search != "" {
		w.add("reference ILIKE $%d", "%"+f.Search+"%")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_transfers`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock transfers: %w", err)
	}
	query := `SELECT ` + transferColumns + ` FROM stock_transfers` + w.sql() +
		` ORDER BY created_at DESC, reference DESC` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock transfers: %w", err)
	}
	var list []*entity.StockTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	// Las líneas se cargan después de cerrar rows: una tx no admite dos consultas abiertas.
	for _, t := range list {
		if err := r.loadLines(ctx, t); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}
