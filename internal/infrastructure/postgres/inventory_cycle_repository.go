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

var _ repository.InventoryCycleRepository = (*InventoryCycleRepo)(nil)

// InventoryCycleRepo ciclos de conteo sobre PostgreSQL.
type InventoryCycleRepo struct {
	q Querier
}

func NewInventoryCycleRepository(q Querier) *InventoryCycleRepo {
	return &InventoryCycleRepo{q: q}
}

const cycleColumns = `id, company_id, name, frequency, classification, category_id, warehouse_id,
	start_date, end_date, assigned_to, status, inventory_id, created_at, updated_at`

func scanCycle(row pgx.Row) (*entity.InventoryCycle, error) {
	var c entity.InventoryCycle
	var categoryID, assignedTo, inventoryID *string
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Frequency, &c.Classification, &categoryID, &c.WarehouseID,
		&c.StartDate, &c.EndDate, &assignedTo, &c.Status, &inventoryID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.CategoryID = deref(categoryID)
	c.AssignedTo = deref(assignedTo)
	c.InventoryID = deref(inventoryID)
	return &c, nil
}

func (r *InventoryCycleRepo) Create(ctx context.Context, c *entity.InventoryCycle) error {
	query := `INSERT INTO inventory_cycles (` + cycleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query, c.ID, c.CompanyID, c.Name, c.Frequency, c.Classification, nullable(c.CategoryID),
		c.WarehouseID, c.StartDate, c.EndDate, nullable(c.AssignedTo), c.Status, nullable(c.InventoryID), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert inventory cycle: %w", err)
	}
	return nil
}

func (r *InventoryCycleRepo) Update(ctx context.Context, c *entity.InventoryCycle) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_cycles SET status = $3, inventory_id = $4, assigned_to = $5, updated_at = $6
		WHERE company_id = $1 AND id = $2`,
		c.CompanyID, c.ID, c.Status, nullable(c.InventoryID), nullable(c.AssignedTo), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update inventory cycle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InventoryCycleRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.InventoryCycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM inventory_cycles WHERE company_id = $1 AND id = $2 FOR UPDATE`
	c, err := scanCycle(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory cycle: %w", err)
	}
	return c, nil
}

// List ciclos por fecha de inicio ascendente.
func (r *InventoryCycleRepo) List(ctx context.Context, companyID string, f repository.CycleFilter) ([]*entity.InventoryCycle, int, error) {
	w := newWhere("company_id", companyID)
	w.addIf("status = $%d", f.Status)
	w.addIf("classification = $%d", f.Classification)
	w.addIf("warehouse_id = $%d", f.WarehouseID)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_cycles`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory cycles: %w", err)
	}
	query := `SELECT ` + cycleColumns + ` FROM inventory_cycles` + w.sql() +
		` ORDER BY start_date, name` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory cycles: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryCycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory cycle: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}
