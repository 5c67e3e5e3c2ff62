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

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo inventarios físicos y sus líneas sobre PostgreSQL.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `id, company_id, reference, name, warehouse_id, status, started_at, completed_at,
	notes, created_by, created_at, updated_at, version`

func scanInventory(row pgx.Row) (*entity.Inventory, error) {
	var inv entity.Inventory
	var createdBy *string
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.Reference, &inv.Name, &inv.WarehouseID, &inv.Status,
		&inv.StartedAt, &inv.CompletedAt, &inv.Notes, &createdBy, &inv.CreatedAt, &inv.UpdatedAt, &inv.Version)
	if err != nil {
		return nil, err
	}
	inv.CreatedBy = deref(createdBy)
	return &inv, nil
}

func (r *InventoryRepo) Create(ctx context.Context, inv *entity.Inventory) error {
	query := `INSERT INTO inventories (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query, inv.ID, inv.CompanyID, inv.Reference, inv.Name, inv.WarehouseID, inv.Status,
		inv.StartedAt, inv.CompletedAt, inv.Notes, nullable(inv.CreatedBy), inv.CreatedAt, inv.UpdatedAt, inv.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert inventory: %w", err)
	}
	return r.insertLines(ctx, inv)
}

// Update reescribe cabecera y reemplaza las líneas.
func (r *InventoryRepo) Update(ctx context.Context, inv *entity.Inventory) error {
	query := `
		UPDATE inventories SET
			name = $3, status = $4, started_at = $5, completed_at = $6, notes = $7, updated_at = $8, version = version + 1
		WHERE company_id = $1 AND id = $2
		RETURNING version`
	err := r.q.QueryRow(ctx, query, inv.CompanyID, inv.ID, inv.Name, inv.Status, inv.StartedAt, inv.CompletedAt,
		inv.Notes, inv.UpdatedAt).Scan(&inv.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update inventory: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_lines WHERE inventory_id = $1`, inv.ID); err != nil {
		return fmt.Errorf("delete inventory lines: %w", err)
	}
	return r.insertLines(ctx, inv)
}

func (r *InventoryRepo) insertLines(ctx context.Context, inv *entity.Inventory) error {
	query := `
		INSERT INTO inventory_lines (id, inventory_id, line_no, product_id, location_id, lot_id,
			expected_quantity, counted_quantity, notes, adjustment_movement_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i, l := range inv.Lines {
		_, err := r.q.Exec(ctx, query, l.ID, inv.ID, i+1, l.ProductID, l.LocationID, l.LotID,
			l.ExpectedQuantity, l.CountedQuantity, l.Notes, nullable(l.AdjustmentMovementID))
		if err != nil {
			if isUniqueViolation(err) {
				return domain.AtLine(domain.Invalid("clave repetida en el inventario: %s", l.StockKey), i+1)
			}
			return fmt.Errorf("insert inventory line %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *InventoryRepo) loadLines(ctx context.Context, inv *entity.Inventory) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, location_id, lot_id, expected_quantity, counted_quantity, notes, adjustment_movement_id
		FROM inventory_lines WHERE inventory_id = $1 ORDER BY line_no`, inv.ID)
	if err != nil {
		return fmt.Errorf("list inventory lines: %w", err)
	}
	defer rows.Close()
	inv.Lines = nil
	for rows.Next() {
		var l entity.InventoryLine
		var adj *string
		if err := rows.Scan(&l.ID, &l.ProductID, &l.LocationID, &l.LotID, &l.ExpectedQuantity, &l.CountedQuantity,
			&l.Notes, &adj); err != nil {
			return fmt.Errorf("scan inventory line: %w", err)
		}
		l.AdjustmentMovementID = deref(adj)
		inv.Lines = append(inv.Lines, l)
	}
	return rows.Err()
}

func (r *InventoryRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Inventory, error) {
	return r.get(ctx, companyID, id, "")
}

func (r *InventoryRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Inventory, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *InventoryRepo) get(ctx context.Context, companyID, id, lock string) (*entity.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventories WHERE company_id = $1 AND id = $2` + lock
	inv, err := scanInventory(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	if err := r.loadLines(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InventoryRepo) List(ctx context.Context, companyID string, f repository.InventoryFilter) ([]*entity.Inventory, int, error) {
	w := newWhere("company_id", companyID)
	w.addIf("status = $%d", f.Status)
	w.addIf("warehouse_id = $%d", f.WarehouseID)
	if f.Search != "" {
		w.addAny([]string{"reference", "name"}, "ILIKE", "%"+f.Search+"%")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventories`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventories: %w", err)
	}
	query := `SELECT ` + inventoryColumns + ` FROM inventories` + w.sql() +
		` ORDER BY created_at DESC, reference DESC` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventories: %w", err)
	}
	var list []*entity.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, inv := range list {
		if err := r.loadLines(ctx, inv); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}
