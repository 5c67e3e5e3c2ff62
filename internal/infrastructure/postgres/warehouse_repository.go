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

var (
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.LocationRepository  = (*LocationRepo)(nil)
)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseColumns = `id, company_id, code, name, address, is_active, created_at, updated_at`

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := row.Scan(&w.ID, &w.CompanyID, &w.Code, &w.Name, &w.Address, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// Create persiste una nueva bodega. Código repetido en la empresa → ErrDuplicate.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `INSERT INTO warehouses (` + warehouseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, w.ID, w.CompanyID, w.Code, w.Name, w.Address, w.IsActive, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE company_id = $1 AND id = $2`
	w, err := scanWarehouse(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

// List bodegas de la empresa ordenadas por código.
func (r *WarehouseRepo) List(ctx context.Context, companyID string, page repository.Page) ([]*entity.Warehouse, int, error) {
	wb := newWhere("company_id", companyID)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM warehouses`+wb.sql(), wb.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count warehouses: %w", err)
	}
	query := `SELECT ` + warehouseColumns + ` FROM warehouses` + wb.sql() + ` ORDER BY code` + wb.page(page.Limit, page.Offset)
	rows, err := r.q.Query(ctx, query, wb.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, w)
	}
	return list, total, rows.Err()
}

// LocationRepo ubicaciones dentro de bodegas.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, company_id, warehouse_id, code, name, location_type, is_active, created_at`

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	if err := row.Scan(&l.ID, &l.CompanyID, &l.WarehouseID, &l.Code, &l.Name, &l.LocationType, &l.IsActive, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	query := `INSERT INTO locations (` + locationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, l.ID, l.CompanyID, l.WarehouseID, l.Code, l.Name, l.LocationType, l.IsActive, l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *LocationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE company_id = $1 AND id = $2`
	l, err := scanLocation(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

func (r *LocationRepo) ListByWarehouse(ctx context.Context, companyID, warehouseID string, activeOnly bool) ([]*entity.Location, error) {
	w := newWhere("company_id", companyID)
	w.add("warehouse_id = $%d", warehouseID)
	if activeOnly {
		w.add("is_active = $%d", true)
	}
	rows, err := r.q.Query(ctx, `SELECT `+locationColumns+` FROM locations`+w.sql()+` ORDER BY code`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// DefaultForWarehouse primera ubicación interna activa; si no hay, la primera activa.
func (r *LocationRepo) DefaultForWarehouse(ctx context.Context, companyID, warehouseID string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations
		WHERE company_id = $1 AND warehouse_id = $2 AND is_active
		ORDER BY (location_type = $3) DESC, code
		LIMIT 1`
	l, err := scanLocation(r.q.QueryRow(ctx, query, companyID, warehouseID, entity.LocationTypeInternal))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("default location: %w", err)
	}
	return l, nil
}
