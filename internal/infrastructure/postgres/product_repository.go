package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, company_id, sku, name, description, category_id, product_type, is_active, price, cost,
	unit_measure, min_stock_level, reorder_point, reorder_quantity, lead_time_days, average_daily_consumption,
	abc_classification, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var categoryID *string
	err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &categoryID, &p.ProductType, &p.IsActive,
		&p.Price, &p.Cost, &p.UnitMeasure, &p.MinStockLevel, &p.ReorderPoint, &p.ReorderQuantity, &p.LeadTimeDays,
		&p.AverageDailyConsumption, &p.ABCClassification, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CategoryID = deref(categoryID)
	return &p, nil
}

// Create persiste un nuevo producto. Cost inicia en 0.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query, p.ID, p.CompanyID, p.SKU, p.Name, p.Description, nullable(p.CategoryID),
		p.ProductType, p.IsActive, p.Price, p.Cost, p.UnitMeasure, p.MinStockLevel, p.ReorderPoint, p.ReorderQuantity,
		p.LeadTimeDays, p.AverageDailyConsumption, p.ABCClassification, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID dentro de la empresa.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE company_id = $1 AND id = $2`
	return r.one(ctx, "get product", query, companyID, id)
}

// GetByCompanyAndSKU obtiene un producto por empresa y SKU.
func (r *ProductRepo) GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE company_id = $1 AND sku = $2`
	return r.one(ctx, "get product by sku", query, companyID, sku)
}

func (r *ProductRepo) one(ctx context.Context, op, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// List lista productos de una empresa ordenados por SKU.
func (r *ProductRepo) List(ctx context.Context, companyID string, f repository.ProductFilter) ([]*entity.Product, int, error) {
	w := newWhere("company_id", companyID)
	w.addIf("category_id = $%d", f.CategoryID)
	w.addIf("abc_classification = $%d", f.ABCClassification)
	w.addIf("product_type = $%d", f.ProductType)
	if f.ActiveOnly {
		w.add("is_active = $%d", true)
	}
	if f.Search != "" {
		w.addAny([]string{"sku", "name"}, "ILIKE", "%"+f.Search+"%")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	query := `SELECT ` + productColumns + ` FROM products` + w.sql() + ` ORDER BY sku` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// UpdateCost actualiza solo el costo (usado por el motor de movimientos).
func (r *ProductRepo) UpdateCost(ctx context.Context, companyID, productID string, cost decimal.Decimal) error {
	return r.exec(ctx, "update product cost",
		`UPDATE products SET cost = $3, updated_at = now() WHERE company_id = $1 AND id = $2`,
		companyID, productID, cost)
}

// UpdatePlanning con reorderPoint nil conserva el punto de reorden actual.
func (r *ProductRepo) UpdatePlanning(ctx context.Context, companyID, productID string, avgDaily decimal.Decimal, reorderPoint *decimal.Decimal) error {
	return r.exec(ctx, "update product planning", `
		UPDATE products SET average_daily_consumption = $3, reorder_point = COALESCE($4, reorder_point), updated_at = now()
		WHERE company_id = $1 AND id = $2`,
		companyID, productID, avgDaily, reorderPoint)
}

func (r *ProductRepo) UpdateClassification(ctx context.Context, companyID, productID, class string) error {
	return r.exec(ctx, "update product classification",
		`UPDATE products SET abc_classification = $3, updated_at = now() WHERE company_id = $1 AND id = $2`,
		companyID, productID, class)
}

func (r *ProductRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) CompanyIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT company_id FROM products WHERE is_active ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
