package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type productRepo struct{ h handle }

func (r *productRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.h.write(ctx, func(st *state) error {
		for _, other := range st.products {
			if other.ID == p.ID || (other.CompanyID == p.CompanyID && other.SKU == p.SKU) {
				return domain.ErrDuplicate
			}
		}
		cp := *p
		st.products[p.ID] = &cp
		return nil
	})
}

func (r *productRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.read(ctx, func(st *state) error {
		if p, ok := st.products[id]; ok && p.CompanyID == companyID {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *productRepo) GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.read(ctx, func(st *state) error {
		for _, p := range st.products {
			if p.CompanyID == companyID && p.SKU == sku {
				cp := *p
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) List(ctx context.Context, companyID string, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var list []*entity.Product
	err := r.h.read(ctx, func(st *state) error {
		for _, p := range st.products {
			if p.CompanyID != companyID || (f.ActiveOnly && !p.IsActive) ||
				(f.CategoryID != "" && p.CategoryID != f.CategoryID) ||
				(f.ABCClassification != "" && p.ABCClassification != f.ABCClassification) ||
				(f.ProductType != "" && p.ProductType != f.ProductType) {
				continue
			}
			if f.Search != "" && !containsFold(p.SKU, f.Search) && !containsFold(p.Name, f.Search) {
				continue
			}
			cp := *p
			list = append(list, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return paginate(list, f.Page), len(list), nil
}

func (r *productRepo) mutate(ctx context.Context, companyID, id string, fn func(p *entity.Product)) error {
	return r.h.write(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.CompanyID != companyID {
			return domain.ErrNotFound
		}
		cp := *p
		fn(&cp)
		st.products[id] = &cp
		return nil
	})
}

func (r *productRepo) UpdateCost(ctx context.Context, companyID, productID string, cost decimal.Decimal) error {
	return r.mutate(ctx, companyID, productID, func(p *entity.Product) { p.Cost = cost })
}

func (r *productRepo) UpdatePlanning(ctx context.Context, companyID, productID string, avgDaily decimal.Decimal, reorderPoint *decimal.Decimal) error {
	return r.mutate(ctx, companyID, productID, func(p *entity.Product) {
		p.AverageDailyConsumption = avgDaily
		if reorderPoint != nil {
			p.ReorderPoint = *reorderPoint
		}
	})
}

func (r *productRepo) UpdateClassification(ctx context.Context, companyID, productID, class string) error {
	return r.mutate(ctx, companyID, productID, func(p *entity.Product) { p.ABCClassification = class })
}

func (r *productRepo) CompanyIDs(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	err := r.h.read(ctx, func(st *state) error {
		for _, p := range st.products {
			if p.IsActive {
				seen[p.CompanyID] = struct{}{}
			}
		}
		return nil
	})
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, err
}

type warehouseRepo struct{ h handle }

func (r *warehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	return r.h.write(ctx, func(st *state) error {
		for _, other := range st.warehouses {
			if other.ID == w.ID || (other.CompanyID == w.CompanyID && other.Code == w.Code) {
				return domain.ErrDuplicate
			}
		}
		cp := *w
		st.warehouses[w.ID] = &cp
		return nil
	})
}

func (r *warehouseRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.h.read(ctx, func(st *state) error {
		if w, ok := st.warehouses[id]; ok && w.CompanyID == companyID {
			cp := *w
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *warehouseRepo) List(ctx context.Context, companyID string, page repository.Page) ([]*entity.Warehouse, int, error) {
	var list []*entity.Warehouse
	err := r.h.read(ctx, func(st *state) error {
		for _, w := range st.warehouses {
			if w.CompanyID == companyID {
				cp := *w
				list = append(list, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return paginate(list, page), len(list), nil
}

type locationRepo struct{ h handle }

func (r *locationRepo) Create(ctx context.Context, l *entity.Location) error {
	return r.h.write(ctx, func(st *state) error {
		for _, other := range st.locations {
			if other.ID == l.ID || (other.CompanyID == l.CompanyID && other.Code == l.Code) {
				return domain.ErrDuplicate
			}
		}
		cp := *l
		st.locations[l.ID] = &cp
		return nil
	})
}

func (r *locationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.h.read(ctx, func(st *state) error {
		if l, ok := st.locations[id]; ok && l.CompanyID == companyID {
			cp := *l
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *locationRepo) ListByWarehouse(ctx context.Context, companyID, warehouseID string, activeOnly bool) ([]*entity.Location, error) {
	var list []*entity.Location
	err := r.h.read(ctx, func(st *state) error {
		for _, l := range st.locations {
			if l.CompanyID == companyID && l.WarehouseID == warehouseID && (!activeOnly || l.IsActive) {
				cp := *l
				list = append(list, &cp)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, err
}

func (r *locationRepo) DefaultForWarehouse(ctx context.Context, companyID, warehouseID string) (*entity.Location, error) {
	list, err := r.ListByWarehouse(ctx, companyID, warehouseID, true)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	for _, l := range list {
		if l.LocationType == entity.LocationTypeInternal {
			return l, nil
		}
	}
	return list[0], nil
}
