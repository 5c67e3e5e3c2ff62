package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type transferRepo struct{ h handle }

func copyTransfer(t *entity.StockTransfer) *entity.StockTransfer {
	cp := *t
	cp.Lines = t.CloneLines()
	return &cp
}

func (r *transferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			return domain.ErrDuplicate
		}
		st.transfers[t.ID] = copyTransfer(t)
		return nil
	})
}

func (r *transferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	return r.h.write(ctx, func(st *state) error {
		prev, ok := st.transfers[t.ID]
		if !ok || prev.CompanyID != t.CompanyID {
			return domain.ErrNotFound
		}
		st.transfers[t.ID] = copyTransfer(t)
		return nil
	})
}

func (r *transferRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := r.h.read(ctx, func(st *state) error {
		if t, ok := st.transfers[id]; ok && t.CompanyID == companyID {
			out = copyTransfer(t)
		}
		return nil
	})
	return out, err
}

func (r *transferRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *transferRepo) List(ctx context.Context, companyID string, f repository.TransferFilter) ([]*entity.StockTransfer, int, error) {
	var list []*entity.StockTransfer
	err := r.h.read(ctx, func(st *state) error {
		for _, t := range st.transfers {
			if t.CompanyID != companyID || (f.Status != "" && t.Status != f.Status) || !containsFold(t.Reference, f.Search) {
				continue
			}
			if f.WarehouseID != "" && t.SourceWarehouseID != f.WarehouseID && t.DestinationWarehouseID != f.WarehouseID {
				continue
			}
			list = append(list, copyTransfer(t))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	newestFirst(list, func(t *entity.StockTransfer) time.Time { return t.CreatedAt }, func(t *entity.StockTransfer) string { return t.Reference })
	return paginate(list, f.Page), len(list), nil
}

type inventoryRepo struct{ h handle }

func copyInventory(inv *entity.Inventory) *entity.Inventory {
	cp := *inv
	cp.Lines = inv.CloneLines()
	return &cp
}

func (r *inventoryRepo) Create(ctx context.Context, inv *entity.Inventory) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.inventories[inv.ID]; ok {
			return domain.ErrDuplicate
		}
		st.inventories[inv.ID] = copyInventory(inv)
		return nil
	})
}

func (r *inventoryRepo) Update(ctx context.Context, inv *entity.Inventory) error {
	return r.h.write(ctx, func(st *state) error {
		prev, ok := st.inventories[inv.ID]
		if !ok || prev.CompanyID != inv.CompanyID {
			return domain.ErrNotFound
		}
		st.inventories[inv.ID] = copyInventory(inv)
		return nil
	})
}

func (r *inventoryRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Inventory, error) {
	var out *entity.Inventory
	err := r.h.read(ctx, func(st *state) error {
		if inv, ok := st.inventories[id]; ok && inv.CompanyID == companyID {
			out = copyInventory(inv)
		}
		return nil
	})
	return out, err
}

func (r *inventoryRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Inventory, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *inventoryRepo) List(ctx context.Context, companyID string, f repository.InventoryFilter) ([]*entity.Inventory, int, error) {
	var list []*entity.Inventory
	err := r.h.read(ctx, func(st *state) error {
		for _, inv := range st.inventories {
			if inv.CompanyID != companyID || (f.Status != "" && inv.Status != f.Status) ||
				(f.WarehouseID != "" && inv.WarehouseID != f.WarehouseID) {
				continue
			}
			if f.Search != "" && !containsFold(inv.Reference, f.Search) && !containsFold(inv.Name, f.Search) {
				continue
			}
			list = append(list, copyInventory(inv))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	newestFirst(list, func(i *entity.Inventory) time.Time { return i.CreatedAt }, func(i *entity.Inventory) string { return i.Reference })
	return paginate(list, f.Page), len(list), nil
}

type cycleRepo struct{ h handle }

func (r *cycleRepo) Create(ctx context.Context, c *entity.InventoryCycle) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.cycles[c.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *c
		st.cycles[c.ID] = &cp
		return nil
	})
}

func (r *cycleRepo) Update(ctx context.Context, c *entity.InventoryCycle) error {
	return r.h.write(ctx, func(st *state) error {
		prev, ok := st.cycles[c.ID]
		if !ok || prev.CompanyID != c.CompanyID {
			return domain.ErrNotFound
		}
		cp := *c
		st.cycles[c.ID] = &cp
		return nil
	})
}

func (r *cycleRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.InventoryCycle, error) {
	var out *entity.InventoryCycle
	err := r.h.read(ctx, func(st *state) error {
		if c, ok := st.cycles[id]; ok && c.CompanyID == companyID {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *cycleRepo) List(ctx context.Context, companyID string, f repository.CycleFilter) ([]*entity.InventoryCycle, int, error) {
	var list []*entity.InventoryCycle
	err := r.h.read(ctx, func(st *state) error {
		for _, c := range st.cycles {
			if c.CompanyID != companyID || (f.Status != "" && c.Status != f.Status) ||
				(f.Classification != "" && c.Classification != f.Classification) ||
				(f.WarehouseID != "" && c.WarehouseID != f.WarehouseID) {
				continue
			}
			cp := *c
			list = append(list, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	// Por fecha de inicio ascendente: la agenda de conteos.
	sort.Slice(list, func(i, j int) bool {
		if !list[i].StartDate.Equal(list[j].StartDate) {
			return list[i].StartDate.Before(list[j].StartDate)
		}
		return list[i].Name < list[j].Name
	})
	return paginate(list, f.Page), len(list), nil
}
