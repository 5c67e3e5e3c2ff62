package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type levelRepo struct{ h handle }

func (r *levelRepo) Get(ctx context.Context, companyID string, key entity.StockKey) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.h.read(ctx, func(st *state) error {
		if lvl, ok := st.levels[levelID{companyID, key}]; ok {
			cp := *lvl
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *levelRepo) GetForUpdate(ctx context.Context, companyID string, key entity.StockKey) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.h.write(ctx, func(st *state) error {
		id := levelID{companyID, key}
		lvl, ok := st.levels[id]
		if !ok {
			lvl = entity.NewStockLevel(companyID, key)
			st.levels[id] = lvl
		}
		cp := *lvl
		out = &cp
		return nil
	})
	return out, err
}

func (r *levelRepo) Save(ctx context.Context, level *entity.StockLevel) error {
	return r.h.write(ctx, func(st *state) error {
		cp := *level
		st.levels[levelID{level.CompanyID, level.StockKey}] = &cp
		return nil
	})
}

func (r *levelRepo) ListByLocations(ctx context.Context, companyID string, locationIDs []string) ([]*entity.StockLevel, error) {
	want := make(map[string]struct{}, len(locationIDs))
	for _, id := range locationIDs {
		want[id] = struct{}{}
	}
	return r.collect(ctx, companyID, func(l *entity.StockLevel) bool {
		_, ok := want[l.LocationID]
		return ok
	})
}

func (r *levelRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.StockLevel, error) {
	return r.collect(ctx, companyID, func(l *entity.StockLevel) bool { return l.ProductID == productID })
}

func (r *levelRepo) collect(ctx context.Context, companyID string, match func(*entity.StockLevel) bool) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	err := r.h.read(ctx, func(st *state) error {
		for id, lvl := range st.levels {
			if id.companyID != companyID || !match(lvl) {
				continue
			}
			cp := *lvl
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StockKey.Less(out[j].StockKey) })
	return out, err
}

func (r *levelRepo) TotalsByProduct(ctx context.Context, companyID string, locationIDs []string) (map[string]entity.StockTotals, error) {
	var want map[string]struct{}
	if len(locationIDs) > 0 {
		want = make(map[string]struct{}, len(locationIDs))
		for _, id := range locationIDs {
			want[id] = struct{}{}
		}
	}
	out := map[string]entity.StockTotals{}
	err := r.h.read(ctx, func(st *state) error {
		for id, lvl := range st.levels {
			if id.companyID != companyID {
				continue
			}
			if want != nil {
				if _, ok := want[lvl.LocationID]; !ok {
					continue
				}
			}
			t := out[lvl.ProductID]
			t.Quantity = t.Quantity.Add(lvl.Quantity)
			t.Reserved = t.Reserved.Add(lvl.ReservedQuantity)
			out[lvl.ProductID] = t
		}
		return nil
	})
	return out, err
}

type movementRepo struct{ h handle }

func (r *movementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.movements[m.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.movements {
			if other.CompanyID == m.CompanyID && other.Reference == m.Reference {
				return fmt.Errorf("referencia %s: %w", m.Reference, domain.ErrDuplicate)
			}
		}
		cp := *m
		st.movements[m.ID] = &cp
		return nil
	})
}

func (r *movementRepo) Update(ctx context.Context, m *entity.StockMovement) error {
	return r.h.write(ctx, func(st *state) error {
		prev, ok := st.movements[m.ID]
		if !ok || prev.CompanyID != m.CompanyID {
			return domain.ErrNotFound
		}
		cp := *m
		st.movements[m.ID] = &cp
		return nil
	})
}

func (r *movementRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.h.read(ctx, func(st *state) error {
		if m, ok := st.movements[id]; ok && m.CompanyID == companyID {
			cp := *m
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockMovement, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *movementRepo) List(ctx context.Context, companyID string, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	var list []*entity.StockMovement
	err := r.h.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.CompanyID != companyID {
				continue
			}
			if (f.Type != "" && m.Type != f.Type) || (f.Status != "" && m.Status != f.Status) ||
				(f.ProductID != "" && m.ProductID != f.ProductID) ||
				(f.OriginType != "" && m.OriginType != f.OriginType) || (f.OriginID != "" && m.OriginID != f.OriginID) {
				continue
			}
			if f.LocationID != "" && m.SourceLocationID != f.LocationID && m.DestinationLocationID != f.LocationID {
				continue
			}
			if !containsFold(m.Reference, f.Search) || !inRange(m.CreatedAt, f.From, f.To) {
				continue
			}
			cp := *m
			list = append(list, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	newestFirst(list, func(m *entity.StockMovement) time.Time { return m.CreatedAt }, func(m *entity.StockMovement) string { return m.Reference })
	return paginate(list, f.Page), len(list), nil
}

func (r *movementRepo) ConsumptionByProduct(ctx context.Context, companyID string, since time.Time) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	err := r.h.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if isConsumption(m, companyID, since) {
				out[m.ProductID] = out[m.ProductID].Add(m.Quantity)
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) SumValidatedOut(ctx context.Context, companyID, productID string, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.h.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID && isConsumption(m, companyID, since) {
				total = total.Add(m.Quantity)
			}
		}
		return nil
	})
	return total, err
}

// isConsumption salida validada de la empresa desde since.
func isConsumption(m *entity.StockMovement, companyID string, since time.Time) bool {
	return m.CompanyID == companyID && m.Type == entity.MovementTypeOut && m.IsValidated() &&
		m.ValidatedAt != nil && !m.ValidatedAt.Before(since)
}

type reservationRepo struct{ h handle }

func (r *reservationRepo) Create(ctx context.Context, res *entity.StockReservation) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.reservations[res.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *res
		st.reservations[res.ID] = &cp
		return nil
	})
}

func (r *reservationRepo) Update(ctx context.Context, res *entity.StockReservation) error {
	return r.h.write(ctx, func(st *state) error {
		prev, ok := st.reservations[res.ID]
		if !ok || prev.CompanyID != res.CompanyID {
			return domain.ErrNotFound
		}
		cp := *res
		st.reservations[res.ID] = &cp
		return nil
	})
}

func (r *reservationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockReservation, error) {
	var out *entity.StockReservation
	err := r.h.read(ctx, func(st *state) error {
		if res, ok := st.reservations[id]; ok && res.CompanyID == companyID {
			cp := *res
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *reservationRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockReservation, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *reservationRepo) List(ctx context.Context, companyID string, f repository.ReservationFilter) ([]*entity.StockReservation, int, error) {
	list, err := r.filter(ctx, func(res *entity.StockReservation) bool {
		return res.CompanyID == companyID &&
			(f.Status == "" || res.Status == f.Status) &&
			(f.ProductID == "" || res.ProductID == f.ProductID) &&
			(f.LocationID == "" || res.LocationID == f.LocationID) &&
			(f.ReferenceType == "" || res.ReferenceType == f.ReferenceType) &&
			(f.ReferenceID == "" || res.ReferenceID == f.ReferenceID)
	})
	if err != nil {
		return nil, 0, err
	}
	newestFirst(list, func(r *entity.StockReservation) time.Time { return r.CreatedAt }, func(r *entity.StockReservation) string { return r.ID })
	return paginate(list, f.Page), len(list), nil
}

func (r *reservationRepo) ListActiveByReferenceForUpdate(ctx context.Context, companyID, referenceType, referenceID string) ([]*entity.StockReservation, error) {
	list, err := r.filter(ctx, func(res *entity.StockReservation) bool {
		return res.CompanyID == companyID && res.IsActive() &&
			res.ReferenceType == referenceType && res.ReferenceID == referenceID
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, err
}

func (r *reservationRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.StockReservation, error) {
	list, err := r.filter(ctx, func(res *entity.StockReservation) bool { return res.IsExpiredAt(now) })
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].ExpiryDate.Equal(*list[j].ExpiryDate) {
			return list[i].ExpiryDate.Before(*list[j].ExpiryDate)
		}
		return list[i].ID < list[j].ID
	})
	return paginate(list, repository.Page{Limit: limit}), nil
}

func (r *reservationRepo) filter(ctx context.Context, match func(*entity.StockReservation) bool) ([]*entity.StockReservation, error) {
	var out []*entity.StockReservation
	err := r.h.read(ctx, func(st *state) error {
		for _, res := range st.reservations {
			if match(res) {
				cp := *res
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

type sequenceRepo struct{ h handle }

func (r *sequenceRepo) Next(ctx context.Context, companyID, prefix string, day time.Time) (int, error) {
	n := 0
	err := r.h.write(ctx, func(st *state) error {
		id := seqID{companyID, prefix, day.UTC().Format("20060102")}
		st.sequences[id]++
		n = st.sequences[id]
		return nil
	})
	return n, err
}
