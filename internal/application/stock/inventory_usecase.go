package stock

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryUseCase motor de conteos: concilia lo esperado (foto del ledger) con lo contado
// y emite ajustes al validar.
type InventoryUseCase struct {
	ledger    *Ledger
	movements *MovementUseCase
}

// NewInventoryUseCase construye el motor de conteos.
func NewInventoryUseCase(ledger *Ledger, movements *MovementUseCase) *InventoryUseCase {
	return &InventoryUseCase{ledger: ledger, movements: movements}
}

// Create abre un inventario en borrador. Salvo que se pida vacío, toma una línea por cada fila
// con existencias en las ubicaciones activas de la bodega.
func (uc *InventoryUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateInventoryRequest) (*entity.Inventory, error) {
	if in.Name == "" || in.WarehouseID == "" {
		return nil, domain.Invalid("name y warehouse_id son requeridos")
	}
	inv := &entity.Inventory{
		ID:          newID(),
		CompanyID:   companyID,
		Name:        in.Name,
		WarehouseID: in.WarehouseID,
		Status:      entity.InventoryStatusDraft,
		Notes:       in.Notes,
		CreatedBy:   userID,
	}
	var include func(*entity.Product) bool
	if in.Empty {
		include = func(*entity.Product) bool { return false }
	}
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		return uc.createInTx(ctx, u, inv, include)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("inventory_id", inv.ID).Str("reference", inv.Reference).Int("lines", len(inv.Lines)).
		Msg("inventario creado")
	return inv, nil
}

// createInTx persiste el inventario con las líneas autopobladas. include nil toma todos los productos.
func (uc *InventoryUseCase) createInTx(ctx context.Context, u *unitOfWork, inv *entity.Inventory, include func(*entity.Product) bool) error {
	if _, err := u.warehouse(ctx, inv.WarehouseID); err != nil {
		return err
	}
	locs, err := u.repos.Locations.ListByWarehouse(ctx, u.companyID, inv.WarehouseID, true)
	if err != nil {
		return err
	}
	if len(locs) > 0 {
		ids := make([]string, 0, len(locs))
		for _, l := range locs {
			ids = append(ids, l.ID)
		}
		levels, err := u.repos.Levels.ListByLocations(ctx, u.companyID, ids)
		if err != nil {
			return err
		}
		sort.Slice(levels, func(i, j int) bool { return levels[i].Key().Less(levels[j].Key()) })
		products := make(map[string]*entity.Product)
		for _, lvl := range levels {
			if lvl.Quantity.IsZero() {
				continue
			}
			if include != nil {
				p, ok := products[lvl.ProductID]
				if !ok {
					if p, err = u.repos.Products.GetByID(ctx, u.companyID, lvl.ProductID); err != nil {
						return err
					}
					products[lvl.ProductID] = p
				}
				if p == nil || !include(p) {
					continue
				}
			}
			inv.Lines = append(inv.Lines, entity.InventoryLine{
				ID:               newID(),
				StockKey:         lvl.Key(),
				ExpectedQuantity: lvl.Quantity,
			})
		}
	}
	ref, err := u.nextReference(ctx, PrefixInventory)
	if err != nil {
		return err
	}
	inv.CompanyID = u.companyID
	inv.Reference = ref
	inv.CreatedAt = u.now
	inv.UpdatedAt = u.now
	inv.Version = 1
	return u.repos.Inventories.Create(ctx, inv)
}

// AddLine agrega una línea (draft o in_progress) con la foto actual del ledger como esperado.
func (uc *InventoryUseCase) AddLine(ctx context.Context, companyID, id string, in dto.AddInventoryLineRequest) (*entity.Inventory, error) {
	if in.ProductID == "" || in.LocationID == "" {
		return nil, domain.Invalid("product_id y location_id son requeridos")
	}
	var out *entity.Inventory
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		inv, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if !inv.AcceptsLines() {
			return domain.InvalidState("el inventario %s está %s y no admite líneas", inv.Reference, inv.Status)
		}
		loc, err := u.location(ctx, in.LocationID)
		if err != nil {
			return err
		}
		if loc.WarehouseID != inv.WarehouseID {
			return domain.Invalid("la ubicación %s no pertenece a la bodega del inventario", loc.Code)
		}
		if _, err := u.product(ctx, in.ProductID); err != nil {
			return err
		}
		key := entity.StockKey{ProductID: in.ProductID, LocationID: in.LocationID, LotID: in.LotID}
		if inv.HasKey(key) {
			return domain.Invalid("ya existe una línea para %s", key)
		}
		expected := decimal.Zero
		lvl, err := u.repos.Levels.Get(ctx, companyID, key)
		if err != nil {
			return err
		}
		if lvl != nil {
			expected = lvl.Quantity
		}
		inv.Lines = append(inv.Lines, entity.InventoryLine{ID: newID(), StockKey: key, ExpectedQuantity: expected})
		inv.UpdatedAt = u.now
		inv.Version++
		out = inv
		return u.repos.Inventories.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Start draft→in_progress.
func (uc *InventoryUseCase) Start(ctx context.Context, companyID, id string) (*entity.Inventory, error) {
	var out *entity.Inventory
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		inv, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if inv.Status != entity.InventoryStatusDraft {
			return domain.InvalidState("solo se puede iniciar un inventario en borrador (estado actual: %s)", inv.Status)
		}
		now := u.now
		inv.Status = entity.InventoryStatusInProgress
		inv.StartedAt = &now
		inv.UpdatedAt = now
		inv.Version++
		out = inv
		return u.repos.Inventories.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("inventory_id", out.ID).Msg("inventario iniciado")
	return out, nil
}

// UpdateLine registra (o sobrescribe) la cantidad contada; solo en in_progress.
func (uc *InventoryUseCase) UpdateLine(ctx context.Context, companyID, id, lineID string, in dto.UpdateInventoryLineRequest) (*entity.Inventory, error) {
	if in.CountedQuantity.IsNegative() {
		return nil, domain.Invalid("counted_quantity no puede ser negativa")
	}
	var out *entity.Inventory
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		inv, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if inv.Status != entity.InventoryStatusInProgress {
			return domain.InvalidState("solo se cuenta un inventario en curso (estado actual: %s)", inv.Status)
		}
		line, _ := inv.Line(lineID)
		if line == nil {
			return domain.NotFound("línea %s no pertenece al inventario %s", lineID, inv.Reference)
		}
		counted := in.CountedQuantity
		line.CountedQuantity = &counted
		if in.Notes != nil {
			line.Notes = *in.Notes
		}
		inv.UpdatedAt = u.now
		inv.Version++
		out = inv
		return u.repos.Inventories.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Validate in_progress→validated. Cada línea contada con diferencia genera un ajuste validado:
// destino para diferencias positivas, origen para negativas. Un faltante en una clave con
// reservas activas rechaza la validación completa indicando la línea: las reservas se liberan
// o reasignan antes de ajustar a la baja.
func (uc *InventoryUseCase) Validate(ctx context.Context, companyID, userID, id string) (*entity.Inventory, error) {
	var out *entity.Inventory
	adjusted := 0
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		adjusted = 0
		inv, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if inv.Status != entity.InventoryStatusInProgress {
			return domain.InvalidState("solo se valida un inventario en curso (estado actual: %s)", inv.Status)
		}

		keys := make([]entity.StockKey, 0, len(inv.Lines))
		for i := range inv.Lines {
			if d := inv.Lines[i].Difference(); d != nil && !d.IsZero() {
				keys = append(keys, inv.Lines[i].StockKey)
			}
		}
		if err := u.lockKeys(ctx, keys); err != nil {
			return err
		}

		for i := range inv.Lines {
			line := &inv.Lines[i]
			diff := line.Difference()
			if diff == nil || diff.IsZero() {
				continue
			}
			m := &entity.StockMovement{
				Type:       entity.MovementTypeAdjustment,
				ProductID:  line.ProductID,
				LotID:      line.LotID,
				Quantity:   diff.Abs(),
				Reason:     "Inventario " + inv.Reference,
				OriginType: entity.OriginInventory,
				OriginID:   inv.ID,
			}
			if diff.IsPositive() {
				m.DestinationLocationID = line.LocationID
			} else {
				lvl, err := u.repos.Levels.GetForUpdate(ctx, u.companyID, line.StockKey)
				if err != nil {
					return err
				}
				if lvl.ReservedQuantity.IsPositive() {
					return domain.AtLine(domain.Insufficient("faltante de %s en %s con %s reservado; libere las reservas antes de ajustar",
						diff.Abs().String(), line.StockKey, lvl.ReservedQuantity.String()), i+1)
				}
				m.SourceLocationID = line.LocationID
			}
			if err := uc.movements.createValidatedInTx(ctx, u, m, userID); err != nil {
				return domain.AtLine(err, i+1)
			}
			line.AdjustmentMovementID = m.ID
			adjusted++
		}

		now := u.now
		inv.Status = entity.InventoryStatusValidated
		inv.CompletedAt = &now
		inv.UpdatedAt = now
		inv.Version++
		out = inv
		if err := u.repos.Inventories.Update(ctx, inv); err != nil {
			return err
		}
		u.emit(Event{Type: EventInventoryValidated, AggregateID: inv.ID, Reference: inv.Reference, UserID: userID,
			Data: map[string]any{"adjustments": adjusted}})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("inventory_id", out.ID).Str("reference", out.Reference).Int("adjustments", adjusted).
		Msg("inventario validado")
	return out, nil
}

// Cancel desde draft o in_progress; no hay nada que revertir.
func (uc *InventoryUseCase) Cancel(ctx context.Context, companyID, id string) (*entity.Inventory, error) {
	var out *entity.Inventory
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		inv, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if !inv.AcceptsLines() {
			return domain.InvalidState("el inventario %s ya está %s", inv.Reference, inv.Status)
		}
		inv.Status = entity.InventoryStatusCancelled
		inv.UpdatedAt = u.now
		inv.Version++
		out = inv
		return u.repos.Inventories.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("inventory_id", out.ID).Msg("inventario cancelado")
	return out, nil
}

// Get obtiene un inventario con sus líneas.
func (uc *InventoryUseCase) Get(ctx context.Context, companyID, id string) (*entity.Inventory, error) {
	inv, err := uc.ledger.repos.Inventories.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NotFound("inventario %s no encontrado", id)
	}
	return inv, nil
}

// List lista inventarios.
func (uc *InventoryUseCase) List(ctx context.Context, companyID string, f repository.InventoryFilter) ([]*entity.Inventory, int, error) {
	f.Page = pageOrDefault(f.Page)
	return uc.ledger.repos.Inventories.List(ctx, companyID, f)
}

func (uc *InventoryUseCase) lock(ctx context.Context, u *unitOfWork, id string) (*entity.Inventory, error) {
	inv, err := u.repos.Inventories.GetForUpdate(ctx, u.companyID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NotFound("inventario %s no encontrado", id)
	}
	return inv, nil
}
