package stock

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// CycleUseCase planificación de conteos cíclicos; al iniciar un ciclo se materializa un inventario.
type CycleUseCase struct {
	ledger      *Ledger
	inventories *InventoryUseCase
}

// NewCycleUseCase construye el caso de uso de ciclos.
func NewCycleUseCase(ledger *Ledger, inventories *InventoryUseCase) *CycleUseCase {
	return &CycleUseCase{ledger: ledger, inventories: inventories}
}

// Create planifica un ciclo.
func (uc *CycleUseCase) Create(ctx context.Context, companyID string, in dto.CreateCycleRequest) (*entity.InventoryCycle, error) {
	if entity.FrequencyMonths(in.Frequency) == 0 {
		return nil, domain.Invalid("frecuencia desconocida: %q", in.Frequency)
	}
	if in.Classification != "" && !entity.IsValidABC(in.Classification) {
		return nil, domain.Invalid("clasificación desconocida: %q", in.Classification)
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, domain.Invalid("end_date no puede ser anterior a start_date")
	}
	c := &entity.InventoryCycle{
		ID:             newID(),
		CompanyID:      companyID,
		Name:           in.Name,
		Frequency:      in.Frequency,
		Classification: in.Classification,
		CategoryID:     in.CategoryID,
		WarehouseID:    in.WarehouseID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		AssignedTo:     in.AssignedTo,
		Status:         entity.CycleStatusPlanned,
	}
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		if _, err := u.warehouse(ctx, c.WarehouseID); err != nil {
			return err
		}
		c.CreatedAt = u.now
		c.UpdatedAt = u.now
		return u.repos.Cycles.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Generate crea ciclos planificados por clase ABC: A mensual, B trimestral, C anual.
func (uc *CycleUseCase) Generate(ctx context.Context, companyID string, in dto.GenerateCyclesRequest) ([]*entity.InventoryCycle, error) {
	if in.EndDate.Before(in.StartDate) {
		return nil, domain.Invalid("end_date no puede ser anterior a start_date")
	}
	classes := in.Classifications
	if len(classes) == 0 {
		classes = []string{entity.ABCClassA, entity.ABCClassB, entity.ABCClassC}
	}
	for _, c := range classes {
		if !entity.IsValidABC(c) {
			return nil, domain.Invalid("clasificación desconocida: %q", c)
		}
	}
	periods := inventory.GenerateCyclePeriods(in.StartDate, in.EndDate, classes)

	var out []*entity.InventoryCycle
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		out = out[:0]
		wh, err := u.warehouse(ctx, in.WarehouseID)
		if err != nil {
			return err
		}
		for _, p := range periods {
			c := &entity.InventoryCycle{
				ID:             newID(),
				CompanyID:      companyID,
				Name:           fmt.Sprintf("Conteo %s %s %s", p.Classification, wh.Code, p.Start.Format("2006-01-02")),
				Frequency:      p.Frequency,
				Classification: p.Classification,
				WarehouseID:    in.WarehouseID,
				StartDate:      p.Start,
				EndDate:        p.End,
				AssignedTo:     in.AssignedTo,
				Status:         entity.CycleStatusPlanned,
				CreatedAt:      u.now,
				UpdatedAt:      u.now,
			}
			if err := u.repos.Cycles.Create(ctx, c); err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("company_id", companyID).Int("cycles", len(out)).Msg("ciclos de inventario generados")
	return out, nil
}

// Start planned→in_progress: crea un inventario en curso con los productos que cumplen
// clasificación y categoría del ciclo.
func (uc *CycleUseCase) Start(ctx context.Context, companyID, userID, id string) (*entity.InventoryCycle, error) {
	var out *entity.InventoryCycle
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		c, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if c.Status != entity.CycleStatusPlanned {
			return domain.InvalidState("solo se inicia un ciclo planificado (estado actual: %s)", c.Status)
		}
		inv := &entity.Inventory{
			ID:          newID(),
			Name:        c.Name,
			WarehouseID: c.WarehouseID,
			Status:      entity.InventoryStatusInProgress,
			CreatedBy:   userID,
		}
		now := u.now
		inv.StartedAt = &now
		include := func(p *entity.Product) bool {
			if !p.IsStockable() || !p.IsActive {
				return false
			}
			if c.Classification != "" && p.ABCClassification != c.Classification {
				return false
			}
			return c.CategoryID == "" || p.CategoryID == c.CategoryID
		}
		if err := uc.inventories.createInTx(ctx, u, inv, include); err != nil {
			return err
		}
		c.Status = entity.CycleStatusInProgress
		c.InventoryID = inv.ID
		c.UpdatedAt = now
		out = c
		return u.repos.Cycles.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("cycle_id", out.ID).Str("inventory_id", out.InventoryID).Msg("ciclo de inventario iniciado")
	return out, nil
}

// Complete in_progress→completed; exige que el inventario asociado esté validado.
func (uc *CycleUseCase) Complete(ctx context.Context, companyID, id string) (*entity.InventoryCycle, error) {
	var out *entity.InventoryCycle
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		c, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if c.Status != entity.CycleStatusInProgress {
			return domain.InvalidState("solo se completa un ciclo en curso (estado actual: %s)", c.Status)
		}
		inv, err := u.repos.Inventories.GetByID(ctx, companyID, c.InventoryID)
		if err != nil {
			return err
		}
		if inv == nil || inv.Status != entity.InventoryStatusValidated {
			return domain.InvalidState("el inventario del ciclo debe estar validado")
		}
		c.Status = entity.CycleStatusCompleted
		c.UpdatedAt = u.now
		out = c
		return u.repos.Cycles.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel desde planned, o desde in_progress si su inventario ya fue cancelado.
func (uc *CycleUseCase) Cancel(ctx context.Context, companyID, id string) (*entity.InventoryCycle, error) {
	var out *entity.InventoryCycle
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		c, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		switch c.Status {
		case entity.CycleStatusPlanned:
		case entity.CycleStatusInProgress:
			inv, err := u.repos.Inventories.GetByID(ctx, companyID, c.InventoryID)
			if err != nil {
				return err
			}
			if inv != nil && inv.Status != entity.InventoryStatusCancelled {
				return domain.InvalidState("cancele primero el inventario %s del ciclo (estado actual: %s)", inv.Reference, inv.Status)
			}
		default:
			return domain.InvalidState("el ciclo ya está %s", c.Status)
		}
		c.Status = entity.CycleStatusCancelled
		c.UpdatedAt = u.now
		out = c
		return u.repos.Cycles.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List lista ciclos.
func (uc *CycleUseCase) List(ctx context.Context, companyID string, f repository.CycleFilter) ([]*entity.InventoryCycle, int, error) {
	f.Page = pageOrDefault(f.Page)
	return uc.ledger.repos.Cycles.List(ctx, companyID, f)
}

func (uc *CycleUseCase) lock(ctx context.Context, u *unitOfWork, id string) (*entity.InventoryCycle, error) {
	c, err := u.repos.Cycles.GetForUpdate(ctx, u.companyID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("ciclo %s no encontrado", id)
	}
	return c, nil
}
