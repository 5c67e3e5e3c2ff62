package stock

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MovementUseCase motor de movimientos: crea borradores, los valida contra el ledger
// (SELECT FOR UPDATE sobre documento y filas) y los cancela aplicando el delta inverso.
type MovementUseCase struct {
	ledger *Ledger
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(ledger *Ledger) *MovementUseCase {
	return &MovementUseCase{ledger: ledger}
}

// Create registra un movimiento en borrador. No toca el ledger.
func (uc *MovementUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateMovementRequest) (*entity.StockMovement, error) {
	m := &entity.StockMovement{
		ID:                    newID(),
		CompanyID:             companyID,
		Type:                  in.Type,
		ProductID:             in.ProductID,
		LotID:                 in.LotID,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Quantity:              in.Quantity,
		UnitCost:              in.UnitCost,
		Status:                entity.MovementStatusDraft,
		Reason:                in.Reason,
		Notes:                 in.Notes,
		CreatedBy:             userID,
	}
	if err := m.CheckEndpoints(); err != nil {
		return nil, err
	}
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		return uc.createInTx(ctx, u, m)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("movement_id", m.ID).Str("reference", m.Reference).Str("type", m.Type).
		Str("company_id", companyID).Msg("movimiento creado")
	return m, nil
}

// createInTx verifica producto y ubicaciones y persiste el borrador con su referencia.
func (uc *MovementUseCase) createInTx(ctx context.Context, u *unitOfWork, m *entity.StockMovement) error {
	if err := m.CheckEndpoints(); err != nil {
		return err
	}
	p, err := u.product(ctx, m.ProductID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return domain.Invalid("el producto %s está inactivo", p.SKU)
	}
	for _, id := range []string{m.SourceLocationID, m.DestinationLocationID} {
		if id == "" {
			continue
		}
		if _, err := u.location(ctx, id); err != nil {
			return err
		}
	}
	ref, err := u.nextReference(ctx, PrefixMovement)
	if err != nil {
		return err
	}
	m.CompanyID = u.companyID
	m.Reference = ref
	m.CreatedAt = u.now
	m.Version = 1
	return u.repos.Movements.Create(ctx, m)
}

// Update modifica un borrador. Tipo y producto no son editables.
func (uc *MovementUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateMovementRequest) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		m, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if !m.IsDraft() {
			return domain.InvalidState("solo se puede editar un movimiento en borrador (estado actual: %s)", m.Status)
		}
		if in.LotID != nil {
			m.LotID = *in.LotID
		}
		if in.SourceLocationID != nil {
			m.SourceLocationID = *in.SourceLocationID
		}
		if in.DestinationLocationID != nil {
			m.DestinationLocationID = *in.DestinationLocationID
		}
		if in.Quantity != nil {
			m.Quantity = *in.Quantity
		}
		if in.UnitCost != nil {
			c := *in.UnitCost
			m.UnitCost = &c
		}
		if in.Reason != nil {
			m.Reason = *in.Reason
		}
		if in.Notes != nil {
			m.Notes = *in.Notes
		}
		if err := m.CheckEndpoints(); err != nil {
			return err
		}
		for _, locID := range []string{m.SourceLocationID, m.DestinationLocationID} {
			if locID == "" {
				continue
			}
			if _, err := u.location(ctx, locID); err != nil {
				return err
			}
		}
		m.Version++
		out = m
		return u.repos.Movements.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get obtiene un movimiento de la empresa.
func (uc *MovementUseCase) Get(ctx context.Context, companyID, id string) (*entity.StockMovement, error) {
	m, err := uc.ledger.repos.Movements.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("movimiento %s no encontrado", id)
	}
	return m, nil
}

// List lista movimientos con filtros y paginación.
func (uc *MovementUseCase) List(ctx context.Context, companyID string, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	f.Page = pageOrDefault(f.Page)
	return uc.ledger.repos.Movements.List(ctx, companyID, f)
}

// Validate pasa draft→validated aplicando los deltas. Una segunda validación concurrente
// espera el bloqueo del documento y recibe InvalidState.
func (uc *MovementUseCase) Validate(ctx context.Context, companyID, userID, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		m, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		out = m
		return uc.validateInTx(ctx, u, m, userID)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("movement_id", out.ID).Str("reference", out.Reference).Str("type", out.Type).
		Str("quantity", out.Quantity.String()).Msg("movimiento validado")
	return out, nil
}

// validateInTx aplica la validación sobre un movimiento ya bloqueado.
func (uc *MovementUseCase) validateInTx(ctx context.Context, u *unitOfWork, m *entity.StockMovement, userID string) error {
	if !m.IsDraft() {
		return domain.InvalidState("el movimiento %s ya está %s", m.Reference, m.Status)
	}
	if err := m.CheckEndpoints(); err != nil {
		return err
	}
	deltas := m.Deltas()
	keys := make([]entity.StockKey, 0, len(deltas))
	for _, d := range deltas {
		keys = append(keys, d.Key)
	}
	if err := u.lockKeys(ctx, keys); err != nil {
		return err
	}

	if m.Type == entity.MovementTypeIn && m.UnitCost != nil && m.UnitCost.IsPositive() {
		if err := uc.updateAverageCost(ctx, u, m); err != nil {
			return err
		}
	}

	allowNegative := m.Type == entity.MovementTypeAdjustment && m.OriginType == "" && u.policy.AllowNegativeAdjustments
	for _, d := range deltas {
		if _, err := u.applyDelta(ctx, d.Key, d.Quantity, decimal.Zero, allowNegative); err != nil {
			return err
		}
	}

	now := u.now
	m.Status = entity.MovementStatusValidated
	m.ValidatedAt = &now
	m.ValidatedBy = userID
	m.Version++
	if err := u.repos.Movements.Update(ctx, m); err != nil {
		return err
	}
	u.emit(Event{
		Type: EventMovementValidated, AggregateID: m.ID, Reference: m.Reference, UserID: userID,
		Data: map[string]any{"movement_type": m.Type, "product_id": m.ProductID, "quantity": m.Quantity.String()},
	})
	return nil
}

// updateAverageCost recalcula el CUMP con el físico total del producto antes de la entrada.
func (uc *MovementUseCase) updateAverageCost(ctx context.Context, u *unitOfWork, m *entity.StockMovement) error {
	p, err := u.product(ctx, m.ProductID)
	if err != nil {
		return err
	}
	levels, err := u.repos.Levels.ListByProduct(ctx, u.companyID, m.ProductID)
	if err != nil {
		return err
	}
	current := decimal.Zero
	for _, lvl := range levels {
		current = current.Add(lvl.Quantity)
	}
	newCost := inventory.CostCalculator(current, p.Cost, m.Quantity, *m.UnitCost)
	if newCost.Equal(p.Cost) {
		return nil
	}
	return u.repos.Products.UpdateCost(ctx, u.companyID, p.ID, newCost)
}

// Cancel desde draft solo cambia el estado; desde validated aplica el delta inverso exacto.
// Cancelar dos veces devuelve InvalidState sin tocar el ledger.
func (uc *MovementUseCase) Cancel(ctx context.Context, companyID, userID, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		m, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if m.OriginType != "" {
			return domain.InvalidState("el movimiento %s pertenece a %s %s; cancele el documento de origen", m.Reference, m.OriginType, m.OriginID)
		}
		out = m
		return uc.cancelInTx(ctx, u, m, userID)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("movement_id", out.ID).Str("reference", out.Reference).Msg("movimiento cancelado")
	return out, nil
}

func (uc *MovementUseCase) cancelInTx(ctx context.Context, u *unitOfWork, m *entity.StockMovement, userID string) error {
	switch m.Status {
	case entity.MovementStatusDraft:
	case entity.MovementStatusValidated:
		deltas := m.Deltas()
		keys := make([]entity.StockKey, 0, len(deltas))
		for _, d := range deltas {
			keys = append(keys, d.Key)
		}
		if err := u.lockKeys(ctx, keys); err != nil {
			return err
		}
		allowNegative := m.Type == entity.MovementTypeAdjustment && m.OriginType == "" && u.policy.AllowNegativeAdjustments
		for _, d := range deltas {
			if _, err := u.applyDelta(ctx, d.Key, d.Quantity.Neg(), decimal.Zero, allowNegative); err != nil {
				return err
			}
		}
	default:
		return domain.InvalidState("el movimiento %s ya está %s", m.Reference, m.Status)
	}
	wasValidated := m.IsValidated()
	now := u.now
	m.Status = entity.MovementStatusCancelled
	m.CancelledAt = &now
	m.Version++
	if err := u.repos.Movements.Update(ctx, m); err != nil {
		return err
	}
	if wasValidated {
		u.emit(Event{
			Type: EventMovementCancelled, AggregateID: m.ID, Reference: m.Reference, UserID: userID,
			Data: map[string]any{"movement_type": m.Type, "product_id": m.ProductID, "quantity": m.Quantity.String()},
		})
	}
	return nil
}

// lock carga el movimiento con bloqueo de fila.
func (uc *MovementUseCase) lock(ctx context.Context, u *unitOfWork, id string) (*entity.StockMovement, error) {
	m, err := u.repos.Movements.GetForUpdate(ctx, u.companyID, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("movimiento %s no encontrado", id)
	}
	return m, nil
}

// createValidatedInTx crea y valida un movimiento emitido por otro documento (traslado, inventario).
func (uc *MovementUseCase) createValidatedInTx(ctx context.Context, u *unitOfWork, m *entity.StockMovement, userID string) error {
	m.ID = newID()
	m.Status = entity.MovementStatusDraft
	m.CreatedBy = userID
	if err := uc.createInTx(ctx, u, m); err != nil {
		return err
	}
	return uc.validateInTx(ctx, u, m, userID)
}

// cancelByIDInTx cancela un movimiento emitido por otro documento (compensación).
func (uc *MovementUseCase) cancelByIDInTx(ctx context.Context, u *unitOfWork, id, userID string) error {
	m, err := uc.lock(ctx, u, id)
	if err != nil {
		return err
	}
	return uc.cancelInTx(ctx, u, m, userID)
}
