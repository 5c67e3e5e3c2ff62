package stock

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TransferUseCase orquesta traslados entre bodegas. Cada transición corre en una sola
// transacción: una línea que falla revierte todo el documento.
type TransferUseCase struct {
	ledger    *Ledger
	movements *MovementUseCase
}

// NewTransferUseCase construye el orquestador de traslados.
func NewTransferUseCase(ledger *Ledger, movements *MovementUseCase) *TransferUseCase {
	return &TransferUseCase{ledger: ledger, movements: movements}
}

// Create registra un traslado en borrador.
func (uc *TransferUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateTransferRequest) (*entity.StockTransfer, error) {
	if in.SourceWarehouseID == "" || in.DestinationWarehouseID == "" {
		return nil, domain.Invalid("bodega origen y destino son requeridas")
	}
	if in.SourceWarehouseID == in.DestinationWarehouseID {
		return nil, domain.Invalid("la bodega origen y destino deben ser distintas")
	}
	lines, err := buildTransferLines(in.Lines)
	if err != nil {
		return nil, err
	}
	t := &entity.StockTransfer{
		ID:                     newID(),
		CompanyID:              companyID,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Status:                 entity.TransferStatusDraft,
		ExpectedArrivalDate:    in.ExpectedArrivalDate,
		Notes:                  in.Notes,
		CreatedBy:              userID,
		Version:                1,
		Lines:                  lines,
	}
	err = uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		if _, err := u.warehouse(ctx, t.SourceWarehouseID); err != nil {
			return err
		}
		if _, err := u.warehouse(ctx, t.DestinationWarehouseID); err != nil {
			return err
		}
		if err := checkTransferProducts(ctx, u, t.Lines); err != nil {
			return err
		}
		ref, err := u.nextReference(ctx, PrefixTransfer)
		if err != nil {
			return err
		}
		t.Reference = ref
		t.CreatedAt = u.now
		t.UpdatedAt = u.now
		t.TransferDate = u.now
		if in.TransferDate != nil {
			t.TransferDate = *in.TransferDate
		}
		return u.repos.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("transfer_id", t.ID).Str("reference", t.Reference).Int("lines", len(t.Lines)).
		Msg("traslado creado")
	return t, nil
}

func buildTransferLines(in []dto.TransferLineRequest) ([]entity.TransferLine, error) {
	if len(in) == 0 {
		return nil, domain.Invalid("el traslado requiere al menos una línea")
	}
	lines := make([]entity.TransferLine, 0, len(in))
	for i, l := range in {
		if l.ProductID == "" {
			return nil, domain.AtLine(domain.Invalid("product_id es requerido"), i+1)
		}
		if !l.QuantitySent.IsPositive() {
			return nil, domain.AtLine(domain.Invalid("quantity_sent debe ser positiva"), i+1)
		}
		lines = append(lines, entity.TransferLine{
			ID:           newID(),
			ProductID:    l.ProductID,
			LotID:        l.LotID,
			QuantitySent: l.QuantitySent,
		})
	}
	return lines, nil
}

func checkTransferProducts(ctx context.Context, u *unitOfWork, lines []entity.TransferLine) error {
	for i := range lines {
		p, err := u.product(ctx, lines[i].ProductID)
		if err != nil {
			return domain.AtLine(err, i+1)
		}
		if !p.IsActive {
			return domain.AtLine(domain.Invalid("el producto %s está inactivo", p.SKU), i+1)
		}
	}
	return nil
}

// Update edita un borrador.
func (uc *TransferUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateTransferRequest) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		t, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if t.Status != entity.TransferStatusDraft {
			return domain.InvalidState("solo se puede editar un traslado en borrador (estado actual: %s)", t.Status)
		}
		if in.ExpectedArrivalDate != nil {
			d := *in.ExpectedArrivalDate
			t.ExpectedArrivalDate = &d
		}
		if in.Notes != nil {
			t.Notes = *in.Notes
		}
		if in.Lines != nil {
			lines, err := buildTransferLines(in.Lines)
			if err != nil {
				return err
			}
			if err := checkTransferProducts(ctx, u, lines); err != nil {
				return err
			}
			t.Lines = lines
		}
		t.UpdatedAt = u.now
		t.Version++
		out = t
		return u.repos.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Validate draft→validated: una salida validada por línea en la ubicación por defecto del origen.
// Si una línea no tiene disponible suficiente el error indica la línea y nada se aplica.
func (uc *TransferUseCase) Validate(ctx context.Context, companyID, userID, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		t, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if t.Status != entity.TransferStatusDraft {
			return domain.InvalidState("el traslado %s ya está %s", t.Reference, t.Status)
		}
		if len(t.Lines) == 0 {
			return domain.Invalid("el traslado %s no tiene líneas", t.Reference)
		}
		if _, err := u.warehouse(ctx, t.SourceWarehouseID); err != nil {
			return err
		}
		src, err := u.defaultLocation(ctx, t.SourceWarehouseID)
		if err != nil {
			return err
		}
		if _, err := u.defaultLocation(ctx, t.DestinationWarehouseID); err != nil {
			return err
		}

		keys := make([]entity.StockKey, 0, len(t.Lines))
		for i := range t.Lines {
			keys = append(keys, entity.StockKey{ProductID: t.Lines[i].ProductID, LocationID: src.ID, LotID: t.Lines[i].LotID})
		}
		if err := u.lockKeys(ctx, keys); err != nil {
			return err
		}

		for i := range t.Lines {
			line := &t.Lines[i]
			m := &entity.StockMovement{
				Type:             entity.MovementTypeOut,
				ProductID:        line.ProductID,
				LotID:            line.LotID,
				SourceLocationID: src.ID,
				Quantity:         line.QuantitySent,
				Reason:           "Traslado " + t.Reference,
				OriginType:       entity.OriginTransfer,
				OriginID:         t.ID,
			}
			if err := uc.movements.createValidatedInTx(ctx, u, m, userID); err != nil {
				return domain.AtLine(err, i+1)
			}
			line.OutMovementID = m.ID
		}
		t.Status = entity.TransferStatusValidated
		t.UpdatedAt = u.now
		t.Version++
		out = t
		if err := u.repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		u.emit(Event{Type: EventTransferValidated, AggregateID: t.ID, Reference: t.Reference, UserID: userID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("transfer_id", out.ID).Str("reference", out.Reference).Msg("traslado validado")
	return out, nil
}

// Ship validated→in_transit; registra transportista y guía. No toca el ledger.
func (uc *TransferUseCase) Ship(ctx context.Context, companyID, userID, id string, in dto.ShipTransferRequest) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		t, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if t.Status != entity.TransferStatusValidated {
			return domain.InvalidState("solo se puede despachar un traslado validado (estado actual: %s)", t.Status)
		}
		t.Status = entity.TransferStatusInTransit
		t.Transporter = in.Transporter
		t.TrackingNumber = in.TrackingNumber
		t.UpdatedAt = u.now
		t.Version++
		out = t
		if err := u.repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		u.emit(Event{Type: EventTransferShipped, AggregateID: t.ID, Reference: t.Reference, UserID: userID,
			Data: map[string]any{"transporter": t.Transporter, "tracking_number": t.TrackingNumber}})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("transfer_id", out.ID).Str("tracking_number", out.TrackingNumber).Msg("traslado despachado")
	return out, nil
}

// Receive registra cantidades recibidas por línea (>= 0; la diferencia queda como variación).
// Cada línea se recibe una sola vez y puede hacerse en varias llamadas; el traslado pasa a
// received cuando todas las líneas tienen cantidad registrada.
func (uc *TransferUseCase) Receive(ctx context.Context, companyID, userID, id string, in dto.ReceiveTransferRequest) (*entity.StockTransfer, error) {
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("se requiere al menos una línea recibida")
	}
	var out *entity.StockTransfer
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		t, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		if t.Status != entity.TransferStatusInTransit {
			return domain.InvalidState("solo se puede recibir un traslado en tránsito (estado actual: %s)", t.Status)
		}
		dst, err := u.defaultLocation(ctx, t.DestinationWarehouseID)
		if err != nil {
			return err
		}

		seen := make(map[string]struct{}, len(in.Lines))
		for _, rl := range in.Lines {
			line, idx := t.Line(rl.LineID)
			if line == nil {
				return domain.NotFound("línea %s no pertenece al traslado %s", rl.LineID, t.Reference)
			}
			if _, dup := seen[rl.LineID]; dup {
				return domain.AtLine(domain.Invalid("línea repetida en la recepción"), idx+1)
			}
			seen[rl.LineID] = struct{}{}
			if line.IsReceived() {
				return domain.AtLine(domain.InvalidState("la línea ya fue recibida"), idx+1)
			}
			if rl.QuantityReceived.IsNegative() {
				return domain.AtLine(domain.Invalid("quantity_received no puede ser negativa"), idx+1)
			}
			qty := rl.QuantityReceived
			line.QuantityReceived = &qty
			if !qty.IsPositive() {
				continue
			}
			m := &entity.StockMovement{
				Type:                  entity.MovementTypeIn,
				ProductID:             line.ProductID,
				LotID:                 line.LotID,
				DestinationLocationID: dst.ID,
				Quantity:              qty,
				Reason:                "Recepción traslado " + t.Reference,
				OriginType:            entity.OriginTransfer,
				OriginID:              t.ID,
			}
			if err := uc.movements.createValidatedInTx(ctx, u, m, userID); err != nil {
				return domain.AtLine(err, idx+1)
			}
			line.InMovementID = m.ID
		}

		if t.AllReceived() {
			now := u.now
			t.Status = entity.TransferStatusReceived
			t.ActualArrivalDate = &now
		}
		t.UpdatedAt = u.now
		t.Version++
		out = t
		if err := u.repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		if t.Status == entity.TransferStatusReceived {
			u.emit(Event{Type: EventTransferReceived, AggregateID: t.ID, Reference: t.Reference, UserID: userID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("transfer_id", out.ID).Str("status", out.Status).Int("lines", len(in.Lines)).
		Msg("recepción de traslado registrada")
	return out, nil
}

// Cancel desde draft solo cambia el estado. Desde validated o in_transit cancela las salidas
// (devuelve el stock al origen). Con alguna línea recibida se rechaza.
func (uc *TransferUseCase) Cancel(ctx context.Context, companyID, userID, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		t, err := uc.lock(ctx, u, id)
		if err != nil {
			return err
		}
		switch t.Status {
		case entity.TransferStatusDraft:
		case entity.TransferStatusValidated, entity.TransferStatusInTransit:
			if t.AnyReceived() {
				return domain.InvalidState("el traslado %s tiene líneas recibidas y no se puede cancelar", t.Reference)
			}
			for i := range t.Lines {
				if t.Lines[i].OutMovementID == "" {
					continue
				}
				if err := uc.movements.cancelByIDInTx(ctx, u, t.Lines[i].OutMovementID, userID); err != nil {
					return domain.AtLine(err, i+1)
				}
			}
		default:
			return domain.InvalidState("el traslado %s ya está %s", t.Reference, t.Status)
		}
		t.Status = entity.TransferStatusCancelled
		t.UpdatedAt = u.now
		t.Version++
		out = t
		if err := u.repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		u.emit(Event{Type: EventTransferCancelled, AggregateID: t.ID, Reference: t.Reference, UserID: userID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("transfer_id", out.ID).Str("reference", out.Reference).Msg("traslado cancelado")
	return out, nil
}

// Get obtiene un traslado con sus líneas.
func (uc *TransferUseCase) Get(ctx context.Context, companyID, id string) (*entity.StockTransfer, error) {
	t, err := uc.ledger.repos.Transfers.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("traslado %s no encontrado", id)
	}
	return t, nil
}

// List lista traslados.
func (uc *TransferUseCase) List(ctx context.Context, companyID string, f repository.TransferFilter) ([]*entity.StockTransfer, int, error) {
	f.Page = pageOrDefault(f.Page)
	return uc.ledger.repos.Transfers.List(ctx, companyID, f)
}

func (uc *TransferUseCase) lock(ctx context.Context, u *unitOfWork, id string) (*entity.StockTransfer, error) {
	t, err := u.repos.Transfers.GetForUpdate(ctx, u.companyID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("traslado %s no encontrado", id)
	}
	return t, nil
}
