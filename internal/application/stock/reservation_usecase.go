package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// expiryBatch máximo de reservas vencidas procesadas por barrido.
const expiryBatch = 500

// ReservationUseCase motor de reservas: reclamos blandos sobre el disponible.
type ReservationUseCase struct {
	ledger *Ledger
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(ledger *Ledger) *ReservationUseCase {
	return &ReservationUseCase{ledger: ledger}
}

// Reserve crea una reserva activa; exige disponible >= cantidad en la clave.
func (uc *ReservationUseCase) Reserve(ctx context.Context, companyID, userID string, in dto.CreateReservationRequest) (*entity.StockReservation, error) {
	if in.ProductID == "" || in.LocationID == "" {
		return nil, domain.Invalid("product_id y location_id son requeridos")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("la cantidad debe ser positiva")
	}
	if in.ReferenceType == "" {
		return nil, domain.Invalid("reference_type es requerido")
	}
	now := uc.ledger.Now()
	if in.ExpiryDate != nil && !in.ExpiryDate.After(now) {
		return nil, domain.Invalid("expiry_date debe ser futura")
	}

	r := &entity.StockReservation{
		ID:             newID(),
		CompanyID:      companyID,
		StockKey:       entity.StockKey{ProductID: in.ProductID, LocationID: in.LocationID, LotID: in.LotID},
		Quantity:       in.Quantity,
		ReferenceType:  in.ReferenceType,
		ReferenceID:    in.ReferenceID,
		ReferenceLabel: in.ReferenceLabel,
		Status:         entity.ReservationStatusActive,
		ExpiryDate:     in.ExpiryDate,
		ReservedBy:     userID,
	}
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		if _, err := u.product(ctx, r.ProductID); err != nil {
			return err
		}
		if _, err := u.location(ctx, r.LocationID); err != nil {
			return err
		}
		if _, err := u.applyDelta(ctx, r.StockKey, decimal.Zero, r.Quantity, false); err != nil {
			return err
		}
		r.CreatedAt = u.now
		if err := u.repos.Reservations.Create(ctx, r); err != nil {
			return err
		}
		u.emit(Event{
			Type: EventReservationCreated, AggregateID: r.ID, UserID: userID,
			Data: map[string]any{"product_id": r.ProductID, "location_id": r.LocationID, "quantity": r.Quantity.String(),
				"reference_type": r.ReferenceType, "reference_id": r.ReferenceID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("reservation_id", r.ID).Str("key", r.StockKey.String()).
		Str("quantity", r.Quantity.String()).Msg("reserva creada")
	return r, nil
}

// Release active→released; cualquier otro estado devuelve InvalidState.
func (uc *ReservationUseCase) Release(ctx context.Context, companyID, userID, id string) (*entity.StockReservation, error) {
	var out *entity.StockReservation
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		r, err := u.repos.Reservations.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.NotFound("reserva %s no encontrada", id)
		}
		out = r
		return uc.finishInTx(ctx, u, r, entity.ReservationStatusReleased, userID)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.log.Info().Str("reservation_id", id).Msg("reserva liberada")
	return out, nil
}

// ReleaseByReference libera todas las reservas activas de una referencia externa y devuelve cuántas.
func (uc *ReservationUseCase) ReleaseByReference(ctx context.Context, companyID, userID string, in dto.ReleaseByReferenceRequest) (int, error) {
	if in.ReferenceType == "" || in.ReferenceID == "" {
		return 0, domain.Invalid("reference_type y reference_id son requeridos")
	}
	count := 0
	err := uc.ledger.run(ctx, companyID, func(u *unitOfWork) error {
		count = 0
		list, err := u.repos.Reservations.ListActiveByReferenceForUpdate(ctx, companyID, in.ReferenceType, in.ReferenceID)
		if err != nil {
			return err
		}
		keys := make([]entity.StockKey, 0, len(list))
		for _, r := range list {
			keys = append(keys, r.StockKey)
		}
		if err := u.lockKeys(ctx, keys); err != nil {
			return err
		}
		for _, r := range list {
			if err := uc.finishInTx(ctx, u, r, entity.ReservationStatusReleased, userID); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	uc.ledger.log.Info().Str("reference_type", in.ReferenceType).Str("reference_id", in.ReferenceID).
		Int("released", count).Msg("reservas liberadas por referencia")
	return count, nil
}

// ExpireDue marca como expired las reservas activas vencidas en now. Cada reserva se procesa
// en su propia transacción y vuelve a comprobar su estado, así un barrido concurrente o una
// liberación manual no descuentan dos veces.
func (uc *ReservationUseCase) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := uc.ledger.repos.Reservations.ListDue(ctx, now, expiryBatch)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, cand := range due {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		done := false
		err := uc.ledger.run(ctx, cand.CompanyID, func(u *unitOfWork) error {
			done = false
			r, err := u.repos.Reservations.GetForUpdate(ctx, cand.CompanyID, cand.ID)
			if err != nil {
				return err
			}
			if r == nil || !r.IsExpiredAt(now) {
				return nil
			}
			if err := uc.finishInTx(ctx, u, r, entity.ReservationStatusExpired, ""); err != nil {
				return err
			}
			done = true
			return nil
		})
		if err != nil {
			uc.ledger.log.Error().Err(err).Str("reservation_id", cand.ID).Msg("no se pudo expirar la reserva")
			continue
		}
		if done {
			expired++
		}
	}
	if expired > 0 {
		uc.ledger.log.Info().Int("expired", expired).Msg("reservas vencidas expiradas")
	}
	return expired, nil
}

// finishInTx cierra una reserva activa y descuenta su cantidad del reservado una sola vez.
func (uc *ReservationUseCase) finishInTx(ctx context.Context, u *unitOfWork, r *entity.StockReservation, status, userID string) error {
	if !r.IsActive() {
		return domain.InvalidState("la reserva %s no está activa (estado: %s)", r.ID, r.Status)
	}
	if _, err := u.applyDelta(ctx, r.StockKey, decimal.Zero, r.Quantity.Neg(), false); err != nil {
		return err
	}
	now := u.now
	r.Status = status
	r.ReleasedAt = &now
	if err := u.repos.Reservations.Update(ctx, r); err != nil {
		return err
	}
	typ := EventReservationReleased
	if status == entity.ReservationStatusExpired {
		typ = EventReservationExpired
	}
	u.emit(Event{
		Type: typ, AggregateID: r.ID, UserID: userID,
		Data: map[string]any{"product_id": r.ProductID, "location_id": r.LocationID, "quantity": r.Quantity.String()},
	})
	return nil
}

// Get obtiene una reserva.
func (uc *ReservationUseCase) Get(ctx context.Context, companyID, id string) (*entity.StockReservation, error) {
	r, err := uc.ledger.repos.Reservations.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("reserva %s no encontrada", id)
	}
	return r, nil
}

// List lista reservas con filtros.
func (uc *ReservationUseCase) List(ctx context.Context, companyID string, f repository.ReservationFilter) ([]*entity.StockReservation, int, error) {
	f.Page = pageOrDefault(f.Page)
	return uc.ledger.repos.Reservations.List(ctx, companyID, f)
}
