package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockReservationRepository puerto de persistencia de reservas.
type StockReservationRepository interface {
	Create(ctx context.Context, r *entity.StockReservation) error
	Update(ctx context.Context, r *entity.StockReservation) error
	GetByID(ctx context.Context, companyID, id string) (*entity.StockReservation, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockReservation, error)
	List(ctx context.Context, companyID string, f ReservationFilter) ([]*entity.StockReservation, int, error)
	// ListActiveByReferenceForUpdate bloquea las reservas activas de una referencia externa.
	ListActiveByReferenceForUpdate(ctx context.Context, companyID, referenceType, referenceID string) ([]*entity.StockReservation, error)
	// ListDue reservas activas vencidas en now, de todas las empresas.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.StockReservation, error)
}
