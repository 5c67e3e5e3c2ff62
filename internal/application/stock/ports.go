package stock

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error la transacción se revierte y el ledger queda intacto.
type TxRunner interface {
	Run(ctx context.Context, fn func(r repository.Repos) error) error
}

// EventPublisher publica eventos de dominio después del commit.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// LevelCache caché de lectura de filas del ledger. Nunca participa en escrituras.
// Cada clave tiene una generación que Invalidate incrementa. Get devuelve la generación
// vigente aunque sea miss, y Set solo guarda bajo esa generación: una lectura que pierde
// la carrera con un commit queda en una entrada que nadie vuelve a leer.
type LevelCache interface {
	Get(ctx context.Context, companyID string, key entity.StockKey) (level *entity.StockLevel, generation int64, ok bool)
	Set(ctx context.Context, level *entity.StockLevel, generation int64)
	Invalidate(ctx context.Context, companyID string, keys ...entity.StockKey)
}

// Clock fuente de tiempo; los tests usan un reloj fijo.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock reloj de pared en UTC.
func SystemClock() Clock { return systemClock{} }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...Event) error { return nil }

type nopCache struct{}

func (nopCache) Get(context.Context, string, entity.StockKey) (*entity.StockLevel, int64, bool) {
	return nil, 0, false
}
func (nopCache) Set(context.Context, *entity.StockLevel, int64)         {}
func (nopCache) Invalidate(context.Context, string, ...entity.StockKey) {}
