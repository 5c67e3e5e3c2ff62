// Package bootstrap arma los casos de uso de stock según la configuración:
// almacenamiento (postgres o memoria), publicación de eventos y caché de disponibilidad.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/messaging"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// store lo que el ledger necesita del almacenamiento: transacciones y lecturas sin transacción.
type store interface {
	stock.TxRunner
	Repos() repository.Repos
}

// Container casos de uso cableados. Pool es nil con STORE_DRIVER=memory.
type Container struct {
	Config        *config.Config
	Pool          *pgxpool.Pool
	Ledger        *stock.Ledger
	Movements     *stock.MovementUseCase
	Transfers     *stock.TransferUseCase
	Inventories   *stock.InventoryUseCase
	Cycles        *stock.CycleUseCase
	Reservations  *stock.ReservationUseCase
	Replenishment *stock.ReplenishmentUseCase
	Scheduler     *stock.Scheduler
	ProductUC     *usecase.ProductUseCase
	WarehouseUC   *usecase.WarehouseUseCase

	closers []func() error
	log     *logger.Logger
}

// New conecta la infraestructura configurada y construye los casos de uso.
// Ante un error cierra lo que ya se había abierto.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (c *Container, err error) {
	c = &Container{Config: cfg, log: log}
	defer func() {
		if err != nil {
			c.Close()
			c = nil
		}
	}()

	var st store
	switch cfg.App.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		st = memory.New()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.Pool = pool
		c.closers = append(c.closers, func() error { pool.Close(); return nil })
		st = postgres.NewTxRunner(pool)
	}

	var events interface {
		stock.EventPublisher
		Close() error
	}
	if cfg.Kafka.Enabled() {
		events = messaging.NewKafkaPublisher(cfg.Kafka, log)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("eventos de stock hacia Kafka")
	} else {
		events = messaging.NewLogPublisher(log)
	}
	c.closers = append(c.closers, events.Close)

	var levelCache stock.LevelCache
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		c.closers = append(c.closers, rdb.Close)
		levelCache = cache.NewRedisLevelCache(rdb, cfg.Redis.TTL, log)
	}

	c.Ledger = stock.NewLedger(stock.Deps{
		Tx:     st,
		Repos:  st.Repos(),
		Events: events,
		Cache:  levelCache,
		Log:    log,
		Policy: stock.Policy{
			AllowNegativeAdjustments: cfg.Ledger.AllowNegativeAdjustments,
			ABCCutoffA:               cfg.Ledger.ABCCutoffA,
			ABCCutoffB:               cfg.Ledger.ABCCutoffB,
			ABCWindowDays:            cfg.Ledger.ABCWindowDays,
		},
	})
	c.Movements = stock.NewMovementUseCase(c.Ledger)
	c.Transfers = stock.NewTransferUseCase(c.Ledger, c.Movements)
	c.Inventories = stock.NewInventoryUseCase(c.Ledger, c.Movements)
	c.Cycles = stock.NewCycleUseCase(c.Ledger, c.Inventories)
	c.Reservations = stock.NewReservationUseCase(c.Ledger)
	c.Replenishment = stock.NewReplenishmentUseCase(c.Ledger)
	c.Scheduler = stock.NewScheduler(stock.SchedulerConfig{
		ReservationSweep: cfg.Scheduler.ReservationSweep,
		Recompute:        cfg.Scheduler.Recompute,
		Companies:        cfg.Scheduler.Companies,
	}, c.Reservations, c.Replenishment, c.Ledger)

	repos := st.Repos()
	c.ProductUC = usecase.NewProductUseCase(repos.Products)
	c.WarehouseUC = usecase.NewWarehouseUseCase(repos.Warehouses, repos.Locations)
	return c, nil
}

// Close libera conexiones en orden inverso de apertura.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.log.Warn().Err(err).Msg("cierre de recurso")
		}
	}
	c.closers = nil
}
