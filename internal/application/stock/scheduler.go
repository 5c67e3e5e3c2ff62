package stock

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// SchedulerConfig intervalos de los procesos periódicos; cero desactiva el proceso.
type SchedulerConfig struct {
	ReservationSweep time.Duration
	Recompute        time.Duration
	Companies        []string
}

// Scheduler corre el barrido de reservas vencidas y el recálculo de reorden/ABC en segundo plano.
type Scheduler struct {
	cfg          SchedulerConfig
	reservations *ReservationUseCase
	replenish    *ReplenishmentUseCase
	clock        Clock
	log          *logger.Logger
}

// NewScheduler construye el planificador.
func NewScheduler(cfg SchedulerConfig, reservations *ReservationUseCase, replenish *ReplenishmentUseCase, ledger *Ledger) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		reservations: reservations,
		replenish:    replenish,
		clock:        ledger.clock,
		log:          ledger.log.Component("scheduler"),
	}
}

// Run bloquea hasta que ctx se cancela. Un error de una iteración se registra y no detiene el ciclo.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.cfg.ReservationSweep > 0 {
		g.Go(func() error {
			return s.every(ctx, "reservation_sweep", s.cfg.ReservationSweep, s.SweepReservations)
		})
	}
	if s.cfg.Recompute > 0 {
		g.Go(func() error {
			return s.every(ctx, "recompute", s.cfg.Recompute, s.Recompute)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// SweepReservations una pasada del barrido de reservas vencidas.
func (s *Scheduler) SweepReservations(ctx context.Context) error {
	_, err := s.reservations.ExpireDue(ctx, s.clock.Now())
	return err
}

// Recompute una pasada de reorden + ABC para las empresas configuradas.
func (s *Scheduler) Recompute(ctx context.Context) error {
	return s.replenish.RecomputeAll(ctx, s.cfg.Companies)
}

func (s *Scheduler) every(ctx context.Context, name string, interval time.Duration, job func(context.Context) error) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	s.log.Info().Str("job", name).Dur("interval", interval).Msg("proceso periódico iniciado")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			start := time.Now()
			if err := job(ctx); err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Str("job", name).Msg("proceso periódico fallido")
				continue
			}
			s.log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("proceso periódico completado")
		}
	}
}
