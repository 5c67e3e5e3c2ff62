package messaging

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ stock.EventPublisher = (*LogPublisher)(nil)

// LogPublisher registra los eventos cuando no hay broker configurado.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogPublisher{log: log.Component("events")}
}

func (p *LogPublisher) Publish(_ context.Context, events ...stock.Event) error {
	for _, e := range events {
		p.log.Info().
			Str("type", e.Type).
			Str("company_id", e.CompanyID).
			Str("aggregate_id", e.AggregateID).
			Str("reference", e.Reference).
			Interface("data", e.Data).
			Msg("evento de stock")
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }
