// Package messaging publica los eventos del núcleo de stock hacia Kafka o, sin broker, al log.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ stock.EventPublisher = (*KafkaPublisher)(nil)

const writeTimeout = 5 * time.Second

// messageWriter subconjunto de *kafka.Writer; los tests lo sustituyen.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe un mensaje por evento, con la clave del agregado para conservar el orden por partición.
type KafkaPublisher struct {
	writer messageWriter
	log    *logger.Logger
}

// NewKafkaPublisher construye el publisher sobre los brokers y el topic configurados.
func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}
	return newKafkaPublisher(writer, log)
}

func newKafkaPublisher(w messageWriter, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaPublisher{writer: w, log: log.Component("kafka")}
}

// Publish escribe los eventos en un solo lote.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...stock.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := toMessage(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("escribir eventos en kafka: %w", err)
	}
	p.log.Debug().Int("events", len(msgs)).Msg("eventos publicados")
	return nil
}

// Close vacía el buffer del writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(e stock.Event) (kafka.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serializar evento %s: %w", e.Type, err)
	}
	return kafka.Message{
		Key:   []byte(e.AggregateID),
		Value: payload,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "company-id", Value: []byte(e.CompanyID)},
		},
	}, nil
}
