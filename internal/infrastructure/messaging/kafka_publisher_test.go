package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish_MensajePorEvento(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, nil)
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(),
		stock.Event{Type: stock.EventMovementValidated, CompanyID: "c1", AggregateID: "m1", Reference: "MOV-20240115-0001", OccurredAt: at},
		stock.Event{Type: stock.EventReservationCreated, CompanyID: "c1", AggregateID: "r1", OccurredAt: at},
	)
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)

	msg := w.msgs[0]
	assert.Equal(t, "m1", string(msg.Key), "la clave debe ser el agregado")
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, stock.EventMovementValidated, string(msg.Headers[0].Value))

	var decoded stock.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "MOV-20240115-0001", decoded.Reference)
	assert.Equal(t, "c1", decoded.CompanyID)
}

func TestKafkaPublisher_Publish_SinEventosNoEscribe(t *testing.T) {
	w := &fakeWriter{err: errors.New("no debería llamarse")}
	p := newKafkaPublisher(w, nil)
	assert.NoError(t, p.Publish(context.Background()))
}

func TestKafkaPublisher_Publish_ErrorDelBroker(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := newKafkaPublisher(w, nil)
	err := p.Publish(context.Background(), stock.Event{Type: stock.EventMovementCancelled, AggregateID: "m1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker caído")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newKafkaPublisher(w, nil).Close())
	assert.True(t, w.closed)
}

func TestLogPublisher_RegistraEventos(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(logger.NewWithWriter(&buf, "info"))
	require.NoError(t, p.Publish(context.Background(),
		stock.Event{Type: stock.EventTransferReceived, CompanyID: "c1", AggregateID: "t1", Reference: "TRF-20240115-0001"}))
	assert.Contains(t, buf.String(), stock.EventTransferReceived)
	assert.Contains(t, buf.String(), "TRF-20240115-0001")
}
