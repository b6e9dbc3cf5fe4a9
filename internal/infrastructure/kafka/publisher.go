// Package kafka publica los eventos de dominio en un tópico de Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-orders-api/internal/application/ports"
	"github.com/jhoicas/stock-orders-api/pkg/config"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// messageWriter es la parte de *kafka.Writer que se usa (reemplazable en tests).
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher serializa cada evento como JSON y usa Event.Key como clave de partición,
// así los eventos de un mismo pedido o par producto/bodega conservan el orden.
type Publisher struct {
	w messageWriter
}

// NewPublisher crea el writer para los brokers y tópico configurados.
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	return &Publisher{w: &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

// Publish escribe los eventos en un solo lote.
func (p *Publisher) Publish(ctx context.Context, events ...ports.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs, err := toMessages(events)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

func toMessages(events []ports.Event) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, len(events))
	for _, ev := range events {
		value, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("serializar evento %s: %w", ev.Type, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(ev.Key),
			Value: value,
			Time:  ev.OccurredAt,
			Headers: []kafkago.Header{
				{Key: "event_type", Value: []byte(ev.Type)},
			},
		})
	}
	return msgs, nil
}
