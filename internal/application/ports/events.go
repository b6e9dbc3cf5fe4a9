package ports

import (
	"context"
	"time"
)

// Tipos de evento de dominio publicados tras cada commit.
const (
	EventMovementRecorded    = "movement.recorded"
	EventOrderCreated        = "order.created"
	EventOrderUpdated        = "order.updated"
	EventOrderStatusChanged  = "order.status_changed"
	EventOrderPaymentChanged = "order.payment_status_changed"
	EventOrderDeleted        = "order.deleted"
)

// Event es el sobre de un evento de dominio. Key agrupa los eventos de un mismo agregado (particionado).
type Event struct {
	ID         string      `json:"event_id"`
	Type       string      `json:"event_type"`
	Key        string      `json:"-"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// EventPublisher define el puerto de salida para publicar eventos de dominio.
// Se llama después del commit; un error no revierte la operación principal.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// NoopPublisher descarta los eventos (publicación deshabilitada).
type NoopPublisher struct{}

// Publish no hace nada.
func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }

// Close no hace nada.
func (NoopPublisher) Close() error { return nil }
