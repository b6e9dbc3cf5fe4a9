// Package redis implementa la caché de pedidos (cache-aside) sobre Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-orders-api/internal/application/ports"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/pkg/config"
)

var _ ports.OrderCache = (*OrderCache)(nil)

// DefaultOrderTTL se usa cuando la configuración no define TTL.
const DefaultOrderTTL = 5 * time.Minute

// NewClient crea el cliente y verifica la conexión con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// OrderCache guarda pedidos completos (con ítems) como JSON bajo order:<id>.
type OrderCache struct {
	client goredis.Cmdable
	ttl    time.Duration
}

// NewOrderCache construye la caché. ttl <= 0 usa DefaultOrderTTL.
func NewOrderCache(client goredis.Cmdable, ttl time.Duration) *OrderCache {
	if ttl <= 0 {
		ttl = DefaultOrderTTL
	}
	return &OrderCache{client: client, ttl: ttl}
}

func orderKey(id string) string {
	return "order:" + id
}

// Get devuelve (nil, nil) si no hay entrada.
func (c *OrderCache) Get(ctx context.Context, id string) (*entity.Order, error) {
	raw, err := c.client.Get(ctx, orderKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeOrder(raw)
}

// Set guarda el pedido con TTL.
func (c *OrderCache) Set(ctx context.Context, o *entity.Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("serializar pedido: %w", err)
	}
	if err := c.client.Set(ctx, orderKey(o.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate borra la entrada; borrar una clave inexistente no es error.
func (c *OrderCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, orderKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func decodeOrder(raw []byte) (*entity.Order, error) {
	var o entity.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("deserializar pedido: %w", err)
	}
	return &o, nil
}
