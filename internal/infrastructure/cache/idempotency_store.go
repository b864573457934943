// Package cache implementa el almacén de claves de idempotencia sobre Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/conecta-isp/internal/application/provisioning"
)

var _ provisioning.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore guarda las claves de eventos procesados con TTL. El TTL
// acota la memoria: pasado el plazo, reprocesar un evento muy viejo vuelve a
// caer en los guards de estado del coordinador, que son la segunda línea.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store. ttlHours <= 0 usa 72h.
func NewIdempotencyStore(client *redis.Client, ttlHours int) *IdempotencyStore {
	if ttlHours <= 0 {
		ttlHours = 72
	}
	return &IdempotencyStore{client: client, ttl: time.Duration(ttlHours) * time.Hour}
}

// Seen indica si la clave ya fue marcada.
func (s *IdempotencyStore) Seen(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("check idempotency key: %w", err)
	}
	return n > 0, nil
}

// Mark registra la clave. Llamar solo después de aplicar los efectos del
// evento.
func (s *IdempotencyStore) Mark(ctx context.Context, key string) error {
	if err := s.client.Set(ctx, s.redisKey(key), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("mark idempotency key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) redisKey(key string) string {
	return "idem:" + key
}
