// internal/infrastructure/cache/redis/snapshot_store.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"p2p-offer-radar-bot/internal/core/domain/broadcast"
)

// Ключ единственного активного окна мониторинга. Процесс обслуживает
// не больше одной сессии, поэтому ключ фиксированный.
const snapshotKey = "offer-radar:broadcast:active"

// SnapshotStore хранит снапшот активного окна мониторинга в Redis,
// чтобы пережить перезапуск процесса
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore создаёт хранилище снапшотов сессии
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

// Save сохраняет снапшот. TTL ключа привязан к дедлайну окна: после
// истечения окна ключ незачем держать дольше часа.
func (s *SnapshotStore) Save(snapshot broadcast.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	ttl := s.ttl
	if remaining := time.Until(snapshot.EndsAt); remaining > 0 && remaining > ttl {
		ttl = remaining
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return s.client.Set(ctx, snapshotKey, data, ttl).Err()
}

// Load возвращает сохранённый снапшот или nil, если его нет
func (s *SnapshotStore) Load() (*broadcast.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := s.client.Get(ctx, snapshotKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snapshot broadcast.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Delete удаляет сохранённый снапшот
func (s *SnapshotStore) Delete() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return s.client.Del(ctx, snapshotKey).Err()
}
