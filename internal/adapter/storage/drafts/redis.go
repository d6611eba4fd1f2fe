package draftstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/go-redis/redis/v8"
	"time"
)

const keyPrefix = "onboarding:draft:"

// RedisStorage keeps wizard drafts as JSON values that expire after ttl.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStorage) Load(ctx context.Context, userID string) (*onboarding.Draft, error) {
	data, err := s.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, onboarding.ErrDraftNotFound
		}
		return nil, storage.InternalError(err)
	}

	var d onboarding.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, storage.InternalError(fmt.Errorf("decode draft: %w", err))
	}
	return &d, nil
}

func (s *RedisStorage) Save(ctx context.Context, userID string, d *onboarding.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return storage.InternalError(fmt.Errorf("encode draft: %w", err))
	}
	if err := s.client.Set(ctx, keyPrefix+userID, data, s.ttl).Err(); err != nil {
		return storage.InternalError(err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return storage.InternalError(err)
	}
	return nil
}
