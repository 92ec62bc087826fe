package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "barber:idempotency:booking"

// Store хранит соответствие Idempotency-Key -> ID бронирования в Redis
// С nil-клиентом Store работает как пустой кеш: повтор запроса найдёт бронирование по ключу в БД
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore создает хранилище ключей идемпотентности
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Get возвращает ID бронирования, созданного клиентом с этим ключом
func (s *Store) Get(ctx context.Context, clientID int64, key string) (int64, error) {
	if s.client == nil {
		return 0, ErrKeyNotFound
	}

	raw, err := s.client.Get(ctx, redisKey(clientID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrKeyNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: Get - %v", ErrStore, err)
	}

	bookingID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: Get - malformed value %q: %v", ErrStore, raw, err)
	}

	return bookingID, nil
}

// Remember сохраняет ID бронирования под ключом, если ключ ещё свободен
// Возвращает false, если ключ уже занят другим бронированием
func (s *Store) Remember(ctx context.Context, clientID int64, key string, bookingID int64) (bool, error) {
	if s.client == nil {
		return true, nil
	}

	ok, err := s.client.SetNX(ctx, redisKey(clientID, key), bookingID, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: Remember - %v", ErrStore, err)
	}

	return ok, nil
}

func redisKey(clientID int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, clientID, key)
}
