package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gokart-backend/internal/apperr"
	"gokart-backend/internal/models"
)

const (
	redisKeyPrefix = "order:"

	// Update retries the WATCH transaction this many times before giving up
	// on a contended key.
	redisUpdateRetries = 5
)

// Redis stores each order as a JSON document under order:<id>. It exists so
// the service can outlive a restart without changing anything above the
// Store interface.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis verifies connectivity before returning. A zero ttl keeps orders
// forever, matching the memory store.
func NewRedis(ctx context.Context, client *redis.Client, ttl time.Duration) (*Redis, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

type redisOrder struct {
	ID        uuid.UUID         `json:"id"`
	Prompt    string            `json:"prompt"`
	ModelType string            `json:"model_type"`
	UserEmail string            `json:"user_email"`
	Status    string            `json:"status"`
	Price     int               `json:"price"`
	Assets    map[string]string `json:"assets,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func redisKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

func encodeOrder(order *models.Order) ([]byte, error) {
	doc := redisOrder(*order)
	return json.Marshal(&doc)
}

func decodeOrder(data []byte) (*models.Order, error) {
	var doc redisOrder
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode order document: %w", err)
	}
	order := models.Order(doc)
	return &order, nil
}

func (r *Redis) Insert(ctx context.Context, order *models.Order) error {
	data, err := encodeOrder(order)
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, redisKey(order.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	if !ok {
		return apperr.ErrConflict
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return decodeOrder(data)
}

// Update runs the mutator inside a WATCH transaction so a concurrent writer
// forces a re-read instead of a lost update.
func (r *Redis) Update(ctx context.Context, id uuid.UUID, fn Mutator) (*models.Order, error) {
	key := redisKey(id)

	var updated *models.Order
	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return apperr.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}

		order, err := decodeOrder(data)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
		order.UpdatedAt = time.Now().UTC()

		next, err := encodeOrder(order)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = order
		return nil
	}

	for i := 0; i < redisUpdateRetries; i++ {
		err := r.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("failed to update order %s: too much contention", id)
}
