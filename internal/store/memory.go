package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"gokart-backend/internal/apperr"
	"gokart-backend/internal/models"
)

// Memory is the canonical in-process store: a mutex-guarded map. All data is
// lost on restart; callers opting into durability select the Redis backend.
type Memory struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*models.Order
}

func NewMemory() *Memory {
	return &Memory{orders: make(map[uuid.UUID]*models.Order)}
}

func (m *Memory) Insert(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[order.ID]; ok {
		return apperr.ErrConflict
	}
	m.orders[order.ID] = order.Clone()
	return nil
}

func (m *Memory) Get(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return order.Clone(), nil
}

func (m *Memory) Update(_ context.Context, id uuid.UUID, fn Mutator) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	// Mutate a copy so a failing mutator cannot leave a half-applied record.
	next := order.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()
	m.orders[id] = next

	return next.Clone(), nil
}

// Len reports the number of stored orders.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}
