// Package store holds order records and provides lookup by id. All order
// mutation flows through Update so status and assets change atomically with
// respect to concurrent readers.
package store

import (
	"context"

	"github.com/google/uuid"

	"gokart-backend/internal/models"
)

// Mutator applies an in-place change to an order inside Update. Returning an
// error aborts the update and leaves the stored record untouched.
type Mutator func(*models.Order) error

type Store interface {
	// Insert adds a new record. Returns apperr.ErrConflict if the id is
	// already present.
	Insert(ctx context.Context, order *models.Order) error

	// Get returns a copy of the record. Returns apperr.ErrNotFound if the
	// id is unknown.
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)

	// Update applies the mutator to an existing record and returns a copy
	// of the result. Returns apperr.ErrNotFound if the id is unknown.
	Update(ctx context.Context, id uuid.UUID, fn Mutator) (*models.Order, error)
}
