// Package entries persists stock entries and implements the save and
// own-history operations on top of the access policy.
package entries

import (
	"context"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/models"
)

// Query carries the only predicates the store answers natively: floor
// equality, optionally narrowed by counter equality. Limit <= 0 means
// unbounded.
type Query struct {
	FloorID   string
	CounterID string
	Limit     int
}

func (q Query) Validate() error {
	if q.FloorID == "" && q.CounterID != "" {
		return apperr.Validation("counter predicate requires a floor predicate")
	}
	return nil
}

// Repository is the persistence boundary. Listings are newest-first by
// CreatedAt. Get returns an apperr NotFound error for unknown ids.
type Repository interface {
	Create(ctx context.Context, e *models.Entry) error
	Get(ctx context.Context, id string) (*models.Entry, error)
	ListByCreator(ctx context.Context, createdBy string, limit int) ([]models.Entry, error)
	Find(ctx context.Context, q Query) ([]models.Entry, error)

	FloorReferenced(ctx context.Context, floorID string) (bool, error)
	CounterReferenced(ctx context.Context, counterID string) (bool, error)
}
