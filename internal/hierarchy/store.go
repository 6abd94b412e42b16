// Package hierarchy owns the Floor and Counter records and their relation.
package hierarchy

import (
	"context"

	"drystore-backend/internal/models"
)

// Store is the persistence boundary for floors and counters. Find* methods
// return an apperr NotFound error when nothing matches. List* results are
// ordered by name.
type Store interface {
	CreateFloor(ctx context.Context, f *models.Floor) error
	FindFloor(ctx context.Context, id string) (*models.Floor, error)
	FindFloorByName(ctx context.Context, name string) (*models.Floor, error)
	ListFloors(ctx context.Context) ([]models.Floor, error)
	DeleteFloor(ctx context.Context, id string) error

	CreateCounter(ctx context.Context, c *models.Counter) error
	FindCounter(ctx context.Context, id string) (*models.Counter, error)
	FindCounterByName(ctx context.Context, floorID, name string) (*models.Counter, error)
	ListCounters(ctx context.Context, floorID string) ([]models.Counter, error)
	DeleteCounter(ctx context.Context, id string) error
}

// ReferenceChecker is implemented by the stores whose records point at
// floors or counters (users, entries). Deletes are refused while any
// checker reports a reference.
type ReferenceChecker interface {
	FloorReferenced(ctx context.Context, floorID string) (bool, error)
	CounterReferenced(ctx context.Context, counterID string) (bool, error)
}
