// Package users is the user directory: accounts, roles and the counter
// assignment of counter-role users.
package users

import (
	"context"

	"drystore-backend/internal/models"
)

// Store persists users. Find* return an apperr NotFound error when nothing
// matches; Create returns DuplicateName for a taken email.
type Store interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)

	FloorReferenced(ctx context.Context, floorID string) (bool, error)
	CounterReferenced(ctx context.Context, counterID string) (bool, error)
}
