package users

import (
	"context"
	"errors"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/models"

	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.DuplicateName("email %q is already registered", u.Email)
		}
		return apperr.External(err, "create user")
	}
	return nil
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "user %q not found", id)
	}
	return &u, nil
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, lookupErr(err, "user %q not found", email)
	}
	return &u, nil
}

func (s *GormStore) List(ctx context.Context) ([]models.User, error) {
	var list []models.User
	if err := s.db.WithContext(ctx).Order("email ASC").Find(&list).Error; err != nil {
		return nil, apperr.External(err, "list users")
	}
	return list, nil
}

func (s *GormStore) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error; err != nil {
		return 0, apperr.External(err, "count users")
	}
	return n, nil
}

func (s *GormStore) FloorReferenced(ctx context.Context, floorID string) (bool, error) {
	return s.exists(ctx, "floor_id = ?", floorID)
}

func (s *GormStore) CounterReferenced(ctx context.Context, counterID string) (bool, error) {
	return s.exists(ctx, "counter_id = ?", counterID)
}

func (s *GormStore) exists(ctx context.Context, cond, arg string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where(cond, arg).Count(&n).Error; err != nil {
		return false, apperr.External(err, "count users")
	}
	return n > 0, nil
}

func lookupErr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(format, args...)
	}
	return apperr.External(err, "query users")
}
