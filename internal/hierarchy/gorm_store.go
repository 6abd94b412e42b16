package hierarchy

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

func (s *GormStore) CreateFloor(ctx context.Context, f *models.Floor) error {
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.DuplicateName("floor %q already exists", f.Name)
		}
		return apperr.External(err, "create floor")
	}
	return nil
}

func (s *GormStore) FindFloor(ctx context.Context, id string) (*models.Floor, error) {
	var f models.Floor
	if err := s.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "floor %q not found", id)
	}
	return &f, nil
}

func (s *GormStore) FindFloorByName(ctx context.Context, name string) (*models.Floor, error) {
	var f models.Floor
	if err := s.db.WithContext(ctx).First(&f, "name = ?", name).Error; err != nil {
		return nil, notFound(err, "floor %q not found", name)
	}
	return &f, nil
}

func (s *GormStore) ListFloors(ctx context.Context) ([]models.Floor, error) {
	var floors []models.Floor
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&floors).Error; err != nil {
		return nil, apperr.External(err, "list floors")
	}
	return floors, nil
}

func (s *GormStore) DeleteFloor(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Floor{}, "id = ?", id)
	if res.Error != nil {
		return apperr.External(res.Error, "delete floor")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("floor %q not found", id)
	}
	return nil
}

func (s *GormStore) CreateCounter(ctx context.Context, c *models.Counter) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.DuplicateName("counter %q already exists on floor %q", c.Name, c.FloorName)
		}
		return apperr.External(err, "create counter")
	}
	return nil
}

func (s *GormStore) FindCounter(ctx context.Context, id string) (*models.Counter, error) {
	var c models.Counter
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "counter %q not found", id)
	}
	return &c, nil
}

func (s *GormStore) FindCounterByName(ctx context.Context, floorID, name string) (*models.Counter, error) {
	var c models.Counter
	err := s.db.WithContext(ctx).
		Where("floor_id = ? AND name = ?", floorID, name).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "counter %q not found", name)
	}
	return &c, nil
}

func (s *GormStore) ListCounters(ctx context.Context, floorID string) ([]models.Counter, error) {
	var counters []models.Counter
	err := s.db.WithContext(ctx).
		Where("floor_id = ?", floorID).
		Order("name ASC").
		Find(&counters).Error
	if err != nil {
		return nil, apperr.External(err, "list counters")
	}
	return counters, nil
}

func (s *GormStore) DeleteCounter(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Counter{}, "id = ?", id)
	if res.Error != nil {
		return apperr.External(res.Error, "delete counter")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("counter %q not found", id)
	}
	return nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(format, args...)
	}
	return apperr.External(err, "query hierarchy")
}
