package entries

import (
	"context"
	"errors"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/models"

	"gorm.io/gorm"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func preloadRows(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create writes the entry and its rows in one transaction.
func (r *GormRepository) Create(ctx context.Context, e *models.Entry) error {
	if len(e.Rows) == 0 {
		return apperr.Validation("entry has no rows")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Rows").Create(e).Error; err != nil {
			return err
		}
		for i := range e.Rows {
			e.Rows[i].EntryID = e.ID
		}
		return tx.Create(&e.Rows).Error
	})
	if err != nil {
		return apperr.External(err, "save entry")
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*models.Entry, error) {
	var e models.Entry
	err := r.db.WithContext(ctx).
		Preload("Rows", preloadRows).
		First(&e, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("entry %q not found", id)
		}
		return nil, apperr.External(err, "get entry")
	}
	return &e, nil
}

func (r *GormRepository) ListByCreator(ctx context.Context, createdBy string, limit int) ([]models.Entry, error) {
	q := r.db.WithContext(ctx).
		Preload("Rows", preloadRows).
		Where("created_by = ?", createdBy).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var list []models.Entry
	if err := q.Find(&list).Error; err != nil {
		return nil, apperr.External(err, "list entries by creator")
	}
	return list, nil
}

func (r *GormRepository) Find(ctx context.Context, query Query) ([]models.Entry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Preload("Rows", preloadRows)
	if query.FloorID != "" {
		q = q.Where("floor_id = ?", query.FloorID)
	}
	if query.CounterID != "" {
		q = q.Where("counter_id = ?", query.CounterID)
	}
	q = q.Order("created_at DESC")
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	var list []models.Entry
	if err := q.Find(&list).Error; err != nil {
		return nil, apperr.External(err, "query entries")
	}
	return list, nil
}

func (r *GormRepository) FloorReferenced(ctx context.Context, floorID string) (bool, error) {
	return r.exists(ctx, "floor_id = ?", floorID)
}

func (r *GormRepository) CounterReferenced(ctx context.Context, counterID string) (bool, error) {
	return r.exists(ctx, "counter_id = ?", counterID)
}

func (r *GormRepository) exists(ctx context.Context, cond string, arg string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Entry{}).Where(cond, arg).Count(&n).Error; err != nil {
		return false, apperr.External(err, "count entries")
	}
	return n > 0, nil
}
