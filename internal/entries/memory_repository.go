package entries

import (
	"context"
	"slices"
	"sync"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/models"
)

// MemoryRepository keeps entries in insertion order. Results are copies.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []models.Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func cloneEntry(e models.Entry) models.Entry {
	e.Rows = slices.Clone(e.Rows)
	return e
}

func (r *MemoryRepository) Create(_ context.Context, e *models.Entry) error {
	if len(e.Rows) == 0 {
		return apperr.Validation("entry has no rows")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.ID == e.ID {
			return apperr.DuplicateName("entry %q already exists", e.ID)
		}
	}
	for i := range e.Rows {
		e.Rows[i].EntryID = e.ID
	}
	r.entries = append(r.entries, cloneEntry(*e))
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.ID == id {
			out := cloneEntry(e)
			return &out, nil
		}
	}
	return nil, apperr.NotFound("entry %q not found", id)
}

func (r *MemoryRepository) ListByCreator(_ context.Context, createdBy string, limit int) ([]models.Entry, error) {
	return r.newestFirst(limit, func(e *models.Entry) bool { return e.CreatedBy == createdBy }), nil
}

func (r *MemoryRepository) Find(_ context.Context, q Query) ([]models.Entry, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return r.newestFirst(q.Limit, func(e *models.Entry) bool {
		if q.FloorID != "" && e.FloorID != q.FloorID {
			return false
		}
		return q.CounterID == "" || e.CounterID == q.CounterID
	}), nil
}

func (r *MemoryRepository) FloorReferenced(_ context.Context, floorID string) (bool, error) {
	return len(r.newestFirst(1, func(e *models.Entry) bool { return e.FloorID == floorID })) > 0, nil
}

func (r *MemoryRepository) CounterReferenced(_ context.Context, counterID string) (bool, error) {
	return len(r.newestFirst(1, func(e *models.Entry) bool { return e.CounterID == counterID })) > 0, nil
}

// newestFirst orders by CreatedAt descending; among equal timestamps the
// later insert comes first.
func (r *MemoryRepository) newestFirst(limit int, keep func(*models.Entry) bool) []models.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := make([]int, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		if keep(&r.entries[i]) {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return r.entries[b].CreatedAt.Compare(r.entries[a].CreatedAt)
	})
	if limit > 0 && len(idx) > limit {
		idx = idx[:limit]
	}

	out := make([]models.Entry, 0, len(idx))
	for _, i := range idx {
		out = append(out, cloneEntry(r.entries[i]))
	}
	return out
}
