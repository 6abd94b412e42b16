package hierarchy

import (
	"context"
	"sort"
	"sync"
	"time"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/models"
)

// MemoryStore keeps floors and counters in process. Used by tests and the
// STORE_DRIVER=memory mode.
type MemoryStore struct {
	mu       sync.RWMutex
	floors   map[string]models.Floor
	counters map[string]models.Counter
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		floors:   make(map[string]models.Floor),
		counters: make(map[string]models.Counter),
	}
}

func (s *MemoryStore) CreateFloor(_ context.Context, f *models.Floor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.floors {
		if existing.Name == f.Name {
			return apperr.DuplicateName("floor %q already exists", f.Name)
		}
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	s.floors[f.ID] = *f
	return nil
}

func (s *MemoryStore) FindFloor(_ context.Context, id string) (*models.Floor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.floors[id]
	if !ok {
		return nil, apperr.NotFound("floor %q not found", id)
	}
	return &f, nil
}

func (s *MemoryStore) FindFloorByName(_ context.Context, name string) (*models.Floor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.floors {
		if f.Name == name {
			return &f, nil
		}
	}
	return nil, apperr.NotFound("floor %q not found", name)
}

func (s *MemoryStore) ListFloors(_ context.Context) ([]models.Floor, error) {
	s.mu.RLock()
	out := make([]models.Floor, 0, len(s.floors))
	for _, f := range s.floors {
		out = append(out, f)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteFloor(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.floors[id]; !ok {
		return apperr.NotFound("floor %q not found", id)
	}
	delete(s.floors, id)
	return nil
}

func (s *MemoryStore) CreateCounter(_ context.Context, c *models.Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.counters {
		if existing.FloorID == c.FloorID && existing.Name == c.Name {
			return apperr.DuplicateName("counter %q already exists on floor %q", c.Name, c.FloorName)
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.counters[c.ID] = *c
	return nil
}

func (s *MemoryStore) FindCounter(_ context.Context, id string) (*models.Counter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.counters[id]
	if !ok {
		return nil, apperr.NotFound("counter %q not found", id)
	}
	return &c, nil
}

func (s *MemoryStore) FindCounterByName(_ context.Context, floorID, name string) (*models.Counter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.counters {
		if c.FloorID == floorID && c.Name == name {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("counter %q not found", name)
}

func (s *MemoryStore) ListCounters(_ context.Context, floorID string) ([]models.Counter, error) {
	s.mu.RLock()
	out := make([]models.Counter, 0)
	for _, c := range s.counters {
		if c.FloorID == floorID {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteCounter(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.counters[id]; !ok {
		return apperr.NotFound("counter %q not found", id)
	}
	delete(s.counters, id)
	return nil
}
