package hierarchy

import (
	"context"
	"errors"
	"iter"
	"strings"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	store Store
	refs  []ReferenceChecker
	log   *zap.Logger
	newID func() string
}

func NewService(store Store, log *zap.Logger, refs ...ReferenceChecker) *Service {
	return &Service{
		store: store,
		refs:  refs,
		log:   log,
		newID: uuid.NewString,
	}
}

// ----------------------------------------
// FLOORS
// ----------------------------------------

func (s *Service) AddFloor(ctx context.Context, name string) (*models.Floor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("floor name is required")
	}

	_, err := s.store.FindFloorByName(ctx, name)
	switch {
	case err == nil:
		return nil, apperr.DuplicateName("floor %q already exists", name)
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	floor := &models.Floor{ID: s.newID(), Name: name}
	if err := s.store.CreateFloor(ctx, floor); err != nil {
		return nil, err
	}
	s.log.Info("floor created", zap.String("floor_id", floor.ID), zap.String("name", floor.Name))
	return floor, nil
}

func (s *Service) Floor(ctx context.Context, id string) (*models.Floor, error) {
	return s.store.FindFloor(ctx, id)
}

func (s *Service) FloorByName(ctx context.Context, name string) (*models.Floor, error) {
	return s.store.FindFloorByName(ctx, name)
}

// Floors is a lazy sequence ordered by name. Every range reads the store
// again, so the sequence can be restarted.
func (s *Service) Floors(ctx context.Context) iter.Seq2[models.Floor, error] {
	return func(yield func(models.Floor, error) bool) {
		floors, err := s.store.ListFloors(ctx)
		if err != nil {
			yield(models.Floor{}, err)
			return
		}
		for _, f := range floors {
			if !yield(f, nil) {
				return
			}
		}
	}
}

// DeleteFloor refuses while the floor still has counters or is referenced
// by a user or an entry.
func (s *Service) DeleteFloor(ctx context.Context, id string) error {
	floor, err := s.store.FindFloor(ctx, id)
	if err != nil {
		return err
	}

	counters, err := s.store.ListCounters(ctx, id)
	if err != nil {
		return err
	}
	for _, c := range counters {
		used, err := s.counterReferenced(ctx, c.ID)
		if err != nil {
			return err
		}
		if used {
			return apperr.InUse("floor %q: counter %q is still referenced", floor.Name, c.Name)
		}
	}
	if len(counters) > 0 {
		return apperr.InUse("floor %q still has %d counters", floor.Name, len(counters))
	}

	for _, r := range s.refs {
		used, err := r.FloorReferenced(ctx, id)
		if err != nil {
			return apperr.External(err, "check floor references")
		}
		if used {
			return apperr.InUse("floor %q is still referenced", floor.Name)
		}
	}

	if err := s.store.DeleteFloor(ctx, id); err != nil {
		return err
	}
	s.log.Info("floor deleted", zap.String("floor_id", id), zap.String("name", floor.Name))
	return nil
}

// ----------------------------------------
// COUNTERS
// ----------------------------------------

func (s *Service) AddCounter(ctx context.Context, floorID, name string) (*models.Counter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("counter name is required")
	}

	floor, err := s.store.FindFloor(ctx, floorID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.UnknownFloor(floorID)
		}
		return nil, err
	}

	_, err = s.store.FindCounterByName(ctx, floor.ID, name)
	switch {
	case err == nil:
		return nil, apperr.DuplicateName("counter %q already exists on floor %q", name, floor.Name)
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	counter := &models.Counter{
		ID:        s.newID(),
		FloorID:   floor.ID,
		FloorName: floor.Name,
		Name:      name,
	}
	if err := s.store.CreateCounter(ctx, counter); err != nil {
		return nil, err
	}
	s.log.Info("counter created",
		zap.String("counter_id", counter.ID),
		zap.String("floor_id", floor.ID),
		zap.String("name", name))
	return counter, nil
}

func (s *Service) Counter(ctx context.Context, id string) (*models.Counter, error) {
	return s.store.FindCounter(ctx, id)
}

// ResolveCounter looks a counter up by floor name and counter name, the way
// the stored records reference each other.
func (s *Service) ResolveCounter(ctx context.Context, floorName, counterName string) (*models.Counter, error) {
	floor, err := s.store.FindFloorByName(ctx, floorName)
	if err != nil {
		return nil, err
	}
	return s.store.FindCounterByName(ctx, floor.ID, counterName)
}

// CountersForFloor is a lazy, restartable sequence ordered by name. An
// unknown floor is reported as the first and only element.
func (s *Service) CountersForFloor(ctx context.Context, floorID string) iter.Seq2[models.Counter, error] {
	return func(yield func(models.Counter, error) bool) {
		if _, err := s.store.FindFloor(ctx, floorID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				err = apperr.UnknownFloor(floorID)
			}
			yield(models.Counter{}, err)
			return
		}
		counters, err := s.store.ListCounters(ctx, floorID)
		if err != nil {
			yield(models.Counter{}, err)
			return
		}
		for _, c := range counters {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (s *Service) DeleteCounter(ctx context.Context, id string) error {
	counter, err := s.store.FindCounter(ctx, id)
	if err != nil {
		return err
	}
	used, err := s.counterReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return apperr.InUse("counter %q on floor %q is still referenced", counter.Name, counter.FloorName)
	}
	if err := s.store.DeleteCounter(ctx, id); err != nil {
		return err
	}
	s.log.Info("counter deleted", zap.String("counter_id", id), zap.String("name", counter.Name))
	return nil
}

func (s *Service) counterReferenced(ctx context.Context, counterID string) (bool, error) {
	for _, r := range s.refs {
		used, err := r.CounterReferenced(ctx, counterID)
		if err != nil {
			return false, apperr.External(err, "check counter references")
		}
		if used {
			return true, nil
		}
	}
	return false, nil
}

// Collect drains a sequence, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	out := make([]T, 0)
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
