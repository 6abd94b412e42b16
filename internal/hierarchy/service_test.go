package hierarchy

import (
	"context"
	"testing"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRefs struct {
	floors   map[string]bool
	counters map[string]bool
}

func (f *fakeRefs) FloorReferenced(_ context.Context, id string) (bool, error) {
	return f.floors[id], nil
}

func (f *fakeRefs) CounterReferenced(_ context.Context, id string) (bool, error) {
	return f.counters[id], nil
}

func newTestService(t *testing.T) (*Service, *fakeRefs) {
	t.Helper()
	refs := &fakeRefs{floors: map[string]bool{}, counters: map[string]bool{}}
	return NewService(NewMemoryStore(), zap.NewNop(), refs), refs
}

func TestAddFloor_DuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"1st", "6th", "Ground"} {
		_, err := svc.AddFloor(ctx, name)
		require.NoError(t, err)

		_, err = svc.AddFloor(ctx, name)
		assert.ErrorIs(t, err, apperr.ErrDuplicateName, name)
	}
}

func TestAddFloor_CaseSensitive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddFloor(ctx, "Roof")
	require.NoError(t, err)
	_, err = svc.AddFloor(ctx, "roof")
	assert.NoError(t, err)
}

func TestAddFloor_EmptyName(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddFloor(context.Background(), "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAddCounter_SameNameDifferentFloors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.AddFloor(ctx, "1st")
	require.NoError(t, err)
	sixth, err := svc.AddFloor(ctx, "6th")
	require.NoError(t, err)

	a, err := svc.AddCounter(ctx, first.ID, "Tea")
	require.NoError(t, err)
	b, err := svc.AddCounter(ctx, sixth.ID, "Tea")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "6th", b.FloorName)

	_, err = svc.AddCounter(ctx, first.ID, "Tea")
	assert.ErrorIs(t, err, apperr.ErrDuplicateName)
}

func TestAddCounter_UnknownFloor(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddCounter(context.Background(), "nope", "Tea")
	assert.ErrorIs(t, err, apperr.ErrUnknownFloor)
}

func TestFloors_OrderedAndRestartable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"6th", "1st", "3rd"} {
		_, err := svc.AddFloor(ctx, name)
		require.NoError(t, err)
	}

	seq := svc.Floors(ctx)
	names := func() []string {
		var out []string
		for f, err := range seq {
			require.NoError(t, err)
			out = append(out, f.Name)
		}
		return out
	}
	assert.Equal(t, []string{"1st", "3rd", "6th"}, names())

	_, err := svc.AddFloor(ctx, "2nd")
	require.NoError(t, err)
	assert.Equal(t, []string{"1st", "2nd", "3rd", "6th"}, names())
}

func TestFloors_EarlyBreak(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.AddFloor(ctx, name)
		require.NoError(t, err)
	}

	seen := 0
	for range svc.Floors(ctx) {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestCountersForFloor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	floor, err := svc.AddFloor(ctx, "1st")
	require.NoError(t, err)
	for _, name := range []string{"Tea", "Kitchen", "Juice"} {
		_, err := svc.AddCounter(ctx, floor.ID, name)
		require.NoError(t, err)
	}

	counters, err := Collect(svc.CountersForFloor(ctx, floor.ID))
	require.NoError(t, err)
	require.Len(t, counters, 3)
	assert.Equal(t, "Juice", counters[0].Name)
	assert.Equal(t, "Kitchen", counters[1].Name)
	assert.Equal(t, "Tea", counters[2].Name)

	_, err = Collect(svc.CountersForFloor(ctx, "missing"))
	assert.ErrorIs(t, err, apperr.ErrUnknownFloor)
}

func TestResolveCounter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first, _ := svc.AddFloor(ctx, "1st")
	sixth, _ := svc.AddFloor(ctx, "6th")
	_, err := svc.AddCounter(ctx, first.ID, "Tea")
	require.NoError(t, err)
	tea6, err := svc.AddCounter(ctx, sixth.ID, "Tea")
	require.NoError(t, err)

	got, err := svc.ResolveCounter(ctx, "6th", "Tea")
	require.NoError(t, err)
	assert.Equal(t, tea6.ID, got.ID)
	assert.Equal(t, models.CounterRef{FloorID: sixth.ID, CounterID: tea6.ID}, got.Ref())

	_, err = svc.ResolveCounter(ctx, "9th", "Tea")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteCounter_InUse(t *testing.T) {
	svc, refs := newTestService(t)
	ctx := context.Background()
	floor, _ := svc.AddFloor(ctx, "1st")
	counter, err := svc.AddCounter(ctx, floor.ID, "Tea")
	require.NoError(t, err)

	refs.counters[counter.ID] = true
	assert.ErrorIs(t, svc.DeleteCounter(ctx, counter.ID), apperr.ErrInUse)

	refs.counters[counter.ID] = false
	require.NoError(t, svc.DeleteCounter(ctx, counter.ID))
	assert.ErrorIs(t, svc.DeleteCounter(ctx, counter.ID), apperr.ErrNotFound)
}

func TestDeleteFloor_Guards(t *testing.T) {
	svc, refs := newTestService(t)
	ctx := context.Background()
	floor, _ := svc.AddFloor(ctx, "1st")
	counter, err := svc.AddCounter(ctx, floor.ID, "Tea")
	require.NoError(t, err)

	refs.counters[counter.ID] = true
	err = svc.DeleteFloor(ctx, floor.ID)
	assert.ErrorIs(t, err, apperr.ErrInUse)
	assert.Contains(t, err.Error(), "Tea")

	refs.counters[counter.ID] = false
	assert.ErrorIs(t, svc.DeleteFloor(ctx, floor.ID), apperr.ErrInUse, "floor with counters")

	require.NoError(t, svc.DeleteCounter(ctx, counter.ID))
	refs.floors[floor.ID] = true
	assert.ErrorIs(t, svc.DeleteFloor(ctx, floor.ID), apperr.ErrInUse, "floor referenced by a user")

	refs.floors[floor.ID] = false
	require.NoError(t, svc.DeleteFloor(ctx, floor.ID))
	_, err = svc.Floor(ctx, floor.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSeed_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx, DefaultLayout))
	require.NoError(t, svc.Seed(ctx, DefaultLayout))

	floors, err := Collect(svc.Floors(ctx))
	require.NoError(t, err)
	require.Len(t, floors, 2)

	counters, err := Collect(svc.CountersForFloor(ctx, floors[0].ID))
	require.NoError(t, err)
	assert.Len(t, counters, 7)
}
