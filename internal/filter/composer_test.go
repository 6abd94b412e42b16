package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/entries"
	"drystore-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ref(floorID, counterID string) *models.CounterRef {
	return &models.CounterRef{FloorID: floorID, CounterID: counterID}
}

func seeded(t *testing.T) *entries.MemoryRepository {
	t.Helper()
	repo := entries.NewMemoryRepository()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, e := range []models.Entry{
		{ID: "k1", FloorID: "f1", CounterID: "kitchen", Date: "2024-04-30"},
		{ID: "k2", FloorID: "f1", CounterID: "kitchen", Date: "2024-05-01"},
		{ID: "t1", FloorID: "f1", CounterID: "tea", Date: "2024-05-02"},
		{ID: "s1", FloorID: "f6", CounterID: "tea6", Date: "2024-05-01"},
		{ID: "k3", FloorID: "f1", CounterID: "kitchen", Date: "2024-05-03"},
	} {
		e.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		e.Rows = []models.Row{{Position: 1, Item: "Rice"}}
		require.NoError(t, repo.Create(context.Background(), &e))
	}
	return repo
}

func ids(list []models.Entry) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestCompose_CounterWithoutFloor(t *testing.T) {
	c := NewComposer(entries.NewMemoryRepository(), zap.NewNop(), nil, 0)
	_, err := c.Compose(Filter{Counter: ref("f1", "kitchen")})
	assert.ErrorIs(t, err, apperr.ErrAmbiguousCounterFilter)
}

func TestCompose_InvalidDate(t *testing.T) {
	c := NewComposer(entries.NewMemoryRepository(), zap.NewNop(), nil, 0)
	_, err := c.Compose(Filter{DateFrom: "2024-5-1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCompose_RecentLimitOnlyForEmptyFilter(t *testing.T) {
	c := NewComposer(entries.NewMemoryRepository(), zap.NewNop(), nil, 200)

	plan, err := c.Compose(Filter{})
	require.NoError(t, err)
	assert.Equal(t, 200, plan.Query.Limit)

	plan, err = c.Compose(Filter{DateFrom: "2024-01-01"})
	require.NoError(t, err)
	assert.Zero(t, plan.Query.Limit)

	plan, err = c.Compose(Filter{FloorID: "f1"})
	require.NoError(t, err)
	assert.Zero(t, plan.Query.Limit)
}

func TestCompose_DoesNotMutateFilter(t *testing.T) {
	c := NewComposer(entries.NewMemoryRepository(), zap.NewNop(), nil, 0)
	f := Filter{FloorID: "f1", Counter: ref("f6", "tea6"), DateFrom: "2024-05-01"}
	before := f
	counterBefore := *f.Counter

	_, err := c.Compose(f)
	require.NoError(t, err)
	assert.Equal(t, before, f)
	assert.Equal(t, counterBefore, *f.Counter)
}

func TestRun_FloorScopedNoLeakage(t *testing.T) {
	c := NewComposer(seeded(t), zap.NewNop(), nil, 0)

	list, _, err := c.Run(context.Background(), Filter{FloorID: "f1"})
	require.NoError(t, err)
	for _, e := range list {
		assert.Equal(t, "f1", e.FloorID)
	}
	assert.Equal(t, []string{"k3", "t1", "k2", "k1"}, ids(list))
}

func TestRun_FloorAndCounter(t *testing.T) {
	c := NewComposer(seeded(t), zap.NewNop(), nil, 0)

	list, plan, err := c.Run(context.Background(), Filter{FloorID: "f1", Counter: ref("f1", "kitchen")})
	require.NoError(t, err)
	assert.False(t, plan.CounterDropped)
	assert.Equal(t, []string{"k3", "k2", "k1"}, ids(list))
}

func TestRun_MismatchedCounterDropped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := NewComposer(seeded(t), zap.New(core), nil, 0)
	ctx := context.Background()

	floorOnly, _, err := c.Run(ctx, Filter{FloorID: "f1"})
	require.NoError(t, err)

	list, plan, err := c.Run(ctx, Filter{FloorID: "f1", Counter: ref("f6", "tea6")})
	require.NoError(t, err)
	assert.True(t, plan.CounterDropped)
	assert.Equal(t, ids(floorOnly), ids(list))
	assert.Equal(t, 1, logs.FilterMessageSnippet("counter filter dropped").Len())
}

func TestRun_InclusiveDateBounds(t *testing.T) {
	c := NewComposer(seeded(t), zap.NewNop(), nil, 0)
	ctx := context.Background()

	list, _, err := c.Run(ctx, Filter{FloorID: "f1", DateFrom: "2024-05-01", DateTo: "2024-05-02"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "k2"}, ids(list))

	list, _, err = c.Run(ctx, Filter{DateFrom: "2024-05-03"})
	require.NoError(t, err)
	assert.Equal(t, []string{"k3"}, ids(list))

	list, _, err = c.Run(ctx, Filter{DateTo: "2024-04-30"})
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, ids(list))
}

func TestRun_EmptyAndInvertedRange(t *testing.T) {
	c := NewComposer(seeded(t), zap.NewNop(), nil, 0)

	list, _, err := c.Run(context.Background(), Filter{DateFrom: "2024-06-01", DateTo: "2024-05-01"})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

type failingFinder struct{}

func (failingFinder) Find(context.Context, entries.Query) ([]models.Entry, error) {
	return nil, errors.New("connection reset")
}

func TestRun_StoreFailureKeepsMessage(t *testing.T) {
	c := NewComposer(failingFinder{}, zap.NewNop(), nil, 0)
	_, _, err := c.Run(context.Background(), Filter{FloorID: "f1"})
	assert.ErrorIs(t, err, apperr.ErrExternalService)
	assert.Contains(t, err.Error(), "connection reset")
}
