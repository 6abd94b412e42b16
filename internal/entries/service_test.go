package entries

import (
	"context"
	"testing"
	"time"

	"drystore-backend/internal/access"
	"drystore-backend/internal/apperr"
	"drystore-backend/internal/hierarchy"
	"drystore-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc     *Service
	repo    *MemoryRepository
	first   *models.Floor
	sixth   *models.Floor
	kitchen *models.Counter
	tea     *models.Counter
	tea6    *models.Counter
	clock   time.Time
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := NewMemoryRepository()
	h := hierarchy.NewService(hierarchy.NewMemoryStore(), zap.NewNop(), repo)

	f := &fixture{repo: repo, clock: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	var err error
	f.first, err = h.AddFloor(ctx, "1st")
	require.NoError(t, err)
	f.sixth, err = h.AddFloor(ctx, "6th")
	require.NoError(t, err)
	f.kitchen, err = h.AddCounter(ctx, f.first.ID, "Kitchen")
	require.NoError(t, err)
	f.tea, err = h.AddCounter(ctx, f.first.ID, "Tea")
	require.NoError(t, err)
	f.tea6, err = h.AddCounter(ctx, f.sixth.ID, "Tea")
	require.NoError(t, err)

	f.svc = NewService(repo, h, access.NewPolicy(), zap.NewNop(), opts)
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	return f
}

func (f *fixture) counterUser(id string, c *models.Counter) *models.User {
	floorID, counterID := c.FloorID, c.ID
	return &models.User{ID: id, Email: id + "@example.com", Role: models.RoleCounter, FloorID: &floorID, CounterID: &counterID}
}

func TestSave_CounterUserDefaultsToAssignment(t *testing.T) {
	f := newFixture(t, Options{})
	u := f.counterUser("u1", f.kitchen)

	e, err := f.svc.Save(context.Background(), u, SaveRequest{
		Date: "2024-05-01",
		Rows: []models.Row{{Item: " Rice ", Qty: "50kg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, f.first.ID, e.FloorID)
	assert.Equal(t, "1st", e.FloorName)
	assert.Equal(t, "Kitchen", e.CounterName)
	assert.Equal(t, "u1@example.com", e.CreatorEmail)
	require.Len(t, e.Rows, 1)
	assert.Equal(t, "Rice", e.Rows[0].Item)
	assert.Equal(t, 1, e.Rows[0].Position)

	stored, err := f.repo.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, stored.Rows[0].EntryID)
}

func TestSave_CounterUserOutsideAssignment(t *testing.T) {
	f := newFixture(t, Options{})
	u := f.counterUser("u1", f.kitchen)

	_, err := f.svc.Save(context.Background(), u, SaveRequest{
		FloorID:   f.sixth.ID,
		CounterID: f.tea6.ID,
		Rows:      []models.Row{{Item: "Sugar"}},
	})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	list, _ := f.repo.Find(context.Background(), Query{})
	assert.Empty(t, list)
}

func TestSave_RowValidation(t *testing.T) {
	f := newFixture(t, Options{})
	admin := &models.User{ID: "a", Role: models.RoleAdmin}
	base := SaveRequest{FloorID: f.first.ID, CounterID: f.tea.ID}

	req := base
	req.Rows = []models.Row{{}, {Remarks: "  "}}
	_, err := f.svc.Save(context.Background(), admin, req)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	req.Rows = []models.Row{{Qty: "1"}}
	_, err = f.svc.Save(context.Background(), admin, req)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	req.Rows = []models.Row{{Item: "Tea leaves"}, {}, {Item: "Milk", Qty: "5L"}}
	e, err := f.svc.Save(context.Background(), admin, req)
	require.NoError(t, err)
	require.Len(t, e.Rows, 2)
	assert.Equal(t, 2, e.Rows[1].Position)
	assert.Equal(t, "2024-05-01", e.Date, "date defaults to today")
}

func TestSave_BadDateAndMismatchedCounter(t *testing.T) {
	f := newFixture(t, Options{})
	admin := &models.User{ID: "a", Role: models.RoleManager}
	rows := []models.Row{{Item: "Rice"}}

	_, err := f.svc.Save(context.Background(), admin, SaveRequest{FloorID: f.first.ID, CounterID: f.tea.ID, Date: "01/05/2024", Rows: rows})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Save(context.Background(), admin, SaveRequest{FloorID: f.first.ID, CounterID: f.tea6.ID, Rows: rows})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Save(context.Background(), admin, SaveRequest{FloorID: "nope", CounterID: f.tea.ID, Rows: rows})
	assert.ErrorIs(t, err, apperr.ErrUnknownFloor)

	_, err = f.svc.Save(context.Background(), nil, SaveRequest{FloorID: f.first.ID, CounterID: f.tea.ID, Rows: rows})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}

func TestHistory_OwnEntriesOnly(t *testing.T) {
	f := newFixture(t, Options{HistoryLimit: 2})
	ctx := context.Background()
	u1 := f.counterUser("u1", f.kitchen)
	u2 := f.counterUser("u2", f.tea)

	var ids []string
	for _, item := range []string{"Rice", "Dal", "Oil"} {
		e, err := f.svc.Save(ctx, u1, SaveRequest{Rows: []models.Row{{Item: item}}})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	mine, err := f.svc.History(ctx, u1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, ids[2], mine[0].ID)
	assert.Equal(t, ids[1], mine[1].ID)

	other, err := f.svc.History(ctx, u2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestHistory_Window(t *testing.T) {
	f := newFixture(t, Options{HistoryLimit: 20, WindowDays: 7})
	ctx := context.Background()
	u := f.counterUser("u1", f.kitchen)

	_, err := f.svc.Save(ctx, u, SaveRequest{Date: "2024-04-01", Rows: []models.Row{{Item: "Old"}}})
	require.NoError(t, err)
	recent, err := f.svc.Save(ctx, u, SaveRequest{Date: "2024-04-28", Rows: []models.Row{{Item: "New"}}})
	require.NoError(t, err)

	list, err := f.svc.History(ctx, u)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, recent.ID, list[0].ID)
}

func TestGet_ReadScope(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	u1 := f.counterUser("u1", f.kitchen)
	u2 := f.counterUser("u2", f.kitchen)

	e, err := f.svc.Save(ctx, u1, SaveRequest{Rows: []models.Row{{Item: "Rice"}}})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, u1, e.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, u2, e.ID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	_, err = f.svc.Get(ctx, &models.User{ID: "m", Role: models.RoleManager}, e.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, u1, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCounterDeleteBlockedByEntries(t *testing.T) {
	repo := NewMemoryRepository()
	h := hierarchy.NewService(hierarchy.NewMemoryStore(), zap.NewNop(), repo)
	ctx := context.Background()
	floor, _ := h.AddFloor(ctx, "1st")
	counter, _ := h.AddCounter(ctx, floor.ID, "Kitchen")

	require.NoError(t, repo.Create(ctx, &models.Entry{
		ID: "e1", FloorID: floor.ID, CounterID: counter.ID, Rows: []models.Row{{Item: "Rice", Position: 1}},
	}))
	assert.ErrorIs(t, h.DeleteCounter(ctx, counter.ID), apperr.ErrInUse)
	assert.ErrorIs(t, h.DeleteFloor(ctx, floor.ID), apperr.ErrInUse)
}
