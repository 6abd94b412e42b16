package entries

import (
	"context"
	"errors"
	"strings"
	"time"

	"drystore-backend/internal/access"
	"drystore-backend/internal/apperr"
	"drystore-backend/internal/metrics"
	"drystore-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hierarchy resolves the floor and counter an entry is saved under.
type Hierarchy interface {
	Floor(ctx context.Context, id string) (*models.Floor, error)
	Counter(ctx context.Context, id string) (*models.Counter, error)
}

type Options struct {
	HistoryLimit int
	// WindowDays > 0 restricts own history to entries dated within the
	// last N days.
	WindowDays int
	Metrics    *metrics.Metrics
}

type Service struct {
	repo       Repository
	hierarchy  Hierarchy
	policy     access.Policy
	log        *zap.Logger
	metrics    *metrics.Metrics
	limit      int
	windowDays int

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, h Hierarchy, policy access.Policy, log *zap.Logger, opts Options) *Service {
	return &Service{
		repo:       repo,
		hierarchy:  h,
		policy:     policy,
		log:        log,
		metrics:    opts.Metrics,
		limit:      opts.HistoryLimit,
		windowDays: opts.WindowDays,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

type SaveRequest struct {
	FloorID   string       `json:"floorId"`
	CounterID string       `json:"counterId"`
	Date      string       `json:"date"`
	Rows      []models.Row `json:"rows"`
}

// Save validates and persists one entry. Counter users without an explicit
// target save under their assignment. Validation and the write check run
// before any store access.
func (s *Service) Save(ctx context.Context, u *models.User, req SaveRequest) (*models.Entry, error) {
	if u == nil {
		return nil, apperr.PermissionDenied("not signed in")
	}

	floorID := strings.TrimSpace(req.FloorID)
	counterID := strings.TrimSpace(req.CounterID)
	if u.Role == models.RoleCounter && floorID == "" && counterID == "" {
		if ref, ok := u.Assignment(); ok {
			floorID, counterID = ref.FloorID, ref.CounterID
		}
	}
	if floorID == "" || counterID == "" {
		return nil, apperr.Validation("floor and counter are required")
	}

	rows, err := cleanRows(req.Rows)
	if err != nil {
		return nil, err
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = s.now().Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}

	if err := s.policy.CheckWrite(u, floorID, counterID); err != nil {
		return nil, err
	}

	floor, err := s.hierarchy.Floor(ctx, floorID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.UnknownFloor(floorID)
		}
		return nil, err
	}
	counter, err := s.hierarchy.Counter(ctx, counterID)
	if err != nil {
		return nil, err
	}
	if counter.FloorID != floor.ID {
		return nil, apperr.Validation("counter %q is not on floor %q", counter.Name, floor.Name)
	}

	entry := &models.Entry{
		ID:           s.newID(),
		CreatedBy:    u.ID,
		CreatorEmail: u.Email,
		FloorID:      floor.ID,
		FloorName:    floor.Name,
		CounterID:    counter.ID,
		CounterName:  counter.Name,
		Date:         date,
		CreatedAt:    s.now().UTC(),
		Rows:         rows,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, apperr.External(err, "save entry")
	}

	s.metrics.EntrySaved()
	s.log.Info("entry saved",
		zap.String("entry_id", entry.ID),
		zap.String("user_id", u.ID),
		zap.String("floor", floor.Name),
		zap.String("counter", counter.Name),
		zap.String("date", date),
		zap.Int("rows", len(rows)))
	return entry, nil
}

// cleanRows trims every field, drops rows that are entirely blank and
// numbers the rest from 1.
func cleanRows(in []models.Row) ([]models.Row, error) {
	out := make([]models.Row, 0, len(in))
	for _, r := range in {
		r = r.Trimmed()
		if r.IsBlank() {
			continue
		}
		if r.Item == "" {
			return nil, apperr.Validation("row %d: item is required", len(out)+1)
		}
		r.EntryID = ""
		r.Position = len(out) + 1
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, apperr.Validation("please add at least one item row")
	}
	return out, nil
}

// History lists the user's own entries, newest first.
func (s *Service) History(ctx context.Context, u *models.User) ([]models.Entry, error) {
	scope, err := s.policy.ScopeForOwnHistory(u)
	if err != nil {
		return nil, err
	}

	fetchLimit := s.limit
	if s.windowDays > 0 {
		fetchLimit = 0
	}
	list, err := s.repo.ListByCreator(ctx, scope.CreatedBy, fetchLimit)
	if err != nil {
		return nil, apperr.External(err, "load history")
	}

	out := make([]models.Entry, 0, len(list))
	cutoff := ""
	if s.windowDays > 0 {
		cutoff = s.now().AddDate(0, 0, -s.windowDays).Format(models.DateLayout)
	}
	for _, e := range list {
		if !scope.Matches(&e) || (cutoff != "" && e.Date < cutoff) {
			continue
		}
		out = append(out, e)
		if s.limit > 0 && len(out) == s.limit {
			break
		}
	}
	return out, nil
}

// Get returns one entry if the user may read it.
func (s *Service) Get(ctx context.Context, u *models.User, id string) (*models.Entry, error) {
	if u == nil {
		return nil, apperr.PermissionDenied("not signed in")
	}
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckEntryRead(u, e); err != nil {
		return nil, err
	}
	return e, nil
}
