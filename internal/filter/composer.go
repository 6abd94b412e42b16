// Package filter turns a user filter into a store query plus an in-process
// date predicate.
package filter

import (
	"context"
	"time"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/entries"
	"drystore-backend/internal/metrics"
	"drystore-backend/internal/models"

	"go.uber.org/zap"
)

// Filter is what the caller selected. Counter always travels with the floor
// it was picked under. Empty strings mean "unbounded".
type Filter struct {
	FloorID  string             `json:"floorId,omitempty"`
	Counter  *models.CounterRef `json:"counter,omitempty"`
	DateFrom string             `json:"dateFrom,omitempty"`
	DateTo   string             `json:"dateTo,omitempty"`
}

func (f Filter) IsEmpty() bool {
	return f.FloorID == "" && (f.Counter == nil || f.Counter.IsZero()) && f.DateFrom == "" && f.DateTo == ""
}

// Plan is a composed filter: the store part and the residual date bounds.
type Plan struct {
	Query          entries.Query
	DateFrom       string
	DateTo         string
	CounterDropped bool
}

// Keep reports whether an entry passes the residual date predicate. Bounds
// are inclusive and compared as YYYY-MM-DD strings.
func (p Plan) Keep(e *models.Entry) bool {
	if p.DateFrom != "" && e.Date < p.DateFrom {
		return false
	}
	if p.DateTo != "" && e.Date > p.DateTo {
		return false
	}
	return true
}

// Finder is the slice of entries.Repository the composer needs.
type Finder interface {
	Find(ctx context.Context, q entries.Query) ([]models.Entry, error)
}

type Composer struct {
	repo        Finder
	log         *zap.Logger
	metrics     *metrics.Metrics
	recentLimit int
}

// NewComposer: recentLimit caps a completely empty filter (the manager's
// default view). Zero means no cap.
func NewComposer(repo Finder, log *zap.Logger, m *metrics.Metrics, recentLimit int) *Composer {
	return &Composer{repo: repo, log: log, metrics: m, recentLimit: recentLimit}
}

// Compose never touches the store and never modifies f.
func (c *Composer) Compose(f Filter) (Plan, error) {
	for _, d := range []string{f.DateFrom, f.DateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return Plan{}, apperr.Validation("date %q must be YYYY-MM-DD", d)
		}
	}

	plan := Plan{DateFrom: f.DateFrom, DateTo: f.DateTo}
	hasCounter := f.Counter != nil && !f.Counter.IsZero()

	switch {
	case f.FloorID == "" && hasCounter:
		return Plan{}, apperr.AmbiguousCounterFilter()
	case f.FloorID == "":
		if f.IsEmpty() {
			plan.Query.Limit = c.recentLimit
		}
	case hasCounter && f.Counter.FloorID != f.FloorID:
		plan.Query.FloorID = f.FloorID
		plan.CounterDropped = true
		c.log.Warn("counter filter dropped: counter selected under another floor",
			zap.String("floor_id", f.FloorID),
			zap.String("counter_floor_id", f.Counter.FloorID),
			zap.String("counter_id", f.Counter.CounterID))
	case hasCounter:
		plan.Query.FloorID = f.FloorID
		plan.Query.CounterID = f.Counter.CounterID
	default:
		plan.Query.FloorID = f.FloorID
	}
	return plan, nil
}

// Run composes, queries and applies the residual predicate. Store order
// (newest first) is preserved. No match is an empty, non-nil slice.
func (c *Composer) Run(ctx context.Context, f Filter) ([]models.Entry, Plan, error) {
	plan, err := c.Compose(f)
	if err != nil {
		return nil, Plan{}, err
	}

	list, err := c.repo.Find(ctx, plan.Query)
	if err != nil {
		return nil, plan, apperr.External(err, "query entries")
	}
	c.metrics.FilterQuery(plan.CounterDropped)

	out := make([]models.Entry, 0, len(list))
	for i := range list {
		if plan.Keep(&list[i]) {
			out = append(out, list[i])
		}
	}
	return out, plan, nil
}
