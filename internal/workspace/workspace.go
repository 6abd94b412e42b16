// Package workspace is the command layer behind the manager view: it keeps
// each user's current filter selection and runs compose, query and render
// for it. A newer action from the same user supersedes an in-flight one,
// and results that arrive after a sign-out are discarded.
package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"drystore-backend/internal/access"
	"drystore-backend/internal/apperr"
	"drystore-backend/internal/filter"
	"drystore-backend/internal/metrics"
	"drystore-backend/internal/models"
	"drystore-backend/internal/report"
	"drystore-backend/internal/session"

	"go.uber.org/zap"
)

// ErrStale: the result belonged to an action that was superseded or to a
// session that has since ended.
var ErrStale = errors.New("result discarded: superseded or signed out")

type Result struct {
	Filter  filter.Filter
	Plan    filter.Plan
	Entries []models.Entry
}

// idleTTL matches the token lifetime; a state untouched for longer belongs
// to a session that has expired.
const idleTTL = 24 * time.Hour

type state struct {
	seq       uint64
	cancel    context.CancelFunc
	selection filter.Filter
	hasSel    bool
	lastUsed  time.Time
}

type Workspace struct {
	composer *filter.Composer
	renderer *report.Renderer
	sessions session.Registry
	policy   access.Policy
	log      *zap.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	seq    uint64 // shared by all users, so a dropped state never reuses a number
	states map[string]*state
	now    func() time.Time
}

func New(composer *filter.Composer, renderer *report.Renderer, sessions session.Registry,
	policy access.Policy, log *zap.Logger, m *metrics.Metrics) *Workspace {
	return &Workspace{
		composer: composer,
		renderer: renderer,
		sessions: sessions,
		policy:   policy,
		log:      log,
		metrics:  m,
		states:   make(map[string]*state),
		now:      time.Now,
	}
}

func copyFilter(f filter.Filter) filter.Filter {
	if f.Counter != nil {
		ref := *f.Counter
		f.Counter = &ref
	}
	return f
}

// begin records f as the user's selection and cancels whatever was running.
func (w *Workspace) begin(ctx context.Context, userID string, f filter.Filter) (context.Context, uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.expireIdle(now)

	st, ok := w.states[userID]
	if !ok {
		st = &state{}
		w.states[userID] = st
	}
	if st.cancel != nil {
		st.cancel()
	}
	w.seq++
	st.seq = w.seq
	st.selection = copyFilter(f)
	st.hasSel = true
	st.lastUsed = now

	runCtx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	return runCtx, st.seq
}

// expireIdle drops states with nothing running that were last used more
// than idleTTL ago. Callers hold w.mu.
func (w *Workspace) expireIdle(now time.Time) {
	for id, st := range w.states {
		if st.cancel == nil && now.Sub(st.lastUsed) > idleTTL {
			delete(w.states, id)
		}
	}
}

func (w *Workspace) finish(userID string, seq uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st, ok := w.states[userID]; ok && st.seq == seq && st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
}

func (w *Workspace) latest(userID string, seq uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.states[userID]
	return ok && st.seq == seq
}

// live reports whether seq is still the latest action and the session
// generation is unchanged.
func (w *Workspace) live(ctx context.Context, userID string, seq uint64, gen int64) (bool, error) {
	if !w.latest(userID, seq) {
		return false, nil
	}
	cur, err := w.sessions.Current(context.WithoutCancel(ctx), userID)
	if err != nil {
		return false, apperr.External(err, "check session")
	}
	return cur == gen, nil
}

func (w *Workspace) stale(userID string, seq uint64) error {
	w.metrics.StaleResult()
	w.log.Info("discarding stale result", zap.String("user_id", userID), zap.Uint64("seq", seq))
	return ErrStale
}

// Query runs f for u. The residual filter is fully applied before the
// result is returned.
func (w *Workspace) Query(ctx context.Context, u *models.User, f filter.Filter) (*Result, error) {
	res, _, err := w.run(ctx, u, f)
	return res, err
}

func (w *Workspace) run(ctx context.Context, u *models.User, f filter.Filter) (*Result, uint64, error) {
	if err := w.policy.CheckGlobalRead(u); err != nil {
		return nil, 0, err
	}
	gen, err := w.sessions.Current(ctx, u.ID)
	if err != nil {
		return nil, 0, apperr.External(err, "check session")
	}

	runCtx, seq := w.begin(ctx, u.ID, f)
	defer w.finish(u.ID, seq)

	list, plan, err := w.composer.Run(runCtx, copyFilter(f))

	ok, liveErr := w.live(ctx, u.ID, seq, gen)
	if liveErr != nil {
		return nil, seq, liveErr
	}
	if !ok {
		return nil, seq, w.stale(u.ID, seq)
	}
	if err != nil {
		return nil, seq, err
	}
	return &Result{Filter: copyFilter(f), Plan: plan, Entries: list}, seq, nil
}

// Export queries f and renders the result once the query is complete.
func (w *Workspace) Export(ctx context.Context, u *models.User, f filter.Filter, format report.Format) (*report.Artifact, error) {
	res, seq, err := w.run(ctx, u, f)
	if err != nil {
		return nil, err
	}
	gen, err := w.sessions.Current(ctx, u.ID)
	if err != nil {
		return nil, apperr.External(err, "check session")
	}

	artifact, err := w.renderer.Render(ctx, format, res.Entries)
	if err != nil {
		return nil, err
	}
	ok, err := w.live(ctx, u.ID, seq, gen)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, w.stale(u.ID, seq)
	}
	return artifact, nil
}

// Selection returns a copy of the user's last submitted filter.
func (w *Workspace) Selection(userID string) (filter.Filter, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.states[userID]
	if !ok || !st.hasSel {
		return filter.Filter{}, false
	}
	return copyFilter(st.selection), true
}

// Reset cancels any running action and forgets the selection. Called on
// sign-out.
func (w *Workspace) Reset(userID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.states[userID]
	if !ok {
		return
	}
	if st.cancel != nil {
		st.cancel()
	}
	delete(w.states, userID)
}
