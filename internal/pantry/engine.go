// Package pantry implements the pantry freshness engine: local item
// state, debounced persistence to the backend, a disk snapshot for
// offline reads, and the expiry watcher.
package pantry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tariften/kitchenpilot/internal/domain"
	"github.com/tariften/kitchenpilot/internal/freshness"
)

// defaultDebounce is how long the engine waits after the last mutation
// before flushing to the backend. Every new mutation restarts the wait,
// so a burst of edits produces one save.
const defaultDebounce = 1000 * time.Millisecond

// Snapshotter persists the last known pantry across runs. *Cache is the
// real implementation; tests substitute their own.
type Snapshotter interface {
	Put(items []domain.PantryItem) error
	Get() ([]domain.PantryItem, time.Time, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebounce overrides the save debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		e.debounce = d
	}
}

// WithCache attaches a local snapshot store.
func WithCache(c Snapshotter) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithLogger attaches a logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithClock overrides the time source used for freshness derivation.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine owns the in-memory pantry and its persistence lifecycle.
//
// Saves are optimistic: the dirty flag clears before the backend call so
// mutations arriving mid-flight mark the state dirty again and trigger a
// follow-up save. A failed save keeps the local list untouched and flips
// the status to SaveFailed without rolling anything back.
type Engine struct {
	backend  domain.PantryBackend
	cache    Snapshotter
	log      *zap.SugaredLogger
	debounce time.Duration
	now      func() time.Time

	mu     sync.Mutex
	items  []domain.PantryItem
	status domain.SaveStatus
	dirty  bool
	timer  *time.Timer
	closed bool
}

// NewEngine builds an engine around a backend.
func NewEngine(backend domain.PantryBackend, opts ...Option) *Engine {
	e := &Engine{
		backend:  backend,
		log:      zap.NewNop().Sugar(),
		debounce: defaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load pulls the pantry from the backend. On 401/403 the engine enters
// the logged-out state; on any fetch failure it falls back to the cached
// snapshot so the list stays browsable.
func (e *Engine) Load(ctx context.Context) error {
	items, err := e.backend.FetchPantry(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrSessionClosed
	}

	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			e.status = domain.SaveLoggedOut
		}
		e.log.Warnw("pantry fetch failed, using snapshot", "err", err)
		if e.cache != nil {
			cached, savedAt, cacheErr := e.cache.Get()
			if cacheErr == nil {
				e.items = cached
				e.refreshLocked()
				if e.status != domain.SaveLoggedOut {
					// A snapshot is not a persisted state; the UI must
					// not report "saved" while the backend is down.
					e.status = domain.SaveOffline
				}
				e.log.Infow("pantry loaded from snapshot", "items", len(cached), "age", time.Since(savedAt).Round(time.Second))
				return nil
			}
		}
		return err
	}

	e.items = items
	e.refreshLocked()
	if e.status != domain.SaveLoggedOut {
		e.status = domain.SaveIdle
	}
	e.snapshotLocked()
	return nil
}

// Items returns a copy of the pantry with freshly derived statuses.
func (e *Engine) Items() []domain.PantryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()
	out := make([]domain.PantryItem, len(e.items))
	copy(out, e.items)
	return out
}

// Status reports the persistence state for the UI.
func (e *Engine) Status() domain.SaveStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Critical returns items that are expired or inside the warning window.
// List order is preserved.
func (e *Engine) Critical() []domain.PantryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()
	var out []domain.PantryItem
	for _, item := range e.items {
		if item.Status == domain.StatusExpired || item.Status == domain.StatusWarning {
			out = append(out, item)
		}
	}
	return out
}

// QuickAdd parses a comma-separated batch ("milk 3 days, eggs") and
// prepends the new items so they surface at the top of the list. Returns
// the items that were added.
func (e *Engine) QuickAdd(text string) []domain.PantryItem {
	added := freshness.ParseQuickAdd(text, e.now())
	if len(added) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.items = append(append([]domain.PantryItem{}, added...), e.items...)
	e.refreshLocked()
	e.markDirtyLocked()
	return added
}

// ScanReceipt sends receipt text or a base64 photo to the analyzer and
// prepends whatever it recognizes. Returns the added items.
func (e *Engine) ScanReceipt(ctx context.Context, text, image string) ([]domain.PantryItem, error) {
	scanned, err := e.backend.AnalyzeReceipt(ctx, text, image)
	if err != nil {
		return nil, err
	}
	if len(scanned) == 0 {
		return nil, nil
	}

	today := e.now()
	base := today.UnixMilli()
	added := make([]domain.PantryItem, 0, len(scanned))
	for i, s := range scanned {
		// The analyzer often cannot read a date off the receipt. Such
		// items get the quick-add shelf life instead of no expiry, so
		// the watcher still tracks them.
		expiry := s.ExpiryDate
		if expiry == "" || expiry == domain.ZeroDate {
			expiry = freshness.DefaultExpiry(today)
		}
		added = append(added, domain.PantryItem{
			ID:        fmt.Sprintf("scan-%d-%d", base, i),
			Name:      freshness.Capitalize(strings.TrimSpace(s.Name)),
			Quantity:  s.Quantity,
			ExpiresIn: expiry,
		})
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, domain.ErrSessionClosed
	}
	e.items = append(added, e.items...)
	e.refreshLocked()
	e.markDirtyLocked()
	return added, nil
}

// Remove deletes an item by id. Reports whether anything was removed.
func (e *Engine) Remove(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	for i, item := range e.items {
		if item.ID == id {
			e.items = append(e.items[:i], e.items[i+1:]...)
			e.markDirtyLocked()
			return true
		}
	}
	return false
}

// SetExpiry updates an item's expiry date. An empty date clears it;
// anything else must be a valid YYYY-MM-DD.
func (e *Engine) SetExpiry(id, date string) error {
	if date != "" {
		if _, ok := freshness.ParseDate(date); !ok {
			return fmt.Errorf("invalid date %q", date)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrSessionClosed
	}
	for i := range e.items {
		if e.items[i].ID == id {
			e.items[i].ExpiresIn = date
			e.refreshLocked()
			e.markDirtyLocked()
			return nil
		}
	}
	return fmt.Errorf("item %q: %w", id, domain.ErrNotFound)
}

// Suggest asks the backend's AI to build a recipe around whatever is
// about to expire. Falls back to the whole pantry when nothing is
// critical.
func (e *Engine) Suggest(ctx context.Context) (*domain.RecipeRef, error) {
	candidates := e.Critical()
	if len(candidates) == 0 {
		candidates = e.Items()
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("pantry is empty: %w", domain.ErrNotFound)
	}

	names := make([]string, len(candidates))
	for i, item := range candidates {
		names[i] = item.Name
	}
	return e.backend.GenerateRecipe(ctx, strings.Join(names, ", "))
}

// Flush forces a pending save immediately, bypassing the debounce.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if !e.dirty {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	return e.save(ctx)
}

// Close cancels the debounce timer and flushes any unsaved mutations.
// Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	dirty := e.dirty
	e.mu.Unlock()

	if !dirty {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.save(ctx)
}

// refreshLocked rederives every item's status from its expiry date.
// Callers hold e.mu.
func (e *Engine) refreshLocked() {
	today := e.now()
	for i := range e.items {
		e.items[i].Status = freshness.Derive(e.items[i].ExpiresIn, today).Status
	}
}

// markDirtyLocked flags unsaved state and (re)starts the debounce timer.
// A second mutation inside the window supersedes the first timer, so only
// the final one fires. Callers hold e.mu.
func (e *Engine) markDirtyLocked() {
	e.dirty = true
	if e.status == domain.SaveLoggedOut {
		// Display-only mode: keep the snapshot current, never call the
		// backend without a token.
		e.snapshotLocked()
		return
	}
	e.status = domain.SavePending
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, func() {
		if err := e.save(context.Background()); err != nil {
			e.log.Warnw("debounced save failed", "err", err)
		}
	})
}

// save performs one flush. The dirty flag clears before the backend call;
// a save failure does not restore it, matching the optimistic model where
// local state is the source of truth and the user retries by editing.
func (e *Engine) save(ctx context.Context) error {
	e.mu.Lock()
	if e.status == domain.SaveLoggedOut {
		e.mu.Unlock()
		return domain.ErrUnauthorized
	}
	e.dirty = false
	toSave := make([]domain.PantryItem, len(e.items))
	copy(toSave, e.items)
	e.mu.Unlock()

	err := e.backend.SavePantry(ctx, toSave)

	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case err == nil:
		if !e.dirty {
			e.status = domain.SaveIdle
		}
		e.snapshotLocked()
		e.log.Debugw("pantry saved", "items", len(toSave))
		return nil
	case errors.Is(err, domain.ErrUnauthorized):
		e.status = domain.SaveLoggedOut
		return err
	default:
		e.status = domain.SaveFailed
		return err
	}
}

// snapshotLocked writes the current list to the cache. Callers hold e.mu.
func (e *Engine) snapshotLocked() {
	if e.cache == nil {
		return
	}
	if err := e.cache.Put(e.items); err != nil {
		e.log.Warnw("snapshot write failed", "err", err)
	}
}
