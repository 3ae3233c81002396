package pantry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tariften/kitchenpilot/internal/domain"
	"github.com/tariften/kitchenpilot/internal/freshness"
)

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher scans the pantry.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// Watcher periodically scans the pantry and nudges the user about items
// that are overdue or about to turn. Runs on a slow cycle (default: one
// hour) since expiry state only changes at day boundaries.
type Watcher struct {
	engine   *Engine
	notifier domain.Notifier
	log      *zap.SugaredLogger
	interval time.Duration

	// lastNudge tracks the calendar day of the last notification so the
	// user hears about the same items at most once a day.
	lastNudge string
}

// NewWatcher creates a watcher over the given engine.
func NewWatcher(engine *Engine, notifier domain.Notifier, log *zap.SugaredLogger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		engine:   engine,
		notifier: notifier,
		log:      log,
		interval: 1 * time.Hour,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the watcher loop. Blocks until ctx is cancelled.
// Intended to be called as a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Infow("pantry watcher started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.log.Infow("pantry watcher stopped")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// check runs one watcher cycle.
func (w *Watcher) check(ctx context.Context) {
	today := freshness.FormatDate(time.Now())
	if w.lastNudge == today {
		return
	}

	critical := w.engine.Critical()
	w.log.Debugw("pantry scanned", "critical", len(critical))
	if len(critical) == 0 {
		return
	}

	var overdue, soon []string
	for _, item := range critical {
		f := freshness.Derive(item.ExpiresIn, time.Now())
		if f.DaysRemaining != nil && *f.DaysRemaining <= 0 {
			overdue = append(overdue, item.Name)
		} else {
			soon = append(soon, item.Name)
		}
	}

	msg := buildNudge(overdue, soon)
	if msg == "" {
		return
	}

	var err error
	if len(overdue) > 0 {
		err = w.notifier.NotifyUrgent(ctx, msg)
	} else {
		err = w.notifier.Notify(ctx, msg)
	}
	if err != nil {
		w.log.Warnw("pantry nudge failed", "err", err)
		return
	}
	w.lastNudge = today
}

// buildNudge composes the daily reminder.
func buildNudge(overdue, soon []string) string {
	switch {
	case len(overdue) > 0 && len(soon) > 0:
		return fmt.Sprintf("Pantry check: %s already expired, and %s won't last much longer.",
			joinNames(overdue), joinNames(soon))
	case len(overdue) > 0:
		return fmt.Sprintf("Pantry check: %s already expired. Time to toss or cook.", joinNames(overdue))
	case len(soon) > 0:
		return fmt.Sprintf("Pantry check: %s expiring soon. Plan a meal around them.", joinNames(soon))
	default:
		return ""
	}
}

// joinNames joins item names into a readable comma-separated list.
func joinNames(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
