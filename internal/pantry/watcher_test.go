package pantry

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tariften/kitchenpilot/internal/domain"
	"github.com/tariften/kitchenpilot/internal/freshness"
)

type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (n *mockNotifier) Notify(ctx context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

func (n *mockNotifier) NotifyUrgent(ctx context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urgent = append(n.urgent, msg)
	return nil
}

func (n *mockNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages), len(n.urgent)
}

func TestWatcherNudgesOnceADay(t *testing.T) {
	backend := &mockBackend{fetchItems: []domain.PantryItem{
		{ID: "1", Name: "Milk", ExpiresIn: freshness.AddDays(time.Now(), -1)},
		{ID: "2", Name: "Yogurt", ExpiresIn: freshness.AddDays(time.Now(), 5)},
	}}
	e := NewEngine(backend, WithDebounce(time.Hour))
	e.Load(context.Background())

	notifier := &mockNotifier{}
	w := NewWatcher(e, notifier, zap.NewNop().Sugar(), WithWatchInterval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	time.Sleep(120 * time.Millisecond)
	cancel()

	normal, urgent := notifier.counts()
	if urgent != 1 {
		t.Errorf("urgent nudges = %d, want exactly 1 despite multiple ticks", urgent)
	}
	if normal != 0 {
		t.Errorf("normal nudges = %d, want 0 when something is overdue", normal)
	}
}

func TestWatcherQuietWhenPantryIsFresh(t *testing.T) {
	backend := &mockBackend{fetchItems: []domain.PantryItem{
		{ID: "1", Name: "Rice", ExpiresIn: freshness.AddDays(time.Now(), 90)},
	}}
	e := NewEngine(backend, WithDebounce(time.Hour))
	e.Load(context.Background())

	notifier := &mockNotifier{}
	w := NewWatcher(e, notifier, zap.NewNop().Sugar(), WithWatchInterval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	time.Sleep(80 * time.Millisecond)
	cancel()

	normal, urgent := notifier.counts()
	if normal != 0 || urgent != 0 {
		t.Errorf("nudges = %d/%d, want none", normal, urgent)
	}
}

func TestBuildNudge(t *testing.T) {
	tests := []struct {
		name    string
		overdue []string
		soon    []string
		want    string
	}{
		{"both", []string{"Milk"}, []string{"Yogurt", "Cheese"},
			"Pantry check: Milk already expired, and Yogurt and Cheese won't last much longer."},
		{"overdue only", []string{"Milk", "Eggs"}, nil,
			"Pantry check: Milk and Eggs already expired. Time to toss or cook."},
		{"soon only", nil, []string{"Yogurt"},
			"Pantry check: Yogurt expiring soon. Plan a meal around them."},
		{"empty", nil, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildNudge(tt.overdue, tt.soon); got != tt.want {
				t.Errorf("got %q\nwant %q", got, tt.want)
			}
		})
	}
}
