package session

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tariften/kitchenpilot/internal/domain"
)

type mockVoice struct {
	mu     sync.Mutex
	spoken []string
	stops  int
}

func (v *mockVoice) Speak(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spoken = append(v.spoken, text)
}

func (v *mockVoice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stops++
}

func (v *mockVoice) spokenCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.spoken)
}

func (v *mockVoice) said(substr string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.spoken {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

type mockHaptics struct {
	mu    sync.Mutex
	count int
}

func (h *mockHaptics) Vibrate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
}

func (h *mockHaptics) vibrations() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func testRecipe() *domain.Recipe {
	return &domain.Recipe{
		ID:    "1",
		Slug:  "menemen",
		Title: "Menemen",
		Steps: []domain.RecipeStep{
			{Content: "Domatesleri doğra."},
			{Content: "Biberleri kavur."},
			{Content: "Yumurtaları ekle.", TimerSeconds: 180},
		},
	}
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *mockVoice, *mockHaptics) {
	t.Helper()
	voice := &mockVoice{}
	haptics := &mockHaptics{}
	base := []Option{WithTickInterval(10 * time.Millisecond), WithThinkDelay(10 * time.Millisecond)}
	c := New(testRecipe(), voice, haptics, append(base, opts...)...)
	t.Cleanup(c.Close)
	return c, voice, haptics
}

func TestNavigation(t *testing.T) {
	c, voice, _ := newTestController(t)

	// Backing up from the first step is silently ignored.
	c.GoPrevious()
	if got := c.Snapshot().StepIndex; got != 0 {
		t.Errorf("step = %d, want 0", got)
	}

	c.GoNext()
	if got := c.Snapshot().StepIndex; got != 1 {
		t.Errorf("step = %d, want 1", got)
	}
	if !voice.said("Sonraki adım.") {
		t.Error("next step not announced")
	}

	c.GoPrevious()
	if got := c.Snapshot().StepIndex; got != 0 {
		t.Errorf("step = %d, want 0 after back", got)
	}
}

func TestNextOnLastStepFinishes(t *testing.T) {
	c, voice, _ := newTestController(t)

	c.GoNext()
	c.GoNext()
	snap := c.Snapshot()
	if snap.StepIndex != 2 || snap.Overlay != domain.OverlayNone {
		t.Fatalf("unexpected state before finish: %+v", snap)
	}

	c.GoNext()
	snap = c.Snapshot()
	if snap.Overlay != domain.OverlayFinished {
		t.Errorf("overlay = %v, want finished", snap.Overlay)
	}
	if snap.StepIndex != 2 {
		t.Errorf("step advanced past the last: %d", snap.StepIndex)
	}
	if !voice.said("Tebrikler") {
		t.Error("completion not announced")
	}
}

func TestTimerCountsDownToAlarm(t *testing.T) {
	c, voice, haptics := newTestController(t)

	c.StartTimer(0.05) // three seconds of countdown, three fast ticks
	deadline := time.After(2 * time.Second)
	for {
		snap := c.Snapshot()
		if snap.AlarmActive {
			if snap.Timer.Running {
				t.Error("timer still running with alarm active")
			}
			if snap.Timer.RemainingSeconds != 0 {
				t.Errorf("remaining = %d, want 0", snap.Timer.RemainingSeconds)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("alarm never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if haptics.vibrations() != 1 {
		t.Errorf("vibrate count = %d, want 1", haptics.vibrations())
	}
	if !voice.said("Süre doldu") {
		t.Error("timer completion not spoken")
	}
}

// Replacing a running timer must not leave the old one ticking: the
// countdown rate stays one second per tick.
func TestReplacedTimerTicksOnce(t *testing.T) {
	c, _, _ := newTestController(t)

	c.StartTimer(10) // 600s
	c.StartTimer(5)  // replaced with 300s

	time.Sleep(500 * time.Millisecond) // ~50 ticks

	snap := c.Snapshot()
	if !snap.Timer.Running {
		t.Fatal("timer not running")
	}
	// A leaked second ticker would drain roughly twice as fast.
	if snap.Timer.RemainingSeconds < 230 {
		t.Errorf("remaining = %d, countdown is draining faster than one tick", snap.Timer.RemainingSeconds)
	}
	if snap.Timer.RemainingSeconds >= 300 {
		t.Errorf("remaining = %d, countdown never ticked", snap.Timer.RemainingSeconds)
	}
}

func TestPauseAndResume(t *testing.T) {
	c, voice, _ := newTestController(t)

	// Pause without a running timer is a no-op.
	c.PauseTimer()
	if voice.said("duraklatıldı") {
		t.Error("pause announced with no timer")
	}

	c.StartTimer(5)
	c.PauseTimer()
	frozen := c.Snapshot().Timer.RemainingSeconds
	time.Sleep(80 * time.Millisecond)
	if got := c.Snapshot().Timer.RemainingSeconds; got != frozen {
		t.Errorf("paused timer moved: %d -> %d", frozen, got)
	}

	c.ResumeTimer()
	time.Sleep(80 * time.Millisecond)
	if got := c.Snapshot().Timer.RemainingSeconds; got >= frozen {
		t.Errorf("resumed timer did not tick: still %d", got)
	}
}

func TestCancelTimerSilencesAlarm(t *testing.T) {
	c, _, _ := newTestController(t)

	c.StartTimer(0.05)
	waitFor(t, func() bool { return c.Snapshot().AlarmActive })

	c.CancelTimer()
	snap := c.Snapshot()
	if snap.AlarmActive || snap.Timer.Running || snap.Timer.RemainingSeconds != 0 {
		t.Errorf("cancel left state %+v", snap.Timer)
	}
}

func TestStartTimerClearsAlarm(t *testing.T) {
	c, _, _ := newTestController(t)

	c.StartTimer(0.05)
	waitFor(t, func() bool { return c.Snapshot().AlarmActive })

	c.StartTimer(5)
	snap := c.Snapshot()
	if snap.AlarmActive {
		t.Error("new timer left the alarm ringing")
	}
	if !snap.Timer.Running {
		t.Error("new timer not running")
	}
}

func TestSOSRemedyAfterThinkingDelay(t *testing.T) {
	c, voice, _ := newTestController(t)

	c.OpenSOS()
	c.RequestRemedy(domain.SOSSalty)

	snap := c.Snapshot()
	if !snap.SOSPending || snap.SOSResolution != "" {
		t.Fatalf("expected pending state, got %+v", snap)
	}

	waitFor(t, func() bool { return c.Snapshot().SOSResolution != "" })
	if got := c.Snapshot().SOSResolution; !strings.Contains(got, "patates") {
		t.Errorf("remedy = %q, want the salty fix", got)
	}
	if !voice.said("patates") {
		t.Error("remedy not spoken")
	}
}

func TestCloseSOSDropsPendingRemedy(t *testing.T) {
	c, voice, _ := newTestController(t, WithThinkDelay(50*time.Millisecond))

	c.OpenSOS()
	c.RequestRemedy(domain.SOSBurnt)
	c.CloseSOS()

	time.Sleep(120 * time.Millisecond)
	snap := c.Snapshot()
	if snap.SOSPending || snap.SOSResolution != "" {
		t.Errorf("dropped remedy leaked: %+v", snap)
	}
	if voice.said("Tencereyi") {
		t.Error("cancelled remedy was spoken")
	}
}

func TestHandleUtterance(t *testing.T) {
	c, _, _ := newTestController(t)

	action := c.HandleUtterance("sonraki adım")
	if action.Type != domain.ActionNextStep {
		t.Errorf("action = %v", action.Type)
	}
	if got := c.Snapshot().StepIndex; got != 1 {
		t.Errorf("step = %d, want 1", got)
	}

	// Unmatched utterances still show up as the last heard command.
	action = c.HandleUtterance("hava çok güzel")
	if action.Type != domain.ActionNone {
		t.Errorf("action = %v, want none", action.Type)
	}
	if got := c.Snapshot().LastCommand; got != "hava çok güzel" {
		t.Errorf("lastCommand = %q", got)
	}

	c.HandleUtterance("5 dakika süre başlat")
	if !c.Snapshot().Timer.Running {
		t.Error("spoken timer did not start")
	}
}

// Close must stop the countdown goroutine: no further ticks, alarms, or
// vibrations after teardown.
func TestCloseStopsEverything(t *testing.T) {
	voice := &mockVoice{}
	haptics := &mockHaptics{}
	c := New(testRecipe(), voice, haptics, WithTickInterval(10*time.Millisecond))

	c.StartTimer(0.05)
	c.Close()

	snap := c.Snapshot()
	if snap.Timer.Running || snap.Timer.RemainingSeconds != 0 || snap.StepIndex != 0 {
		t.Errorf("state not reset on close: %+v", snap)
	}
	if voice.stops == 0 {
		t.Error("speech not stopped on close")
	}

	before := haptics.vibrations()
	time.Sleep(100 * time.Millisecond)
	if haptics.vibrations() != before {
		t.Error("alarm fired after close")
	}

	// Idempotent, and a closed session ignores input.
	c.Close()
	if action := c.HandleUtterance("sonraki"); action.Type != domain.ActionNone {
		t.Errorf("closed session acted on input: %v", action.Type)
	}
}

func TestClosedSessionIgnoresTimerControls(t *testing.T) {
	voice := &mockVoice{}
	c := New(testRecipe(), voice, &mockHaptics{}, WithTickInterval(10*time.Millisecond))

	c.StartTimer(5)
	c.Close()

	before := voice.spokenCount()
	c.CancelTimer()
	c.PauseTimer()
	c.ResumeTimer()
	c.ReadStep()

	snap := c.Snapshot()
	if snap.Timer.Running || snap.Timer.Paused || snap.Timer.RemainingSeconds != 0 {
		t.Errorf("timer state touched after close: %+v", snap.Timer)
	}
	if got := voice.spokenCount(); got != before {
		t.Errorf("spoke %d lines after close", got-before)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition never met")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
