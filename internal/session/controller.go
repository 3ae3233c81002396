// Package session implements the guided cooking session: step
// navigation, the countdown timer and its alarm, the help and SOS
// overlays, and the voice command loop that drives them.
package session

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tariften/kitchenpilot/internal/command"
	"github.com/tariften/kitchenpilot/internal/domain"
)

// Spoken confirmations. Turkish, matching the session voice.
const (
	lineNextStep       = "Sonraki adım."
	linePreviousStep   = "Önceki adıma dönüldü."
	lineFinished       = "Tebrikler şefim! Tarif tamamlandı."
	lineTimerStarted   = "%v dakika süre başlatıldı."
	lineTimerCancelled = "Süre iptal edildi."
	lineTimerPaused    = "Süre duraklatıldı."
	lineTimerResumed   = "Süre devam ediyor."
	lineTimerDone      = "Süre doldu!"
	lineAlarmSilenced  = "Alarm susturuldu."
	lineHelpOpened     = "Yardım menüsü açıldı."
	lineHelpClosed     = "Yardım kapatıldı."
	lineSOSOpened      = "Acil durum menüsü açıldı."
	lineSOSClosed      = "Acil durum kapatıldı."
	lineChefTip        = "Şefin ipucu: %s"
)

const (
	defaultTickInterval = 1 * time.Second
	// defaultThinkDelay is the pause before an SOS remedy is delivered,
	// kept so the answer doesn't arrive implausibly fast.
	defaultThinkDelay = 1500 * time.Millisecond
)

// Option configures a Controller.
type Option func(*Controller)

// WithTickInterval overrides the countdown tick rate.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.tickEvery = d
	}
}

// WithThinkDelay overrides the SOS answer delay.
func WithThinkDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.thinkDelay = d
	}
}

// WithLogger attaches a logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// Controller owns all mutable state of one cooking session. A single
// goroutine drives the countdown; every other mutation happens under the
// mutex on the caller's goroutine, so state transitions are serialized.
type Controller struct {
	recipe  *domain.Recipe
	voice   domain.SpeechOutput
	haptics domain.Haptics
	log     *zap.SugaredLogger

	tickEvery  time.Duration
	thinkDelay time.Duration

	mu            sync.Mutex
	stepIndex     int
	timerSeconds  int
	timerRunning  bool
	timerPaused   bool
	alarmActive   bool
	overlay       domain.Overlay
	listening     bool
	lastCommand   string
	sosPending    bool
	sosResolution string
	closed        bool
	sosTimer      *time.Timer

	stop chan struct{}
	done chan struct{}
}

// New builds a controller for the given recipe and starts its countdown
// goroutine. The recipe must have at least one step.
func New(recipe *domain.Recipe, voice domain.SpeechOutput, haptics domain.Haptics, opts ...Option) *Controller {
	c := &Controller{
		recipe:     recipe,
		voice:      voice,
		haptics:    haptics,
		log:        zap.NewNop().Sugar(),
		tickEvery:  defaultTickInterval,
		thinkDelay: defaultThinkDelay,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c
}

// run is the countdown loop. It is the only writer of timerSeconds
// between mutations, so a replaced timer never double-ticks.
func (c *Controller) run() {
	defer close(c.done)
	ticker := time.NewTicker(c.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick advances the countdown by one interval.
func (c *Controller) tick() {
	c.mu.Lock()
	if !c.timerRunning || c.timerPaused {
		c.mu.Unlock()
		return
	}
	c.timerSeconds--
	if c.timerSeconds > 0 {
		c.mu.Unlock()
		return
	}
	c.timerSeconds = 0
	c.timerRunning = false
	c.timerPaused = false
	c.alarmActive = true
	c.mu.Unlock()

	c.log.Infow("timer elapsed, alarm on")
	c.haptics.Vibrate()
	c.voice.Speak(lineTimerDone)
}

// Start announces the session: the recipe title, the chef tip when there
// is one, and the first step.
func (c *Controller) Start() {
	c.voice.Speak(c.recipe.Title)
	if c.recipe.ChefTip != "" {
		c.voice.Speak(fmt.Sprintf(lineChefTip, c.recipe.ChefTip))
	}
	c.ReadStep()
}

// Snapshot returns a consistent copy of the session state.
func (c *Controller) Snapshot() domain.SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() domain.SessionSnapshot {
	return domain.SessionSnapshot{
		StepIndex: c.stepIndex,
		StepCount: len(c.recipe.Steps),
		Timer: domain.TimerSnapshot{
			RemainingSeconds: c.timerSeconds,
			Running:          c.timerRunning,
			Paused:           c.timerPaused,
		},
		AlarmActive:   c.alarmActive,
		Overlay:       c.overlay,
		Listening:     c.listening,
		LastCommand:   c.lastCommand,
		SOSPending:    c.sosPending,
		SOSResolution: c.sosResolution,
	}
}

// Step returns the currently active step.
func (c *Controller) Step() domain.RecipeStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recipe.Steps[c.stepIndex]
}

// Recipe returns the recipe this session cooks.
func (c *Controller) Recipe() *domain.Recipe {
	return c.recipe
}

// GoNext advances to the next step, or finishes the session when the
// current step is the last one.
func (c *Controller) GoNext() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.stepIndex >= len(c.recipe.Steps)-1 {
		c.overlay = domain.OverlayFinished
		c.mu.Unlock()
		c.voice.Speak(lineFinished)
		return
	}
	c.stepIndex++
	content := c.recipe.Steps[c.stepIndex].Content
	c.mu.Unlock()

	c.voice.Speak(lineNextStep)
	c.voice.Speak(content)
}

// GoPrevious steps back. Silently ignored on the first step.
func (c *Controller) GoPrevious() {
	c.mu.Lock()
	if c.closed || c.stepIndex == 0 {
		c.mu.Unlock()
		return
	}
	c.stepIndex--
	content := c.recipe.Steps[c.stepIndex].Content
	c.mu.Unlock()

	c.voice.Speak(linePreviousStep)
	c.voice.Speak(content)
}

// ReadStep speaks the current step again.
func (c *Controller) ReadStep() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	content := c.recipe.Steps[c.stepIndex].Content
	c.mu.Unlock()
	c.voice.Speak(content)
}

// StartTimer starts (or replaces) the countdown. Fractional minutes are
// allowed; "yarım dakika" is thirty seconds. Starting a timer clears any
// ringing alarm.
func (c *Controller) StartTimer(minutes float64) {
	if minutes <= 0 {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.timerSeconds = int(math.Round(minutes * 60))
	c.timerRunning = true
	c.timerPaused = false
	c.alarmActive = false
	c.mu.Unlock()

	c.log.Infow("timer started", "minutes", minutes)
	c.voice.Speak(fmt.Sprintf(lineTimerStarted, minutes))
}

// CancelTimer stops the countdown, zeroes it, and silences the alarm.
func (c *Controller) CancelTimer() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.timerRunning = false
	c.timerPaused = false
	c.timerSeconds = 0
	c.alarmActive = false
	c.mu.Unlock()
	c.voice.Speak(lineTimerCancelled)
}

// PauseTimer pauses a running countdown. No-op otherwise.
func (c *Controller) PauseTimer() {
	c.mu.Lock()
	if c.closed || !c.timerRunning || c.timerPaused {
		c.mu.Unlock()
		return
	}
	c.timerPaused = true
	c.mu.Unlock()
	c.voice.Speak(lineTimerPaused)
}

// ResumeTimer resumes a paused countdown. No-op otherwise.
func (c *Controller) ResumeTimer() {
	c.mu.Lock()
	if c.closed || !c.timerRunning || !c.timerPaused {
		c.mu.Unlock()
		return
	}
	c.timerPaused = false
	c.mu.Unlock()
	c.voice.Speak(lineTimerResumed)
}

// DismissAlarm silences a ringing alarm. The elapsed timer stays at zero.
func (c *Controller) DismissAlarm() {
	c.mu.Lock()
	if !c.alarmActive {
		c.mu.Unlock()
		return
	}
	c.alarmActive = false
	c.mu.Unlock()
	c.voice.Speak(lineAlarmSilenced)
}

// OpenHelp shows the command help overlay.
func (c *Controller) OpenHelp() {
	c.setOverlay(domain.OverlayHelp, lineHelpOpened)
}

// CloseHelp hides the help overlay.
func (c *Controller) CloseHelp() {
	c.setOverlay(domain.OverlayNone, lineHelpClosed)
}

// OpenSOS shows the kitchen-rescue overlay.
func (c *Controller) OpenSOS() {
	c.setOverlay(domain.OverlaySOS, lineSOSOpened)
}

// CloseSOS hides the rescue overlay and clears any delivered remedy.
func (c *Controller) CloseSOS() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.overlay = domain.OverlayNone
	c.sosPending = false
	c.sosResolution = ""
	if c.sosTimer != nil {
		c.sosTimer.Stop()
		c.sosTimer = nil
	}
	c.mu.Unlock()
	c.voice.Speak(lineSOSClosed)
}

func (c *Controller) setOverlay(o domain.Overlay, line string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.overlay = o
	c.mu.Unlock()
	c.voice.Speak(line)
}

// RequestRemedy answers an SOS category after a short thinking pause.
// A second request supersedes a pending one.
func (c *Controller) RequestRemedy(category domain.SOSCategory) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.sosPending = true
	c.sosResolution = ""
	if c.sosTimer != nil {
		c.sosTimer.Stop()
	}
	remedy := Remedy(category)
	c.sosTimer = time.AfterFunc(c.thinkDelay, func() {
		c.mu.Lock()
		if c.closed || !c.sosPending {
			c.mu.Unlock()
			return
		}
		c.sosPending = false
		c.sosResolution = remedy
		c.mu.Unlock()
		c.voice.Speak(remedy)
	})
	c.mu.Unlock()
	c.log.Debugw("sos requested", "category", category)
}

// SetListening flips the mic indicator.
func (c *Controller) SetListening(on bool) {
	c.mu.Lock()
	c.listening = on
	c.mu.Unlock()
}

// HandleUtterance interprets one transcribed utterance against the
// current state and applies the resulting action. Every utterance is
// recorded as the last command, matched or not.
func (c *Controller) HandleUtterance(utterance string) domain.Action {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.Action{Type: domain.ActionNone}
	}
	snap := c.snapshotLocked()
	c.lastCommand = utterance
	c.mu.Unlock()

	action := command.Interpret(utterance, snap)
	c.log.Debugw("utterance", "text", utterance, "action", action.Type)

	switch action.Type {
	case domain.ActionCloseHelp:
		c.CloseHelp()
	case domain.ActionCloseSOS:
		c.CloseSOS()
	case domain.ActionSilenceAlarm:
		c.DismissAlarm()
	case domain.ActionNextStep:
		c.GoNext()
	case domain.ActionPreviousStep:
		c.GoPrevious()
	case domain.ActionReadStep:
		c.ReadStep()
	case domain.ActionCancelTimer:
		c.CancelTimer()
	case domain.ActionPauseTimer:
		c.PauseTimer()
	case domain.ActionResumeTimer:
		c.ResumeTimer()
	case domain.ActionStartTimer:
		c.StartTimer(action.Minutes)
	case domain.ActionOpenHelp:
		c.OpenHelp()
	case domain.ActionOpenSOS:
		c.OpenSOS()
	}
	return action
}

// Close tears the session down: the countdown goroutine exits, pending
// SOS answers are dropped, speech stops, and all state resets.
// Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stepIndex = 0
	c.timerSeconds = 0
	c.timerRunning = false
	c.timerPaused = false
	c.alarmActive = false
	c.overlay = domain.OverlayNone
	c.listening = false
	c.lastCommand = ""
	c.sosPending = false
	c.sosResolution = ""
	if c.sosTimer != nil {
		c.sosTimer.Stop()
		c.sosTimer = nil
	}
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	c.voice.Stop()
	c.log.Infow("session closed")
}
