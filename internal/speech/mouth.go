// Package speech provides the voice of the assistant: Azure TTS
// synthesis, audio playback, the prioritized speech queue, and the
// whisper-backed ear.
package speech

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tariften/kitchenpilot/internal/domain"
)

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithQueueSize sets the internal notification channel capacity.
func WithQueueSize(n int) MouthOption {
	return func(m *Mouth) {
		m.notify = make(chan struct{}, n)
	}
}

// Mouth serializes all speech output: queue -> synthesize -> play, one
// item at a time, highest priority first. Session confirmations repeat a
// lot ("Sonraki adım.", timer lines), so synthesized audio is cached
// in memory keyed by text.
type Mouth struct {
	tts    *AzureClient
	player *Player
	log    *zap.SugaredLogger

	mu          sync.Mutex
	queue       []Request
	notify      chan struct{}
	speaking    bool
	interrupted bool
	cache       map[string][]byte
}

// NewMouth creates the speech dispatcher.
func NewMouth(tts *AzureClient, player *Player, log *zap.SugaredLogger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		tts:    tts,
		player: player,
		log:    log,
		notify: make(chan struct{}, 32),
		cache:  make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Say queues text at the given priority. Non-blocking. Queuing anything
// at PriorityNormal or above drops stale low-priority chatter.
func (m *Mouth) Say(text string, priority Priority) {
	if text == "" {
		return
	}
	m.mu.Lock()
	if priority >= PriorityNormal {
		m.dropLowLocked()
	}
	m.queue = append(m.queue, Request{Text: text, Priority: priority, QueuedAt: time.Now()})
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default: // already signaled
	}
}

// dropLowLocked removes all PriorityLow items. Callers hold m.mu.
func (m *Mouth) dropLowLocked() {
	n := 0
	for _, item := range m.queue {
		if item.Priority > PriorityLow {
			m.queue[n] = item
			n++
		}
	}
	m.queue = m.queue[:n]
}

// IsSpeaking reports whether audio is being synthesized or played.
func (m *Mouth) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// Interrupt stops playback and clears the queue.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	m.queue = m.queue[:0]
	m.interrupted = true
	m.mu.Unlock()

	m.player.Stop()
}

// Start begins the processing goroutine. Non-blocking.
func (m *Mouth) Start(ctx context.Context) {
	go m.processLoop(ctx)
	m.log.Infow("mouth started", "voice", m.tts.Voice())
}

func (m *Mouth) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.log.Infow("mouth stopped")
			return
		case <-m.notify:
			m.drain(ctx)
		}
	}
}

// drain speaks all queued items, highest priority first.
func (m *Mouth) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.mu.Lock()
		m.interrupted = false
		m.mu.Unlock()

		item, ok := m.dequeue()
		if !ok {
			return
		}

		m.mu.Lock()
		m.speaking = true
		m.mu.Unlock()

		m.speak(ctx, item.Text)

		m.mu.Lock()
		m.speaking = false
		m.mu.Unlock()
	}
}

// dequeue pops the highest priority item, FIFO within a priority.
func (m *Mouth) dequeue() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return Request{}, false
	}
	best := 0
	for i, item := range m.queue {
		if item.Priority > m.queue[best].Priority {
			best = i
		}
	}
	item := m.queue[best]
	m.queue = append(m.queue[:best], m.queue[best+1:]...)
	return item, true
}

// speak synthesizes (or reuses cached audio for) one item and plays it.
func (m *Mouth) speak(ctx context.Context, text string) {
	m.mu.Lock()
	audio, cached := m.cache[text]
	m.mu.Unlock()

	if !cached {
		var err error
		audio, err = m.tts.Synthesize(ctx, text)
		if err != nil {
			m.log.Warnw("tts synthesis failed", "err", err)
			return
		}
		m.mu.Lock()
		m.cache[text] = audio
		m.mu.Unlock()
	}

	m.mu.Lock()
	aborted := m.interrupted
	m.mu.Unlock()
	if aborted {
		return
	}

	if err := m.player.Play(audio); err != nil {
		m.log.Warnw("audio playback failed", "err", err)
	}
}

// Compile-time interface check.
var _ domain.SpeechOutput = (*Voice)(nil)

// Voice adapts the Mouth to the session's speech port. Each Speak
// interrupts whatever is in flight, matching the barge-in behavior users
// expect from short confirmations.
type Voice struct {
	mouth *Mouth
}

// NewVoice wraps a mouth as a session speech output.
func NewVoice(mouth *Mouth) *Voice {
	return &Voice{mouth: mouth}
}

// Speak interrupts current output and queues the text.
func (v *Voice) Speak(text string) {
	v.mouth.Interrupt()
	v.mouth.Say(text, PriorityNormal)
}

// Stop cancels queued and playing speech.
func (v *Voice) Stop() {
	v.mouth.Interrupt()
}
