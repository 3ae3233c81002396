package speech

import (
	"context"

	"go.uber.org/zap"

	"github.com/tariften/kitchenpilot/internal/domain"
)

// Compile-time interface checks.
var (
	_ domain.SpeechOutput = (*NoVoice)(nil)
	_ domain.VoiceCapture = (*NoEar)(nil)
)

// NoVoice is a speech output that only logs. Used with -no-speech or
// when no audio device is available.
type NoVoice struct {
	log *zap.SugaredLogger
}

// NewNoVoice creates a silent speech output.
func NewNoVoice(log *zap.SugaredLogger) *NoVoice {
	return &NoVoice{log: log}
}

// Speak logs what would have been said.
func (n *NoVoice) Speak(text string) {
	n.log.Debugw("speech disabled, would say", "text", text)
}

// Stop does nothing.
func (n *NoVoice) Stop() {}

// NoEar is a voice capture that never hears anything. The session still
// works through typed commands.
type NoEar struct {
	out chan string
}

// NewNoEar creates a silent voice capture.
func NewNoEar() *NoEar {
	return &NoEar{out: make(chan string)}
}

// Run blocks until ctx is cancelled.
func (n *NoEar) Run(ctx context.Context) {
	<-ctx.Done()
}

// C returns a channel that never delivers.
func (n *NoEar) C() <-chan string { return n.out }

// Mute does nothing.
func (n *NoEar) Mute() {}

// Unmute does nothing.
func (n *NoEar) Unmute() {}
