package speech

import (
	"context"
	"regexp"
	"strings"

	"github.com/tariften/kitchenpilot/internal/domain"
)

// Compile-time interface check.
var _ domain.Notifier = (*SpeakingNotifier)(nil)

// SpeakingNotifier wraps a printed notifier and also speaks each message.
// The pantry watcher uses it so expiry nudges are heard, not just seen.
type SpeakingNotifier struct {
	text  domain.Notifier
	mouth *Mouth
}

// NewSpeakingNotifier creates a notifier that both prints and speaks.
func NewSpeakingNotifier(text domain.Notifier, mouth *Mouth) *SpeakingNotifier {
	return &SpeakingNotifier{text: text, mouth: mouth}
}

// Notify prints the message and queues it at low priority so it never
// talks over session instructions.
func (n *SpeakingNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	n.mouth.Say(cleanForSpeech(message), PriorityLow)
	return nil
}

// NotifyUrgent prints the message and queues it at high priority.
func (n *SpeakingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	n.mouth.Say(cleanForSpeech(message), PriorityHigh)
	return nil
}

// cleanForSpeech strips formatting artifacts that shouldn't be spoken.
var ansiCodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func cleanForSpeech(msg string) string {
	return strings.TrimSpace(ansiCodes.ReplaceAllString(msg, ""))
}
