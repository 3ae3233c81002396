package command

import (
	"testing"

	"github.com/tariften/kitchenpilot/internal/domain"
)

func snap(overlay domain.Overlay, alarm bool, running, paused bool) domain.SessionSnapshot {
	return domain.SessionSnapshot{
		StepIndex:   1,
		StepCount:   5,
		Overlay:     overlay,
		AlarmActive: alarm,
		Timer:       domain.TimerSnapshot{Running: running, Paused: paused},
	}
}

func TestInterpret(t *testing.T) {
	idle := snap(domain.OverlayNone, false, false, false)

	tests := []struct {
		name      string
		utterance string
		state     domain.SessionSnapshot
		want      domain.ActionType
		minutes   float64
	}{
		{"next turkish", "sonraki adım", idle, domain.ActionNextStep, 0},
		{"next ileri", "ileri", idle, domain.ActionNextStep, 0},
		{"next tamam", "tamam şefim", idle, domain.ActionNextStep, 0},
		{"next english", "next step please", idle, domain.ActionNextStep, 0},
		{"prev turkish", "geri dön", idle, domain.ActionPreviousStep, 0},
		{"prev önceki", "önceki adım", idle, domain.ActionPreviousStep, 0},
		{"read", "adımı tekrar oku", idle, domain.ActionReadStep, 0},
		{"read repeat", "repeat that", idle, domain.ActionReadStep, 0},

		{"timer digits", "5 dakika süre başlat", idle, domain.ActionStartTimer, 5},
		{"timer words", "on beş dakika", idle, domain.ActionStartTimer, 15},
		{"timer compound words", "on bir dakika", idle, domain.ActionStartTimer, 11},
		{"timer half", "yarım dakika", idle, domain.ActionStartTimer, 0.5},
		{"timer keyword without number", "süre başlat", idle, domain.ActionNone, 0},
		{"bare number ignored", "beş", idle, domain.ActionNone, 0},

		{"cancel", "süreyi iptal et", snap(domain.OverlayNone, false, true, false), domain.ActionCancelTimer, 0},
		{"pause running", "süreyi durdur", snap(domain.OverlayNone, false, true, false), domain.ActionPauseTimer, 0},
		{"pause not running is noop", "süreyi durdur", idle, domain.ActionNone, 0},
		{"pause already paused is noop", "süreyi durdur", snap(domain.OverlayNone, false, true, true), domain.ActionNone, 0},
		{"resume paused", "süre devam", snap(domain.OverlayNone, false, true, true), domain.ActionResumeTimer, 0},
		{"resume not paused is noop", "süre devam", snap(domain.OverlayNone, false, true, false), domain.ActionNone, 0},

		{"silence alarm dur", "dur artık", snap(domain.OverlayNone, true, false, false), domain.ActionSilenceAlarm, 0},
		{"silence alarm sus", "sus", snap(domain.OverlayNone, true, false, false), domain.ActionSilenceAlarm, 0},
		{"silence without alarm is noop", "sus", idle, domain.ActionNone, 0},

		{"open help", "yardım", idle, domain.ActionOpenHelp, 0},
		{"open help phrase", "ne diyebilirim", idle, domain.ActionOpenHelp, 0},
		{"open sos", "acil durum", idle, domain.ActionOpenSOS, 0},
		{"open sos sorun", "bir sorun var", idle, domain.ActionOpenSOS, 0},

		{"gibberish", "lorem ipsum", idle, domain.ActionNone, 0},
		{"empty", "   ", idle, domain.ActionNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(tt.utterance, tt.state)
			if got.Type != tt.want {
				t.Errorf("Interpret(%q) = %v, want %v", tt.utterance, got.Type, tt.want)
			}
			if got.Minutes != tt.minutes {
				t.Errorf("minutes = %v, want %v", got.Minutes, tt.minutes)
			}
		})
	}
}

// Dismiss precedence is help, then SOS, then the alarm. A single "kapat"
// closes exactly one surface per utterance.
func TestDismissPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		state domain.SessionSnapshot
		want  domain.ActionType
	}{
		{"help beats alarm", snap(domain.OverlayHelp, true, false, false), domain.ActionCloseHelp},
		{"sos beats alarm", snap(domain.OverlaySOS, true, false, false), domain.ActionCloseSOS},
		{"alarm alone", snap(domain.OverlayNone, true, false, false), domain.ActionSilenceAlarm},
		{"help alone", snap(domain.OverlayHelp, false, false, false), domain.ActionCloseHelp},
		{"sos alone", snap(domain.OverlaySOS, false, false, false), domain.ActionCloseSOS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Interpret("kapat", tt.state); got.Type != tt.want {
				t.Errorf("got %v, want %v", got.Type, tt.want)
			}
		})
	}
}

// With nothing open, "kapat" falls through to the later branches instead
// of being swallowed by the dismiss handler.
func TestDismissFallsThroughWhenNothingOpen(t *testing.T) {
	got := Interpret("kapat", snap(domain.OverlayNone, false, false, false))
	if got.Type != domain.ActionNone {
		t.Errorf("got %v, want ActionNone", got.Type)
	}
}

// "tamam" is primarily a navigation word; it advances the step even while
// the alarm rings, matching the branch order users learned.
func TestTamamNavigatesOverAlarm(t *testing.T) {
	got := Interpret("tamam", snap(domain.OverlayNone, true, false, false))
	if got.Type != domain.ActionNextStep {
		t.Errorf("got %v, want ActionNextStep", got.Type)
	}
}

func TestTextToNumber(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"5 dakika", 5, true},
		{"120", 120, true},
		{"beş dakika", 5, true},
		{"on dakika", 10, true},
		{"on bir dakika", 11, true},
		{"yirmi beş", 25, true},
		{"buçuk", 0.5, true},
		{"dakika", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := TextToNumber(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("TextToNumber(%q) = %v,%v, want %v,%v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}
