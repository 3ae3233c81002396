// Package command maps spoken utterances onto session actions. Matching
// is substring-based over a small Turkish-first vocabulary with English
// synonyms, since the recognizer output is short free-form phrases.
package command

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tariften/kitchenpilot/internal/domain"
)

// numberWords maps spoken Turkish numbers to minute values. yarım and
// buçuk stand for half a minute.
var numberWords = map[string]float64{
	"bir": 1, "iki": 2, "üç": 3, "dört": 4, "beş": 5,
	"altı": 6, "yedi": 7, "sekiz": 8, "dokuz": 9, "on": 10,
	"on bir": 11, "on iki": 12, "on beş": 15, "yirmi": 20,
	"yirmi beş": 25, "otuz": 30, "kırk": 40, "elli": 50, "altmış": 60,
	"yarım": 0.5, "buçuk": 0.5,
}

// numberKeys holds the word keys longest-first so "on bir" wins over
// both "on" and "bir".
var numberKeys = func() []string {
	keys := make([]string, 0, len(numberWords))
	for k := range numberWords {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var digitPattern = regexp.MustCompile(`\d+`)

// TextToNumber extracts a minute count from an utterance. Digits win over
// number words. Returns false when the text names no number.
func TextToNumber(text string) (float64, bool) {
	if m := digitPattern.FindString(text); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return float64(n), true
		}
	}
	for _, key := range numberKeys {
		if strings.Contains(text, key) {
			return numberWords[key], true
		}
	}
	return 0, false
}

// Vocabulary groups, checked by containsAny.
var (
	dismissWords = []string{"kapat", "gizle", "close", "hide"}
	nextWords    = []string{"ileri", "sonraki", "geç", "tamam", "next", "done", "okay"}
	prevWords    = []string{"geri", "önceki", "back", "previous"}
	readWords    = []string{"oku", "tekrar", "read", "repeat"}
	timerWords   = []string{"süre", "başlat", "dakika", "timer", "minute"}
	cancelWords  = []string{"iptal", "cancel"}
	pauseWords   = []string{"durdur", "pause"}
	resumeWords  = []string{"devam", "resume"}
	silenceWords = []string{"dur", "tamam", "sus", "kapat", "stop"}
	helpWords    = []string{"yardım", "ne diyebilirim", "help"}
	sosWords     = []string{"acil", "sos", "sorun", "emergency"}
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Interpret resolves one utterance against the current session state.
//
// Precedence is fixed: dismissing whatever is open comes first (help,
// then SOS, then the alarm), then step navigation, then timer control,
// then a bare alarm silence, then opening help or SOS. An utterance that
// matches nothing yields ActionNone; the caller still records it as the
// last heard command.
func Interpret(utterance string, snap domain.SessionSnapshot) domain.Action {
	text := strings.ToLower(strings.TrimSpace(utterance))

	// 1. Dismiss open surfaces. Falls through when nothing is open, so a
	// bare "kapat" can still reach the later branches.
	if containsAny(text, dismissWords) {
		switch {
		case snap.Overlay == domain.OverlayHelp:
			return domain.Action{Type: domain.ActionCloseHelp}
		case snap.Overlay == domain.OverlaySOS:
			return domain.Action{Type: domain.ActionCloseSOS}
		case snap.AlarmActive:
			return domain.Action{Type: domain.ActionSilenceAlarm}
		}
	}

	// 2. Navigation.
	switch {
	case containsAny(text, nextWords):
		return domain.Action{Type: domain.ActionNextStep}
	case containsAny(text, prevWords):
		return domain.Action{Type: domain.ActionPreviousStep}
	case containsAny(text, readWords):
		return domain.Action{Type: domain.ActionReadStep}
	}

	// 3. Timer control, gated on a timer keyword so a stray number in
	// conversation doesn't start a countdown.
	if containsAny(text, timerWords) {
		switch {
		case containsAny(text, cancelWords):
			return domain.Action{Type: domain.ActionCancelTimer}
		case containsAny(text, pauseWords):
			if snap.Timer.Running && !snap.Timer.Paused {
				return domain.Action{Type: domain.ActionPauseTimer}
			}
			return domain.Action{Type: domain.ActionNone}
		case containsAny(text, resumeWords):
			if snap.Timer.Running && snap.Timer.Paused {
				return domain.Action{Type: domain.ActionResumeTimer}
			}
			return domain.Action{Type: domain.ActionNone}
		default:
			if minutes, ok := TextToNumber(text); ok && minutes > 0 {
				return domain.Action{Type: domain.ActionStartTimer, Minutes: minutes}
			}
			return domain.Action{Type: domain.ActionNone}
		}
	}

	// 4. Alarm silence without a dismiss word.
	if snap.AlarmActive && containsAny(text, silenceWords) {
		return domain.Action{Type: domain.ActionSilenceAlarm}
	}

	// 5. Open help or SOS.
	switch {
	case containsAny(text, helpWords):
		return domain.Action{Type: domain.ActionOpenHelp}
	case containsAny(text, sosWords):
		return domain.Action{Type: domain.ActionOpenSOS}
	}

	return domain.Action{Type: domain.ActionNone}
}
