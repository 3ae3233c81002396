package speech

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"
	"go.uber.org/zap"

	"github.com/tariften/kitchenpilot/internal/domain"
)

// Compile-time interface check.
var _ domain.VoiceCapture = (*Ear)(nil)

// envAnnotation matches whisper environmental annotations like
// "(dog barking)" or "[laughter]".
var envAnnotation = regexp.MustCompile(`[\(\[][^)\]]*[\)\]]`)

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithChunkDuration sets the length of each recording chunk.
func WithChunkDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.chunkDuration = d }
}

// WithLanguage sets the whisper transcription language hint.
func WithLanguage(lang string) EarOption {
	return func(e *Ear) { e.language = lang }
}

// Ear captures microphone audio in fixed chunks, transcribes each chunk
// with whisper-cli, and delivers cleaned utterances on a channel. There
// is no wake word: the mic toggle mutes and unmutes capture, and
// recording is suppressed while the mouth is speaking so the assistant
// doesn't transcribe itself.
type Ear struct {
	whisperBin string
	modelPath  string
	tempDir    string
	language   string
	mouth      *Mouth
	log        *zap.SugaredLogger

	chunkDuration time.Duration

	mu    sync.Mutex
	muted bool

	out chan string
}

// NewEar creates a voice capture backed by whisper-cli.
//   - whisperBin: path to the whisper-cli executable
//   - modelPath: path to the ggml model file
//
// The ear starts muted; Unmute begins capture.
func NewEar(whisperBin, modelPath string, mouth *Mouth, log *zap.SugaredLogger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:    whisperBin,
		modelPath:     modelPath,
		tempDir:       os.TempDir(),
		language:      "tr",
		mouth:         mouth,
		log:           log,
		chunkDuration: 3 * time.Second,
		muted:         true,
		out:           make(chan string, 8),
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, err := exec.LookPath(e.whisperBin); err != nil {
		log.Errorw("whisper binary not found", "bin", e.whisperBin, "err", err)
	}
	return e
}

// C returns the channel transcribed utterances arrive on.
func (e *Ear) C() <-chan string { return e.out }

// Mute suspends capture.
func (e *Ear) Mute() {
	e.mu.Lock()
	e.muted = true
	e.mu.Unlock()
	e.log.Debugw("ear muted")
}

// Unmute resumes capture.
func (e *Ear) Unmute() {
	e.mu.Lock()
	e.muted = false
	e.mu.Unlock()
	e.log.Debugw("ear unmuted")
}

func (e *Ear) isMuted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// Run is the capture loop. Blocks until ctx is cancelled. Intended to be
// called as a goroutine.
func (e *Ear) Run(ctx context.Context) {
	e.log.Infow("ear started", "chunk", e.chunkDuration, "lang", e.language)
	for {
		select {
		case <-ctx.Done():
			e.log.Infow("ear stopped")
			return
		default:
		}

		if e.isMuted() || e.mouth.IsSpeaking() {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		text := e.recordChunk(ctx)

		// If the mouth started talking mid-recording, the chunk is
		// contaminated with our own audio.
		if e.mouth.IsSpeaking() {
			e.log.Debugw("discarding chunk, mouth spoke during recording")
			continue
		}

		text = cleanTranscription(text)
		if text == "" {
			continue
		}
		e.log.Debugw("heard", "text", text)

		select {
		case e.out <- text:
		case <-ctx.Done():
			return
		}
	}
}

// recordChunk does one record-and-transcribe cycle.
func (e *Ear) recordChunk(ctx context.Context) string {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	t, err := audiotranscriber.NewTranscriber(
		e.whisperBin,
		e.modelPath,
		e.tempDir,
		"wav",
		callback,
		false,
	)
	if err != nil {
		e.log.Errorw("transcriber init failed", "err", err)
		time.Sleep(2 * time.Second)
		return ""
	}

	if err := t.Start(); err != nil {
		e.log.Errorw("recording start failed", "err", err)
		time.Sleep(2 * time.Second)
		return ""
	}

	select {
	case <-time.After(e.chunkDuration):
	case <-ctx.Done():
		t.Stop()
		wg.Wait()
		return ""
	}

	t.Stop()
	wg.Wait()
	return result
}

// cleanTranscription normalizes whitespace and strips whisper artifacts:
// blank-audio markers, environmental annotations, timestamp prefixes, and
// known hallucinated phrases.
func cleanTranscription(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)

	junk := []string{
		"[BLANK_AUDIO]", "[BLANK AUDIO]", "(silence)", "[silence]",
		"(no speech)", "[no speech]", "[Music]", "(music)",
		"(background noise)", "(inaudible)", "(unintelligible)",
	}
	for _, j := range junk {
		s = strings.ReplaceAll(s, j, "")
		s = strings.ReplaceAll(s, strings.ToLower(j), "")
		s = strings.ReplaceAll(s, strings.ToUpper(j), "")
	}

	// Catch-all for remaining (parenthesized) or [bracketed] annotations.
	s = envAnnotation.ReplaceAllString(s, "")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	s = strings.TrimSpace(s)

	// Whisper hallucinates these on silent input.
	hallucinations := []string{
		"...", "you", "thank you.", "thanks for watching!",
		"bye.", "bye!", "the end.", "altyazı m.k.",
		"izlediğiniz için teşekkürler.", "izlediğiniz için teşekkür ederim.",
	}
	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if h == lower {
			return ""
		}
	}

	// Strip timestamp prefixes like "[00:00:00.000 --> 00:00:05.000]".
	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "]"); idx != -1 && idx < 40 {
			s = strings.TrimSpace(s[idx+1:])
		}
	}
	return s
}
