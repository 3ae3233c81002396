package domain

import "context"

// SpeechOutput speaks text to the user. Implementations are best-effort:
// when the platform voice capability is missing, the no-op implementation
// is used and spoken feedback is silently skipped.
type SpeechOutput interface {
	Speak(text string)
	// Stop cancels any in-flight or queued speech. Idempotent.
	Stop()
}

// VoiceCapture streams transcribed utterances. The no-op implementation
// delivers nothing; the session still works via direct commands.
type VoiceCapture interface {
	// Run starts the capture loop. Blocks until ctx is cancelled.
	Run(ctx context.Context)
	// C returns the channel transcribed utterances arrive on.
	C() <-chan string
	Mute()
	Unmute()
}

// Haptics triggers a device vibration pattern. Best-effort.
type Haptics interface {
	Vibrate()
}

// PantryBackend is the remote REST collaborator the pantry engine and
// the AI features depend on. Implementations map HTTP failures onto the
// domain sentinels: ErrUnauthorized for missing/invalid tokens,
// ErrSaveRejected (wrapped) for rejected writes.
type PantryBackend interface {
	FetchPantry(ctx context.Context) ([]PantryItem, error)
	SavePantry(ctx context.Context, items []PantryItem) error
	AnalyzeReceipt(ctx context.Context, text, imageBase64 string) ([]ScannedItem, error)
	GenerateRecipe(ctx context.Context, ingredients string) (*RecipeRef, error)
	FetchRecipe(ctx context.Context, slug string) (*Recipe, error)
}

// Notifier delivers messages to the user (printed, and spoken when TTS
// is wired in).
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
