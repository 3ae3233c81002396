package speech

import "time"

// Default voice for TTS. The session speaks Turkish, so the default is a
// Turkish neural voice; override with -voice for other locales.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "tr-TR-EmelNeural"

// Audio format requested from Azure and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// Priority levels for speech requests. Higher value speaks first.
type Priority int

const (
	PriorityLow      Priority = iota // pantry nudges, idle remarks
	PriorityNormal                   // step instructions, confirmations
	PriorityHigh                     // timer alarms
	PriorityCritical                 // errors
)

// Request is a queued item waiting to be spoken.
type Request struct {
	Text     string
	Priority Priority
	QueuedAt time.Time
}
