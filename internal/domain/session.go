package domain

// Overlay is the session's modal state. At most one overlay is active at
// a time; the alarm is tracked separately (see SessionSnapshot.AlarmActive)
// because the source app models it as an independent boolean.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlaySOS
	OverlayFinished
)

// String returns a human-readable overlay name.
func (o Overlay) String() string {
	switch o {
	case OverlayNone:
		return "none"
	case OverlayHelp:
		return "help"
	case OverlaySOS:
		return "sos"
	case OverlayFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// SOSCategory is one of the fixed cooking-mishap buckets the SOS advisory
// flow understands. Anything else falls through to SOSOther.
type SOSCategory int

const (
	SOSBurnt SOSCategory = iota
	SOSSalty
	SOSWatery
	SOSOther
)

// String returns a human-readable category name.
func (c SOSCategory) String() string {
	switch c {
	case SOSBurnt:
		return "burnt"
	case SOSSalty:
		return "salty"
	case SOSWatery:
		return "watery"
	default:
		return "other"
	}
}

// TimerSnapshot is the countdown timer's observable state.
type TimerSnapshot struct {
	RemainingSeconds int
	Running          bool
	Paused           bool
}

// SessionSnapshot is a point-in-time copy of the cooking session state,
// safe to hand to the interpreter and the UI without further locking.
type SessionSnapshot struct {
	StepIndex     int
	StepCount     int
	Timer         TimerSnapshot
	AlarmActive   bool
	Overlay       Overlay
	Listening     bool
	LastCommand   string
	SOSPending    bool
	SOSResolution string // remedy text once resolved, "" before
}
