package domain

// ActionType classifies what a voice/text command asks the session to do.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionCloseHelp
	ActionCloseSOS
	ActionSilenceAlarm
	ActionNextStep
	ActionPreviousStep
	ActionReadStep
	ActionCancelTimer
	ActionPauseTimer
	ActionResumeTimer
	ActionStartTimer
	ActionOpenHelp
	ActionOpenSOS
)

// String returns a snake_case action name.
func (a ActionType) String() string {
	switch a {
	case ActionCloseHelp:
		return "close_help"
	case ActionCloseSOS:
		return "close_sos"
	case ActionSilenceAlarm:
		return "silence_alarm"
	case ActionNextStep:
		return "next_step"
	case ActionPreviousStep:
		return "previous_step"
	case ActionReadStep:
		return "read_step"
	case ActionCancelTimer:
		return "cancel_timer"
	case ActionPauseTimer:
		return "pause_timer"
	case ActionResumeTimer:
		return "resume_timer"
	case ActionStartTimer:
		return "start_timer"
	case ActionOpenHelp:
		return "open_help"
	case ActionOpenSOS:
		return "open_sos"
	default:
		return "none"
	}
}

// Action is the interpreter's output: what to do, plus the timer duration
// for ActionStartTimer.
type Action struct {
	Type    ActionType
	Minutes float64 // only meaningful for ActionStartTimer
}
