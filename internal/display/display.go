// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent status bar (cooking step, countdown,
// alarm, pantry save state) and an input prompt at the bottom of the
// terminal. All application output is printed above the rendered area via
// Program.Println / Printf, so concurrent writes never garble the
// display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Status is one render-ready snapshot of everything the bar shows.
// StatusFunc produces it each tick; zero values hide their segment.
type Status struct {
	CookingActive bool
	RecipeTitle   string
	StepIndex     int // 0-based
	StepCount     int

	TimerRemaining time.Duration
	TimerRunning   bool
	TimerPaused    bool
	AlarmActive    bool

	Listening bool
	Overlay   string // "", "help", "sos", "finished"

	SaveStatus    string // "saved", "saving", "error", "logged out"
	CriticalItems int
}

// StatusFunc supplies the current status. Called once per second from the
// UI goroutine; must be cheap and safe to call concurrently.
type StatusFunc func() Status

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	timerRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	alarmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle — muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Chat — soft sky blue for assistant speech.
	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	// Step — soft mint for step headers.
	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	// Primary text — light zinc.
	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Secondary text — dimmed zinc for hints and metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Urgent — soft coral for errors and overdue items.
	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	// Warning — amber for items about to turn.
	warnOutputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	// Fresh — mint for items with time left.
	freshOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#bbf7d0"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely
// call the print helpers and read from [UI.InputChan] at any time after
// [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	status  StatusFunc
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI(status StatusFunc) *UI {
	return &UI{
		status:  status,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe. Falls back to
// fmt.Println before the program starts.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintChat prints a conversational assistant line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintStep prints a step header like "Adım 2/8".
func (u *UI) PrintStep(text string) {
	u.Println(stepStyle.Render("  " + text))
}

// PrintInstruction prints the step's main instruction text.
func (u *UI) PrintInstruction(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintWarn prints a warning line.
func (u *UI) PrintWarn(text string) {
	u.Println(warnOutputStyle.Render("  " + text))
}

// PrintFresh prints a good-news line.
func (u *UI) PrintFresh(text string) {
	u.Println(freshOutputStyle.Render("  " + text))
}

// PrintVoice prints a voice-recognized input line.
func (u *UI) PrintVoice(text string) {
	u.Println(secondaryStyle.Render("[voice] ") + primaryStyle.Render(text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("pilot") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Plain-text prompt: lipgloss-styled prompts add invisible ANSI
	// bytes that break textinput's width math on long input.
	ti.Prompt = "pilot> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		status:  u.status,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn: func(v string) {
			u.PrintUserInput(v)
		},
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	status  StatusFunc
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string)
	current Status
	width   int
}

type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Echo via a Cmd so it runs outside Update and can't
				// deadlock on the message loop.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		const promptLen = 7 // "pilot> "
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case tickMsg:
		if m.status != nil {
			m.current = m.status()
		}
		cmds := []tea.Cmd{tickCmd()}
		if m.current.CookingActive {
			cmds = append(cmds, tea.SetWindowTitle(m.titleStr()))
		} else {
			cmds = append(cmds, tea.SetWindowTitle("KitchenPilot"))
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) titleStr() string {
	s := m.current
	title := fmt.Sprintf("KitchenPilot — %s %d/%d", s.RecipeTitle, s.StepIndex+1, s.StepCount)
	if s.AlarmActive {
		return title + " — ALARM!"
	}
	if s.TimerRunning {
		return title + " — " + fmtDuration(s.TimerRemaining)
	}
	return title
}

func (m model) View() string {
	var b strings.Builder

	if bar := m.renderBar(); bar != "" {
		b.WriteString(bar)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// renderBar builds the status bar from the active segments. Empty when
// there is nothing to show.
func (m model) renderBar() string {
	s := m.current
	var parts []string

	if s.CookingActive {
		parts = append(parts, labelStyle.Render(fmt.Sprintf("Adım %d/%d", s.StepIndex+1, s.StepCount)))

		switch {
		case s.AlarmActive:
			parts = append(parts, alarmStyle.Render("ALARM!"))
		case s.TimerRunning && s.TimerPaused:
			parts = append(parts, pausedStyle.Render(fmtDuration(s.TimerRemaining)+" (duraklatıldı)"))
		case s.TimerRunning:
			parts = append(parts, timerRunStyle.Render(fmtDuration(s.TimerRemaining)))
		}

		if s.Overlay != "" {
			parts = append(parts, pausedStyle.Render(s.Overlay))
		}
		if s.Listening {
			parts = append(parts, freshOutputStyle.Render("dinliyor"))
		}
	}

	if s.SaveStatus != "" && s.SaveStatus != "saved" {
		parts = append(parts, labelStyle.Render("kiler: ")+warnOutputStyle.Render(s.SaveStatus))
	}
	if s.CriticalItems > 0 {
		parts = append(parts, urgentOutputStyle.Render(fmt.Sprintf("%d ürün kritik", s.CriticalItems)))
	}

	if len(parts) == 0 {
		return ""
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "
	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

// ── Helpers ──────────────────────────────────────────────────────

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	min := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	if min == 0 {
		return fmt.Sprintf("%ds", sec)
	}
	return fmt.Sprintf("%dm%02ds", min, sec)
}
