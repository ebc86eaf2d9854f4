package whimsy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aceteam-ai/hacker-dash/internal/tui"
)

// SpinnerModel is a BubbleTea model for a spinner whose message is pushed
// from outside the program. Until the first status arrives it rotates
// through its own messages.
type SpinnerModel struct {
	spinner       spinner.Model
	messages      []string
	currentMsg    int
	status        string
	err           error
	result        string
	done          bool
	messageRotate time.Duration
	lastRotate    time.Time
}

// SpinnerOption configures the spinner
type SpinnerOption func(*SpinnerModel)

// WithMessages sets the messages shown before the first status update
func WithMessages(messages []string) SpinnerOption {
	return func(s *SpinnerModel) {
		if len(messages) > 0 {
			s.messages = messages
		}
	}
}

// NewSpinner creates a new whimsy spinner with optional configuration
func NewSpinner(opts ...SpinnerOption) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(tui.ColorSecondary)

	m := SpinnerModel{
		spinner:       s,
		messages:      WaitingMessages,
		currentMsg:    rand.IntN(len(WaitingMessages)),
		messageRotate: 2 * time.Second,
		lastRotate:    time.Now(),
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// tickMsg is sent periodically to rotate messages
type tickMsg time.Time

// statusMsg replaces the displayed message
type statusMsg string

// doneMsg signals the spinner should stop
type doneMsg struct {
	result string
	err    error
}

func (m SpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.status == "" && time.Since(m.lastRotate) >= m.messageRotate {
			m.currentMsg = (m.currentMsg + 1) % len(m.messages)
			m.lastRotate = time.Now()
		}
		return m, tickCmd()

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case doneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m SpinnerModel) View() string {
	if m.done {
		if errors.Is(m.err, context.Canceled) {
			return tui.WarningStyle.Render("⚠ ") + "Interrupted\n"
		}
		if m.err != nil {
			return tui.ErrorStyle.Render("✗ ") + m.err.Error() + "\n"
		}
		if m.result != "" {
			return tui.SuccessStyle.Render("✓ ") + m.result + "\n"
		}
		return ""
	}

	return m.spinner.View() + " " + tui.SpinnerStyle.Render(m.message()) + "\n"
}

func (m SpinnerModel) message() string {
	if m.status != "" {
		return m.status
	}
	return m.messages[m.currentMsg]
}

// Status shows progress pushed by a long-running call. On a terminal it runs
// a spinner program; otherwise each update is printed on its own line.
type Status struct {
	program *tea.Program
	exited  chan struct{}
	out     io.Writer
	stopped bool
}

// StartStatus starts a status display on stdout.
func StartStatus(opts ...SpinnerOption) *Status {
	s := &Status{out: os.Stdout}
	if !tui.IsTTY() {
		return s
	}

	// No input: the generated program takes the terminal over next and
	// interrupts are left to the caller's signal handling.
	s.program = tea.NewProgram(NewSpinner(opts...),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	s.exited = make(chan struct{})
	go func() {
		defer close(s.exited)
		s.program.Run()
	}()
	return s
}

// Update replaces the displayed message. It is safe to call from the
// goroutine doing the work.
func (s *Status) Update(status string) {
	if s.stopped {
		return
	}
	if s.program == nil {
		fmt.Fprintf(s.out, "%s %s\n", tui.SpinnerStyle.Render("◆"), status)
		return
	}
	s.program.Send(statusMsg(status))
}

// Stopped reports whether Stop has been called.
func (s *Status) Stopped() bool {
	return s.stopped
}

// Stop ends the display with a result line, or an error line when err is
// set, and waits until the terminal is released.
func (s *Status) Stop(result string, err error) {
	if s.stopped {
		return
	}
	s.stopped = true

	if s.program == nil {
		switch {
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(s.out, "⚠ Interrupted")
		case err != nil:
			fmt.Fprintf(s.out, "✗ %v\n", err)
		case result != "":
			fmt.Fprintf(s.out, "✓ %s\n", result)
		}
		return
	}

	s.program.Send(doneMsg{result: result, err: err})
	<-s.exited
}
