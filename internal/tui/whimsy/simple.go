package whimsy

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/aceteam-ai/hacker-dash/internal/tui"
)

// SimpleSpinner is a lightweight spinner for non-BubbleTea contexts.
// It runs in a goroutine and can be started/stopped easily.
type SimpleSpinner struct {
	out           io.Writer
	tty           bool
	prefix        string
	messages      []string
	currentMsg    int
	frames        []string
	frameIndex    int
	interval      time.Duration
	msgInterval   time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
	mu            sync.Mutex
	running       bool
	lastMsgChange time.Time
}

// NewSimpleSpinner creates a spinner on stdout. prefix is shown before the
// rotating message (e.g. "[repair 1/2]").
func NewSimpleSpinner(prefix string, messages []string) *SimpleSpinner {
	if len(messages) == 0 {
		messages = RepairMessages
	}
	return &SimpleSpinner{
		out:         os.Stdout,
		tty:         term.IsTerminal(int(os.Stdout.Fd())),
		prefix:      prefix,
		messages:    messages,
		currentMsg:  rand.IntN(len(messages)),
		frames:      []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval:    80 * time.Millisecond,
		msgInterval: 2 * time.Second,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the spinner animation. Without a terminal it prints the
// prefix and first message once.
func (s *SimpleSpinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.lastMsgChange = time.Now()
	s.mu.Unlock()

	if !s.tty {
		fmt.Fprintf(s.out, "%s %s\n", s.prefix, s.messages[s.currentMsg])
		close(s.doneCh)
		return
	}
	go s.run()
}

func (s *SimpleSpinner) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Hide cursor
	fmt.Fprint(s.out, "\033[?25l")

	for {
		select {
		case <-s.stopCh:
			// Clear the line and show cursor
			fmt.Fprint(s.out, "\r\033[K\033[?25h")
			return
		case <-ticker.C:
			s.mu.Lock()

			if time.Since(s.lastMsgChange) >= s.msgInterval {
				s.currentMsg = (s.currentMsg + 1) % len(s.messages)
				s.lastMsgChange = time.Now()
			}

			s.frameIndex = (s.frameIndex + 1) % len(s.frames)
			frame := s.frames[s.frameIndex]
			msg := s.messages[s.currentMsg]

			s.mu.Unlock()

			fmt.Fprintf(s.out, "\r\033[K%s %s %s",
				tui.SpinnerStyle.Render(frame),
				tui.MutedStyle.Render(s.prefix),
				tui.SpinnerStyle.Render(msg))
		}
	}
}

// Stop stops the spinner
func (s *SimpleSpinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh
}

// StopWithSuccess stops the spinner and prints a success message
func (s *SimpleSpinner) StopWithSuccess(msg string) {
	s.Stop()
	if s.tty {
		fmt.Fprintf(s.out, "\r\033[K%s %s\n", tui.SuccessStyle.Render("✓"), msg)
	} else {
		fmt.Fprintf(s.out, "✓ %s\n", msg)
	}
}

// StopWithError stops the spinner and prints an error message
func (s *SimpleSpinner) StopWithError(msg string) {
	s.Stop()
	if s.tty {
		fmt.Fprintf(s.out, "\r\033[K%s %s\n", tui.ErrorStyle.Render("✗"), msg)
	} else {
		fmt.Fprintf(s.out, "✗ %s\n", msg)
	}
}
