// internal/ui/prompt.go
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = errors.New("cancelled")

// Choice is one selectable entry; Note is rendered dimmed after the label.
type Choice struct {
	Label string
	Note  string
}

type selectorModel struct {
	question string
	cursor   int
	choices  []Choice
	choice   string
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "enter":
			m.choice = m.choices[m.cursor].Label
			return m, tea.Quit

		case "down", "j":
			m.cursor = (m.cursor + 1) % len(m.choices)

		case "up", "k":
			m.cursor = (m.cursor - 1 + len(m.choices)) % len(m.choices)
		}
	}
	return m, nil
}

func (m selectorModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.question + "\n\n")

	for i, c := range m.choices {
		cursor := "  "
		label := c.Label
		if m.cursor == i {
			cursor = color.MagentaString("> ")
			label = color.CyanString(label)
		}
		sb.WriteString(cursor + label)
		if c.Note != "" {
			sb.WriteString("  " + color.HiBlackString(c.Note))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n(arrow keys to move, enter to select, q to quit)\n")
	return sb.String()
}

// AskSelect presents a list of choices and returns the selected label. The
// cursor starts on initial when it is one of the labels.
func AskSelect(question string, choices []Choice, initial string) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no choices for %q", question)
	}
	model := selectorModel{question: question, choices: choices}
	for i, c := range choices {
		if c.Label == initial {
			model.cursor = i
		}
	}

	m, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", err
	}
	result := m.(selectorModel).choice
	if result == "" {
		return "", ErrCancelled
	}
	return result, nil
}

// AskSecret reads a line without echo when stdin is a terminal. Piped input
// is read as a plain line so keys can be scripted.
func AskSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(os.Stdin)
	}
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
