package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
)

func TestStatusLine(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	sl := NewStatusLineTo(&buf)
	sl.Success("done")
	sl.Step(2, 3, "running")
	sl.Info("Default provider: gemini")

	want := "✓ done\n▸ [2/3] running\nℹ Default provider: gemini\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestStatusLineBlockVerbatim(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		text string
	}{
		{"trailing newline", "Traceback (most recent call last):\n  File \"x.py\"\nNameError\n"},
		{"no trailing newline", "ValueError: bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewStatusLineTo(&buf).Block("Last error", tt.text)

			out := buf.String()
			if !strings.Contains(out, tt.text) {
				t.Errorf("block should contain the text verbatim:\n%s", out)
			}
			if !strings.HasPrefix(out, "Last error\n") {
				t.Errorf("block should start with the title, got %q", out)
			}
			if strings.Count(out, strings.Repeat("─", 60)) != 2 {
				t.Errorf("expected two rules:\n%s", out)
			}
		})
	}
}

func TestSelectorNavigation(t *testing.T) {
	m := selectorModel{
		question: "Provider?",
		choices:  []Choice{{Label: "anthropic"}, {Label: "gemini"}, {Label: "openai", Note: "key set"}},
	}

	press := func(m selectorModel, key string) selectorModel {
		var msg tea.KeyMsg
		switch key {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		}
		next, _ := m.Update(msg)
		return next.(selectorModel)
	}

	m = press(m, "up")
	if m.cursor != 2 {
		t.Errorf("up from the top should wrap, cursor = %d", m.cursor)
	}
	m = press(m, "down")
	if m.cursor != 0 {
		t.Errorf("down from the bottom should wrap, cursor = %d", m.cursor)
	}
	m = press(m, "down")
	m = press(m, "enter")
	if m.choice != "gemini" {
		t.Errorf("choice = %q, want gemini", m.choice)
	}

	if !strings.Contains(m.View(), "key set") {
		t.Error("view should render choice notes")
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"sk-123\n", "sk-123", false},
		{"  sk-456  \r\n", "sk-456", false},
		{"no-newline", "no-newline", false},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := readLine(strings.NewReader(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("readLine(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("readLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
