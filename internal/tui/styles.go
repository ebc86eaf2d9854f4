// Package tui provides the terminal styling shared by hacker-dash commands.
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Color palette - neon on black
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00FFFF"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#AF00AF", Dark: "#FF00FF"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#39FF14"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF3366"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"}
	ColorText      = lipgloss.AdaptiveColor{Light: "#1C1C1C", Dark: "#E4E4E4"}
	ColorBorder    = lipgloss.AdaptiveColor{Light: "#AF00AF", Dark: "#FF00FF"}
)

// Base styles
var (
	// Title style for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// SubtitleStyle for section headers
	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	// LabelStyle for key names in key-value pairs
	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	// ValueStyle for values
	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SpinnerStyle for spinner text
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)
)

// PanelStyle frames the banner and the stats summary.
var PanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(ColorBorder).
	Padding(0, 2)

// IsTTY returns true if stdout is a terminal
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Banner renders the title panel printed before generation starts.
func Banner(title, subtitle string) string {
	body := TitleStyle.UnsetMarginBottom().Render(title)
	if subtitle != "" {
		body += "\n" + MutedStyle.Render(subtitle)
	}
	return PanelStyle.Render(body)
}

// FormatKeyValue formats a key-value pair
func FormatKeyValue(key, value string) string {
	return LabelStyle.Render(key+":") + " " + ValueStyle.Render(value)
}

// KeyValueBlock renders pairs with their values aligned.
func KeyValueBlock(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, runewidth.StringWidth(p[0]))
	}
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(p[0]))
		lines = append(lines, FormatKeyValue(p[0], pad+p[1]))
	}
	return strings.Join(lines, "\n")
}
