// internal/ui/status.go
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// StatusLine provides a simple one-line status update without animation
type StatusLine struct {
	writer io.Writer
}

// NewStatusLine creates a new status line writer
func NewStatusLine() *StatusLine {
	return &StatusLine{writer: os.Stdout}
}

// NewStatusLineTo creates a status line writing to w
func NewStatusLineTo(w io.Writer) *StatusLine {
	return &StatusLine{writer: w}
}

// Success prints a success status
func (sl *StatusLine) Success(message string) {
	fmt.Fprintf(sl.writer, "%s %s\n", color.GreenString("✓"), message)
}

// Fail prints a failure status
func (sl *StatusLine) Fail(message string) {
	fmt.Fprintf(sl.writer, "%s %s\n", color.RedString("✗"), message)
}

// Warning prints a warning status
func (sl *StatusLine) Warning(message string) {
	fmt.Fprintf(sl.writer, "%s %s\n", color.YellowString("⚠"), message)
}

// Info prints an info status
func (sl *StatusLine) Info(message string) {
	fmt.Fprintf(sl.writer, "%s %s\n", color.BlueString("ℹ"), message)
}

// Step prints a step in a process (e.g., "[1/3] Running program...")
func (sl *StatusLine) Step(current, total int, message string) {
	progress := color.HiBlackString("[%d/%d]", current, total)
	fmt.Fprintf(sl.writer, "%s %s %s\n", color.CyanString("▸"), progress, message)
}

// Block prints text verbatim between two rules, for diagnostics that must
// not be reformatted.
func (sl *StatusLine) Block(title, text string) {
	rule := color.HiBlackString(strings.Repeat("─", 60))
	fmt.Fprintf(sl.writer, "%s\n%s\n", color.RedString(title), rule)
	fmt.Fprint(sl.writer, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(sl.writer)
	}
	fmt.Fprintln(sl.writer, rule)
}
