package provider

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// SystemPrompt instructs the model to produce a single runnable Textual script.
const SystemPrompt = `You are a code generator for terminal dashboards. Generate a single Python script using the Textual library.

REQUIREMENTS:
1. Start with PEP 723 inline script metadata:
   # /// script
   # dependencies = ["textual", "psutil"]
   # ///
2. Use Textual CSS to apply a CYBERPUNK theme (neon colors: cyan, magenta, green).
3. Only use valid Textual CSS properties:
   - background, color, border, padding, margin (integers only, no decimals)
   - width, height, text-align, text-style
   - DO NOT use: font-family, box-shadow, display: grid, align-items, or decimal values
4. Create a visually striking dashboard with panels, sparklines, or live data.
5. Make it look like a movie hacker screen.
6. Define exactly one App subclass with a compose(self) method.
7. Return ONLY executable Python code, no explanations.
8. The script must be self-contained and runnable with ` + "`uv run`" + `.

Example structure:

# /// script
# dependencies = ["textual"]
# ///
from textual.app import App, ComposeResult
from textual.widgets import Header, Footer, Static

class Dashboard(App):
    CSS = """
    Screen { background: #000; }
    Static { color: cyan; }
    """

    def compose(self) -> ComposeResult:
        yield Header()
        yield Static("Hello Hacker")
        yield Footer()

if __name__ == "__main__":
    Dashboard().run()

Now generate code for this request.`

const fixPrompt = `The following Python code crashed with an error. Fix the code and return ONLY the corrected Python code, no explanations.

ORIGINAL CODE:
%s

ERROR:
%s

Return the fixed code with the PEP 723 header intact.`

// GeneratePrompt builds the full prompt for a user request.
func GeneratePrompt(request string) string {
	return SystemPrompt + "\n\nUser request: " + request
}

// RepairPrompt builds the prompt asking the model to fix source.
func RepairPrompt(source, errText string) string {
	return fmt.Sprintf(fixPrompt, source, errText)
}

// statusStep is one themed progress message and how long it stays up.
type statusStep struct {
	message string
	hold    time.Duration
}

var statusSteps = []statusStep{
	{"Initializing neural matrix...", 400 * time.Millisecond},
	{"Scanning system entropy...", 300 * time.Millisecond},
	{"Injecting cyberpunk CSS...", 500 * time.Millisecond},
	{"Compiling holographic widgets...", 400 * time.Millisecond},
	{"Optimizing neon shaders...", 300 * time.Millisecond},
}

// finalStatus is shown while the model call is in flight.
const finalStatus = "Generating dashboard code..."

var (
	openFenceRe  = regexp.MustCompile("^\\s*```[A-Za-z0-9_+-]*[ \\t]*\\r?\\n")
	closeFenceRe = regexp.MustCompile("(^|\\r?\\n)```\\s*$")
)

// StripFences removes a surrounding markdown code fence from model output.
func StripFences(text string) string {
	text = openFenceRe.ReplaceAllString(text, "")
	text = closeFenceRe.ReplaceAllString(text, "")
	return strings.TrimLeft(text, "\r\n")
}
