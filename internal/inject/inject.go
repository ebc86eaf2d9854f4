// Package inject adds a usage statistics panel to generated Textual programs.
//
// The transformation works on a minimal structural view of the program (its
// import statements, the App subclass and that class's compose routine)
// rather than on a full parse. Programs that do not have that shape are
// returned unchanged: instrumentation never blocks execution.
package inject

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/aceteam-ai/hacker-dash/internal/usage"
)

// PanelClass is the name of the injected widget class.
const PanelClass = "StatsPanel"

// Render returns the fixed-format statistics block shown by the panel.
func Render(agg usage.Aggregate) string {
	return fmt.Sprintf(`[cyan]╔═══ API STATS ═══╗[/cyan]
[green]Calls:[/green] %d
[green]Tokens:[/green] %s
[green]Cost:[/green] $%.4f
[green]Latency:[/green] %.2fs
[cyan]╚═════════════════╝[/cyan]`,
		agg.Count,
		humanize.Comma(agg.TotalTokens),
		agg.TotalCost,
		agg.MeanLatency,
	)
}

const marker = "# Injected stats widget"

func panelClass(agg usage.Aggregate, nl string) string {
	lines := []string{
		marker,
		"class " + PanelClass + "(Static):",
		`    """Display API usage statistics."""`,
		"",
		"    def __init__(self):",
		`        stats_text = """` + Render(agg) + `"""`,
		"        super().__init__(stats_text)",
		"",
		"",
		"",
	}
	return strings.ReplaceAll(strings.Join(lines, "\n"), "\n", nl)
}

// edit inserts text before line at (or replaces it when replace is set).
type edit struct {
	at      int
	text    string
	replace bool
	seq     int
}

// Inject returns src with a StatsPanel class defined before the App subclass
// and a single `yield StatsPanel()` in its compose routine. A panel left by an
// earlier Inject (a repaired program often keeps it) is replaced, not
// duplicated. The output is a pure function of src and agg.
func Inject(src string, agg usage.Aggregate) string {
	p, ok := parse(stripInjected(src))
	if !ok {
		return src
	}

	nl := eol(p.lines[p.appClass])
	var edits []edit

	// Import Static where it is missing.
	panelPrefix := ""
	if imp, ok := p.staticImport(nl); ok {
		edits = append(edits, imp)
	} else if !p.importsStatic() {
		panelPrefix = "from textual.widgets import Static" + nl
	}

	edits = append(edits, edit{at: p.classTop, text: panelPrefix + panelClass(agg, nl)})

	// Register the panel: before the header if compose yields one, otherwise
	// as the first statement of compose.
	if p.header >= 0 {
		edits = append(edits, edit{at: p.header, text: p.headerIndent + "yield " + PanelClass + "()" + nl})
	} else {
		edits = append(edits, edit{at: p.compose + 1, text: p.composeIndent + "yield " + PanelClass + "()" + nl})
	}

	return p.apply(edits)
}

// stripInjected removes a panel class and its registrations written by a
// previous Inject. Source without the marker comment is returned as is.
func stripInjected(src string) string {
	lines := strings.SplitAfter(src, "\n")
	start := -1
	for i := 0; i+1 < len(lines); i++ {
		if trimEOL(lines[i]) == marker && strings.HasPrefix(lines[i+1], "class "+PanelClass+"(") {
			start = i
			break
		}
	}
	if start < 0 {
		return src
	}

	// The class runs until the next column-zero line outside a string.
	end := start + 2
	inString := false
	for ; end < len(lines); end++ {
		line := trimEOL(lines[end])
		if !inString && line != "" && leadingWhitespace(line) == "" {
			break
		}
		if togglesString(line) {
			inString = !inString
		}
	}

	kept := append([]string(nil), lines[:start]...)
	for _, line := range lines[end:] {
		if strings.TrimSpace(line) == "yield "+PanelClass+"()" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "")
}

func (p *program) importsStatic() bool {
	for _, w := range p.widgets {
		if w.has("Static") {
			return true
		}
	}
	return false
}

// staticImport returns the edit that brings Static into scope, if one is
// needed and an anchor import exists.
func (p *program) staticImport(nl string) (edit, bool) {
	if p.importsStatic() {
		return edit{}, false
	}

	if len(p.widgets) > 0 {
		return p.extendImport(p.widgets[0], "Static"), true
	}

	anchor := p.lastImport
	if p.app != nil {
		anchor = p.app.end
	}
	if anchor < 0 {
		return edit{}, false
	}
	return edit{at: anchor + 1, text: "from textual.widgets import Static" + nl}, true
}

// extendImport appends name to an existing import statement.
func (p *program) extendImport(stmt importStmt, name string) edit {
	last := p.lines[stmt.end]
	nl := eol(last)
	code, comment := splitComment(trimEOL(last))

	if !stmt.paren {
		return edit{at: stmt.end, replace: true, text: strings.TrimRight(code, " \t") + ", " + name + gap(code) + comment + nl}
	}

	closing := strings.LastIndex(code, ")")
	before := strings.TrimRight(code[:closing], " \t")
	if strings.TrimSpace(before) != "" {
		sep := ", "
		if strings.HasSuffix(before, ",") || strings.HasSuffix(before, "(") {
			sep = " "
		}
		return edit{at: stmt.end, replace: true, text: before + sep + name + code[closing:] + comment + nl}
	}

	// `)` sits on its own line: add an item line above it.
	prev := p.lines[stmt.end-1]
	prevCode, _ := splitComment(trimEOL(prev))
	prevCode = strings.TrimRight(prevCode, " \t")
	indent := leadingWhitespace(trimEOL(prev))
	if strings.HasSuffix(prevCode, "(") {
		indent += "    "
	}
	item := indent + name + "," + eol(prev)
	if strings.HasSuffix(prevCode, ",") || strings.HasSuffix(prevCode, "(") {
		return edit{at: stmt.end, text: item}
	}
	return edit{at: stmt.end - 1, replace: true, text: appendToCode(prev, ",") + item}
}

func splitComment(s string) (code, comment string) {
	if i := strings.Index(s, "#"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// gap returns the whitespace between code and a trailing comment.
func gap(code string) string {
	return code[len(strings.TrimRight(code, " \t")):]
}

// appendToCode appends suffix to the code part of line, keeping any comment
// and the line terminator.
func appendToCode(line, suffix string) string {
	body := trimEOL(line)
	code, comment := splitComment(body)
	return strings.TrimRight(code, " \t") + suffix + gap(code) + comment + line[len(body):]
}

func (p *program) apply(edits []edit) string {
	for i := range edits {
		edits[i].seq = i
	}
	// Bottom-up so line numbers stay valid; edits sharing a line keep their
	// relative order in the output.
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].at != edits[j].at {
			return edits[i].at > edits[j].at
		}
		return edits[i].seq > edits[j].seq
	})

	lines := append([]string(nil), p.lines...)
	for _, e := range edits {
		if e.replace {
			lines[e.at] = e.text
			continue
		}
		lines = append(lines[:e.at], append([]string{e.text}, lines[e.at:]...)...)
	}
	return strings.Join(lines, "")
}
