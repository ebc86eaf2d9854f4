package inject

import (
	"regexp"
	"strings"
)

var (
	classRe   = regexp.MustCompile(`^class\s+(\w+)\s*\(([^)]*)\)\s*:`)
	composeRe = regexp.MustCompile(`^(\s+)def\s+compose\s*\(\s*self\b[^)]*\)\s*(->\s*[^:]+)?:\s*(#.*)?$`)
	headerRe  = regexp.MustCompile(`^(\s*)yield\s+Header\s*\(`)
)

const (
	widgetsImport = "from textual.widgets import "
	appImport     = "from textual.app import "
)

// importStmt is a `from X import ...` statement spanning [start, end].
type importStmt struct {
	start, end int
	paren      bool
	names      []string // names bound in the module; `X as Y` binds Y
}

func (s importStmt) has(name string) bool {
	for _, n := range s.names {
		if n == name || n == "*" {
			return true
		}
	}
	return false
}

// program is the minimal structural view of a generated Textual app.
type program struct {
	lines []string // each line keeps its terminator

	widgets []importStmt
	app     *importStmt

	// lastImport is the last top-level import line before the app class, or -1.
	lastImport int

	appClass int // line of `class X(App):`
	classTop int // first decorator above appClass, or appClass

	compose       int    // line of `def compose(self...)`
	composeIndent string // indentation of the compose body
	header        int    // line of `yield Header(...)` inside compose, or -1
	headerIndent  string
}

// parse builds the structural view. It reports false when the source does
// not look like a single-class Textual application with a compose routine.
func parse(src string) (*program, bool) {
	p := &program{
		lines:      strings.SplitAfter(src, "\n"),
		lastImport: -1,
		appClass:   -1,
		compose:    -1,
		header:     -1,
	}

	inString := false
	for i := 0; i < len(p.lines); i++ {
		line := trimEOL(p.lines[i])
		if togglesString(line) {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if m := classRe.FindStringSubmatch(line); m != nil && isAppBase(m[2]) {
			p.appClass = i
			break
		}

		switch {
		case strings.HasPrefix(line, widgetsImport):
			stmt := p.readImport(i, widgetsImport)
			p.widgets = append(p.widgets, stmt)
			p.lastImport = stmt.end
			i = stmt.end
		case strings.HasPrefix(line, appImport):
			stmt := p.readImport(i, appImport)
			p.app = &stmt
			p.lastImport = stmt.end
			i = stmt.end
		case strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "from "):
			stmt := p.readImport(i, "")
			p.lastImport = stmt.end
			i = stmt.end
		}
	}

	if p.appClass < 0 {
		return nil, false
	}
	p.classTop = p.appClass
	for p.classTop > 0 && strings.HasPrefix(p.lines[p.classTop-1], "@") {
		p.classTop--
	}

	p.findCompose()
	if p.compose < 0 || p.composeIndent == "" {
		return nil, false
	}
	return p, true
}

// readImport reads an import statement starting at line i, following a
// parenthesised name list across lines.
func (p *program) readImport(i int, prefix string) importStmt {
	stmt := importStmt{start: i, end: i}
	body := strings.TrimPrefix(stripComment(trimEOL(p.lines[i])), prefix)

	if prefix != "" && strings.HasPrefix(strings.TrimSpace(body), "(") {
		stmt.paren = true
		var sb strings.Builder
		sb.WriteString(body)
		for j := i; j < len(p.lines); j++ {
			if j > i {
				sb.WriteString(" ")
				sb.WriteString(stripComment(trimEOL(p.lines[j])))
			}
			if strings.Contains(stripComment(trimEOL(p.lines[j])), ")") {
				stmt.end = j
				break
			}
		}
		body = sb.String()
	} else {
		for stmt.end+1 < len(p.lines) && strings.HasSuffix(strings.TrimRight(trimEOL(p.lines[stmt.end]), " \t"), "\\") {
			stmt.end++
		}
	}

	if prefix == "" {
		return stmt
	}

	body = strings.NewReplacer("(", " ", ")", " ", "\\", " ").Replace(body)
	for _, part := range strings.Split(body, ",") {
		fields := strings.Fields(part)
		switch {
		case len(fields) >= 3 && fields[1] == "as":
			stmt.names = append(stmt.names, fields[2])
		case len(fields) > 0:
			stmt.names = append(stmt.names, fields[0])
		}
	}
	return stmt
}

// findCompose locates compose within the app class body and, inside compose,
// the header yield.
func (p *program) findCompose() {
	defIndent := -1
	inString := false
	for i := p.appClass + 1; i < len(p.lines); i++ {
		line := trimEOL(p.lines[i])
		if inString {
			inString = !togglesString(line)
			continue
		}
		if isBlank(line) {
			continue
		}
		indent := leadingWhitespace(line)
		opens := togglesString(line)

		// Dedent to column zero ends the class body.
		if indent == "" {
			return
		}

		if p.compose < 0 {
			if m := composeRe.FindStringSubmatch(line); m != nil {
				p.compose = i
				defIndent = len(m[1])
			}
			inString = opens
			continue
		}

		if len(indent) <= defIndent {
			return
		}
		if p.composeIndent == "" {
			p.composeIndent = indent
		}
		if m := headerRe.FindStringSubmatch(line); m != nil && p.header < 0 {
			p.header = i
			p.headerIndent = m[1]
		}
		inString = opens
	}
}

// togglesString reports whether line leaves a triple-quoted string open (or
// closes one that was open).
func togglesString(line string) bool {
	n := strings.Count(line, `"""`) + strings.Count(line, "'''")
	return n%2 == 1
}

func isAppBase(bases string) bool {
	for _, b := range strings.Split(bases, ",") {
		b = strings.TrimSpace(b)
		if i := strings.Index(b, "["); i >= 0 {
			b = b[:i]
		}
		if b == "App" || strings.HasSuffix(b, ".App") {
			return true
		}
	}
	return false
}

func trimEOL(s string) string {
	return strings.TrimRight(s, "\r\n")
}

func eol(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

func stripComment(s string) string {
	if i := strings.Index(s, "#"); i >= 0 {
		return s[:i]
	}
	return s
}

func isBlank(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.HasPrefix(t, "#")
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
