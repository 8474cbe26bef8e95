package style

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/adamamer20/pythonic-template/pkg/bootstrap"
	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/preflight"
	"github.com/adamamer20/pythonic-template/pkg/pyversion"
	"github.com/adamamer20/pythonic-template/pkg/tokens"
	"github.com/adamamer20/pythonic-template/pkg/validate"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

// Renderer turns hook results into display text for one output format.
type Renderer struct {
	format Format
	width  int
}

// NewRenderer creates a renderer. FormatAuto is resolved against stdout.
func NewRenderer(format Format) *Renderer {
	if format == FormatAuto {
		format = DetectFormat(os.Stdout)
	}
	return &Renderer{format: format, width: 80}
}

// Format returns the resolved output format.
func (r *Renderer) Format() Format {
	return r.format
}

func (r *Renderer) styled() bool {
	return r.format == FormatTerminal
}

func (r *Renderer) paint(s lipgloss.Style, text string) string {
	if !r.styled() {
		return text
	}
	return s.Render(text)
}

// Title renders a section heading.
func (r *Renderer) Title(text string) string {
	return r.paint(TitleStyle, text)
}

// Success renders a one-line success message.
func (r *Renderer) Success(msg string) string {
	if r.styled() {
		return pterm.Success.Sprint(msg)
	}
	return "success: " + msg
}

// Warning renders a one-line warning.
func (r *Renderer) Warning(msg string) string {
	if r.styled() {
		return pterm.Warning.Sprint(msg)
	}
	return "warning: " + msg
}

// Info renders a one-line informational message.
func (r *Renderer) Info(msg string) string {
	if r.styled() {
		return pterm.Info.Sprint(msg)
	}
	return "info: " + msg
}

// RenderError renders err followed by its details, one per line.
func (r *Renderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	details := errors.GetErrorDetails(err)
	for _, k := range sortedKeys(details) {
		msg += fmt.Sprintf("\n  %s: %v", k, details[k])
	}
	if r.styled() {
		return pterm.Error.Sprint(msg)
	}
	return "error: " + msg
}

// RenderJSON renders v as indented JSON.
func (r *Renderer) RenderJSON(v interface{}) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode JSON output")
	}
	return string(out), nil
}

// RenderVersions lists the derived version range.
func (r *Renderer) RenderVersions(d pyversion.Derived) string {
	var b strings.Builder
	b.WriteString(r.Title("Python versions") + "\n")
	rows := [][2]string{
		{"minimum", d.Min.String()},
		{"maximum", d.Max.String()},
		{"matrix", d.MatrixLiteral()},
		{"short", d.Short()},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "  %-8s %s\n", row[0], r.paint(VersionStyle, row[1]))
	}
	for _, c := range d.Classifiers() {
		b.WriteString("  " + r.paint(MutedStyle, c) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderSubstitution summarises a substitution pass.
func (r *Renderer) RenderSubstitution(rep tokens.Report) string {
	var b strings.Builder
	b.WriteString(r.Title("Token substitution") + "\n")
	for _, rel := range rep.Changed {
		fmt.Fprintf(&b, "  %s %s\n", r.paint(SuccessStyle, SymbolOK), r.paint(PathStyle, rel))
	}
	for _, rel := range rep.Unchanged {
		fmt.Fprintf(&b, "  %s %s %s\n", r.paint(MutedStyle, SymbolSkipped), r.paint(PathStyle, rel),
			r.paint(MutedStyle, "(no tokens)"))
	}
	for _, rel := range rep.Missing {
		fmt.Fprintf(&b, "  %s %s %s\n", r.paint(WarningStyle, SymbolWarning), r.paint(PathStyle, rel),
			r.paint(MutedStyle, "(not found)"))
	}
	for _, rel := range sortedKeys(rep.Failed) {
		fmt.Fprintf(&b, "  %s %s %s\n", r.paint(ErrorStyle, SymbolFailed), r.paint(PathStyle, rel),
			rep.Failed[rel].Error())
	}
	for _, rel := range sortedKeys(rep.Unresolved) {
		fmt.Fprintf(&b, "  %s %s unresolved %s\n", r.paint(WarningStyle, SymbolWarning), r.paint(PathStyle, rel),
			r.paint(TokenStyle, strings.Join(rep.Unresolved[rel], ", ")))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderPreflight lists the required tools and whether they were found.
func (r *Renderer) RenderPreflight(reqs []preflight.Requirement, rep preflight.Report) string {
	var b strings.Builder
	b.WriteString(r.Title("Tools") + "\n")
	if len(reqs) == 0 {
		b.WriteString("  " + r.paint(MutedStyle, "no external tools needed") + "\n")
	}
	seen := make(map[string]bool)
	for _, req := range reqs {
		if seen[req.Tool] {
			continue
		}
		seen[req.Tool] = true
		if path, ok := rep.Found[req.Tool]; ok {
			fmt.Fprintf(&b, "  %s %-10s %s\n", r.paint(SuccessStyle, SymbolOK), req.Tool, r.paint(PathStyle, path))
			continue
		}
		symbol, s := SymbolWarning, WarningStyle
		if isFatal(rep, req.Tool) {
			symbol, s = SymbolFailed, ErrorStyle
		}
		fmt.Fprintf(&b, "  %s %-10s %s\n", r.paint(s, symbol), req.Tool,
			r.paint(MutedStyle, "not found ("+req.Reason+")"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func isFatal(rep preflight.Report, tool string) bool {
	for _, m := range rep.Fatal {
		if m.Tool == tool {
			return true
		}
	}
	return false
}

// RenderSteps lists bootstrap step outcomes.
func (r *Renderer) RenderSteps(res bootstrap.Result) string {
	var b strings.Builder
	b.WriteString(r.Title("Bootstrap") + "\n")
	for _, step := range res.Steps {
		var symbol string
		var s lipgloss.Style
		switch step.Status {
		case bootstrap.StatusOK:
			symbol, s = SymbolOK, SuccessStyle
		case bootstrap.StatusFailed:
			symbol, s = SymbolFailed, ErrorStyle
		default:
			symbol, s = SymbolSkipped, MutedStyle
		}
		line := fmt.Sprintf("  %s %-16s", r.paint(s, symbol), step.Name)
		if step.Reason != "" {
			line += " " + r.paint(MutedStyle, step.Reason)
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderViolations lists template validation failures.
func (r *Renderer) RenderViolations(vs []validate.Violation) string {
	if len(vs) == 0 {
		return r.Success("template is valid")
	}
	var b strings.Builder
	b.WriteString(r.Title("Template validation failed") + "\n")
	for _, v := range vs {
		fmt.Fprintf(&b, "  %s %s\n", r.paint(ErrorStyle, SymbolFailed), v.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

// Box frames text, in terminal output only.
func (r *Renderer) Box(text string) string {
	return r.paint(BoxStyle, text)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
