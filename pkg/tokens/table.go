// Package tokens replaces the marker tokens embedded in generated files with
// values derived at generation time.
package tokens

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/adamamer20/pythonic-template/pkg/pyversion"
)

// Marker tokens as embedded in the template sources.
const (
	PyMin         = "__PY_MIN__"
	PyMax         = "__PY_MAX__"
	PyMatrix      = "__PY_MATRIX__"
	PyShort       = "__PY_SHORT__"
	PyClassifiers = "__PY_CLASSIFIERS__"
	ReleaseDate   = "__RELEASE_DATE__"
)

// ReleaseDateLayout is the format used for __RELEASE_DATE__.
const ReleaseDateLayout = "2006-01-02"

// markerPattern matches anything shaped like a marker token.
var markerPattern = regexp.MustCompile(`__[A-Z](?:[A-Z0-9_]*[A-Z0-9])?__`)

// blockFunc renders a multi-line value for a marker sitting after indent.
type blockFunc func(indent, newline string) string

// Table maps marker tokens to their replacement values.
type Table struct {
	values map[string]string
	blocks map[string]blockFunc
}

// NewTable builds the token table from the derived versions and release date.
func NewTable(d pyversion.Derived, releaseDate time.Time) Table {
	return Table{
		values: map[string]string{
			PyMin:       d.Min.String(),
			PyMax:       d.Max.String(),
			PyMatrix:    d.MatrixLiteral(),
			PyShort:     d.Short(),
			ReleaseDate: releaseDate.Format(ReleaseDateLayout),
		},
		blocks: map[string]blockFunc{
			PyClassifiers: d.ClassifierBlock,
		},
	}
}

// Tokens returns every token in the table, sorted.
func (t Table) Tokens() []string {
	out := make([]string, 0, len(t.values)+len(t.blocks))
	for k := range t.values {
		out = append(out, k)
	}
	for k := range t.blocks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Value returns the replacement for token. Block tokens are rendered without
// indentation.
func (t Table) Value(token string) (string, bool) {
	if v, ok := t.values[token]; ok {
		return v, true
	}
	if b, ok := t.blocks[token]; ok {
		return b("", "\n"), true
	}
	return "", false
}

// Replace substitutes every known token in content. Tokens not in the table
// are left untouched.
func (t Table) Replace(content string) string {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	for token, render := range t.blocks {
		content = replaceBlock(content, token, render, newline)
	}
	for token, value := range t.values {
		content = strings.ReplaceAll(content, token, value)
	}
	return content
}

// replaceBlock expands every occurrence of token using the leading
// whitespace of the line it sits on.
func replaceBlock(content, token string, render blockFunc, newline string) string {
	if !strings.Contains(content, token) {
		return content
	}

	var b strings.Builder
	rest := content
	consumed := 0
	for {
		i := strings.Index(rest, token)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		abs := consumed + i
		lineStart := strings.LastIndex(content[:abs], "\n") + 1
		b.WriteString(rest[:i])
		b.WriteString(render(leadingWhitespace(content[lineStart:abs]), newline))
		rest = rest[i+len(token):]
		consumed = abs + len(token)
	}
	return b.String()
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// FindMarkers returns the distinct marker-shaped strings left in content.
func FindMarkers(content string) []string {
	found := markerPattern.FindAllString(content, -1)
	if len(found) == 0 {
		return nil
	}
	sort.Strings(found)
	uniq := found[:0]
	for i, m := range found {
		if i > 0 && m == found[i-1] {
			continue
		}
		uniq = append(uniq, m)
	}
	return uniq
}
