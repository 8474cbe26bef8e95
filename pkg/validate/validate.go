// Package validate checks template sources for mistakes that only surface
// after a project has been generated: unescaped GitHub expressions, bare
// version markers and workflows that are not valid YAML.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/filesystem"
	"github.com/adamamer20/pythonic-template/pkg/logging"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// TemplateDir is the directory cookiecutter renders into a project.
const TemplateDir = "{{cookiecutter.repo_name}}"

// WorkflowPattern selects GitHub Actions workflows relative to the template.
const WorkflowPattern = ".github/workflows/*.{yml,yaml}"

var (
	rawTag     = regexp.MustCompile(`\{%-?\s*(end)?raw\s*-?%\}`)
	barePyMin  = regexp.MustCompile(`\bPY_MIN\b`)
	expression = "${{"
)

// Violation is one broken invariant.
type Violation struct {
	File    string
	Line    int
	Message string
}

func (v Violation) String() string {
	if v.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", v.File, v.Line, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.File, v.Message)
}

// Report lists every violation found in a template.
type Report struct {
	Root       string
	Workflows  []string
	Violations []Violation
}

// Err returns a TEMPLATE_INVALID error when the report has violations.
func (r Report) Err() error {
	if len(r.Violations) == 0 {
		return nil
	}
	return errors.Newf(errors.ErrTemplateInvalid,
		"template validation failed with %d violation(s)", len(r.Violations)).
		WithDetail("root", r.Root)
}

// TemplateRoot returns the rendered-project directory inside dir when dir is
// a template repository, and dir itself otherwise.
func TemplateRoot(dir string) string {
	candidate := filepath.Join(dir, TemplateDir)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate
	}
	return dir
}

// Workflows returns the workflow files under root, sorted.
func Workflows(root string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), WorkflowPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list workflows in %s", root)
	}
	sort.Strings(matches)
	return matches, nil
}

// Template runs every check against the template rooted at root.
func Template(fsys filesystem.FS, root string) (Report, error) {
	logger := logging.GetLogger("validate")
	report := Report{Root: root}

	workflows, err := Workflows(root)
	if err != nil {
		return report, err
	}
	report.Workflows = workflows
	logger.Debug().Int("count", len(workflows)).Msg("Found workflows")

	for _, rel := range workflows {
		data, err := fsys.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return report, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", rel)
		}
		report.Violations = append(report.Violations, RawWrapping(rel, string(data))...)
		report.Violations = append(report.Violations, WorkflowYAML(rel, string(data))...)
	}

	readme := filepath.Join(root, "README.md")
	if data, err := fsys.ReadFile(readme); err == nil {
		report.Violations = append(report.Violations, ReadmeTokens("README.md", string(data))...)
	}

	for _, v := range report.Violations {
		logger.Warn().Str("file", v.File).Int("line", v.Line).Msg(v.Message)
	}
	return report, nil
}

// RawWrapping reports GitHub expressions outside a Jinja raw block.
func RawWrapping(name, content string) []Violation {
	var out []Violation
	inRaw := false
	for i, line := range strings.Split(content, "\n") {
		exposed := false
		pos := 0
		for _, loc := range rawTag.FindAllStringSubmatchIndex(line, -1) {
			if !inRaw && strings.Contains(line[pos:loc[0]], expression) {
				exposed = true
			}
			inRaw = loc[2] < 0
			pos = loc[1]
		}
		if !inRaw && strings.Contains(line[pos:], expression) {
			exposed = true
		}
		if exposed {
			out = append(out, Violation{
				File:    name,
				Line:    i + 1,
				Message: "`${{` must be inside a {% raw %} block",
			})
		}
	}
	return out
}

// ReadmeTokens reports a PY_MIN that is not written as the full marker.
func ReadmeTokens(name, content string) []Violation {
	if !barePyMin.MatchString(content) {
		return nil
	}
	return []Violation{{File: name, Message: "use __PY_MIN__ token, not bare PY_MIN"}}
}

// WorkflowYAML reports a workflow that does not parse once the Jinja raw
// markers are removed.
func WorkflowYAML(name, content string) []Violation {
	var doc interface{}
	if err := yaml.Unmarshal([]byte(rawTag.ReplaceAllString(content, "")), &doc); err != nil {
		return []Violation{{File: name, Message: "invalid YAML: " + err.Error()}}
	}
	return nil
}
