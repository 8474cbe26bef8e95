package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/adamamer20/pythonic-template/pkg/bootstrap"
	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/hook"
	"github.com/adamamer20/pythonic-template/pkg/preflight"
	"github.com/adamamer20/pythonic-template/pkg/pyversion"
	"github.com/adamamer20/pythonic-template/pkg/style"
	"github.com/adamamer20/pythonic-template/pkg/tokens"
	"github.com/adamamer20/pythonic-template/pkg/validate"
)

// JSON shapes of the command results for --format json.

type versionsView struct {
	Min         string   `json:"min"`
	Max         string   `json:"max"`
	Matrix      []string `json:"matrix"`
	Short       string   `json:"short"`
	Classifiers []string `json:"classifiers"`
}

func newVersionsView(d pyversion.Derived) versionsView {
	matrix := make([]string, len(d.Matrix))
	for i, v := range d.Matrix {
		matrix[i] = v.String()
	}
	return versionsView{
		Min:         d.Min.String(),
		Max:         d.Max.String(),
		Matrix:      matrix,
		Short:       d.Short(),
		Classifiers: d.Classifiers(),
	}
}

type substitutionView struct {
	Changed    []string            `json:"changed"`
	Unchanged  []string            `json:"unchanged"`
	Missing    []string            `json:"missing"`
	Failed     map[string]string   `json:"failed,omitempty"`
	Unresolved map[string][]string `json:"unresolved,omitempty"`
}

func newSubstitutionView(r tokens.Report) substitutionView {
	v := substitutionView{
		Changed:    nonNil(r.Changed),
		Unchanged:  nonNil(r.Unchanged),
		Missing:    nonNil(r.Missing),
		Unresolved: r.Unresolved,
	}
	if len(r.Failed) > 0 {
		v.Failed = make(map[string]string, len(r.Failed))
		for rel, err := range r.Failed {
			v.Failed[rel] = err.Error()
		}
	}
	return v
}

type missingView struct {
	Tool   string `json:"tool"`
	Level  string `json:"level"`
	Reason string `json:"reason"`
}

type preflightView struct {
	Found    map[string]string `json:"found"`
	Warnings []missingView     `json:"warnings"`
	Fatal    []missingView     `json:"fatal"`
}

func newPreflightView(r preflight.Report) preflightView {
	conv := func(ms []preflight.Missing) []missingView {
		out := make([]missingView, len(ms))
		for i, m := range ms {
			out[i] = missingView{Tool: m.Tool, Level: m.Level.String(), Reason: m.Reason}
		}
		return out
	}
	return preflightView{Found: r.Found, Warnings: conv(r.Warnings), Fatal: conv(r.Fatal)}
}

type stepView struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func newStepsView(r bootstrap.Result) []stepView {
	out := make([]stepView, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = stepView{
			Name:       s.Name,
			Status:     string(s.Status),
			Reason:     s.Reason,
			DurationMS: s.Duration.Milliseconds(),
		}
	}
	return out
}

type errorView struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type runView struct {
	Versions     *versionsView     `json:"versions,omitempty"`
	Substitution *substitutionView `json:"substitution,omitempty"`
	Preflight    *preflightView    `json:"preflight,omitempty"`
	Bootstrap    []stepView        `json:"bootstrap,omitempty"`
	Warnings     []string          `json:"warnings"`
	Error        *errorView        `json:"error,omitempty"`
}

func newRunView(r *hook.Result, err error) runView {
	v := runView{Warnings: nonNil(r.Warnings())}
	if r.Versions.Matrix != nil {
		versions := newVersionsView(r.Versions)
		v.Versions = &versions
	}
	if r.Targets != nil {
		sub := newSubstitutionView(r.Substitution)
		v.Substitution = &sub
	}
	if r.Preflight.Found != nil {
		pre := newPreflightView(r.Preflight)
		v.Preflight = &pre
	}
	if len(r.Bootstrap.Steps) > 0 {
		v.Bootstrap = newStepsView(r.Bootstrap)
	}
	if err != nil {
		v.Error = &errorView{
			Code:    string(errors.GetErrorCode(err)),
			Message: err.Error(),
			Details: errors.GetErrorDetails(err),
		}
	}
	return v
}

type validationView struct {
	Root       string          `json:"root"`
	Workflows  []string        `json:"workflows"`
	Violations []violationView `json:"violations"`
}

type violationView struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func newValidationView(r validate.Report) validationView {
	v := validationView{Root: r.Root, Workflows: nonNil(r.Workflows), Violations: []violationView{}}
	for _, vi := range r.Violations {
		v.Violations = append(v.Violations, violationView{File: vi.File, Line: vi.Line, Message: vi.Message})
	}
	sort.SliceStable(v.Violations, func(i, j int) bool { return v.Violations[i].File < v.Violations[j].File })
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w io.Writer, r *style.Renderer, v interface{}) error {
	out, err := r.RenderJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
