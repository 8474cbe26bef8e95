// Package preflight checks that the external tools a generated project's
// bootstrap relies on are discoverable before any of them is invoked.
package preflight

import (
	"fmt"
	"strings"

	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/executor"
	"github.com/adamamer20/pythonic-template/pkg/logging"
)

// Level decides what a missing tool means.
type Level int

const (
	// Optional tools only produce a warning.
	Optional Level = iota
	// Recommended tools produce a warning and the steps that need them are skipped.
	Recommended
	// Required tools abort the hook when missing.
	Required
)

func (l Level) String() string {
	switch l {
	case Required:
		return "required"
	case Recommended:
		return "recommended"
	default:
		return "optional"
	}
}

// Requirement describes one tool an enabled feature depends on.
type Requirement struct {
	Tool   string
	Level  Level
	Reason string
}

// Missing describes a requirement whose tool was not found.
type Missing struct {
	Requirement
	Err error
}

// Report is the outcome of a preflight check.
type Report struct {
	// Found maps tool names to their resolved paths.
	Found    map[string]string
	Warnings []Missing
	Fatal    []Missing
}

// Has reports whether tool was found.
func (r Report) Has(tool string) bool {
	_, ok := r.Found[tool]
	return ok
}

// Err returns a ToolMissing error listing every fatal requirement, or nil.
func (r Report) Err() error {
	if len(r.Fatal) == 0 {
		return nil
	}
	names := make([]string, len(r.Fatal))
	for i, m := range r.Fatal {
		names[i] = m.Tool
	}
	err := errors.Newf(errors.ErrToolMissing,
		"required tool(s) not found on PATH: %s", strings.Join(names, ", "))
	for _, m := range r.Fatal {
		err.WithDetail(m.Tool, m.Reason)
	}
	return err
}

// Check resolves every requirement with lookPath. A tool listed twice keeps
// its strictest level.
func Check(reqs []Requirement, lookPath executor.LookPathFunc) Report {
	logger := logging.GetLogger("preflight")

	report := Report{Found: make(map[string]string)}
	for _, req := range merge(reqs) {
		path, err := lookPath(req.Tool)
		if err == nil {
			logger.Debug().Str("tool", req.Tool).Str("path", path).Msg("Tool found")
			report.Found[req.Tool] = path
			continue
		}

		missing := Missing{Requirement: req, Err: err}
		if req.Level == Required {
			logger.Error().Str("tool", req.Tool).Str("reason", req.Reason).Msg("Required tool not found")
			report.Fatal = append(report.Fatal, missing)
			continue
		}
		logger.Warn().
			Str("tool", req.Tool).
			Str("level", req.Level.String()).
			Str("reason", req.Reason).
			Msg("Tool not found")
		report.Warnings = append(report.Warnings, missing)
	}
	return report
}

func merge(reqs []Requirement) []Requirement {
	index := make(map[string]int)
	var out []Requirement
	for _, r := range reqs {
		if i, ok := index[r.Tool]; ok {
			if r.Level > out[i].Level {
				out[i].Level = r.Level
				out[i].Reason = r.Reason
			}
			continue
		}
		index[r.Tool] = len(out)
		out = append(out, r)
	}
	return out
}

// String renders m for warnings shown to the user.
func (m Missing) String() string {
	return fmt.Sprintf("%s not found (%s): %s", m.Tool, m.Level, m.Reason)
}
