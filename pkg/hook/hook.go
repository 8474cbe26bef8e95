// Package hook orchestrates one post-generation run: version derivation,
// token substitution, preflight checks and the bootstrap pipeline.
package hook

import (
	"context"
	"sort"
	"time"

	"github.com/adamamer20/pythonic-template/pkg/bootstrap"
	"github.com/adamamer20/pythonic-template/pkg/config"
	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/executor"
	"github.com/adamamer20/pythonic-template/pkg/filesystem"
	"github.com/adamamer20/pythonic-template/pkg/logging"
	"github.com/adamamer20/pythonic-template/pkg/preflight"
	"github.com/adamamer20/pythonic-template/pkg/pyversion"
	"github.com/adamamer20/pythonic-template/pkg/targets"
	"github.com/adamamer20/pythonic-template/pkg/tokens"
)

// Deps are the side-effecting collaborators of a run.
type Deps struct {
	FS       filesystem.FS
	Runner   executor.Runner
	LookPath executor.LookPathFunc
	Now      func() time.Time
}

// DefaultDeps returns the production collaborators for cfg.
func DefaultDeps(cfg config.Config) Deps {
	runner := executor.NewCommandRunner(cfg.DryRun)
	if cfg.Hook.StepTimeout > 0 {
		runner = runner.WithTimeout(cfg.Hook.StepTimeout)
	}
	return Deps{
		FS:       filesystem.NewOS(),
		Runner:   runner,
		LookPath: executor.LookPath,
		Now:      time.Now,
	}
}

func (d Deps) withDefaults(cfg config.Config) Deps {
	def := DefaultDeps(cfg)
	if d.FS == nil {
		d.FS = def.FS
	}
	if d.Runner == nil {
		d.Runner = def.Runner
	}
	if d.LookPath == nil {
		d.LookPath = def.LookPath
	}
	if d.Now == nil {
		d.Now = def.Now
	}
	return d
}

// Result is everything a run produced, filled in stage by stage. When Run
// returns an error the stages after the failing one are zero.
type Result struct {
	Versions     pyversion.Derived
	Targets      []string
	Substitution tokens.Report
	Preflight    preflight.Report
	Bootstrap    bootstrap.Result
}

// Warnings returns the non-fatal problems of the run as display lines.
func (r *Result) Warnings() []string {
	var out []string
	for _, rel := range r.Substitution.Missing {
		out = append(out, "target file not found: "+rel)
	}
	failed := make([]string, 0, len(r.Substitution.Failed))
	for rel := range r.Substitution.Failed {
		failed = append(failed, rel)
	}
	sort.Strings(failed)
	for _, rel := range failed {
		out = append(out, r.Substitution.Failed[rel].Error())
	}
	for _, rel := range sortedKeys(r.Substitution.Unresolved) {
		for _, tok := range r.Substitution.Unresolved[rel] {
			out = append(out, "unresolved token "+tok+" in "+rel)
		}
	}
	for _, m := range r.Preflight.Warnings {
		out = append(out, m.String())
	}
	for _, s := range r.Bootstrap.Steps {
		if s.Status == bootstrap.StatusFailed {
			out = append(out, s.Name+" failed: "+s.Reason)
		}
	}
	return out
}

// Run executes the whole hook for cfg.
//
// A version error aborts before any file is read. Missing required tools
// abort after substitution, leaving the rewritten files unbootstrapped.
// Everything else is reported on the Result and does not fail the run.
func Run(ctx context.Context, cfg config.Config, deps Deps) (*Result, error) {
	logger := logging.GetLogger("hook")
	deps = deps.withDefaults(cfg)
	result := &Result{}

	derived, err := Derive(cfg)
	if err != nil {
		return result, err
	}
	result.Versions = derived

	report, resolved, err := Substitute(cfg, derived, deps)
	result.Targets = resolved
	result.Substitution = report
	if err != nil {
		return result, err
	}

	result.Preflight = preflight.Check(preflight.Requirements(cfg), deps.LookPath)
	if err := result.Preflight.Err(); err != nil {
		logger.Error().Err(err).Msg("Preflight failed, generated files are left unbootstrapped")
		return result, err
	}

	result.Bootstrap = Bootstrap(ctx, cfg, deps, result.Preflight)
	if err := result.Bootstrap.Err(); err != nil {
		return result, err
	}

	logger.Info().
		Int("changed", len(report.Changed)).
		Int("warnings", len(result.Warnings())).
		Msg("Hook completed")
	return result, nil
}

// Derive computes the version range for cfg.
func Derive(cfg config.Config) (pyversion.Derived, error) {
	d, err := cfg.Versions()
	if err != nil {
		return pyversion.Derived{}, err
	}
	logger := logging.GetLogger("hook")
	logger.Info().
		Str("min", d.Min.String()).
		Str("max", d.Max.String()).
		Str("matrix", d.MatrixLiteral()).
		Msg("Derived Python versions")
	return d, nil
}

// Substitute rewrites the target files of cfg.Root. With strict tokens,
// leftover markers make it return an UNRESOLVED_TOKEN error; the report is
// complete either way.
func Substitute(cfg config.Config, d pyversion.Derived, deps Deps) (tokens.Report, []string, error) {
	deps = deps.withDefaults(cfg)

	resolved, err := targets.Resolve(cfg.Root, cfg.Hook.Targets.Paths, cfg.Hook.Targets.Extra)
	if err != nil {
		if !errors.IsFatal(err) {
			err = errors.Wrap(err, errors.ErrConfigInvalid, "cannot resolve target files")
		}
		return tokens.Report{}, nil, err
	}

	table := tokens.NewTable(d, cfg.ReleaseDate(deps.Now()))
	report := tokens.NewSubstituter(deps.FS, table, cfg.DryRun).Apply(cfg.Root, resolved)

	if cfg.Hook.StrictTokens && report.HasUnresolved() {
		files := sortedKeys(report.Unresolved)
		err := errors.Newf(errors.ErrUnresolvedToken,
			"%d file(s) still contain marker tokens", len(files))
		for _, rel := range files {
			err.WithDetail(rel, report.Unresolved[rel])
		}
		return report, resolved, err
	}
	return report, resolved, nil
}

// Bootstrap runs the bootstrap pipeline with the tools found by preflight.
func Bootstrap(ctx context.Context, cfg config.Config, deps Deps, tools preflight.Report) bootstrap.Result {
	deps = deps.withDefaults(cfg)
	return bootstrap.New(cfg, bootstrap.Options{
		Runner: deps.Runner,
		Tools:  tools,
		FS:     deps.FS,
	}).Run(ctx)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
