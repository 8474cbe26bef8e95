package bootstrap

import (
	"context"
	"path/filepath"
	"time"

	"github.com/adamamer20/pythonic-template/pkg/config"
	"github.com/adamamer20/pythonic-template/pkg/executor"
	"github.com/adamamer20/pythonic-template/pkg/filesystem"
	"github.com/adamamer20/pythonic-template/pkg/logging"
	"github.com/rs/zerolog"
)

// Step names, in execution order.
const (
	StepGitInit       = "git-init"
	StepInitialCommit = "initial-commit"
	StepSync          = "dependency-sync"
	StepHooksInstall  = "hooks-install"
)

// Status is the outcome of a single step.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Policy decides whether a failing step stops the pipeline.
type Policy int

const (
	// Continue records the failure and runs the remaining steps.
	Continue Policy = iota
	// Abort skips every remaining step after a failure.
	Abort
)

// StepResult records what happened to one step.
type StepResult struct {
	Name     string
	Status   Status
	Reason   string
	Err      error
	Duration time.Duration
}

// Result collects the step results of one pipeline run.
type Result struct {
	Steps []StepResult
	// Aborted names the step whose failure stopped the pipeline.
	Aborted string
}

// Err returns the error of the aborting step, if any.
func (r Result) Err() error {
	if r.Aborted == "" {
		return nil
	}
	step, _ := r.Step(r.Aborted)
	return step.Err
}

// Count returns the number of steps that ended with status s.
func (r Result) Count(s Status) int {
	n := 0
	for _, step := range r.Steps {
		if step.Status == s {
			n++
		}
	}
	return n
}

// Step returns the result of the named step.
func (r Result) Step(name string) (StepResult, bool) {
	for _, step := range r.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return StepResult{}, false
}

// Tools reports which external tools are available.
// preflight.Report satisfies it.
type Tools interface {
	Has(tool string) bool
}

// Options holds the collaborators of a pipeline.
type Options struct {
	Runner executor.Runner
	Tools  Tools
	FS     filesystem.FS
}

// Step is one unit of the pipeline.
type Step struct {
	Name   string
	Policy Policy
	// Enabled is false when the feature toggle for the step is off.
	Enabled bool
	// Tools are alternatives; Run receives the first available one.
	Tools []string
	// Skip returns a non-empty reason when there is nothing to do.
	Skip func() string
	Run  func(ctx context.Context, tool string) error
}

// Pipeline is the ordered bootstrap step list for one generated project.
type Pipeline struct {
	cfg    config.Config
	opts   Options
	logger zerolog.Logger

	hasRepo bool
}

// New creates a pipeline for cfg.
func New(cfg config.Config, opts Options) *Pipeline {
	if opts.FS == nil {
		opts.FS = filesystem.NewOS()
	}
	return &Pipeline{
		cfg:    cfg,
		opts:   opts,
		logger: logging.GetLogger("bootstrap"),
	}
}

// Steps returns the steps in execution order.
func (p *Pipeline) Steps() []Step {
	ctx := p.cfg.Context
	hook := p.cfg.Hook

	var syncTool []string
	if len(hook.SyncCommand) > 0 {
		syncTool = hook.SyncCommand[:1]
	}

	return []Step{
		{
			Name:    StepGitInit,
			Enabled: ctx.InitGit,
			Tools:   []string{"git"},
			Skip: func() string {
				if p.hasRepo {
					return "repository already initialized"
				}
				return ""
			},
			Run: func(c context.Context, tool string) error {
				if err := p.run(c, tool, "init", "-b", hook.Branch); err != nil {
					return err
				}
				p.hasRepo = true
				return nil
			},
		},
		{
			Name:    StepInitialCommit,
			Enabled: ctx.InitGit,
			Tools:   []string{"git"},
			Skip:    p.requireRepo,
			Run: func(c context.Context, tool string) error {
				if err := p.run(c, tool, "add", "-A"); err != nil {
					return err
				}
				return p.run(c, tool, "commit", "-m", hook.CommitMessage)
			},
		},
		{
			Name:    StepSync,
			Enabled: ctx.SyncDependencies,
			Tools:   syncTool,
			Run: func(c context.Context, tool string) error {
				return p.run(c, tool, hook.SyncCommand[1:]...)
			},
		},
		{
			Name:    StepHooksInstall,
			Enabled: ctx.InstallPrecommit,
			Tools:   []string{"pre-commit", "uv"},
			Skip:    p.requireRepo,
			Run: func(c context.Context, tool string) error {
				if tool == "uv" {
					return p.run(c, tool, "tool", "run", "pre-commit", "install")
				}
				return p.run(c, tool, "install")
			},
		},
	}
}

// Run executes the bootstrap steps. None of them aborts the pipeline; when
// ctx is cancelled the remaining steps are skipped.
func (p *Pipeline) Run(ctx context.Context) Result {
	done := logging.LogOperationStart(p.logger, "bootstrap")
	defer done()

	if _, err := p.opts.FS.Stat(filepath.Join(p.cfg.Root, ".git")); err == nil {
		p.hasRepo = true
	}

	result := p.RunSteps(ctx, p.Steps())

	p.logger.Info().
		Int("ok", result.Count(StatusOK)).
		Int("skipped", result.Count(StatusSkipped)).
		Int("failed", result.Count(StatusFailed)).
		Msg("Bootstrap finished")
	return result
}

// RunSteps executes steps in order, honouring each step's Policy.
func (p *Pipeline) RunSteps(ctx context.Context, steps []Step) Result {
	var result Result
	for _, step := range steps {
		if result.Aborted != "" {
			sr := StepResult{Name: step.Name}
			result.Steps = append(result.Steps,
				p.skip(p.logger.With().Str("step", step.Name).Logger(), sr, "aborted after "+result.Aborted))
			continue
		}
		sr := p.runStep(ctx, step)
		result.Steps = append(result.Steps, sr)
		if sr.Status == StatusFailed && step.Policy == Abort {
			result.Aborted = step.Name
		}
	}
	return result
}

func (p *Pipeline) runStep(ctx context.Context, step Step) StepResult {
	sr := StepResult{Name: step.Name}
	logger := p.logger.With().Str("step", step.Name).Logger()

	if err := ctx.Err(); err != nil {
		return p.skip(logger, sr, "cancelled")
	}
	if !step.Enabled {
		return p.skip(logger, sr, "disabled")
	}

	tool, ok := p.firstAvailable(step.Tools)
	if !ok {
		return p.skip(logger, sr, "tool not found: "+joinTools(step.Tools))
	}
	if step.Skip != nil {
		if reason := step.Skip(); reason != "" {
			return p.skip(logger, sr, reason)
		}
	}

	start := time.Now()
	err := step.Run(ctx, tool)
	sr.Duration = time.Since(start)
	if err != nil {
		logger.Warn().Err(err).Msg("Step failed, continuing")
		sr.Status = StatusFailed
		sr.Reason = err.Error()
		sr.Err = err
		return sr
	}

	logger.Info().Dur("duration", sr.Duration).Msg("Step completed")
	sr.Status = StatusOK
	if p.cfg.DryRun {
		sr.Reason = "dry run"
	}
	return sr
}

func (p *Pipeline) skip(logger zerolog.Logger, sr StepResult, reason string) StepResult {
	logger.Info().Str("reason", reason).Msg("Step skipped")
	sr.Status = StatusSkipped
	sr.Reason = reason
	return sr
}

func (p *Pipeline) firstAvailable(tools []string) (string, bool) {
	if len(tools) == 0 {
		return "", false
	}
	for _, t := range tools {
		if p.opts.Tools == nil || p.opts.Tools.Has(t) {
			return t, true
		}
	}
	return "", false
}

func (p *Pipeline) requireRepo() string {
	if !p.hasRepo {
		return "no git repository"
	}
	return ""
}

func (p *Pipeline) run(ctx context.Context, name string, args ...string) error {
	_, err := p.opts.Runner.Run(ctx, p.cfg.Root, name, args...)
	return err
}

func joinTools(tools []string) string {
	if len(tools) == 0 {
		return "(none configured)"
	}
	out := tools[0]
	for _, t := range tools[1:] {
		out += " or " + t
	}
	return out
}
