package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/adamamer20/pythonic-template/pkg/config"
	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toolSet map[string]bool

func (t toolSet) Has(tool string) bool { return t[tool] }

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Root: t.TempDir(),
		Context: config.Context{
			InitGit:          true,
			InstallPrecommit: true,
			SyncDependencies: true,
		},
		Hook: config.Hook{
			SyncCommand:   []string{"uv", "sync"},
			CommitMessage: "Initial commit",
			Branch:        "main",
		},
	}
}

func statuses(r Result) map[string]Status {
	out := make(map[string]Status)
	for _, s := range r.Steps {
		out[s.Name] = s.Status
	}
	return out
}

func TestRunAllSteps(t *testing.T) {
	runner := &testutil.Runner{}
	p := New(testConfig(t), Options{Runner: runner, Tools: toolSet{"git": true, "uv": true, "pre-commit": true}})

	result := p.Run(context.Background())

	assert.Equal(t, []string{
		"git init -b main",
		"git add -A",
		"git commit -m Initial commit",
		"uv sync",
		"pre-commit install",
	}, runner.Calls())
	require.Len(t, result.Steps, 4)
	assert.Equal(t, StepGitInit, result.Steps[0].Name)
	assert.Equal(t, StepHooksInstall, result.Steps[3].Name)
	assert.Equal(t, 4, result.Count(StatusOK))
}

func TestRunWithoutGit(t *testing.T) {
	runner := &testutil.Runner{}
	p := New(testConfig(t), Options{Runner: runner, Tools: toolSet{"uv": true}})

	result := p.Run(context.Background())

	assert.Equal(t, []string{"uv sync"}, runner.Calls())
	assert.Equal(t, map[string]Status{
		StepGitInit:       StatusSkipped,
		StepInitialCommit: StatusSkipped,
		StepSync:          StatusOK,
		StepHooksInstall:  StatusSkipped,
	}, statuses(result))

	gitInit, ok := result.Step(StepGitInit)
	require.True(t, ok)
	assert.Equal(t, "tool not found: git", gitInit.Reason)
	hooks, _ := result.Step(StepHooksInstall)
	assert.Equal(t, "no git repository", hooks.Reason)
}

func TestRunExistingRepository(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Mkdir(filepath.Join(cfg.Root, ".git"), 0755))
	runner := &testutil.Runner{}

	result := New(cfg, Options{Runner: runner, Tools: toolSet{"git": true, "uv": true, "pre-commit": true}}).
		Run(context.Background())

	step, _ := result.Step(StepGitInit)
	assert.Equal(t, StatusSkipped, step.Status)
	assert.Equal(t, "repository already initialized", step.Reason)
	assert.NotContains(t, runner.Calls(), "git init -b main")
	assert.Contains(t, runner.Calls(), "git add -A")
}

func TestRunPrecommitFallsBackToUv(t *testing.T) {
	runner := &testutil.Runner{}
	New(testConfig(t), Options{Runner: runner, Tools: toolSet{"git": true, "uv": true}}).
		Run(context.Background())

	calls := runner.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, "uv tool run pre-commit install", calls[len(calls)-1])
}

func TestRunFailureContinues(t *testing.T) {
	runner := &testutil.Runner{Fail: map[string]error{
		"uv sync": errors.New(errors.ErrStepFailed, "uv sync exited with code 1"),
	}}
	result := New(testConfig(t), Options{Runner: runner, Tools: toolSet{"git": true, "uv": true, "pre-commit": true}}).
		Run(context.Background())

	sync, _ := result.Step(StepSync)
	assert.Equal(t, StatusFailed, sync.Status)
	assert.True(t, errors.IsErrorCode(sync.Err, errors.ErrStepFailed))
	assert.False(t, errors.IsFatal(sync.Err))

	hooks, _ := result.Step(StepHooksInstall)
	assert.Equal(t, StatusOK, hooks.Status)
	assert.Equal(t, 1, result.Count(StatusFailed))
}

func TestRunFailedInitSkipsCommit(t *testing.T) {
	runner := &testutil.Runner{Fail: map[string]error{
		"git init -b main": errors.New(errors.ErrStepFailed, "git init failed"),
	}}
	result := New(testConfig(t), Options{Runner: runner, Tools: toolSet{"git": true, "uv": true, "pre-commit": true}}).
		Run(context.Background())

	assert.Equal(t, map[string]Status{
		StepGitInit:       StatusFailed,
		StepInitialCommit: StatusSkipped,
		StepSync:          StatusOK,
		StepHooksInstall:  StatusSkipped,
	}, statuses(result))
}

func TestRunDisabledToggles(t *testing.T) {
	cfg := testConfig(t)
	cfg.Context = config.Context{}
	runner := &testutil.Runner{}

	result := New(cfg, Options{Runner: runner, Tools: toolSet{"git": true, "uv": true}}).Run(context.Background())

	assert.Empty(t, runner.Calls())
	assert.Equal(t, 4, result.Count(StatusSkipped))
	for _, s := range result.Steps {
		assert.Equal(t, "disabled", s.Reason)
	}
}

func TestRunCustomSyncCommand(t *testing.T) {
	cfg := testConfig(t)
	cfg.Hook.SyncCommand = []string{"uv", "sync", "--all-extras"}
	runner := &testutil.Runner{}

	New(cfg, Options{Runner: runner, Tools: toolSet{"uv": true}}).Run(context.Background())

	assert.Equal(t, []string{"uv sync --all-extras"}, runner.Calls())
}

func TestRunDryRunMarksSteps(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = true

	result := New(cfg, Options{Runner: &testutil.Runner{}, Tools: toolSet{"git": true, "uv": true, "pre-commit": true}}).
		Run(context.Background())

	for _, s := range result.Steps {
		assert.Equal(t, StatusOK, s.Status, s.Name)
		assert.Equal(t, "dry run", s.Reason)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &testutil.Runner{}

	result := New(testConfig(t), Options{Runner: runner, Tools: toolSet{"git": true, "uv": true}}).Run(ctx)

	assert.Empty(t, runner.Calls())
	assert.Equal(t, 4, result.Count(StatusSkipped))
}

func TestRunStepsAbortPolicy(t *testing.T) {
	p := New(testConfig(t), Options{Runner: &testutil.Runner{}, Tools: toolSet{"sh": true}})
	var ran []string
	step := func(name string, policy Policy, err error) Step {
		return Step{
			Name:    name,
			Policy:  policy,
			Enabled: true,
			Tools:   []string{"sh"},
			Run: func(context.Context, string) error {
				ran = append(ran, name)
				return err
			},
		}
	}
	boom := errors.New(errors.ErrStepFailed, "boom")

	result := p.RunSteps(context.Background(), []Step{
		step("first", Continue, boom),
		step("second", Abort, boom),
		step("third", Continue, nil),
	})

	assert.Equal(t, []string{"first", "second"}, ran)
	assert.Equal(t, "second", result.Aborted)
	assert.Equal(t, boom, result.Err())
	third, _ := result.Step("third")
	assert.Equal(t, StatusSkipped, third.Status)
	assert.Equal(t, "aborted after second", third.Reason)
}
