package style

import (
	"fmt"
	"testing"

	"github.com/adamamer20/pythonic-template/pkg/bootstrap"
	"github.com/adamamer20/pythonic-template/pkg/config"
	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/preflight"
	"github.com/adamamer20/pythonic-template/pkg/pyversion"
	"github.com/adamamer20/pythonic-template/pkg/tokens"
	"github.com/adamamer20/pythonic-template/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatAuto},
		{"auto", FormatAuto},
		{"terminal", FormatTerminal},
		{"TEXT", FormatText},
		{"plain", FormatText},
		{"json", FormatJSON},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("yaml")
	assert.Error(t, err)
	assert.Equal(t, "json", FormatJSON.String())
}

func TestDetectFormatNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, FormatText, NewRenderer(FormatAuto).Format())
}

func textRenderer() *Renderer {
	return NewRenderer(FormatText)
}

func TestRenderVersions(t *testing.T) {
	d, err := pyversion.Derive(pyversion.MustParse("3.12"), []pyversion.Version{
		{Major: 3, Minor: 11}, {Major: 3, Minor: 12}, {Major: 3, Minor: 13},
	}, pyversion.DefaultFloor)
	require.NoError(t, err)

	assert.Equal(t, `Python versions
  minimum  3.12
  maximum  3.13
  matrix   ["3.12", "3.13"]
  short    312
  Programming Language :: Python :: 3.12
  Programming Language :: Python :: 3.13`, textRenderer().RenderVersions(d))
}

func TestRenderSubstitution(t *testing.T) {
	out := textRenderer().RenderSubstitution(tokens.Report{
		Changed:    []string{"README.md"},
		Unchanged:  []string{"pyproject.toml"},
		Missing:    []string{"docs/development/changelog.md"},
		Failed:     map[string]error{"ci.yml": fmt.Errorf("permission denied")},
		Unresolved: map[string][]string{"README.md": {"__DOCS_URL__"}},
	})
	assert.Equal(t, `Token substitution
  ✓ README.md
  ○ pyproject.toml (no tokens)
  ! docs/development/changelog.md (not found)
  ✗ ci.yml permission denied
  ! README.md unresolved __DOCS_URL__`, out)
}

func TestRenderPreflight(t *testing.T) {
	reqs := []preflight.Requirement{
		{Tool: "git", Level: preflight.Recommended, Reason: "repository init"},
		{Tool: "uv", Level: preflight.Required, Reason: "dependency sync"},
		{Tool: "docker", Level: preflight.Optional, Reason: "container build"},
	}
	rep := preflight.Report{
		Found:    map[string]string{"docker": "/usr/bin/docker"},
		Warnings: []preflight.Missing{{Requirement: reqs[0]}},
		Fatal:    []preflight.Missing{{Requirement: reqs[1]}},
	}
	assert.Equal(t, `Tools
  ! git        not found (repository init)
  ✗ uv         not found (dependency sync)
  ✓ docker     /usr/bin/docker`, textRenderer().RenderPreflight(reqs, rep))

	assert.Contains(t, textRenderer().RenderPreflight(nil, preflight.Report{}), "no external tools needed")
}

func TestRenderSteps(t *testing.T) {
	out := textRenderer().RenderSteps(bootstrap.Result{Steps: []bootstrap.StepResult{
		{Name: bootstrap.StepGitInit, Status: bootstrap.StatusSkipped, Reason: "tool not found: git"},
		{Name: bootstrap.StepSync, Status: bootstrap.StatusOK},
		{Name: bootstrap.StepHooksInstall, Status: bootstrap.StatusFailed, Reason: "exit 1"},
	}})
	assert.Equal(t, `Bootstrap
  ○ git-init         tool not found: git
  ✓ dependency-sync
  ✗ hooks-install    exit 1`, out)
}

func TestRenderViolations(t *testing.T) {
	r := textRenderer()
	assert.Equal(t, "success: template is valid", r.RenderViolations(nil))
	out := r.RenderViolations([]validate.Violation{{File: "ci.yml", Line: 4, Message: "bad"}})
	assert.Contains(t, out, "✗ ci.yml:4: bad")
}

func TestRenderError(t *testing.T) {
	r := textRenderer()
	assert.Equal(t, "", r.RenderError(nil))
	assert.Equal(t, "error: [TOOL_MISSING] uv not found",
		r.RenderError(errors.New(errors.ErrToolMissing, "uv not found")))
	assert.Equal(t, "error: boom", r.RenderError(fmt.Errorf("boom")))
}

func TestRenderJSON(t *testing.T) {
	out, err := textRenderer().RenderJSON(map[string]string{"min": "3.10"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"min": "3.10"}`, out)
}

func TestTextMessages(t *testing.T) {
	r := textRenderer()
	assert.Equal(t, "warning: careful", r.Warning("careful"))
	assert.Equal(t, "info: note", r.Info("note"))
	assert.Equal(t, "Title", r.Title("Title"))
	assert.Equal(t, "boxed", r.Box("boxed"))
}

func TestNextSteps(t *testing.T) {
	cfg := config.Config{
		Context: config.Context{
			RepoName:    "demo",
			PackageName: "demo",
			UseDocker:   true,
			InitGit:     true,
			ProjectType: config.ProjectStandard,
		},
		Hook: config.Hook{SyncCommand: []string{"uv", "sync"}, Branch: "main", CommitMessage: "Initial commit"},
	}
	res := bootstrap.Result{Steps: []bootstrap.StepResult{
		{Name: bootstrap.StepInitialCommit, Status: bootstrap.StatusOK},
		{Name: bootstrap.StepSync, Status: bootstrap.StatusOK},
	}}

	md := NextSteps(cfg, res)
	assert.Contains(t, md, "cp .env.example .env")
	assert.Contains(t, md, "docker build -t demo-dev .")
	assert.Contains(t, md, "src/demo/")
	assert.NotContains(t, md, "Install the development dependencies")
	assert.NotContains(t, md, "git commit")

	res.Steps[1].Status = bootstrap.StatusFailed
	res.Steps[0].Status = bootstrap.StatusSkipped
	md = NextSteps(cfg, res)
	assert.Contains(t, md, "uv sync")
	assert.Contains(t, md, `git commit -m "Initial commit"`)

	cfg.Context.ProjectType = config.ProjectPaper
	assert.Contains(t, NextSteps(cfg, res), "quarto render")
}

func TestRenderMarkdown(t *testing.T) {
	out, err := textRenderer().RenderMarkdown("## Next steps\n\n1. Run the tests\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Next steps")
	assert.Contains(t, out, "Run the tests")
}

func TestRenderErrorDetails(t *testing.T) {
	err := errors.New(errors.ErrUnresolvedToken, "1 file(s) still contain marker tokens").
		WithDetail("README.md", []string{"__DOCS_URL__"})
	assert.Equal(t, "error: [UNRESOLVED_TOKEN] 1 file(s) still contain marker tokens\n  README.md: [__DOCS_URL__]",
		textRenderer().RenderError(err))
}
