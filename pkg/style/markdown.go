package style

import (
	"fmt"
	"strings"

	"github.com/adamamer20/pythonic-template/pkg/bootstrap"
	"github.com/adamamer20/pythonic-template/pkg/config"
	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders md with glamour. Text output uses the notty style,
// which keeps the markdown structure but emits no escape codes.
func (r *Renderer) RenderMarkdown(md string) (string, error) {
	styleName := "notty"
	if r.styled() {
		styleName = "auto"
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styleName),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to create markdown renderer")
	}
	out, err := tr.Render(md)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render markdown")
	}
	return strings.TrimSpace(out), nil
}

// NextSteps returns the markdown printed after a successful run.
func NextSteps(cfg config.Config, res bootstrap.Result) string {
	ctx := cfg.Context
	var b strings.Builder
	b.WriteString("## Next steps\n\n")

	n := 1
	item := func(title string, commands ...string) {
		fmt.Fprintf(&b, "%d. %s\n\n", n, title)
		if len(commands) > 0 {
			b.WriteString("   ```sh\n")
			for _, c := range commands {
				b.WriteString("   " + c + "\n")
			}
			b.WriteString("   ```\n\n")
		}
		n++
	}

	if sync, ok := res.Step(bootstrap.StepSync); !ok || sync.Status != bootstrap.StatusOK {
		item("Install the development dependencies:", strings.Join(cfg.Hook.SyncCommand, " "))
	}
	item("Set up your environment:", "cp .env.example .env")
	item("Run the tests:", "uv run pytest")
	if ctx.PackageName != "" {
		item(fmt.Sprintf("Start developing in `src/%s/`.", ctx.PackageName))
	}
	if commit, ok := res.Step(bootstrap.StepInitialCommit); ctx.InitGit && (!ok || commit.Status != bootstrap.StatusOK) {
		item("Create the initial commit:", "git init -b "+cfg.Hook.Branch, "git add -A", "git commit -m \""+cfg.Hook.CommitMessage+"\"")
	}

	if ctx.UseDocker {
		b.WriteString("### Docker\n\nBuild the development container with:\n\n```sh\n")
		fmt.Fprintf(&b, "docker build -t %s-dev .\n", ctx.RepoName)
		b.WriteString("```\n")
	}
	if ctx.ProjectType == config.ProjectPaper {
		b.WriteString("\n### Paper\n\nRender the paper with `quarto render`.\n")
	}
	return b.String()
}
