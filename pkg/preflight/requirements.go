package preflight

import "github.com/adamamer20/pythonic-template/pkg/config"

// Requirements lists the tools the features enabled in cfg depend on.
func Requirements(cfg config.Config) []Requirement {
	var reqs []Requirement
	if cfg.Context.InitGit {
		reqs = append(reqs, Requirement{
			Tool:   "git",
			Level:  Recommended,
			Reason: "repository init and initial commit",
		})
	}
	if cfg.Context.SyncDependencies && len(cfg.Hook.SyncCommand) > 0 {
		reqs = append(reqs, Requirement{
			Tool:   cfg.Hook.SyncCommand[0],
			Level:  Required,
			Reason: "dependency sync",
		})
	}
	if cfg.Context.InstallPrecommit {
		reqs = append(reqs, Requirement{
			Tool:   "pre-commit",
			Level:  Optional,
			Reason: "hook install",
		})
		reqs = append(reqs, Requirement{
			Tool:   "uv",
			Level:  Optional,
			Reason: "pre-commit fallback via uv tool run",
		})
	}
	if cfg.Context.UseDocker {
		reqs = append(reqs, Requirement{
			Tool:   "docker",
			Level:  Optional,
			Reason: "building the generated Dockerfile",
		})
	}
	if cfg.Context.ProjectType == config.ProjectPaper {
		reqs = append(reqs, Requirement{
			Tool:   "quarto",
			Level:  Optional,
			Reason: "rendering the paper",
		})
	}
	return reqs
}
