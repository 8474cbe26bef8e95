package config

import (
	"time"

	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/pyversion"
	"github.com/adamamer20/pythonic-template/pkg/tokens"
)

// ProjectType selects the flavour of generated project.
type ProjectType string

const (
	ProjectStandard ProjectType = "standard"
	ProjectPaper    ProjectType = "paper"
)

// Context holds the user's answers to the template prompts.
type Context struct {
	ProjectName      string            `koanf:"project_name"`
	RepoName         string            `koanf:"repo_name"`
	PackageName      string            `koanf:"package_name"`
	Description      string            `koanf:"project_short_description"`
	AuthorName       string            `koanf:"author_name"`
	AuthorEmail      string            `koanf:"author_email"`
	GithubUsername   string            `koanf:"github_username"`
	License          string            `koanf:"license"`
	PythonVersion    pyversion.Version `koanf:"python_version"`
	ProjectType      ProjectType       `koanf:"project_type"`
	AIAgent          string            `koanf:"ai_agent"`
	UseDocker        bool              `koanf:"use_docker"`
	InitGit          bool              `koanf:"init_git"`
	InstallPrecommit bool              `koanf:"install_precommit"`
	SyncDependencies bool              `koanf:"sync_dependencies"`
}

// Targets configures which files are scanned for marker tokens.
type Targets struct {
	Paths []string `koanf:"paths"`
	Extra []string `koanf:"extra"`
}

// Hook holds settings of the hook itself rather than of the project.
type Hook struct {
	KnownVersions []pyversion.Version `koanf:"known_versions"`
	MinSupported  pyversion.Version   `koanf:"min_supported"`
	StrictTokens  bool                `koanf:"strict_tokens"`
	SyncCommand   []string            `koanf:"sync_command"`
	CommitMessage string              `koanf:"commit_message"`
	Branch        string              `koanf:"branch"`
	ReleaseDate   string              `koanf:"release_date"`
	StepTimeout   time.Duration       `koanf:"step_timeout"`
	Targets       Targets             `koanf:"targets"`
}

// Config is the validated, read-only configuration for one hook run.
type Config struct {
	Context Context
	Hook    Hook

	// Root is the absolute path of the generated project.
	Root string
	// DryRun disables every write and external command.
	DryRun bool
}

// Versions derives the supported Python range from the context.
func (c Config) Versions() (pyversion.Derived, error) {
	return pyversion.Derive(c.Context.PythonVersion, c.Hook.KnownVersions, c.Hook.MinSupported)
}

// ReleaseDate returns the configured release date, or now when unset.
func (c Config) ReleaseDate(now time.Time) time.Time {
	if c.Hook.ReleaseDate == "" {
		return now
	}
	// Validate already checked the layout.
	t, _ := time.Parse(tokens.ReleaseDateLayout, c.Hook.ReleaseDate)
	return t
}

// Validate checks cross-field constraints that decoding cannot express.
func (c Config) Validate() error {
	if c.Context.PythonVersion.IsZero() {
		return errors.New(errors.ErrConfigInvalid, "python_version is required")
	}
	switch c.Context.ProjectType {
	case ProjectStandard, ProjectPaper:
	default:
		return errors.Newf(errors.ErrConfigInvalid,
			"project_type must be %q or %q, got %q", ProjectStandard, ProjectPaper, c.Context.ProjectType)
	}
	if len(c.Hook.KnownVersions) == 0 {
		return errors.New(errors.ErrConfigInvalid, "hook.known_versions must not be empty")
	}
	if c.Context.SyncDependencies && len(c.Hook.SyncCommand) == 0 {
		return errors.New(errors.ErrConfigInvalid, "hook.sync_command is required when sync_dependencies is enabled")
	}
	if c.Context.InitGit && c.Hook.Branch == "" {
		return errors.New(errors.ErrConfigInvalid, "hook.branch is required when init_git is enabled")
	}
	if c.Hook.StepTimeout < 0 {
		return errors.Newf(errors.ErrConfigInvalid, "hook.step_timeout must not be negative, got %s", c.Hook.StepTimeout)
	}
	if c.Hook.ReleaseDate != "" {
		if _, err := time.Parse(tokens.ReleaseDateLayout, c.Hook.ReleaseDate); err != nil {
			return errors.Wrapf(err, errors.ErrConfigInvalid,
				"hook.release_date %q is not a YYYY-MM-DD date", c.Hook.ReleaseDate)
		}
	}
	return nil
}
