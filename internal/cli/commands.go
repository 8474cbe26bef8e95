package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/adamamer20/pythonic-template/internal/version"
	"github.com/adamamer20/pythonic-template/pkg/config"
	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/executor"
	"github.com/adamamer20/pythonic-template/pkg/filesystem"
	"github.com/adamamer20/pythonic-template/pkg/hook"
	"github.com/adamamer20/pythonic-template/pkg/logging"
	"github.com/adamamer20/pythonic-template/pkg/preflight"
	"github.com/adamamer20/pythonic-template/pkg/pyproject"
	"github.com/adamamer20/pythonic-template/pkg/pyversion"
	"github.com/adamamer20/pythonic-template/pkg/style"
	"github.com/adamamer20/pythonic-template/pkg/validate"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	verbosity   int
	dryRun      bool
	dir         string
	contextFile string
	overrides   []string
	format      string

	// deps replaces the production collaborators in tests.
	deps hook.Deps
}

func (o *options) loadConfig() (config.Config, error) {
	return config.Load(config.LoadOptions{
		Root:        o.dir,
		ContextFile: o.contextFile,
		Overrides:   o.overrides,
		DryRun:      o.dryRun,
	})
}

func (o *options) renderer() (*style.Renderer, error) {
	f, err := style.ParseFormat(o.format)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, MsgErrUnknownFormat, o.format)
	}
	return style.NewRenderer(f), nil
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "postgen",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	flags.StringVarP(&opts.dir, "dir", "C", ".", MsgFlagDir)
	flags.StringVar(&opts.contextFile, "context", "", MsgFlagContext)
	flags.StringArrayVar(&opts.overrides, "set", nil, MsgFlagSet)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newDeriveCmd(opts))
	rootCmd.AddCommand(newSubstituteCmd(opts))
	rootCmd.AddCommand(newDoctorCmd(opts))
	rootCmd.AddCommand(newBootstrapCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newVersionsCmd(opts))
	rootCmd.AddCommand(newBumpPythonCmd(opts))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  MsgVersionLong,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgVersionFormat, version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, MsgBuiltFormat, version.Date)
			}
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: MsgRunShort,
		Long:  MsgRunLong,
		Example: `  # From a cookiecutter post_gen_project hook
  postgen run --context .cruft.json

  # Preview what would change
  postgen run --dry-run -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer()
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			result, runErr := hook.Run(cmd.Context(), cfg, opts.deps)
			out := cmd.OutOrStdout()

			if r.Format() == style.FormatJSON {
				if err := writeJSON(out, r, newRunView(result, runErr)); err != nil {
					return err
				}
				return runErr
			}

			printRunResult(out, r, cfg, result, runErr)
			return runErr
		},
	}
}

func printRunResult(out io.Writer, r *style.Renderer, cfg config.Config, result *hook.Result, runErr error) {
	if result.Versions.Matrix == nil {
		return
	}
	fmt.Fprintln(out, r.RenderVersions(result.Versions))
	fmt.Fprintln(out)
	fmt.Fprintln(out, r.RenderSubstitution(result.Substitution))

	if result.Preflight.Found != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, r.RenderPreflight(preflight.Requirements(cfg), result.Preflight))
	}
	if runErr != nil {
		if errors.IsErrorCode(runErr, errors.ErrToolMissing) || errors.IsErrorCode(runErr, errors.ErrUnresolvedToken) {
			fmt.Fprintln(out)
			fmt.Fprintln(out, r.Warning(MsgUnbootstrapped))
		}
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, r.RenderSteps(result.Bootstrap))
	fmt.Fprintln(out)

	if warnings := result.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(out, r.Warning(fmt.Sprintf(MsgHookDoneWarn, len(warnings))))
		for _, w := range warnings {
			fmt.Fprintln(out, style.Indent(w, 1))
		}
	} else {
		fmt.Fprintln(out, r.Success(MsgHookDone))
	}

	if md, err := r.RenderMarkdown(style.NextSteps(cfg, result.Bootstrap)); err == nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, md)
	} else {
		log.Warn().Err(err).Msg("Could not render next steps")
	}

	if cfg.DryRun {
		fmt.Fprintln(out)
		fmt.Fprintln(out, r.Box(r.Info(MsgDryRunNotice)))
	}
}

func newDeriveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "derive",
		Short: MsgDeriveShort,
		Example: `  postgen derive --set python_version=3.11
  postgen derive --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer()
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			d, err := hook.Derive(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if r.Format() == style.FormatJSON {
				return writeJSON(out, r, newVersionsView(d))
			}
			fmt.Fprintln(out, r.RenderVersions(d))
			return nil
		},
	}
}

func newSubstituteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "substitute",
		Short: MsgSubstituteShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer()
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			d, err := hook.Derive(cfg)
			if err != nil {
				return err
			}

			report, _, subErr := hook.Substitute(cfg, d, opts.deps)
			out := cmd.OutOrStdout()
			if r.Format() == style.FormatJSON {
				if err := writeJSON(out, r, newSubstitutionView(report)); err != nil {
					return err
				}
				return subErr
			}

			fmt.Fprintln(out, r.RenderSubstitution(report))
			fmt.Fprintln(out, r.Info(fmt.Sprintf(MsgSubstituteCount,
				len(report.Changed), len(report.Unchanged), len(report.Missing))))
			return subErr
		},
	}
}

func newDoctorCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: MsgDoctorShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer()
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			reqs := preflight.Requirements(cfg)
			report := preflight.Check(reqs, opts.lookPath())
			out := cmd.OutOrStdout()
			if r.Format() == style.FormatJSON {
				if err := writeJSON(out, r, newPreflightView(report)); err != nil {
					return err
				}
				return report.Err()
			}
			fmt.Fprintln(out, r.RenderPreflight(reqs, report))
			return report.Err()
		},
	}
}

func newBootstrapCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: MsgBootstrapShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer()
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			tools := preflight.Check(preflight.Requirements(cfg), opts.lookPath())
			if err := tools.Err(); err != nil {
				return err
			}
			result := hook.Bootstrap(cmd.Context(), cfg, opts.deps, tools)

			out := cmd.OutOrStdout()
			if r.Format() == style.FormatJSON {
				return writeJSON(out, r, newStepsView(result))
			}
			fmt.Fprintln(out, r.RenderSteps(result))
			return nil
		},
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [template-dir]",
		Short: MsgValidateShort,
		Long: `Validate checks the template sources for invariants that are easy to break:

  - GitHub expressions (${{ ... }}) in workflows must sit inside
    {% raw %} ... {% endraw %} blocks
  - README.md must use the __PY_MIN__ marker, not a bare PY_MIN
  - every workflow must be valid YAML once the raw markers are removed

When the directory contains {{cookiecutter.repo_name}}, that directory is
checked. The command exits non-zero when any violation is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer()
			if err != nil {
				return err
			}
			dir := opts.dir
			if len(args) == 1 {
				dir = args[0]
			}

			report, err := validate.Template(opts.fs(), validate.TemplateRoot(dir))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if r.Format() == style.FormatJSON {
				if err := writeJSON(out, r, newValidationView(report)); err != nil {
					return err
				}
				return report.Err()
			}
			fmt.Fprintln(out, r.RenderViolations(report.Violations))
			return report.Err()
		},
	}
}

func newVersionsCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "versions",
		Short: MsgVersionsShort,
		Long: `Versions reads requires-python from pyproject.toml and prints the
supported minor range as a single JSON line, for use in CI matrices:

  >=3.10,<3.13  ->  {"min":"3.10","max":"3.12"}
  >=3.12        ->  {"min":"3.12","max":"3.12"}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := pyproject.ReadRange(opts.fs(), opts.pyprojectPath(file))
			if err != nil {
				return err
			}
			data, err := json.Marshal(rng)
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to encode versions")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", MsgFlagFile)
	return cmd
}

func newBumpPythonCmd(opts *options) *cobra.Command {
	var (
		file string
		to   string
	)
	cmd := &cobra.Command{
		Use:     "bump-python",
		Short:   MsgBumpShort,
		Example: `  postgen bump-python --to 3.12`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := pyversion.Parse(to)
			if err != nil {
				return errors.Wrap(err, errors.ErrInvalidInput, MsgErrBumpTarget)
			}
			path := opts.pyprojectPath(file)

			if opts.dryRun {
				old, err := pyproject.ReadRequiresPython(opts.fs(), path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), MsgBumped+"\n", pyproject.BumpSpec(old, target), target)
				return nil
			}

			_, updated, err := pyproject.Bump(opts.fs(), path, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgBumped+"\n", updated, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", MsgFlagTo)
	cmd.Flags().StringVarP(&file, "file", "f", "", MsgFlagFile)
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (o *options) fs() filesystem.FS {
	if o.deps.FS != nil {
		return o.deps.FS
	}
	return filesystem.NewOS()
}

func (o *options) lookPath() executor.LookPathFunc {
	if o.deps.LookPath != nil {
		return o.deps.LookPath
	}
	return executor.LookPath
}

func (o *options) pyprojectPath(file string) string {
	if file != "" {
		return file
	}
	return filepath.Join(o.dir, pyproject.FileName)
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
