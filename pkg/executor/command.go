package executor

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single external command.
const DefaultTimeout = 5 * time.Minute

// LookPathFunc resolves an executable name on the search path.
type LookPathFunc func(file string) (string, error)

// LookPath is the production LookPathFunc.
var LookPath LookPathFunc = exec.LookPath

// Result represents the result of a command execution
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes external commands.
type Runner interface {
	// Run executes name with args in dir. A non-zero exit status is an error
	// carrying the captured result.
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// CommandRunner is the os/exec backed Runner
type CommandRunner struct {
	logger  zerolog.Logger
	dryRun  bool
	timeout time.Duration
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(dryRun bool) *CommandRunner {
	return &CommandRunner{
		logger:  logging.GetLogger("executor"),
		dryRun:  dryRun,
		timeout: DefaultTimeout,
	}
}

// WithTimeout overrides the per-command timeout
func (r *CommandRunner) WithTimeout(d time.Duration) *CommandRunner {
	r.timeout = d
	return r
}

// Run executes a single command and captures its output
func (r *CommandRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	if name == "" {
		return Result{}, errors.New(errors.ErrInvalidInput, "command name is required")
	}

	logging.LogCommand(dir, name, args)
	r.logger.Info().
		Str("command", name).
		Strs("args", args).
		Str("workingDir", dir).
		Msg("Executing command")

	if r.dryRun {
		r.logger.Info().Msg("Dry run mode - command would be executed")
		return Result{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if stdout.Len() > 0 {
		r.logger.Debug().Str("output", result.Stdout).Msg("Command stdout")
	}
	if stderr.Len() > 0 {
		r.logger.Debug().Str("output", result.Stderr).Msg("Command stderr")
	}

	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("command", name).
			Strs("args", args).
			Int("exitCode", result.ExitCode).
			Msg("Command execution failed")

		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return result, errors.Wrapf(err, errors.ErrStepFailed,
				"%s exited with code %d", commandLine(name, args), result.ExitCode).
				WithDetail("stderr", strings.TrimSpace(result.Stderr))
		}
		return result, errors.Wrapf(err, errors.ErrStepFailed,
			"failed to execute %s", commandLine(name, args))
	}

	r.logger.Debug().
		Str("command", name).
		Dur("duration", result.Duration).
		Msg("Command executed successfully")

	return result, nil
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
