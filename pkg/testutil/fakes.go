package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/adamamer20/pythonic-template/pkg/executor"
)

// Runner is an executor.Runner that records command lines instead of
// running them.
type Runner struct {
	mu    sync.Mutex
	calls []string

	// Fail maps a command line, e.g. "uv sync", to the error it returns.
	Fail map[string]error
}

// Run records the command line and returns the configured failure, if any.
func (r *Runner) Run(_ context.Context, _ string, name string, args ...string) (executor.Result, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))

	r.mu.Lock()
	r.calls = append(r.calls, line)
	r.mu.Unlock()

	if err, ok := r.Fail[line]; ok {
		return executor.Result{ExitCode: 1, Stderr: err.Error()}, err
	}
	return executor.Result{}, nil
}

// Calls returns the recorded command lines in order.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// LookPath returns a lookup that finds exactly tools, at /usr/bin/<tool>.
func LookPath(tools ...string) executor.LookPathFunc {
	present := make(map[string]bool, len(tools))
	for _, t := range tools {
		present[t] = true
	}
	return func(name string) (string, error) {
		if present[name] {
			return "/usr/bin/" + name, nil
		}
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
}
