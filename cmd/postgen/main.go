package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/adamamer20/pythonic-template/internal/cli"
	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/style"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, style.NewRenderer(style.DetectFormat(os.Stderr)).RenderError(err))
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps err to the process status. A command that returns an error
// always fails, even when the error code alone is not fatal.
func exitCode(err error) int {
	if code := errors.ExitCode(err); code != 0 {
		return code
	}
	return 1
}
