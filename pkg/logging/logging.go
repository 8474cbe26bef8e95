// Package logging configures the zerolog logger shared by all postgen
// packages. Console output goes to stderr and every entry is also appended
// to a log file under the XDG state directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	appDirName  = "postgen"
	logFileName = "postgen.log"
)

// levels maps -v counts to log levels; anything past the end is trace.
var levels = []zerolog.Level{
	zerolog.WarnLevel,
	zerolog.InfoLevel,
	zerolog.DebugLevel,
}

// LevelFor returns the log level for a -v count.
func LevelFor(verbosity int) zerolog.Level {
	if verbosity < 0 {
		verbosity = 0
	}
	if verbosity >= len(levels) {
		return zerolog.TraceLevel
	}
	return levels[verbosity]
}

// SetupLogger installs the global logger for the given verbosity.
func SetupLogger(verbosity int) {
	setup(os.Stderr, verbosity)
}

// setup returns the log file path, or "" when only the console is used.
func setup(console io.Writer, verbosity int) string {
	zerolog.SetGlobalLevel(LevelFor(verbosity))

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}}

	path := LogFilePath()
	file, fileErr := openLogFile(path)
	if fileErr == nil {
		writers = append(writers, file)
	} else {
		path = ""
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Msg("Log file unavailable, logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", path).Msg("Logger initialized")
	return path
}

// GetLogger returns the global logger tagged with component.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// LogFilePath is $XDG_STATE_HOME/postgen/postgen.log.
func LogFilePath() string {
	// xdg reads the environment once at init
	xdg.Reload()
	return filepath.Join(xdg.StateHome, appDirName, logFileName)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// LogCommand records an external command about to run in dir.
func LogCommand(dir, name string, args []string) {
	log.Debug().
		Str("dir", dir).
		Str("command", name).
		Strs("args", args).
		Msg("Executing command")
}

// LogOperationStart logs operation at debug level and returns the function
// that logs its completion with the elapsed time.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")
	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
