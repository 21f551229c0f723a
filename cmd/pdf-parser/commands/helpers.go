package commands

import (
	"github.com/pkg/errors"

	"github.com/spherical/pdf-parser/cmd/pdf-parser/ui"
	"github.com/spherical/pdf-parser/internal/config"
	"github.com/spherical/pdf-parser/internal/domain"
)

// newLogger builds the run logger. Console output falls back to JSON when
// stderr is not a terminal.
func newLogger(lc config.LogConfig, verbose bool) *domain.Logger {
	level := domain.ParseLogLevel(lc.Level)
	if verbose {
		level = domain.LogLevelDebug
	}

	format := lc.Format
	if format == "console" && !ui.IsStderrTerminal() {
		format = "json"
	}

	return domain.NewLoggerWithConfig(domain.LogConfig{Level: level, Format: format})
}

// quietLogger keeps info lines from tearing the progress bar.
func quietLogger(lc config.LogConfig) *domain.Logger {
	level := domain.ParseLogLevel(lc.Level)
	if level < domain.LogLevelWarn {
		level = domain.LogLevelWarn
	}
	return domain.NewLoggerWithConfig(domain.LogConfig{Level: level, Format: lc.Format})
}

// reportError logs a failed command with its call stack when verbose.
func reportError(l *domain.Logger, err error, verbose bool) {
	if l == nil || err == nil || !verbose {
		return
	}
	l.ErrorErr(errors.WithStack(err), "command failed")
}
