// Package logger builds the zerolog loggers used by the motor-sentry commands.
package logger

import (
	"io"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the named level. Console output is
// human-readable with timestamps; otherwise each record is a JSON line,
// which journald already timestamps.
func New(level string, w io.Writer, console bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if !console {
		return zerolog.New(w).Level(lvl), nil
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Default returns a logger for the current process: JSON on stderr when
// running under a service manager, console output otherwise.
func Default(level string) (zerolog.Logger, error) {
	return New(level, os.Stderr, !IsService())
}

// IsService reports whether the process appears to run under systemd or
// another supervisor rather than an interactive shell.
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}
	return syscall.Getpgrp() == syscall.Getpid()
}
