// Package logutils builds the zerolog logger used by the CLI.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// MaxFileSize is the size at which an existing log file is rotated to
// <file>.1 on startup.
const MaxFileSize = 10 << 20

// New returns a logger at the given level (debug, info, warn, error, fatal).
//
// With a file path, JSON lines are appended to that file, rotating it first
// when it has grown past MaxFileSize. Without one, logs go to stderr so they
// never mix with JSON written to stdout.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	var writer io.Writer = os.Stderr
	if file != "" {
		f, err := openLogFile(file)
		if err != nil {
			return zerolog.Logger{}, closer, err
		}
		closer = func() { _ = f.Close() }
		writer = f
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}

func openLogFile(file string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	if info, err := os.Stat(file); err == nil && info.Size() >= MaxFileSize {
		if err := os.Rename(file, file+".1"); err != nil {
			return nil, fmt.Errorf("rotate log file: %w", err)
		}
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
