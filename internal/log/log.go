// Package log provides the logging backend, based around the go-logging package.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/op/go-logging.v1"
)

// Levels lists the accepted level names, most severe first.
var Levels = []string{"CRITICAL", "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG"}

// Backend is a log backend.
type Backend struct {
	w       io.Writer
	backend logging.LeveledBackend
}

// GetLogger returns a per-module logger that writes to the backend.
func (b *Backend) GetLogger(module string) *logging.Logger {
	l := logging.MustGetLogger(module)
	l.SetBackend(b.backend)
	return l
}

// Close releases the log file, if any.
func (b *Backend) Close() error {
	if c, ok := b.w.(io.Closer); ok && b.w != os.Stderr && b.w != os.Stdout {
		return c.Close()
	}
	return nil
}

// New initializes a logging backend. An empty path logs to stderr so that
// stdout stays reserved for results.
func New(f string, level string, disable bool) (*Backend, error) {
	b := new(Backend)

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	if disable {
		b.w = io.Discard
	} else if f == "" {
		b.w = os.Stderr
	} else {
		const fileMode = 0o600

		flags := os.O_CREATE | os.O_APPEND | os.O_WRONLY
		b.w, err = os.OpenFile(f, flags, fileMode)
		if err != nil {
			return nil, errors.Wrap(err, "log: failed to create log file")
		}
	}

	logFmt := logging.MustStringFormatter("%{time:15:04:05.000} %{level:.4s} %{module}: %{message}")
	base := logging.NewLogBackend(b.w, "", 0)
	formatted := logging.NewBackendFormatter(base, logFmt)
	b.backend = logging.AddModuleLevel(formatted)
	b.backend.SetLevel(lvl, "")
	return b, nil
}

// Discard returns a backend that drops everything; handy in tests.
func Discard() *Backend {
	b, _ := New("", "ERROR", true)
	return b
}

// ParseLevel maps a level name, case-insensitively, to a go-logging level.
func ParseLevel(l string) (logging.Level, error) {
	switch strings.ToUpper(l) {
	case "CRITICAL":
		return logging.CRITICAL, nil
	case "ERROR":
		return logging.ERROR, nil
	case "WARNING":
		return logging.WARNING, nil
	case "NOTICE":
		return logging.NOTICE, nil
	case "INFO":
		return logging.INFO, nil
	case "DEBUG":
		return logging.DEBUG, nil
	default:
		return logging.CRITICAL, errors.Errorf("log: invalid level: '%v'", l)
	}
}
