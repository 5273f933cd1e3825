// Package logscope hands out scoped pion loggers, tolerating a nil factory.
package logscope

import (
	"io"
	"strings"

	"github.com/juju/errors"
	"github.com/pion/logging"
)

// Discard is a factory whose loggers drop everything.
func Discard() logging.LoggerFactory {
	return &logging.DefaultLoggerFactory{
		Writer:          io.Discard,
		DefaultLogLevel: logging.LogLevelDisabled,
	}
}

// New returns the logger for scope from lf, or a silent one when lf is nil.
func New(lf logging.LoggerFactory, scope string) logging.LeveledLogger {
	if lf == nil {
		lf = Discard()
	}
	return lf.NewLogger(scope)
}

// Writer builds a factory that writes every scope to w at level.
func Writer(w io.Writer, level logging.LogLevel) logging.LoggerFactory {
	return &logging.DefaultLoggerFactory{
		Writer:          w,
		DefaultLogLevel: level,
		ScopeLevels:     map[string]logging.LogLevel{},
	}
}

var levels = map[string]logging.LogLevel{
	"disabled": logging.LogLevelDisabled,
	"error":    logging.LogLevelError,
	"warn":     logging.LogLevelWarn,
	"info":     logging.LogLevelInfo,
	"debug":    logging.LogLevelDebug,
	"trace":    logging.LogLevelTrace,
}

// ParseLevel maps a level name such as "debug" to its LogLevel.
func ParseLevel(name string) (logging.LogLevel, error) {
	if l, ok := levels[strings.ToLower(name)]; ok {
		return l, nil
	}
	return logging.LogLevelDisabled, errors.NotValidf("log level %q", name)
}
