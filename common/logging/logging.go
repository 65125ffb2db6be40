// Package logging implements support for structured logging.
//
// This is a trimmed-down adaptation of the structured logging approach
// used across this codebase's sibling tools: a small leveled wrapper
// around go-kit/log, with a pflag.Value-compatible Level and Format so
// both can be bound directly to command line flags.
package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/pflag"
)

var (
	backend = logBackend{
		baseLogger:   log.NewNopLogger(),
		defaultLevel: LevelInfo,
	}

	_ pflag.Value = (*Level)(nil)
	_ pflag.Value = (*Format)(nil)
)

// Format is a logging output format.
type Format uint

const (
	// FmtLogfmt is the "logfmt" logging format.
	FmtLogfmt Format = iota
	// FmtJSON is the JSON logging format.
	FmtJSON
)

// String returns the string representation of a Format.
func (f *Format) String() string {
	switch *f {
	case FmtLogfmt:
		return "logfmt"
	case FmtJSON:
		return "JSON"
	default:
		return "unknown"
	}
}

// Set sets the Format to the value specified by the provided string.
func (f *Format) Set(s string) error {
	switch strings.ToUpper(s) {
	case "LOGFMT":
		*f = FmtLogfmt
	case "JSON":
		*f = FmtJSON
	default:
		return fmt.Errorf("logging: invalid log format: %q", s)
	}
	return nil
}

// Type returns the flag value type name.
func (f *Format) Type() string {
	return "[logfmt,JSON]"
}

// Level is a log level.
type Level uint

const (
	// LevelDebug is the log level for debug messages.
	LevelDebug Level = iota
	// LevelInfo is the log level for informative messages.
	LevelInfo
	// LevelWarn is the log level for warning messages.
	LevelWarn
	// LevelError is the log level for error messages.
	LevelError
)

func (l Level) toOption() level.Option {
	switch l {
	case LevelDebug:
		return level.AllowDebug()
	case LevelInfo:
		return level.AllowInfo()
	case LevelWarn:
		return level.AllowWarn()
	case LevelError:
		return level.AllowError()
	default:
		return level.AllowAll()
	}
}

// String returns the string representation of a Level.
func (l *Level) String() string {
	switch *l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Set sets the Level to the value specified by the provided string.
func (l *Level) Set(s string) error {
	switch strings.ToUpper(s) {
	case "DEBUG":
		*l = LevelDebug
	case "INFO":
		*l = LevelInfo
	case "WARN":
		*l = LevelWarn
	case "ERROR":
		*l = LevelError
	default:
		return fmt.Errorf("logging: invalid log level: %q", s)
	}
	return nil
}

// Type returns the flag value type name.
func (l *Level) Type() string {
	return "[DEBUG,INFO,WARN,ERROR]"
}

// Logger is a logger instance bound to a module name.
type Logger struct {
	logger log.Logger
	lvl    Level
	module string
}

// Debug logs the message and key/value pairs at the Debug level.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	if l.lvl > LevelDebug {
		return
	}
	_ = level.Debug(l.logger).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// Info logs the message and key/value pairs at the Info level.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	if l.lvl > LevelInfo {
		return
	}
	_ = level.Info(l.logger).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// Warn logs the message and key/value pairs at the Warn level.
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	if l.lvl > LevelWarn {
		return
	}
	_ = level.Warn(l.logger).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// Error logs the message and key/value pairs at the Error level.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	if l.lvl > LevelError {
		return
	}
	_ = level.Error(l.logger).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// With returns a clone of the logger with the provided key/value pairs
// prefixed to every subsequent log line.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{
		logger: log.With(l.logger, keyvals...),
		lvl:    l.lvl,
		module: l.module,
	}
}

// GetLevel returns the current global default log level.
func GetLevel() Level {
	backend.Lock()
	defer backend.Unlock()
	return backend.defaultLevel
}

// GetLogger creates a new logger instance bound to the given module.
//
// This may be called before Initialize; the returned Logger discards
// output until Initialize is called.
func GetLogger(module string) *Logger {
	return backend.getLogger(module)
}

// Initialize initializes the logging backend to write to w using the
// given format, at the given default level. A nil Writer discards all
// output.
func Initialize(w io.Writer, format Format, defaultLvl Level) error {
	backend.Lock()
	defer backend.Unlock()

	if backend.initialized {
		return fmt.Errorf("logging: already initialized")
	}

	var logger log.Logger = backend.baseLogger
	if w != nil {
		sw := log.NewSyncWriter(w)
		switch format {
		case FmtLogfmt:
			logger = log.NewLogfmtLogger(sw)
		case FmtJSON:
			logger = log.NewJSONLogger(sw)
		default:
			return fmt.Errorf("logging: unsupported log format: %v", format)
		}
	}

	logger = level.NewFilter(logger, defaultLvl.toOption())
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	backend.baseLogger = logger
	backend.defaultLevel = defaultLvl
	backend.initialized = true

	for _, pending := range backend.pending {
		pending.logger = log.WithPrefix(backend.baseLogger, "module", pending.module)
		pending.lvl = defaultLvl
	}
	backend.pending = nil

	return nil
}

type logBackend struct {
	sync.Mutex

	baseLogger   log.Logger
	defaultLevel Level
	initialized  bool
	pending      []*Logger
}

func (b *logBackend) getLogger(module string) *Logger {
	b.Lock()
	defer b.Unlock()

	l := &Logger{
		logger: log.WithPrefix(b.baseLogger, "module", module),
		lvl:    b.defaultLevel,
		module: module,
	}
	if !b.initialized {
		b.pending = append(b.pending, l)
	}
	return l
}
