// Package logging provides the per-module loggers used across prngkit.
//
// Loggers are usually package level variables, created before the command
// line is parsed. They all write through a shared swap logger that drops
// every record until Initialize installs the configured output, format and
// module levels.
package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*Level)(nil)
	_ pflag.Value = (*Format)(nil)
)

// Format is a logging format.
type Format uint

const (
	// FmtLogfmt is the "logfmt" logging format.
	FmtLogfmt Format = iota
	// FmtJSON is the JSON logging format.
	FmtJSON
)

var formatNames = [...]string{
	FmtLogfmt: "logfmt",
	FmtJSON:   "JSON",
}

func (f *Format) String() string {
	if int(*f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", uint(*f))
	}
	return formatNames[*f]
}

// Set parses a format name, case insensitively.
func (f *Format) Set(s string) error {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			*f = Format(i)
			return nil
		}
	}
	return fmt.Errorf("logging: invalid log format: '%s'", s)
}

func (f *Format) Type() string {
	return "[" + strings.Join(formatNames[:], ",") + "]"
}

func (f Format) newLogger(w io.Writer) (log.Logger, error) {
	switch f {
	case FmtLogfmt:
		return log.NewLogfmtLogger(w), nil
	case FmtJSON:
		return log.NewJSONLogger(w), nil
	default:
		return nil, fmt.Errorf("logging: unsupported log format: %d", uint(f))
	}
}

// Level is a log level. Records below the level of their module are
// dropped.
type Level uint32

const (
	// LevelDebug is the log level for per-test and per-bin detail.
	LevelDebug Level = iota
	// LevelInfo is the log level for informative messages, such as a
	// clock-derived seed.
	LevelInfo
	// LevelWarn is the log level for failed tests and undefined results.
	LevelWarn
	// LevelError is the log level for failed commands.
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l *Level) String() string {
	if int(*l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", uint32(*l))
	}
	return levelNames[*l]
}

// Set parses a level name, case insensitively.
func (l *Level) Set(s string) error {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("logging: invalid log level: '%s'", s)
}

func (l *Level) Type() string {
	return "[" + strings.Join(levelNames[:], ",") + "]"
}

// Logger is the logger of a single module.
type Logger struct {
	module string
	logger log.Logger
	level  atomic.Uint32
}

func (l *Logger) log(lvl Level, leveled func(log.Logger) log.Logger, msg string, keyvals []interface{}) {
	if Level(l.level.Load()) > lvl {
		return
	}
	_ = leveled(l.logger).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// Debug logs the message and key value pairs at the Debug log level.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.log(LevelDebug, level.Debug, msg, keyvals)
}

// Info logs the message and key value pairs at the Info log level.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.log(LevelInfo, level.Info, msg, keyvals)
}

// Warn logs the message and key value pairs at the Warn log level.
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.log(LevelWarn, level.Warn, msg, keyvals)
}

// Error logs the message and key value pairs at the Error log level.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.log(LevelError, level.Error, msg, keyvals)
}

var backend struct {
	sync.Mutex

	// root discards records until Initialize swaps in the real output.
	root         log.SwapLogger
	loggers      []*Logger
	defaultLevel Level
	moduleLevels map[string]Level
	initialized  bool
}

// levelFor returns the level of the longest configured module prefix, the
// default level if none matches.
func levelFor(module string) Level {
	lvl, matched := backend.defaultLevel, -1
	for prefix, l := range backend.moduleLevels {
		if strings.HasPrefix(module, prefix) && len(prefix) > matched {
			lvl, matched = l, len(prefix)
		}
	}
	return lvl
}

// GetLogger returns a new logger for the module. It may be called before
// Initialize.
func GetLogger(module string) *Logger {
	// Logger.Debug and friends, Logger.log, the level prefix, then the
	// module context.
	const callerDepth = 5

	backend.Lock()
	defer backend.Unlock()

	l := &Logger{
		module: module,
		logger: log.WithPrefix(&backend.root, "module", module, "caller", log.Caller(callerDepth)),
	}
	l.level.Store(uint32(levelFor(module)))
	backend.loggers = append(backend.loggers, l)

	return l
}

// Initialize directs every logger, past and future, to w in the given
// format. Modules without a configured level use the default one. A nil w
// discards all output.
func Initialize(w io.Writer, format Format, defaultLvl Level, moduleLvls map[string]Level) error {
	backend.Lock()
	defer backend.Unlock()

	if backend.initialized {
		return fmt.Errorf("logging: already initialized")
	}

	out := log.NewNopLogger()
	if w != nil {
		var err error
		if out, err = format.newLogger(log.NewSyncWriter(w)); err != nil {
			return err
		}
	}

	backend.defaultLevel = defaultLvl
	backend.moduleLevels = moduleLvls
	backend.initialized = true
	for _, l := range backend.loggers {
		l.level.Store(uint32(levelFor(l.module)))
	}
	backend.root.Swap(log.With(out, "ts", log.DefaultTimestampUTC))

	return nil
}
