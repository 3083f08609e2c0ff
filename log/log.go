// Package log provides the process-wide structured logger used by every
// zvote package. It wraps zerolog behind a small set of key-value helpers so
// call sites never import zerolog directly.
package log

import (
	"cmp"
	"fmt"
	"os"
	"path"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"
)

var (
	log   zerolog.Logger
	logMu sync.RWMutex
)

func init() {
	Init(cmp.Or(os.Getenv("LOG_LEVEL"), "info"), cmp.Or(os.Getenv("LOG_OUTPUT"), "stderr"))
}

// Logger returns the current global logger.
func Logger() *zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	l := log
	return &l
}

func setLogger(l zerolog.Logger) {
	logMu.Lock()
	log = l
	logMu.Unlock()
}

// Init (re)configures the global logger. output is "stdout", "stderr", or a
// file path opened in append mode.
func Init(level, output string) {
	var out *os.File
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		out = f
	}

	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: RFC3339Milli}
	logger := zerolog.New(writer).With().Timestamp().Caller().Logger()
	zerolog.CallerSkipFrameCount = 3
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		return fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(file)), path.Base(file), line)
	}

	switch level {
	case LevelDebug:
		logger = logger.Level(zerolog.DebugLevel)
	case LevelInfo:
		logger = logger.Level(zerolog.InfoLevel)
	case LevelWarn:
		logger = logger.Level(zerolog.WarnLevel)
	case LevelError:
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", level))
	}
	setLogger(logger)
}

func Debugw(msg string, keyvalues ...any) { Logger().Debug().Fields(keyvalues).Msg(msg) }
func Infow(msg string, keyvalues ...any)  { Logger().Info().Fields(keyvalues).Msg(msg) }
func Warnw(msg string, keyvalues ...any)  { Logger().Warn().Fields(keyvalues).Msg(msg) }

// Errorw logs err at error level alongside msg, without ever panicking —
// callers use this from background tasks per the "panics are logged, not
// fatal" rule.
func Errorw(err error, msg string) { Logger().Error().Err(err).Msg(msg) }

func Fatalw(msg string, keyvalues ...any) {
	Logger().Fatal().Fields(keyvalues).Msg(msg + "\n" + string(debug.Stack()))
	panic("unreachable")
}

// Recover turns a panic recovered in a background task into an error-level
// log line instead of crashing the process (spec background-task semantics).
func Recover(component string) {
	if r := recover(); r != nil {
		Logger().Error().
			Str("component", component).
			Interface("panic", r).
			Bytes("stack", debug.Stack()).
			Msg("recovered panic in background task")
	}
}
