package logx

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Level is the minimum severity that gets written
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Fields are structured key/value pairs attached to an entry
type Fields map[string]any

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, true)
)

func newLogger(w io.Writer, console bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// Configure switches the output writer. Console output is human readable,
// otherwise entries are written as JSON lines.
func Configure(w io.Writer, console bool) {
	mu.Lock()
	defer mu.Unlock()
	level := logger.GetLevel()
	logger = newLogger(w, console).Level(level)
}

// SetLevel cambia el nivel mínimo de log
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(toZerolog(l))
}

// ParseLevel maps a config string to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

func Debug(msg string)                  { current().Debug().Msg(msg) }
func Debugf(format string, args ...any) { current().Debug().Msg(fmt.Sprintf(format, args...)) }
func Info(msg string)                   { current().Info().Msg(msg) }
func Infof(format string, args ...any)  { current().Info().Msg(fmt.Sprintf(format, args...)) }
func Warn(msg string)                   { current().Warn().Msg(msg) }
func Warnf(format string, args ...any)  { current().Warn().Msg(fmt.Sprintf(format, args...)) }
func Error(msg string)                  { current().Error().Msg(msg) }
func Errorf(format string, args ...any) { current().Error().Msg(fmt.Sprintf(format, args...)) }

// Fatalf logs and exits the process
func Fatalf(format string, args ...any) {
	current().Fatal().Msg(fmt.Sprintf(format, args...))
}

// Entry is a logger bound to a set of fields
type Entry struct {
	l zerolog.Logger
}

// WithFields devuelve un Entry con los campos dados
func WithFields(fields Fields) *Entry {
	return &Entry{l: current().With().Fields(map[string]any(fields)).Logger()}
}

// WithField is WithFields for a single key
func WithField(key string, value any) *Entry {
	return WithFields(Fields{key: value})
}

func (e *Entry) Debugf(format string, args ...any) { e.l.Debug().Msg(fmt.Sprintf(format, args...)) }
func (e *Entry) Info(msg string)                   { e.l.Info().Msg(msg) }
func (e *Entry) Infof(format string, args ...any)  { e.l.Info().Msg(fmt.Sprintf(format, args...)) }
func (e *Entry) Warnf(format string, args ...any)  { e.l.Warn().Msg(fmt.Sprintf(format, args...)) }
func (e *Entry) Warn(msg string)                   { e.l.Warn().Msg(msg) }
func (e *Entry) Error(msg string)                  { e.l.Error().Msg(msg) }
func (e *Entry) Errorf(format string, args ...any) { e.l.Error().Msg(fmt.Sprintf(format, args...)) }
