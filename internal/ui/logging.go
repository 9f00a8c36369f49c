package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger keeps the printf-style surface used across the tool while
// writing through zerolog.
type Logger struct {
	Debug bool
	zl    zerolog.Logger
}

// NewLoggerTo writes to w. Plain output drops timestamps and colors.
func NewLoggerTo(w io.Writer, debug bool, colored bool) *Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !colored,
		TimeFormat: time.TimeOnly,
	}
	if !colored {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return &Logger{
		Debug: debug,
		zl:    zerolog.New(cw).Level(level).With().Timestamp().Logger(),
	}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.zl.Debug().Msg(trim(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.zl.Info().Msg(trim(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.zl.Warn().Msg(trim(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.zl.Error().Msg(trim(format, args...))
}

// With returns a child logger carrying a string field on every line.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{Debug: l.Debug, zl: l.zl.With().Str(key, value).Logger()}
}

func trim(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
