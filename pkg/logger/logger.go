// Package `logger` provides the leveled logger used by the service and tools.
package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelFatal
)

var levelString = map[LogLevel]string{
	LevelTrace:   "  TRACE     ",
	LevelDebug:   "  DEBUG     ",
	LevelInfo:    "  INFO      ",
	LevelWarning: "  WARNING   ",
	LevelError:   "  ERROR  !  ",
	LevelFatal:   "  FATAL !!! ",
}

var levelNames = map[string]LogLevel{
	"trace": LevelTrace,
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarning,
	"error": LevelError,
	"fatal": LevelFatal,
}

// ParseLevel turns a level name ("trace", "debug", "info", "warn", "error"
// or "fatal", in any case) into a [LogLevel].
func ParseLevel(s string) (LogLevel, error) {
	lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return LevelInfo, fmt.Errorf("logger: Unknown log level '%v'.", s)
	}
	return lvl, nil
}

// String returns the name [ParseLevel] accepts for the level.
func (lvl LogLevel) String() string {
	for name, l := range levelNames {
		if l == lvl {
			return name
		}
	}
	return fmt.Sprintf("level(%d)", int(lvl))
}

// A FormatFunc formats messages into log messages (i.e. by including log levels, timestamps, etc.).
type FormatFunc func(msg string, lvl LogLevel) string

// DefaultFmt formats messages into the form:
// `LEVEL    Mon Jan 2 15:04:05 -0700 2006: message`
// with a new line at the end. It prevents duplication of newlines, if the
// message already has one.
func DefaultFmt(msg string, lvl LogLevel) string {
	logTime := time.Now().Format(time.RubyDate)
	return fmt.Sprintf("%v%v: %v\n", levelString[lvl], logTime, strings.TrimSuffix(msg, "\n"))
}

// A Logger logs formatted messages into [io.Writer]s according to their log level.
type Logger struct {
	level   LogLevel
	fmt     FormatFunc
	outputs []io.Writer
	muxs    []sync.Mutex
}

// DefaultLogger logs to stdout and logs at LevelInfo, with [DefaultFmt].
var (
	DefaultLogger *Logger = NewLogger(nil, LevelInfo, os.Stdout)
	currentLogger *Logger = DefaultLogger
)

// SetLogger sets the logger that will be used on non-method calls.
// Preferably, this is to be set only once, at the top-level.
func SetLogger(logger *Logger) {
	currentLogger = logger
}

// NewLogger creates a logger that logs at the passed level and to
// the passed io.Writer's. It formats messages according to `fmt`.
// If `nil` is passed for `fmt`, [DefaultFmt] is used.
func NewLogger(fmt FormatFunc, lvl LogLevel, writers ...io.Writer) *Logger {
	if fmt == nil {
		fmt = DefaultFmt
	}
	return &Logger{
		level:   lvl,
		fmt:     fmt,
		outputs: writers,
		muxs:    make([]sync.Mutex, len(writers)),
	}
}

// NewLoggerOutputs creates a logger that logs at the passed level
// and outputs to the passed outputs, if they are valid. Valid outputs
// are paths (if relative, they will be relative to `baseDir`) and
// "stdout" or "stderr". Always returns a logger, but it may not log to
// any outputs if all outputs are invalid.
func NewLoggerOutputs(level LogLevel, fmt FormatFunc, baseDir string, outputs ...string) *Logger {
	outs := []io.Writer{}
	for _, out := range outputs {
		switch out {
		case "stdout":
			outs = append(outs, os.Stdout)
			continue
		case "stderr":
			outs = append(outs, os.Stderr)
			continue
		}

		logPath := out
		if !path.IsAbs(out) {
			logPath = path.Join(baseDir, out)
		}

		// If this fails, opening the file will fail too.
		os.MkdirAll(path.Dir(logPath), os.ModePerm)

		logFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0660)
		if err != nil {
			Errorf("logger: Couldn't open/create log file at %v (%v). Will not log to this file.", out, err)
			continue
		}
		outs = append(outs, logFile)
	}
	return NewLogger(fmt, level, outs...)
}

// Level returns the lowest level the logger writes.
func (logger *Logger) Level() LogLevel {
	return logger.level
}

// Log formats a message and writes to the Logger's outputs if the level is appropriate.
func (logger *Logger) Log(level LogLevel, msg string) {
	if logger.level > level {
		return
	}
	s := logger.fmt(msg, level)
	for i, out := range logger.outputs {
		logger.muxs[i].Lock()
		fmt.Fprint(out, s)
		logger.muxs[i].Unlock()
	}
}

func (logger *Logger) Trace(mesg string) { logger.Log(LevelTrace, mesg) }
func (logger *Logger) Debug(mesg string) { logger.Log(LevelDebug, mesg) }
func (logger *Logger) Info(mesg string)  { logger.Log(LevelInfo, mesg) }
func (logger *Logger) Warn(mesg string)  { logger.Log(LevelWarning, mesg) }
func (logger *Logger) Error(mesg string) { logger.Log(LevelError, mesg) }
func (logger *Logger) Fatal(mesg string) { logger.Log(LevelFatal, mesg) }

// Logs at the passed level with a format string. The message is only
// formatted if it is going to be written.
func (logger *Logger) Logf(level LogLevel, format string, a ...any) {
	if logger.level > level {
		return
	}
	logger.Log(level, fmt.Sprintf(format, a...))
}

func (logger *Logger) Tracef(format string, a ...any) { logger.Logf(LevelTrace, format, a...) }
func (logger *Logger) Debugf(format string, a ...any) { logger.Logf(LevelDebug, format, a...) }
func (logger *Logger) Infof(format string, a ...any)  { logger.Logf(LevelInfo, format, a...) }
func (logger *Logger) Warnf(format string, a ...any)  { logger.Logf(LevelWarning, format, a...) }
func (logger *Logger) Errorf(format string, a ...any) { logger.Logf(LevelError, format, a...) }
func (logger *Logger) Fatalf(format string, a ...any) { logger.Logf(LevelFatal, format, a...) }

// Below log in the current logger.

func Trace(mesg string) { currentLogger.Trace(mesg) }
func Debug(mesg string) { currentLogger.Debug(mesg) }
func Info(mesg string)  { currentLogger.Info(mesg) }
func Warn(mesg string)  { currentLogger.Warn(mesg) }
func Error(mesg string) { currentLogger.Error(mesg) }
func Fatal(mesg string) { currentLogger.Fatal(mesg) }

func Tracef(format string, a ...any) { currentLogger.Tracef(format, a...) }
func Debugf(format string, a ...any) { currentLogger.Debugf(format, a...) }
func Infof(format string, a ...any)  { currentLogger.Infof(format, a...) }
func Warnf(format string, a ...any)  { currentLogger.Warnf(format, a...) }
func Errorf(format string, a ...any) { currentLogger.Errorf(format, a...) }
func Fatalf(format string, a ...any) { currentLogger.Fatalf(format, a...) }
