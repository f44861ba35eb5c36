package logx

import (
	"fmt"
	"log/slog"
	"os"
)

// Level identifies a logging severity level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Fields carries structured context attached to a log entry
type Fields map[string]any

var levelVar = func() *slog.LevelVar {
	lv := &slog.LevelVar{}
	lv.Set(slog.LevelInfo)
	return lv
}()

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: levelVar,
}))

// SetLevel sets the global minimum level
func SetLevel(level Level) {
	switch level {
	case LevelDebug:
		levelVar.Set(slog.LevelDebug)
	case LevelWarn:
		levelVar.Set(slog.LevelWarn)
	case LevelError:
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
}

func Debug(msg string)                  { logger.Debug(msg) }
func Debugf(format string, args ...any) { logger.Debug(fmt.Sprintf(format, args...)) }
func Info(msg string)                   { logger.Info(msg) }
func Infof(format string, args ...any)  { logger.Info(fmt.Sprintf(format, args...)) }
func Warn(msg string)                   { logger.Warn(msg) }
func Warnf(format string, args ...any)  { logger.Warn(fmt.Sprintf(format, args...)) }
func Error(msg string)                  { logger.Error(msg) }
func Errorf(format string, args ...any) { logger.Error(fmt.Sprintf(format, args...)) }

// Fatalf logs at error level and exits the process
func Fatalf(format string, args ...any) {
	logger.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}

// Entry is a logger with pre-attached fields
type Entry struct {
	logger *slog.Logger
}

// WithFields returns an Entry that includes the given fields on every message
func WithFields(fields Fields) *Entry {
	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	return &Entry{logger: logger.With(attrs...)}
}

func (e *Entry) Debug(msg string)                  { e.logger.Debug(msg) }
func (e *Entry) Debugf(format string, args ...any) { e.logger.Debug(fmt.Sprintf(format, args...)) }
func (e *Entry) Info(msg string)                   { e.logger.Info(msg) }
func (e *Entry) Infof(format string, args ...any)  { e.logger.Info(fmt.Sprintf(format, args...)) }
func (e *Entry) Warn(msg string)                   { e.logger.Warn(msg) }
func (e *Entry) Warnf(format string, args ...any)  { e.logger.Warn(fmt.Sprintf(format, args...)) }
func (e *Entry) Error(msg string)                  { e.logger.Error(msg) }
func (e *Entry) Errorf(format string, args ...any) { e.logger.Error(fmt.Sprintf(format, args...)) }
