// Package log provides the module-scoped, key/value structured logger used
// throughout gxchain. It wraps a single shared zap.SugaredLogger so every
// package gets cheap, consistently formatted logging without wiring its own
// zap.Logger.
package log

import (
	"sync"

	colorable "github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base     *zap.SugaredLogger
	baseOnce sync.Once
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func root() *zap.SugaredLogger {
	baseOnce.Do(func() {
		cfg := zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "module",
			MessageKey:     "msg",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		}
		// colorable.NewColorableStderr wraps stderr so the ANSI codes
		// CapitalColorLevelEncoder emits render correctly on Windows
		// consoles too, the same stderr wrapper api/debug/flags.go uses.
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(colorable.NewColorableStderr()), level)
		base = zap.New(core).Sugar()
	})
	return base
}

// SetLevel adjusts the process-wide minimum log level ("debug", "info",
// "warn", "error"). Unrecognized names are ignored.
func SetLevel(name string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return
	}
	level.SetLevel(l)
}

// Logger is a named, key/value structured logger. The zero value is not
// usable; obtain one with NewModuleLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewModuleLogger returns a Logger tagged with the given module name, e.g.
// log.NewModuleLogger("blockchain").
func NewModuleLogger(module string) *Logger {
	return &Logger{sugar: root().Named(module)}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *Logger) Trace(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.sugar.Fatalw(msg, kv...) }
