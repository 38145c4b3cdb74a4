// Package logging provides a zap-backed implementation of the mono
// structured logger.
package logging

import (
	"fmt"
	"os"

	"github.com/go-monolith/mono/pkg/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02 15:04:05"

// Logger adapts a zap sugared logger to types.Logger.
type Logger struct {
	s *zap.SugaredLogger
}

var _ types.Logger = (*Logger)(nil)

// New builds a logger for the given level (debug, info, warn, error) and
// format ("text" for colored console output, "json" otherwise).
func New(level, format string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var encoder zapcore.Encoder
	switch format {
	case "", "text", "console":
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
		encCfg.ConsoleSeparator = " | "
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lvl)
	return FromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))), nil
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{s: z.Sugar()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return FromZap(zap.NewNop())
}

func (l *Logger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }

func (l *Logger) With(args ...any) types.Logger {
	return &Logger{s: l.s.With(args...)}
}

func (l *Logger) WithModule(module string) types.Logger {
	return &Logger{s: l.s.Named(module)}
}

func (l *Logger) WithError(err error) types.Logger {
	return &Logger{s: l.s.With("error", err)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.s.Sync()
}
