package utils

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel enumerates severity tiers.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger is the levelled logger used across the pipeline. It wraps a zap
// SugaredLogger writing a console encoding to stdout, plus an optional file.
type Logger struct {
	s *zap.SugaredLogger
}

var (
	globalLogger *Logger
	logOnce      sync.Once
)

// InitLogger creates the singleton logger. Call once at startup.
func InitLogger(minLevel LogLevel, logFilePath string) *Logger {
	logOnce.Do(func() {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.TimeKey = "ts"
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig = encCfg
		cfg.Level = zap.NewAtomicLevelAt(minLevel.zapLevel())
		cfg.OutputPaths = []string{"stdout"}
		if logFilePath != "" {
			cfg.OutputPaths = append(cfg.OutputPaths, logFilePath)
		}

		z, err := cfg.Build(zap.WithCaller(false))
		if err != nil {
			// Config above is static; Build only fails on an unopenable
			// log file. Fall back to stdout-only.
			cfg.OutputPaths = []string{"stdout"}
			z, _ = cfg.Build(zap.WithCaller(false))
		}
		globalLogger = &Logger{s: z.Sugar()}
	})
	return globalLogger
}

// L returns the global logger, initialising a stdout-only DEBUG logger if
// InitLogger has not been called (tests, ad-hoc usage).
func L() *Logger {
	if globalLogger == nil {
		return InitLogger(DEBUG, "")
	}
	return globalLogger
}

// Close flushes buffered log entries.
func (l *Logger) Close() { _ = l.s.Sync() }

func (l *Logger) Debug(f string, a ...any) { l.s.Debugf(f, a...) }
func (l *Logger) Info(f string, a ...any)  { l.s.Infof(f, a...) }
func (l *Logger) Warn(f string, a ...any)  { l.s.Warnf(f, a...) }
func (l *Logger) Error(f string, a ...any) { l.s.Errorf(f, a...) }
func (l *Logger) Fatal(f string, a ...any) { l.s.Fatalf(f, a...) }
