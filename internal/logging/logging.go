// Package logging builds the leveled logger shared by the pipeline. Lines go
// to a per-day file and, optionally, to stdout:
//
//	[2024-01-31 14:05:09] [INFO] Source loaded {"source": "yahoo", "rows": 21}
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02 15:04:05"

// Config controls where and how much is logged
type Config struct {
	// Dir receives one log_YYYY-MM-DD.txt file per calendar day
	Dir string
	// Level is the minimum level written: DEBUG, INFO, WARNING or ERROR
	Level string
	// Console also echoes lines to stdout
	Console bool
}

// ParseLevel maps a level name to a zap level. WARN is accepted for WARNING.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "", "INFO":
		return zapcore.InfoLevel, nil
	case "WARNING", "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// New builds a logger from cfg. The returned function flushes and closes the log file.
func New(cfg Config) (*zap.SugaredLogger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	files, err := NewDailyWriter(cfg.Dir, time.Now)
	if err != nil {
		return nil, nil, err
	}

	sinks := []zapcore.WriteSyncer{files}
	if cfg.Console {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}

	core := zapcore.NewCore(newEncoder(), zapcore.NewMultiWriteSyncer(sinks...), level)
	logger := zap.New(core)

	closeFn := func() error {
		_ = logger.Sync()
		return files.Close()
	}
	return logger.Sugar(), closeFn, nil
}

func newEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(EncoderConfig())
}

// EncoderConfig renders "[time] [LEVEL] message fields" lines
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + t.Format(timeLayout) + "]")
		},
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + LevelName(l) + "]")
		},
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// LevelName returns the upper-case level name used in log lines
func LevelName(l zapcore.Level) string {
	switch l {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	default:
		return "ERROR"
	}
}
