// Package logging builds the zap loggers used by the gridastar commands.
package logging

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where logs go and how verbose they are.
type Options struct {
	// FilePath is the rotating log file. Empty disables file output.
	FilePath string
	// Console also writes logs to stderr.
	Console bool
	// Debug lowers the level from info to debug.
	Debug bool

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a logger writing to a rotating file and/or stderr. The returned
// cleanup func flushes the logger and closes the file.
func New(options Options) (*zap.Logger, func(), error) {
	if options.FilePath == "" && !options.Console {
		return zap.NewNop(), func() {}, nil
	}

	level := zapcore.InfoLevel
	if options.Debug {
		level = zapcore.DebugLevel
	}
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
		EncodeName:    zapcore.FullNameEncoder,
	})

	var cores []zapcore.Core
	var rotator *lumberjack.Logger
	if options.FilePath != "" {
		// 10MB per file, 3 backups, 7 days unless overridden
		rotator = &lumberjack.Logger{
			Filename:   options.FilePath,
			MaxSize:    orDefault(options.MaxSizeMB, 10),
			MaxBackups: orDefault(options.MaxBackups, 3),
			MaxAge:     orDefault(options.MaxAgeDays, 7),
		}
		if _, err := rotator.Write(nil); err != nil {
			return nil, nil, errors.Wrapf(err, "open log file %s", options.FilePath)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}
	if options.Console {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	cleanup := func() {
		_ = logger.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
	return logger, cleanup, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
