package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"createform/internal/config"
)

// Init builds the application logger: one rotating JSON file per level plus a colored console core.
// The returned AtomicLevel gates the console and can be changed at runtime.
func Init(cfg config.LoggingConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, level, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		TimeKey:      "time",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, level, fmt.Errorf("could not create log directory: %w", err)
	}

	cores := []zapcore.Core{newConsoleCore(level)}
	for _, l := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel} {
		cores = append(cores, newFileCore(cfg, l, level, encoderConfig))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return logger, level, nil
}

// newFileCore writes exactly one level to its own rotating file, e.g. logs/info.log
func newFileCore(cfg config.LoggingConfig, only zapcore.Level, min zap.AtomicLevel, encoderConfig zapcore.EncoderConfig) zapcore.Core {
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, only.String()+".log"),
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})

	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l == only && min.Enabled(l)
	})

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, enabler)
}

func newConsoleCore(min zap.AtomicLevel) zapcore.Core {
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig),
		zapcore.AddSync(os.Stdout),
		min,
	)
}
