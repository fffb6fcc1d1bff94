package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`    // debug, info, warn, error
	Encoding   string `envconfig:"LOG_ENCODING" default:"json"` // json или console
	OutputPath string `envconfig:"LOG_OUTPUT_PATH"`             // пусто = stdout
	Service    string `envconfig:"LOG_SERVICE_NAME" default:"cinema-server"`
	// WithCaller добавляет file:line в каждую запись
	WithCaller bool `envconfig:"LOG_WITH_CALLER" default:"false"`
}

// ParseLevel разбирает уровень без учета регистра. Пустая строка - info.
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return lvl, nil
}

// New собирает zap.Logger. Неизвестный уровень или формат не ошибка: берутся info и json.
func New(cfg Config) (*zap.Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		// Логгера еще нет
		fmt.Fprintf(os.Stderr, "%v, using info\n", err)
	}

	encoding := strings.ToLower(strings.TrimSpace(cfg.Encoding))
	if encoding != "console" {
		encoding = "json"
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = "stdout"
	}

	var initial map[string]any
	if cfg.Service != "" {
		initial = map[string]any{"service": cfg.Service}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		DisableCaller:     !cfg.WithCaller,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{outputPath},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields:     initial,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
