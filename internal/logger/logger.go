// Package logger 基于 zap 构建应用日志器。
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建日志器：prod 环境使用生产配置，其余环境使用开发配置。
// level 取值 debug/info/warn/error，encoding 取值 json/console。
func New(env, level, encoding, name, version string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	switch encoding {
	case "json", "console":
		cfg.Encoding = encoding
	case "":
	default:
		return nil, fmt.Errorf("unsupported log encoding %q", encoding)
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lg, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return lg.With(zap.String("app", name), zap.String("version", version)), nil
}

// OrNop 返回非空的日志器，便于组件构造函数接收可选日志器
func OrNop(lg *zap.Logger) *zap.Logger {
	if lg == nil {
		return zap.NewNop()
	}
	return lg
}
