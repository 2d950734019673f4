package log

import (
	"context"
	"fmt"

	conf "keum-identity/internal/conf/v1"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module 提供全局 zap.Logger，并接管 fx 自身的事件日志
var Module = fx.Module("log",
	fx.Provide(NewLogger),
)

// WithFxLogger 让 fx 使用 zap 输出启动事件
var WithFxLogger = fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: l.Named("fx")}
})

// NewLogger 根据配置创建 zap.Logger
func NewLogger(lc fx.Lifecycle, cfg *conf.Bootstrap, serviceName string) (*zap.Logger, error) {
	logger, err := New(cfg.Log)
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("service", serviceName))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// stdout/stderr 上的 Sync 可能返回 EINVAL，忽略
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

// New 创建 zap.Logger，format 为 console 时使用开发模式编码
func New(c *conf.Log) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	format := "json"
	if c != nil {
		if c.Level != "" {
			if err := level.UnmarshalText([]byte(c.Level)); err != nil {
				return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
			}
		}
		if c.Format != "" {
			format = c.Format
		}
	}

	var zc zap.Config
	switch format {
	case "console":
		zc = zap.NewDevelopmentConfig()
	case "json":
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "time"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
