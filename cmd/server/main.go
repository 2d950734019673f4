package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"keum-identity/internal/biz"
	confv1 "keum-identity/internal/conf/v1"
	"keum-identity/internal/data"
	"keum-identity/internal/pkg/config"
	logger "keum-identity/internal/pkg/log"
	"keum-identity/internal/pkg/otel"
	"keum-identity/internal/pkg/registry"
	"keum-identity/internal/server"
	"keum-identity/internal/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var serviceName = "keum-identity"

func main() {
	flag.Parse()

	fxApp := NewApp()

	// 启动应用
	if err := fxApp.Start(context.Background()); err != nil {
		log.Printf("Failed to start app: %v\n", err)
		os.Exit(1)
	}

	// 等待中断信号
	<-fxApp.Done()

	// 优雅关闭
	if err := fxApp.Stop(context.Background()); err != nil {
		log.Printf("Failed to stop app gracefully: %v\n", err)
		os.Exit(1)
	}
}

// NewApp 创建并配置 FX 应用
func NewApp() *fx.App {
	return fx.New(
		// 提供基础模块
		config.Module,
		logger.Module,
		logger.WithFxLogger,
		registry.Module,

		// 注入业务模块（按依赖顺序）
		data.Module,
		biz.Module,
		service.Module,
		server.MiddlewareModule, // 中间件模块需要在服务器模块之前
		server.Module,

		// 传递全局变量
		fx.Supply(serviceName),

		// 配置验证和初始化
		fx.Invoke(
			// 验证配置完整性
			func(conf *confv1.Bootstrap) error {
				return config.ValidateConfig(conf)
			},

			// 初始化 Otel，需在 HTTP 服务之前注册以便最后关闭
			func(lc fx.Lifecycle, conf *confv1.Bootstrap, logger *zap.Logger) error {
				otelShutdown, err := otel.SetupOTelSDK(context.Background(), conf.Trace, serviceName, logger)
				if err != nil {
					return err
				}
				if otelShutdown == nil {
					return nil
				}
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						if err := otelShutdown(ctx); err != nil {
							logger.Error("Failed to shutdown OTel", zap.Error(err))
						}
						return nil
					},
				})
				return nil
			},

			// 启动 HTTP 服务，生命周期钩子在 server 模块中注册
			func(_ *http.Server) {},

			// 注册应用到注册中心（在 HTTP 服务启动之后）
			func(_ *registry.ConsulRegistry) {},
		),
	)
}
