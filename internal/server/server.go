package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"keum-identity/api/auth/v1/authv1connect"
	"keum-identity/api/check/v1/checkv1connect"
	"keum-identity/api/user/v1/userv1connect"
	conf "keum-identity/internal/conf/v1"

	"connectrpc.com/connect"
	connectcors "connectrpc.com/cors"
	"connectrpc.com/otelconnect"
	"github.com/rs/cors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var Module = fx.Module("server",
	fx.Provide(
		NewAuthInterceptor,
		NewRateLimiter,
		NewHandler,
		NewHTTPServer,
	),
)

func seconds(v int32, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

// NewHandler 挂载所有 Connect 服务并加上 CORS 与监控中间件
func NewHandler(
	cfg *conf.Bootstrap,
	authv1Service authv1connect.AuthServiceHandler,
	userv1Service userv1connect.UserServiceHandler,
	checkv1Service checkv1connect.CheckServiceHandler,
	logger *zap.Logger,
	monitoringMiddleware func(http.Handler) http.Handler,
	connectInterceptor connect.UnaryInterceptorFunc,
	authInterceptor *AuthInterceptor,
	rateLimiter *RateLimiter,
) (http.Handler, error) {
	// 1. 创建 OTel Connect 拦截器实例
	otelInterceptor, err := otelconnect.NewInterceptor(
		otelconnect.WithoutServerPeerAttributes(),
	)
	if err != nil {
		return nil, err
	}

	// 2. 拦截器顺序：trace -> 监控 -> 限流 -> 认证
	interceptors := connect.WithInterceptors(otelInterceptor, connectInterceptor, rateLimiter, authInterceptor)

	// 3. 将拦截器传递给 Service Handler
	authv1connectPath, authv1connectHandler := authv1connect.NewAuthServiceHandler(
		authv1Service,
		interceptors,
	)
	userv1connectPath, userv1connectHandler := userv1connect.NewUserServiceHandler(
		userv1Service,
		interceptors,
	)
	checkv1connectPath, checkv1connectHandler := checkv1connect.NewCheckServiceHandler(
		checkv1Service,
		interceptors,
	)

	mux := http.NewServeMux()
	mux.Handle(authv1connectPath, authv1connectHandler)
	mux.Handle(userv1connectPath, userv1connectHandler)
	mux.Handle(checkv1connectPath, checkv1connectHandler)

	origins := []string{"*"}
	if cfg.Server != nil && cfg.Server.Http != nil && len(cfg.Server.Http.CorsOrigins) > 0 {
		origins = cfg.Server.Http.CorsOrigins
	}

	// CORS 配置
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   connectcors.AllowedMethods(),
		AllowedHeaders:   append(connectcors.AllowedHeaders(), "Authorization", "Accept-Language"),
		ExposedHeaders:   append(connectcors.ExposedHeaders(), errorCodeHeader, "Retry-After"),
		MaxAge:           7200,
		AllowCredentials: false,
	})

	logger.Debug("Connect services mounted",
		zap.Strings("paths", []string{authv1connectPath, userv1connectPath, checkv1connectPath}),
	)

	// 处理器链：监控中间件 -> CORS -> mux
	return monitoringMiddleware(corsHandler.Handler(mux)), nil
}

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *conf.Bootstrap,
	handler http.Handler,
	logger *zap.Logger,
) *http.Server {
	httpCfg := cfg.Server.Http

	server := &http.Server{
		Addr:         httpCfg.Addr,
		Handler:      h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout:  seconds(httpCfg.ReadTimeout, 10*time.Second),
		WriteTimeout: seconds(httpCfg.WriteTimeout, 10*time.Second),
		IdleTimeout:  seconds(httpCfg.IdleTimeout, 30*time.Second),
	}

	// 注册生命周期钩子
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// 先监听，端口占用等错误在启动阶段返回
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}
			logger.Info("HTTP server starting", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("HTTP server shutting down...")
			return server.Shutdown(ctx)
		},
	})

	return server
}
