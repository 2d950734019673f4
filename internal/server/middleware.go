package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"keum-identity/api/check/v1/checkv1connect"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const instrumentationName = "keum-identity/server"

// instruments HTTP 与 RPC 两层共用的指标
type instruments struct {
	httpRequests metric.Int64Counter
	httpDuration metric.Float64Histogram
	rpcRequests  metric.Int64Counter
	rpcDuration  metric.Float64Histogram
	rpcFailures  metric.Int64Counter
}

func newInstruments() (*instruments, error) {
	meter := otel.GetMeterProvider().Meter(instrumentationName)
	var (
		ins instruments
		err error
	)

	if ins.httpRequests, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("HTTP 请求总数"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("create http request counter: %w", err)
	}
	if ins.httpDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP 请求耗时"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("create http duration histogram: %w", err)
	}
	if ins.rpcRequests, err = meter.Int64Counter(
		"rpc.server.request.count",
		metric.WithDescription("按 procedure 统计的 RPC 调用次数"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("create rpc request counter: %w", err)
	}
	if ins.rpcDuration, err = meter.Float64Histogram(
		"rpc.server.duration",
		metric.WithDescription("RPC 处理耗时"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("create rpc duration histogram: %w", err)
	}
	if ins.rpcFailures, err = meter.Int64Counter(
		"rpc.server.failure.count",
		metric.WithDescription("按业务错误码统计的失败调用"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, fmt.Errorf("create rpc failure counter: %w", err)
	}
	return &ins, nil
}

// mustInstruments 创建失败时退回 noop，监控不影响请求处理
func mustInstruments(logger *zap.Logger) *instruments {
	ins, err := newInstruments()
	if err == nil {
		return ins
	}
	logger.Error("Failed to initialize metrics", zap.Error(err))
	return &instruments{
		httpRequests: noop.Int64Counter{},
		httpDuration: noop.Float64Histogram{},
		rpcRequests:  noop.Int64Counter{},
		rpcDuration:  noop.Float64Histogram{},
		rpcFailures:  noop.Int64Counter{},
	}
}

func sinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// isHealthCheck Consul 周期性调用 Ready，日志降为 Debug
func isHealthCheck(path string) bool {
	return path == checkv1connect.CheckServiceReadyProcedure
}

// MonitoringMiddleware 记录 HTTP 层的 span、指标与访问日志，包括 CORS 预检等未进入 Connect 的请求
func MonitoringMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	ins := mustInstruments(logger)
	tracer := otel.GetTracerProvider().Tracer(instrumentationName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
			defer span.End()

			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			)

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
				attribute.Int("http.status_code", ww.statusCode),
			)
			ins.httpRequests.Add(ctx, 1, attrs)
			ins.httpDuration.Record(ctx, sinceMillis(start), attrs)
			span.SetAttributes(attribute.Int("http.status_code", ww.statusCode))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.statusCode),
				zap.Duration("duration", time.Since(start)),
			}
			switch {
			case ww.statusCode >= http.StatusInternalServerError:
				span.SetStatus(codes.Error, http.StatusText(ww.statusCode))
				logger.Error("HTTP request failed", fields...)
			case ww.statusCode >= http.StatusBadRequest:
				// 4xx 属于客户端错误，span 不标记为失败
				logger.Warn("HTTP request rejected", append(fields, zap.String("error_code", ww.Header().Get(errorCodeHeader)))...)
			case isHealthCheck(r.URL.Path):
				logger.Debug("Health check", fields...)
			default:
				logger.Info("HTTP request completed", fields...)
			}
		})
	}
}

// splitProcedure "/auth.v1.AuthService/Join" -> ("auth.v1.AuthService", "Join")
func splitProcedure(procedure string) (string, string) {
	service, method, ok := strings.Cut(strings.TrimPrefix(procedure, "/"), "/")
	if !ok {
		return procedure, ""
	}
	return service, method
}

// ConnectMonitoringInterceptor 按 procedure 与业务错误码记录 RPC 指标
func ConnectMonitoringInterceptor(logger *zap.Logger) connect.UnaryInterceptorFunc {
	ins := mustInstruments(logger)
	tracer := otel.GetTracerProvider().Tracer(instrumentationName)

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			service, method := splitProcedure(procedure)

			ctx, span := tracer.Start(ctx, procedure)
			defer span.End()
			span.SetAttributes(
				attribute.String("rpc.system", "connect"),
				attribute.String("rpc.service", service),
				attribute.String("rpc.method", method),
				attribute.String("net.peer.addr", req.Peer().Addr),
			)

			resp, err := next(ctx, req)

			attrs := []attribute.KeyValue{
				attribute.String("rpc.service", service),
				attribute.String("rpc.method", method),
			}
			code := "OK"
			var ce *connect.Error
			if errors.As(err, &ce) {
				code = ce.Code().String()
				attrs = append(attrs, attribute.String("error.code", ce.Meta().Get(errorCodeHeader)))
			} else if err != nil {
				code = connect.CodeUnknown.String()
			}
			attrs = append(attrs, attribute.String("rpc.connect.code", code))

			ins.rpcRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
			ins.rpcDuration.Record(ctx, sinceMillis(start), metric.WithAttributes(attrs...))

			if err == nil {
				span.SetStatus(codes.Ok, "")
				return resp, nil
			}

			ins.rpcFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
			span.RecordError(err)
			span.SetStatus(codes.Error, code)
			fields := []zap.Field{
				zap.String("procedure", procedure),
				zap.String("code", code),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			}
			if ce != nil && ce.Code() == connect.CodeInternal {
				logger.Error("RPC failed", fields...)
			} else {
				logger.Warn("RPC rejected", fields...)
			}
			return resp, err
		}
	}
}

// responseWriter 记录实际写出的状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Flush 透传给底层 writer
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MiddlewareModule 提供 HTTP 中间件与 Connect 监控拦截器
var MiddlewareModule = fx.Module("server.middleware",
	fx.Provide(
		func(logger *zap.Logger) func(http.Handler) http.Handler {
			return MonitoringMiddleware(logger)
		},
		ConnectMonitoringInterceptor,
	),
)
