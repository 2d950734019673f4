// Package checkv1connect check.v1.CheckService 的 Connect handler 与 client。
package checkv1connect

import (
	"context"
	"net/http"
	"strings"

	v1 "keum-identity/api/check/v1"
	"keum-identity/internal/pkg/codec"

	"connectrpc.com/connect"
)

const CheckServiceName = "check.v1.CheckService"

const CheckServiceReadyProcedure = "/check.v1.CheckService/Ready"

type CheckServiceHandler interface {
	Ready(context.Context, *connect.Request[v1.ReadyCheckReq]) (*connect.Response[v1.ReadyCheckReply], error)
}

// NewCheckServiceHandler Ready 无副作用，支持 GET（Consul HTTP 健康检查）
func NewCheckServiceHandler(svc CheckServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{codec.HandlerOption()}, opts...)
	ready := connect.NewUnaryHandler(CheckServiceReadyProcedure, svc.Ready,
		append(opts, connect.WithIdempotency(connect.IdempotencyNoSideEffects))...)

	return "/" + CheckServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CheckServiceReadyProcedure:
			ready.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type CheckServiceClient interface {
	Ready(context.Context, *connect.Request[v1.ReadyCheckReq]) (*connect.Response[v1.ReadyCheckReply], error)
}

type checkServiceClient struct {
	ready *connect.Client[v1.ReadyCheckReq, v1.ReadyCheckReply]
}

func NewCheckServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CheckServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{codec.ClientOption()}, opts...)
	return &checkServiceClient{
		ready: connect.NewClient[v1.ReadyCheckReq, v1.ReadyCheckReply](httpClient, baseURL+CheckServiceReadyProcedure,
			append(opts, connect.WithIdempotency(connect.IdempotencyNoSideEffects))...),
	}
}

func (c *checkServiceClient) Ready(ctx context.Context, req *connect.Request[v1.ReadyCheckReq]) (*connect.Response[v1.ReadyCheckReply], error) {
	return c.ready.CallUnary(ctx, req)
}
