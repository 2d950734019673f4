// Package authv1connect auth.v1.AuthService 的 Connect handler 与 client。
package authv1connect

import (
	"context"
	"net/http"
	"strings"

	v1 "keum-identity/api/auth/v1"
	"keum-identity/internal/pkg/codec"

	"connectrpc.com/connect"
)

const AuthServiceName = "auth.v1.AuthService"

const (
	AuthServiceOAuthCallbackProcedure = "/auth.v1.AuthService/OAuthCallback"
	AuthServiceJoinProcedure          = "/auth.v1.AuthService/Join"
	AuthServiceLoginProcedure         = "/auth.v1.AuthService/Login"
	AuthServiceRefreshProcedure       = "/auth.v1.AuthService/Refresh"
)

type AuthServiceHandler interface {
	OAuthCallback(context.Context, *connect.Request[v1.OAuthCallbackRequest]) (*connect.Response[v1.OAuthCallbackResponse], error)
	Join(context.Context, *connect.Request[v1.JoinRequest]) (*connect.Response[v1.TokenResponse], error)
	Login(context.Context, *connect.Request[v1.LoginRequest]) (*connect.Response[v1.TokenResponse], error)
	Refresh(context.Context, *connect.Request[v1.RefreshRequest]) (*connect.Response[v1.TokenResponse], error)
}

// NewAuthServiceHandler 返回挂载路径与 handler
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{codec.HandlerOption()}, opts...)

	oauthCallback := connect.NewUnaryHandler(AuthServiceOAuthCallbackProcedure, svc.OAuthCallback, opts...)
	join := connect.NewUnaryHandler(AuthServiceJoinProcedure, svc.Join, opts...)
	login := connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...)
	refresh := connect.NewUnaryHandler(AuthServiceRefreshProcedure, svc.Refresh, opts...)

	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceOAuthCallbackProcedure:
			oauthCallback.ServeHTTP(w, r)
		case AuthServiceJoinProcedure:
			join.ServeHTTP(w, r)
		case AuthServiceLoginProcedure:
			login.ServeHTTP(w, r)
		case AuthServiceRefreshProcedure:
			refresh.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type AuthServiceClient interface {
	OAuthCallback(context.Context, *connect.Request[v1.OAuthCallbackRequest]) (*connect.Response[v1.OAuthCallbackResponse], error)
	Join(context.Context, *connect.Request[v1.JoinRequest]) (*connect.Response[v1.TokenResponse], error)
	Login(context.Context, *connect.Request[v1.LoginRequest]) (*connect.Response[v1.TokenResponse], error)
	Refresh(context.Context, *connect.Request[v1.RefreshRequest]) (*connect.Response[v1.TokenResponse], error)
}

type authServiceClient struct {
	oauthCallback *connect.Client[v1.OAuthCallbackRequest, v1.OAuthCallbackResponse]
	join          *connect.Client[v1.JoinRequest, v1.TokenResponse]
	login         *connect.Client[v1.LoginRequest, v1.TokenResponse]
	refresh       *connect.Client[v1.RefreshRequest, v1.TokenResponse]
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{codec.ClientOption()}, opts...)
	return &authServiceClient{
		oauthCallback: connect.NewClient[v1.OAuthCallbackRequest, v1.OAuthCallbackResponse](httpClient, baseURL+AuthServiceOAuthCallbackProcedure, opts...),
		join:          connect.NewClient[v1.JoinRequest, v1.TokenResponse](httpClient, baseURL+AuthServiceJoinProcedure, opts...),
		login:         connect.NewClient[v1.LoginRequest, v1.TokenResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		refresh:       connect.NewClient[v1.RefreshRequest, v1.TokenResponse](httpClient, baseURL+AuthServiceRefreshProcedure, opts...),
	}
}

func (c *authServiceClient) OAuthCallback(ctx context.Context, req *connect.Request[v1.OAuthCallbackRequest]) (*connect.Response[v1.OAuthCallbackResponse], error) {
	return c.oauthCallback.CallUnary(ctx, req)
}

func (c *authServiceClient) Join(ctx context.Context, req *connect.Request[v1.JoinRequest]) (*connect.Response[v1.TokenResponse], error) {
	return c.join.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[v1.LoginRequest]) (*connect.Response[v1.TokenResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) Refresh(ctx context.Context, req *connect.Request[v1.RefreshRequest]) (*connect.Response[v1.TokenResponse], error) {
	return c.refresh.CallUnary(ctx, req)
}
