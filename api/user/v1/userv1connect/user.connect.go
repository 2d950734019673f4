// Package userv1connect user.v1.UserService 的 Connect handler 与 client。
package userv1connect

import (
	"context"
	"net/http"
	"strings"

	v1 "keum-identity/api/user/v1"
	"keum-identity/internal/pkg/codec"

	"connectrpc.com/connect"
)

const UserServiceName = "user.v1.UserService"

const (
	UserServiceCheckNicknameProcedure  = "/user.v1.UserService/CheckNickname"
	UserServiceUpdateNicknameProcedure = "/user.v1.UserService/UpdateNickname"
	UserServiceWithdrawProcedure       = "/user.v1.UserService/Withdraw"
)

type UserServiceHandler interface {
	CheckNickname(context.Context, *connect.Request[v1.CheckNicknameRequest]) (*connect.Response[v1.CheckNicknameResponse], error)
	UpdateNickname(context.Context, *connect.Request[v1.UpdateNicknameRequest]) (*connect.Response[v1.UserResponse], error)
	Withdraw(context.Context, *connect.Request[v1.WithdrawRequest]) (*connect.Response[v1.UserResponse], error)
}

func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{codec.HandlerOption()}, opts...)

	checkNickname := connect.NewUnaryHandler(UserServiceCheckNicknameProcedure, svc.CheckNickname,
		append(opts, connect.WithIdempotency(connect.IdempotencyNoSideEffects))...)
	updateNickname := connect.NewUnaryHandler(UserServiceUpdateNicknameProcedure, svc.UpdateNickname, opts...)
	withdraw := connect.NewUnaryHandler(UserServiceWithdrawProcedure, svc.Withdraw, opts...)

	return "/" + UserServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case UserServiceCheckNicknameProcedure:
			checkNickname.ServeHTTP(w, r)
		case UserServiceUpdateNicknameProcedure:
			updateNickname.ServeHTTP(w, r)
		case UserServiceWithdrawProcedure:
			withdraw.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type UserServiceClient interface {
	CheckNickname(context.Context, *connect.Request[v1.CheckNicknameRequest]) (*connect.Response[v1.CheckNicknameResponse], error)
	UpdateNickname(context.Context, *connect.Request[v1.UpdateNicknameRequest]) (*connect.Response[v1.UserResponse], error)
	Withdraw(context.Context, *connect.Request[v1.WithdrawRequest]) (*connect.Response[v1.UserResponse], error)
}

type userServiceClient struct {
	checkNickname  *connect.Client[v1.CheckNicknameRequest, v1.CheckNicknameResponse]
	updateNickname *connect.Client[v1.UpdateNicknameRequest, v1.UserResponse]
	withdraw       *connect.Client[v1.WithdrawRequest, v1.UserResponse]
}

func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{codec.ClientOption()}, opts...)
	return &userServiceClient{
		checkNickname:  connect.NewClient[v1.CheckNicknameRequest, v1.CheckNicknameResponse](httpClient, baseURL+UserServiceCheckNicknameProcedure, opts...),
		updateNickname: connect.NewClient[v1.UpdateNicknameRequest, v1.UserResponse](httpClient, baseURL+UserServiceUpdateNicknameProcedure, opts...),
		withdraw:       connect.NewClient[v1.WithdrawRequest, v1.UserResponse](httpClient, baseURL+UserServiceWithdrawProcedure, opts...),
	}
}

func (c *userServiceClient) CheckNickname(ctx context.Context, req *connect.Request[v1.CheckNicknameRequest]) (*connect.Response[v1.CheckNicknameResponse], error) {
	return c.checkNickname.CallUnary(ctx, req)
}

func (c *userServiceClient) UpdateNickname(ctx context.Context, req *connect.Request[v1.UpdateNicknameRequest]) (*connect.Response[v1.UserResponse], error) {
	return c.updateNickname.CallUnary(ctx, req)
}

func (c *userServiceClient) Withdraw(ctx context.Context, req *connect.Request[v1.WithdrawRequest]) (*connect.Response[v1.UserResponse], error) {
	return c.withdraw.CallUnary(ctx, req)
}
