package service

import (
	"context"

	v1 "keum-identity/api/user/v1"
	"keum-identity/api/user/v1/userv1connect"
	"keum-identity/internal/biz/model"
	"keum-identity/internal/pkg/authctx"
	"keum-identity/internal/pkg/i18n"

	"connectrpc.com/connect"
	"go.uber.org/zap"
)

// UserService 昵称与注销
type UserService struct {
	users  model.UserUseCase
	logger *zap.Logger
}

// 显式接口检查
var _ userv1connect.UserServiceHandler = (*UserService)(nil)

func NewUserService(users model.UserUseCase, logger *zap.Logger) userv1connect.UserServiceHandler {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

func (s *UserService) CheckNickname(ctx context.Context, req *connect.Request[v1.CheckNicknameRequest]) (*connect.Response[v1.CheckNicknameResponse], error) {
	nickname, err := s.users.CheckNicknameAvailable(ctx, req.Msg.Nickname)
	if err != nil {
		return nil, toConnectError(s.logger, req.Header(), err)
	}
	return connect.NewResponse(&v1.CheckNicknameResponse{
		Nickname: nickname,
		Message:  message(req.Header(), i18n.KeyNicknameChecked),
	}), nil
}

// UpdateNickname 调用者身份由认证拦截器写入 context
func (s *UserService) UpdateNickname(ctx context.Context, req *connect.Request[v1.UpdateNicknameRequest]) (*connect.Response[v1.UserResponse], error) {
	caller, ok := authctx.FromContext(ctx)
	if !ok {
		return nil, toConnectError(s.logger, req.Header(), model.ErrExpiredOrInvalidToken)
	}

	view, err := s.users.UpdateNickname(ctx, caller.Username, caller.AccessToken, req.Msg.Nickname)
	if err != nil {
		return nil, toConnectError(s.logger, req.Header(), err)
	}
	return connect.NewResponse(&v1.UserResponse{
		User:    toUser(view),
		Message: message(req.Header(), i18n.KeyNicknameUpdated),
	}), nil
}

// Withdraw 只能注销调用者自己的账号
func (s *UserService) Withdraw(ctx context.Context, req *connect.Request[v1.WithdrawRequest]) (*connect.Response[v1.UserResponse], error) {
	caller, ok := authctx.FromContext(ctx)
	if !ok {
		return nil, toConnectError(s.logger, req.Header(), model.ErrExpiredOrInvalidToken)
	}
	if req.Msg.Username != caller.Username {
		s.logger.Warn("Withdraw requested for another user",
			zap.String("caller", caller.Username),
			zap.String("username", req.Msg.Username),
		)
		return nil, toConnectError(s.logger, req.Header(), model.ErrPermissionDenied)
	}

	view, err := s.users.Withdraw(ctx, caller.Username)
	if err != nil {
		return nil, toConnectError(s.logger, req.Header(), err)
	}
	return connect.NewResponse(&v1.UserResponse{
		User:    toUser(view),
		Message: message(req.Header(), i18n.KeyWithdrawn),
	}), nil
}

func toUser(view *model.UserView) *v1.User {
	return &v1.User{
		Username:    view.Username,
		Nickname:    view.Nickname,
		Provider:    string(view.Provider),
		Active:      view.Active,
		AccessToken: view.AccessToken,
	}
}
