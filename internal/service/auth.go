package service

import (
	"context"

	v1 "keum-identity/api/auth/v1"
	"keum-identity/api/auth/v1/authv1connect"
	"keum-identity/internal/biz/model"
	"keum-identity/internal/pkg/i18n"

	"connectrpc.com/connect"
	"go.uber.org/zap"
)

// AuthService OAuth 回调、注册、登录与 token 续期
type AuthService struct {
	oauth  model.OAuthUseCase
	tokens model.TokenUseCase
	logger *zap.Logger
}

// 显式接口检查
var _ authv1connect.AuthServiceHandler = (*AuthService)(nil)

func NewAuthService(oauth model.OAuthUseCase, tokens model.TokenUseCase, logger *zap.Logger) authv1connect.AuthServiceHandler {
	return &AuthService{
		oauth:  oauth,
		tokens: tokens,
		logger: logger,
	}
}

func (s *AuthService) OAuthCallback(ctx context.Context, req *connect.Request[v1.OAuthCallbackRequest]) (*connect.Response[v1.OAuthCallbackResponse], error) {
	provider, err := model.ParseProvider(req.Msg.Provider)
	if err != nil {
		return nil, toConnectError(s.logger, req.Header(), err)
	}

	result, err := s.oauth.Callback(ctx, provider, req.Msg.Code)
	if err != nil {
		return nil, toConnectError(s.logger, req.Header(), err)
	}

	key := i18n.KeyHandshakeSignIn
	if result.State == model.LoginStateSignUp {
		key = i18n.KeyHandshakeSignUp
	}
	return connect.NewResponse(&v1.OAuthCallbackResponse{
		Username: result.Username,
		Provider: string(result.Provider),
		Login:    string(result.State),
		Message:  message(req.Header(), key),
	}), nil
}

func (s *AuthService) Join(ctx context.Context, req *connect.Request[v1.JoinRequest]) (*connect.Response[v1.TokenResponse], error) {
	provider, err := model.ParseProvider(req.Msg.Provider)
	if err != nil {
		return nil, toConnectError(s.logger, req.Header(), err)
	}

	pair, err := s.oauth.Join(ctx, provider, req.Msg.Username, req.Msg.Nickname)
	if err != nil {
		return nil, toConnectError(s.logger, req.Header(), err)
	}
	return connect.NewResponse(tokenResponse(pair, message(req.Header(), i18n.KeyJoined))), nil
}

func (s *AuthService) Login(ctx context.Context, req *connect.Request[v1.LoginRequest]) (*connect.Response[v1.TokenResponse], error) {
	provider, err := model.ParseProvider(req.Msg.Provider)
	if err != nil {
		return nil, toConnectError(s.logger, req.Header(), err)
	}

	pair, err := s.oauth.Login(ctx, provider, req.Msg.Username)
	if err != nil {
		return nil, toConnectError(s.logger, req.Header(), err)
	}
	return connect.NewResponse(tokenResponse(pair, message(req.Header(), i18n.KeyLoggedIn))), nil
}

// Refresh 过期的 access token 不影响续期，只校验 refresh token
func (s *AuthService) Refresh(ctx context.Context, req *connect.Request[v1.RefreshRequest]) (*connect.Response[v1.TokenResponse], error) {
	if req.Msg.Username == "" || req.Msg.RefreshToken == "" {
		return nil, toConnectError(s.logger, req.Header(), model.ErrExpiredOrInvalidToken)
	}

	pair, err := s.tokens.Reissue(ctx, req.Msg.RefreshToken, req.Msg.Username)
	if err != nil {
		return nil, toConnectError(s.logger, req.Header(), err)
	}
	return connect.NewResponse(tokenResponse(pair, message(req.Header(), i18n.KeyTokenReissued))), nil
}

func tokenResponse(pair *model.TokenPair, msg string) *v1.TokenResponse {
	return &v1.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Message:      msg,
	}
}
