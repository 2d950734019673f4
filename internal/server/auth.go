package server

import (
	"context"
	"strings"

	"keum-identity/api/user/v1/userv1connect"
	"keum-identity/internal/biz/model"
	"keum-identity/internal/pkg/authctx"
	"keum-identity/internal/pkg/i18n"

	"connectrpc.com/connect"
	"go.uber.org/zap"
)

// protectedProcedures 需要 Bearer access token 的接口
var protectedProcedures = map[string]struct{}{
	userv1connect.UserServiceUpdateNicknameProcedure: {},
	userv1connect.UserServiceWithdrawProcedure:       {},
}

// AuthInterceptor 校验 access token，并把调用者写入 context
type AuthInterceptor struct {
	tokens model.TokenUseCase
	logger *zap.Logger
}

var _ connect.Interceptor = (*AuthInterceptor)(nil)

func NewAuthInterceptor(tokens model.TokenUseCase, logger *zap.Logger) *AuthInterceptor {
	return &AuthInterceptor{
		tokens: tokens,
		logger: logger,
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (a *AuthInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if _, ok := protectedProcedures[req.Spec().Procedure]; !ok || req.Spec().IsClient {
			return next(ctx, req)
		}

		token, ok := bearerToken(req.Header().Get("Authorization"))
		if !ok {
			return nil, localizedError(connect.CodeUnauthenticated, req.Header(), i18n.KeyUnauthenticated)
		}
		username, err := a.tokens.VerifyAccess(token)
		if err != nil {
			a.logger.Info("Access token rejected",
				zap.String("procedure", req.Spec().Procedure),
				zap.Error(err),
			)
			return nil, localizedError(connect.CodeUnauthenticated, req.Header(), i18n.KeyUnauthenticated)
		}

		ctx = authctx.WithCaller(ctx, authctx.Caller{Username: username, AccessToken: token})
		return next(ctx, req)
	}
}

func (a *AuthInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (a *AuthInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
