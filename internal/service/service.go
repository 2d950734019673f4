package service

import (
	"errors"
	"net/http"

	"keum-identity/internal/biz/model"
	"keum-identity/internal/pkg/i18n"

	"connectrpc.com/connect"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// ErrorCodeHeader 业务错误码所在的响应头
const ErrorCodeHeader = "X-Error-Code"

var Module = fx.Module("service",
	fx.Provide(
		NewAuthService,
		NewUserService,
		NewCheckService,
	),
)

// 续期相关的失败统一返回同一个错误码，不暴露具体原因
var refreshFailures = []error{
	model.ErrExpiredOrInvalidToken,
	model.ErrNoActiveSession,
	model.ErrStaleRefreshToken,
}

func languageOf(h http.Header) language.Tag {
	return i18n.ResolveAcceptLanguage(h.Get("Accept-Language"))
}

func connectCode(err *model.Error) connect.Code {
	if errors.Is(err, model.ErrPermissionDenied) {
		return connect.CodePermissionDenied
	}
	switch err.Kind {
	case model.KindValidation:
		return connect.CodeInvalidArgument
	case model.KindConflict:
		return connect.CodeAlreadyExists
	case model.KindAuth:
		return connect.CodeUnauthenticated
	case model.KindUpstream:
		return connect.CodeFailedPrecondition
	default:
		return connect.CodeInternal
	}
}

// publicCode 返回对外错误码与消息 key
func publicCode(err *model.Error) (code, key string) {
	for _, target := range refreshFailures {
		if errors.Is(err, target) {
			return i18n.KeyAuthFailed, i18n.KeyAuthFailed
		}
	}
	return err.Code, err.MessageKey()
}

// toConnectError 业务错误转换为带本地化消息的 Connect 错误，其余错误统一为 Internal
func toConnectError(logger *zap.Logger, h http.Header, err error) error {
	lang := languageOf(h)

	if e, ok := model.AsError(err); ok {
		code, key := publicCode(e)
		ce := connect.NewError(connectCode(e), errors.New(i18n.Sprint(lang, key)))
		ce.Meta().Set(ErrorCodeHeader, code)
		return ce
	}

	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}

	logger.Error("Unexpected error", zap.Error(err))
	ce = connect.NewError(connect.CodeInternal, errors.New(i18n.Sprint(lang, i18n.KeyInternal)))
	ce.Meta().Set(ErrorCodeHeader, i18n.KeyInternal)
	return ce
}

func message(h http.Header, key string) string {
	return i18n.Sprint(languageOf(h), key)
}
