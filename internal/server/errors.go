package server

import (
	"errors"
	"net/http"

	"keum-identity/internal/pkg/i18n"

	"connectrpc.com/connect"
)

// errorCodeHeader 与 service 层一致
const errorCodeHeader = "X-Error-Code"

// localizedError 拦截器直接返回的错误，消息按 Accept-Language 本地化
func localizedError(code connect.Code, h http.Header, key string) *connect.Error {
	lang := i18n.ResolveAcceptLanguage(h.Get("Accept-Language"))
	ce := connect.NewError(code, errors.New(i18n.Sprint(lang, key)))
	ce.Meta().Set(errorCodeHeader, key)
	return ce
}
