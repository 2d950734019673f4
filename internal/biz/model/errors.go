package model

import "errors"

// ErrorKind 错误分类，决定传输层返回的状态码
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindConflict
	KindAuth
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error 业务错误。Code 相同即视为同一错误，Reason 仅用于细分提示信息。
type Error struct {
	Kind   ErrorKind
	Code   string
	Reason string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Code + ": " + e.Reason
	}
	return e.Code
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithReason 返回带细分原因的副本
func (e *Error) WithReason(reason string) *Error {
	c := *e
	c.Reason = reason
	return &c
}

// MessageKey 本地化消息的 key
func (e *Error) MessageKey() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Code
}

func newError(kind ErrorKind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

var (
	ErrInvalidNicknameFormat = newError(KindValidation, "INVALID_NICKNAME_FORMAT")
	ErrUnsupportedProvider   = newError(KindValidation, "UNSUPPORTED_PROVIDER")
	ErrBadRequest            = newError(KindValidation, "BAD_REQUEST")

	ErrNicknameTaken = newError(KindConflict, "NICKNAME_TAKEN")
	ErrUsernameTaken = newError(KindConflict, "USERNAME_TAKEN")

	ErrExpiredOrInvalidToken = newError(KindAuth, "EXPIRED_OR_INVALID_TOKEN")
	ErrNoActiveSession       = newError(KindAuth, "NO_ACTIVE_SESSION")
	ErrStaleRefreshToken     = newError(KindAuth, "STALE_REFRESH_TOKEN")
	ErrUnknownUser           = newError(KindAuth, "UNKNOWN_USER")
	ErrPermissionDenied      = newError(KindAuth, "PERMISSION_DENIED")

	ErrProviderExchangeFailed = newError(KindUpstream, "PROVIDER_EXCHANGE_FAILED")
	ErrHandshakeExpired       = newError(KindUpstream, "HANDSHAKE_EXPIRED")
)

// AsError 提取业务错误
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
