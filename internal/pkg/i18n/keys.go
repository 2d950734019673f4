package i18n

// 消息 key，与错误码一一对应
const (
	KeyInvalidNicknameFormat = "INVALID_NICKNAME_FORMAT"
	KeyNicknameEmpty         = "NICKNAME_EMPTY"
	KeyNicknameTooLong       = "NICKNAME_TOO_LONG"
	KeyNicknameTaken         = "NICKNAME_TAKEN"
	KeyUsernameTaken         = "USERNAME_TAKEN"
	KeyAuthFailed            = "AUTH_FAILED"
	KeyUnknownUser           = "UNKNOWN_USER"
	KeyPermissionDenied      = "PERMISSION_DENIED"
	KeyProviderExchange      = "PROVIDER_EXCHANGE_FAILED"
	KeyHandshakeExpired      = "HANDSHAKE_EXPIRED"
	KeyUnsupportedProvider   = "UNSUPPORTED_PROVIDER"
	KeyBadRequest            = "BAD_REQUEST"
	KeyRateLimited           = "RATE_LIMITED"
	KeyInternal              = "INTERNAL"
	KeyUnauthenticated       = "UNAUTHENTICATED"

	KeyNicknameChecked = "NICKNAME_CHECKED"
	KeyNicknameUpdated = "NICKNAME_UPDATED"
	KeyTokenReissued   = "TOKEN_REISSUED"
	KeyWithdrawn       = "WITHDRAWN"
	KeyJoined          = "JOINED"
	KeyLoggedIn        = "LOGGED_IN"
	KeyHandshakeSignUp = "HANDSHAKE_SIGN_UP"
	KeyHandshakeSignIn = "HANDSHAKE_SIGN_IN"
)
