package model

import "context"

// TokenKind 区分 access / refresh token，两者使用不同的签名密钥
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenPair access token 与 refresh token
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenUseCase 负责签发、校验、续期 token
type TokenUseCase interface {
	Mint(ctx context.Context, username string) (*TokenPair, error)
	Validate(kind TokenKind, token, username string) bool
	Reissue(ctx context.Context, refreshToken, username string) (*TokenPair, error)
	Revoke(ctx context.Context, username string) error
	// VerifyAccess 校验 access token 并返回其 subject
	VerifyAccess(token string) (string, error)
}
