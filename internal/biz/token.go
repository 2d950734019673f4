package biz

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"keum-identity/internal/biz/model"
	conf "keum-identity/internal/conf/v1"
	"keum-identity/internal/data"
	"keum-identity/internal/pkg/otel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenClaims access / refresh token 的载荷，typ 区分两种 token
type TokenClaims struct {
	TokenType model.TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// TokenAuthority 签发、校验、续期 token。
// 每个用户在 SessionRepo 中只保存一个 refresh token，续期时逐字节比对。
type TokenAuthority struct {
	sessions      data.SessionRepo
	users         data.UserRepo
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
	logger        *zap.Logger
	metrics       *metrics
	auditor       *otel.Auditor
}

func NewTokenAuthority(sessions data.SessionRepo, users data.UserRepo, cfg *conf.Bootstrap, logger *zap.Logger) (model.TokenUseCase, error) {
	return newTokenAuthority(sessions, users, cfg.Auth, logger)
}

func newTokenAuthority(sessions data.SessionRepo, users data.UserRepo, cfg *conf.Auth, logger *zap.Logger) (*TokenAuthority, error) {
	if cfg == nil {
		cfg = &conf.Auth{}
	}
	accessSecret, err := secretOrRandom(cfg.AccessSecret, "auth.access_secret", logger)
	if err != nil {
		return nil, err
	}
	refreshSecret, err := secretOrRandom(cfg.RefreshSecret, "auth.refresh_secret", logger)
	if err != nil {
		return nil, err
	}

	accessTTL := time.Duration(cfg.AccessExpireSeconds) * time.Second
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	refreshTTL := time.Duration(cfg.RefreshExpireSeconds) * time.Second
	if refreshTTL <= 0 {
		refreshTTL = 14 * 24 * time.Hour
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "keum-identity"
	}

	return &TokenAuthority{
		sessions:      sessions,
		users:         users,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
		now:           time.Now,
		logger:        logger,
		metrics:       newMetrics(logger),
		auditor:       otel.NewAuditor(instrumentationName),
	}, nil
}

func secretOrRandom(secret, name string, logger *zap.Logger) ([]byte, error) {
	if secret != "" {
		return []byte(secret), nil
	}
	// 生成默认密钥，重启后已签发的 token 全部失效
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate %s failed: %w", name, err)
	}
	logger.Warn("Using auto-generated JWT secret, set it in config for production", zap.String("key", name))
	return b, nil
}

func (a *TokenAuthority) secret(kind model.TokenKind) []byte {
	if kind == model.TokenKindRefresh {
		return a.refreshSecret
	}
	return a.accessSecret
}

func (a *TokenAuthority) sign(kind model.TokenKind, username string, now time.Time, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    a.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret(kind))
}

func (a *TokenAuthority) parse(kind model.TokenKind, token string) (*TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.issuer),
		jwt.WithTimeFunc(a.now),
	)

	claims := &TokenClaims{}
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret(kind), nil
	}); err != nil {
		return nil, err
	}
	if claims.TokenType != kind {
		return nil, fmt.Errorf("unexpected token type %q", claims.TokenType)
	}
	return claims, nil
}

// Mint 签发新的 token 对，并覆盖该用户已保存的 refresh token
func (a *TokenAuthority) Mint(ctx context.Context, username string) (*model.TokenPair, error) {
	now := a.now()
	access, err := a.sign(model.TokenKindAccess, username, now, a.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := a.sign(model.TokenKindRefresh, username, now, a.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := a.sessions.SaveRefreshToken(ctx, username, refresh, a.refreshTTL); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}
	a.metrics.tokensMinted.Add(ctx, 1)

	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Validate 签名、有效期、类型与 subject 任一不符即返回 false
func (a *TokenAuthority) Validate(kind model.TokenKind, token, username string) bool {
	claims, err := a.parse(kind, token)
	if err != nil {
		return false
	}
	return claims.Subject == username
}

// Reissue 依次检查：token 本身有效、存在活跃会话、与保存的 refresh token 一致、用户仍处于活跃状态
func (a *TokenAuthority) Reissue(ctx context.Context, refreshToken, username string) (*model.TokenPair, error) {
	if !a.Validate(model.TokenKindRefresh, refreshToken, username) {
		return nil, a.reject(ctx, username, model.ErrExpiredOrInvalidToken)
	}

	stored, err := a.sessions.GetRefreshToken(ctx, username)
	if errors.Is(err, data.ErrKeyNotFound) {
		return nil, a.reject(ctx, username, model.ErrNoActiveSession)
	}
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}

	if !constantTimeCompare(stored, refreshToken) {
		return nil, a.reject(ctx, username, model.ErrStaleRefreshToken)
	}

	// 与注销并发时可能残留 refresh token，已注销的用户在这里清除
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, data.ErrUserNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err != nil || !user.Active {
		if err := a.sessions.DeleteRefreshToken(ctx, username); err != nil {
			a.logger.Warn("Failed to delete refresh token of inactive user", zap.String("username", username), zap.Error(err))
		}
		return nil, a.reject(ctx, username, model.ErrNoActiveSession)
	}

	// 并发续期时后写入者生效，先返回的 token 对随即失效
	return a.Mint(ctx, username)
}

func (a *TokenAuthority) reject(ctx context.Context, username string, err *model.Error) error {
	a.metrics.reissueRejected.Add(ctx, 1, reasonAttr(err.Code))
	a.auditor.Emit(ctx, otel.EventReissueRejected, username, otel.Reason(err.Code))
	a.logger.Info("Refresh token rejected", zap.String("username", username), zap.String("reason", err.Code))
	return err
}

// Revoke 删除该用户保存的 refresh token
func (a *TokenAuthority) Revoke(ctx context.Context, username string) error {
	if err := a.sessions.DeleteRefreshToken(ctx, username); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	a.auditor.Emit(ctx, otel.EventSessionRevoked, username)
	return nil
}

func (a *TokenAuthority) VerifyAccess(token string) (string, error) {
	claims, err := a.parse(model.TokenKindAccess, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrExpiredOrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", model.ErrExpiredOrInvalidToken
	}
	return claims.Subject, nil
}

func constantTimeCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	result := 0
	for i := 0; i < len(a); i++ {
		result |= int(a[i]) ^ int(b[i])
	}
	return result == 0
}
