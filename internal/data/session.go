package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"keum-identity/internal/biz/model"

	"go.uber.org/zap"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	handshakeKeyPrefix    = "oauth_handshake:"
)

// SessionRepo 保存每个用户唯一有效的 refresh token 以及 OAuth 握手信息
type SessionRepo interface {
	SaveRefreshToken(ctx context.Context, username, token string, ttl time.Duration) error
	// GetRefreshToken 不存在时返回 ErrKeyNotFound
	GetRefreshToken(ctx context.Context, username string) (string, error)
	DeleteRefreshToken(ctx context.Context, username string) error
	StageHandshake(ctx context.Context, username string, h *model.Handshake, ttl time.Duration) error
	// GetHandshake 只读取不删除，不存在时返回 ErrKeyNotFound
	GetHandshake(ctx context.Context, username string) (*model.Handshake, error)
	DeleteHandshake(ctx context.Context, username string) error
}

type sessionRepo struct {
	store EphemeralStore
	l     *zap.Logger
}

func NewSessionRepo(store EphemeralStore, logger *zap.Logger) SessionRepo {
	return &sessionRepo{
		store: store,
		l:     logger,
	}
}

func refreshTokenKey(username string) string {
	return refreshTokenKeyPrefix + username
}

func handshakeKey(username string) string {
	return handshakeKeyPrefix + username
}

func (r *sessionRepo) SaveRefreshToken(ctx context.Context, username, token string, ttl time.Duration) error {
	return r.store.SetWithTTL(ctx, refreshTokenKey(username), token, ttl)
}

func (r *sessionRepo) GetRefreshToken(ctx context.Context, username string) (string, error) {
	return r.store.Get(ctx, refreshTokenKey(username))
}

func (r *sessionRepo) DeleteRefreshToken(ctx context.Context, username string) error {
	return r.store.Delete(ctx, refreshTokenKey(username))
}

func (r *sessionRepo) StageHandshake(ctx context.Context, username string, h *model.Handshake, ttl time.Duration) error {
	b, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal handshake: %w", err)
	}
	return r.store.SetWithTTL(ctx, handshakeKey(username), string(b), ttl)
}

func (r *sessionRepo) GetHandshake(ctx context.Context, username string) (*model.Handshake, error) {
	v, err := r.store.Get(ctx, handshakeKey(username))
	if err != nil {
		return nil, err
	}

	var h model.Handshake
	if err := json.Unmarshal([]byte(v), &h); err != nil {
		return nil, fmt.Errorf("unmarshal handshake: %w", err)
	}
	if h.Surrogate == "" {
		return nil, errors.Join(ErrKeyNotFound, errors.New("empty handshake surrogate"))
	}
	return &h, nil
}

func (r *sessionRepo) DeleteHandshake(ctx context.Context, username string) error {
	return r.store.Delete(ctx, handshakeKey(username))
}
