package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"keum-identity/internal/biz/model"
	conf "keum-identity/internal/conf/v1"
	"keum-identity/internal/data"
	"keum-identity/internal/pkg/otel"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const defaultHandshakeTTL = 60 * time.Second

// OAuthUseCase 把第三方登录结果桥接为本地账号与 token 对
type OAuthUseCase struct {
	providers    data.OAuthProviders
	users        data.UserRepo
	sessions     data.SessionRepo
	tokens       model.TokenUseCase
	handshakeTTL time.Duration
	bcryptCost   int
	logger       *zap.Logger
	metrics      *metrics
	auditor      *otel.Auditor
}

func NewOAuthUseCase(
	providers data.OAuthProviders,
	users data.UserRepo,
	sessions data.SessionRepo,
	tokens model.TokenUseCase,
	cfg *conf.Bootstrap,
	logger *zap.Logger,
) (model.OAuthUseCase, error) {
	ttl := defaultHandshakeTTL
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil {
		if cfg.Auth.HandshakeTtlSeconds > 0 {
			ttl = time.Duration(cfg.Auth.HandshakeTtlSeconds) * time.Second
		}
		if cfg.Auth.BcryptCost != 0 {
			cost = int(cfg.Auth.BcryptCost)
		}
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid bcrypt cost %d", cost)
	}

	return &OAuthUseCase{
		providers:    providers,
		users:        users,
		sessions:     sessions,
		tokens:       tokens,
		handshakeTTL: ttl,
		bcryptCost:   cost,
		logger:       logger,
		metrics:      newMetrics(logger),
		auditor:      otel.NewAuditor(instrumentationName),
	}, nil
}

func (uc *OAuthUseCase) provider(p model.Provider) (data.OAuthProvider, error) {
	op, ok := uc.providers[p]
	if !ok {
		return nil, model.ErrUnsupportedProvider
	}
	return op, nil
}

// ExchangeCode 用授权码换取 provider 的 access token，不重试
func (uc *OAuthUseCase) ExchangeCode(ctx context.Context, provider model.Provider, code string) (string, error) {
	op, err := uc.provider(provider)
	if err != nil {
		return "", err
	}
	token, err := op.ExchangeCode(ctx, code)
	if err != nil {
		uc.metrics.providerFailures.Add(ctx, 1, providerAttr(string(provider)))
		uc.logger.Warn("Provider code exchange failed", zap.String("provider", string(provider)), zap.Error(err))
		return "", wrapProviderError(err)
	}
	return token, nil
}

func (uc *OAuthUseCase) FetchProfile(ctx context.Context, provider model.Provider, providerToken string) (*model.ExternalProfile, error) {
	op, err := uc.provider(provider)
	if err != nil {
		return nil, err
	}
	profile, err := op.FetchProfile(ctx, providerToken)
	if err != nil {
		uc.metrics.providerFailures.Add(ctx, 1, providerAttr(string(provider)))
		uc.logger.Warn("Provider profile fetch failed", zap.String("provider", string(provider)), zap.Error(err))
		return nil, wrapProviderError(err)
	}
	return profile, nil
}

func wrapProviderError(err error) error {
	if errors.Is(err, model.ErrProviderExchangeFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrProviderExchangeFailed, err)
}

// StageHandshake 暂存 provider 用户 id 的哈希，并根据用户是否存在决定下一步
func (uc *OAuthUseCase) StageHandshake(ctx context.Context, provider model.Provider, username, externalID string) (model.LoginState, error) {
	if username == "" || externalID == "" {
		return "", model.ErrBadRequest
	}

	surrogate, err := bcrypt.GenerateFromPassword([]byte(externalID), uc.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash surrogate: %w", err)
	}
	h := &model.Handshake{Provider: provider, Surrogate: string(surrogate)}
	if err := uc.sessions.StageHandshake(ctx, username, h, uc.handshakeTTL); err != nil {
		return "", fmt.Errorf("stage handshake: %w", err)
	}
	uc.metrics.handshakesStaged.Add(ctx, 1, providerAttr(string(provider)))

	_, err = uc.users.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, data.ErrUserNotFound):
		return model.LoginStateSignUp, nil
	case err != nil:
		return "", fmt.Errorf("get user: %w", err)
	default:
		return model.LoginStateSignIn, nil
	}
}

// Callback 授权码换 token、获取资料、暂存握手
func (uc *OAuthUseCase) Callback(ctx context.Context, provider model.Provider, code string) (*model.HandshakeResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, model.ErrBadRequest
	}
	providerToken, err := uc.ExchangeCode(ctx, provider, code)
	if err != nil {
		return nil, err
	}
	profile, err := uc.FetchProfile(ctx, provider, providerToken)
	if err != nil {
		return nil, err
	}
	state, err := uc.StageHandshake(ctx, provider, profile.Username, profile.ExternalID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("OAuth handshake staged",
		zap.String("provider", string(provider)),
		zap.String("username", profile.Username),
		zap.String("state", string(state)),
	)
	return &model.HandshakeResult{
		Username: profile.Username,
		Provider: provider,
		State:    state,
	}, nil
}

// Join 校验握手信息后消费并创建新用户
func (uc *OAuthUseCase) Join(ctx context.Context, provider model.Provider, username, nickname string) (*model.TokenPair, error) {
	if username == "" {
		return nil, model.ErrBadRequest
	}
	if _, err := uc.provider(provider); err != nil {
		return nil, err
	}
	nickname, err := ValidateNickname(nickname)
	if err != nil {
		return nil, err
	}

	// 先检查冲突，握手信息保留给用户换一个昵称重试
	if _, err := uc.users.GetUserByNickname(ctx, nickname); err == nil {
		return nil, model.ErrNicknameTaken
	} else if !errors.Is(err, data.ErrUserNotFound) {
		return nil, fmt.Errorf("get user by nickname: %w", err)
	}
	if _, err := uc.users.GetUserByUsername(ctx, username); err == nil {
		return nil, model.ErrUsernameTaken
	} else if !errors.Is(err, data.ErrUserNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	h, err := uc.sessions.GetHandshake(ctx, username)
	if errors.Is(err, data.ErrKeyNotFound) {
		return nil, model.ErrHandshakeExpired
	}
	if err != nil {
		return nil, fmt.Errorf("get handshake: %w", err)
	}
	// provider 不一致时保留握手信息，不影响正确的请求
	if h.Provider != provider {
		uc.logger.Warn("Handshake provider mismatch",
			zap.String("username", username),
			zap.String("staged", string(h.Provider)),
			zap.String("requested", string(provider)),
		)
		return nil, model.ErrHandshakeExpired
	}

	// 握手信息只能使用一次，删除失败只影响 TTL 内的重复使用，用户名唯一约束仍然生效
	if err := uc.sessions.DeleteHandshake(ctx, username); err != nil {
		uc.logger.Warn("Failed to delete consumed handshake", zap.String("username", username), zap.Error(err))
	}

	user, err := uc.users.CreateUser(ctx, &model.User{
		Username:          username,
		PasswordSurrogate: h.Surrogate,
		Nickname:          nickname,
		Provider:          provider,
		Active:            true,
	})
	if err != nil {
		return nil, err
	}
	uc.auditor.Emit(ctx, otel.EventAccountCreated, user.Username)

	return uc.tokens.Mint(ctx, user.Username)
}

// Login 已存在的活跃用户直接签发 token，不再校验握手信息
func (uc *OAuthUseCase) Login(ctx context.Context, provider model.Provider, username string) (*model.TokenPair, error) {
	if _, err := uc.provider(provider); err != nil {
		return nil, err
	}
	user, err := uc.users.GetUserByUsername(ctx, username)
	if errors.Is(err, data.ErrUserNotFound) {
		return nil, model.ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.Active || user.Provider != provider {
		return nil, model.ErrUnknownUser
	}
	return uc.tokens.Mint(ctx, user.Username)
}
