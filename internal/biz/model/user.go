package model

import (
	"context"
	"time"
)

// Provider 第三方登录提供方
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderKakao  Provider = "kakao"
)

// ParseProvider 解析请求中的 provider 标签
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(s); p {
	case ProviderGoogle, ProviderKakao:
		return p, nil
	default:
		return "", ErrUnsupportedProvider
	}
}

// User 业务层用户模型
type User struct {
	ID       int64
	Username string
	// provider 返回的 subject id 经 bcrypt 后的值
	PasswordSurrogate string
	Nickname          string
	Provider          Provider
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UserView 对外返回的用户视图
type UserView struct {
	Username    string
	Nickname    string
	Provider    Provider
	Active      bool
	AccessToken string
}

// NewUserView 由 User 构造视图，accessToken 原样透传
func NewUserView(u *User, accessToken string) *UserView {
	return &UserView{
		Username:    u.Username,
		Nickname:    u.Nickname,
		Provider:    u.Provider,
		Active:      u.Active,
		AccessToken: accessToken,
	}
}

// LoginState OAuth 握手后的下一步
type LoginState string

const (
	LoginStateSignUp LoginState = "sign-up"
	LoginStateSignIn LoginState = "sign-in"
)

// ExternalProfile provider 返回的用户资料
type ExternalProfile struct {
	ExternalID string
	Username   string
}

// Handshake 暂存在 Redis 中的握手信息
type Handshake struct {
	Provider  Provider `json:"provider"`
	Surrogate string   `json:"surrogate"`
}

// HandshakeResult OAuth 回调的结果
type HandshakeResult struct {
	Username string
	Provider Provider
	State    LoginState
}

// UserUseCase 昵称与账号相关用例
type UserUseCase interface {
	CheckNicknameAvailable(ctx context.Context, nickname string) (string, error)
	UpdateNickname(ctx context.Context, callerUsername, accessToken, nickname string) (*UserView, error)
	Withdraw(ctx context.Context, username string) (*UserView, error)
}

// OAuthUseCase 第三方登录桥接用例
type OAuthUseCase interface {
	ExchangeCode(ctx context.Context, provider Provider, code string) (string, error)
	FetchProfile(ctx context.Context, provider Provider, providerToken string) (*ExternalProfile, error)
	StageHandshake(ctx context.Context, provider Provider, username, externalID string) (LoginState, error)
	Callback(ctx context.Context, provider Provider, code string) (*HandshakeResult, error)
	Join(ctx context.Context, provider Provider, username, nickname string) (*TokenPair, error)
	Login(ctx context.Context, provider Provider, username string) (*TokenPair, error)
}
