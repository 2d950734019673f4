package data

import (
	"context"
	"net/http"
	"time"

	"keum-identity/internal/biz/model"
	conf "keum-identity/internal/conf/v1"
)

var kakaoDefaults = conf.OAuthProvider{
	AuthUrl:     "https://kauth.kakao.com/oauth/authorize",
	TokenUrl:    "https://kauth.kakao.com/oauth/token",
	UserInfoUrl: "https://kapi.kakao.com/v2/user/me",
}

type kakaoProvider struct {
	*oauthClient
}

// NewKakaoProvider Kakao 不要求 client_secret，为空时不发送
func NewKakaoProvider(c *conf.OAuthProvider, httpClient *http.Client, timeout time.Duration) OAuthProvider {
	return &kakaoProvider{
		oauthClient: newOAuthClient(model.ProviderKakao, c, kakaoDefaults, httpClient, timeout),
	}
}

// FetchProfile POST /v2/user/me，邮箱位于 kakao_account.email
func (p *kakaoProvider) FetchProfile(ctx context.Context, accessToken string) (*model.ExternalProfile, error) {
	body, err := p.fetchProfileBody(ctx, http.MethodPost, accessToken)
	if err != nil {
		return nil, err
	}
	return parseProfile(p.provider, body, "id", "kakao_account.email")
}
