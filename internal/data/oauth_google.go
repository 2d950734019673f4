package data

import (
	"context"
	"net/http"
	"time"

	"keum-identity/internal/biz/model"
	conf "keum-identity/internal/conf/v1"
)

var googleDefaults = conf.OAuthProvider{
	AuthUrl:     "https://accounts.google.com/o/oauth2/auth",
	TokenUrl:    "https://oauth2.googleapis.com/token",
	UserInfoUrl: "https://www.googleapis.com/oauth2/v1/userinfo",
}

type googleProvider struct {
	*oauthClient
}

func NewGoogleProvider(c *conf.OAuthProvider, httpClient *http.Client, timeout time.Duration) OAuthProvider {
	return &googleProvider{
		oauthClient: newOAuthClient(model.ProviderGoogle, c, googleDefaults, httpClient, timeout),
	}
}

// FetchProfile GET userinfo，字段为 id 与 email
func (p *googleProvider) FetchProfile(ctx context.Context, accessToken string) (*model.ExternalProfile, error) {
	body, err := p.fetchProfileBody(ctx, http.MethodGet, accessToken)
	if err != nil {
		return nil, err
	}
	return parseProfile(p.provider, body, "id", "email")
}
