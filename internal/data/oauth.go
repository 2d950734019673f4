package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"keum-identity/internal/biz/model"
	conf "keum-identity/internal/conf/v1"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxProfileBody provider 返回的用户资料最大读取长度
const maxProfileBody = 1 << 20

// OAuthProvider 第三方登录提供方，按 provider 标签选择实现
type OAuthProvider interface {
	Name() model.Provider
	// ExchangeCode 用授权码换取 provider 的 access token
	ExchangeCode(ctx context.Context, code string) (string, error)
	// FetchProfile 获取 provider 侧的用户 id 与邮箱
	FetchProfile(ctx context.Context, accessToken string) (*model.ExternalProfile, error)
}

// OAuthProviders 已配置的 provider 集合
type OAuthProviders map[model.Provider]OAuthProvider

// NewOAuthProviders 根据配置创建 provider，未配置 client_id 的 provider 不启用
func NewOAuthProviders(cfg *conf.Bootstrap, logger *zap.Logger) OAuthProviders {
	providers := make(OAuthProviders)
	if cfg.OAuth == nil {
		logger.Warn("OAuth configuration missing, social login disabled")
		return providers
	}

	timeout := time.Duration(cfg.OAuth.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	if c := cfg.OAuth.Google; c != nil && c.ClientId != "" {
		providers[model.ProviderGoogle] = NewGoogleProvider(c, httpClient, timeout)
	}
	if c := cfg.OAuth.Kakao; c != nil && c.ClientId != "" {
		providers[model.ProviderKakao] = NewKakaoProvider(c, httpClient, timeout)
	}
	for name := range providers {
		logger.Info("OAuth provider enabled", zap.String("provider", string(name)))
	}
	return providers
}

// oauthClient 两个 provider 共用的授权码交换与资料请求逻辑
type oauthClient struct {
	provider    model.Provider
	config      oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	timeout     time.Duration
}

func newOAuthClient(provider model.Provider, c *conf.OAuthProvider, defaults conf.OAuthProvider, httpClient *http.Client, timeout time.Duration) *oauthClient {
	authURL, tokenURL, userInfoURL := c.AuthUrl, c.TokenUrl, c.UserInfoUrl
	if authURL == "" {
		authURL = defaults.AuthUrl
	}
	if tokenURL == "" {
		tokenURL = defaults.TokenUrl
	}
	if userInfoURL == "" {
		userInfoURL = defaults.UserInfoUrl
	}

	return &oauthClient{
		provider: provider,
		config: oauth2.Config{
			ClientID:     c.ClientId,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectUri,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
				// client_id / client_secret 放在表单中
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: userInfoURL,
		httpClient:  httpClient,
		timeout:     timeout,
	}
}

func (c *oauthClient) Name() model.Provider {
	return c.provider
}

func (c *oauthClient) withClient(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), cancel
}

func (c *oauthClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", errors.New("empty authorization code")
	}
	ctx, cancel := c.withClient(ctx)
	defer cancel()

	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return "", fmt.Errorf("%s token endpoint returned %d: %s", c.provider, re.Response.StatusCode, re.ErrorCode)
		}
		return "", fmt.Errorf("%s token exchange: %w", c.provider, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%s token response missing access_token", c.provider)
	}
	return tok.AccessToken, nil
}

// fetchProfileBody 以 Bearer 方式请求用户资料接口
func (c *oauthClient) fetchProfileBody(ctx context.Context, method, accessToken string) ([]byte, error) {
	ctx, cancel := c.withClient(ctx)
	defer cancel()

	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader(url.Values{}.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.userInfoURL, body)
	if err != nil {
		return nil, fmt.Errorf("create %s profile request: %w", c.provider, err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s profile request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBody))
	if err != nil {
		return nil, fmt.Errorf("read %s profile response: %w", c.provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s profile endpoint returned %d", c.provider, resp.StatusCode)
	}
	return b, nil
}

// parseProfile 按 provider 各自的 JSON 路径提取 id 与邮箱
func parseProfile(provider model.Provider, body []byte, idPath, emailPath string) (*model.ExternalProfile, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s profile response is not valid JSON", provider)
	}
	res := gjson.GetManyBytes(body, idPath, emailPath)
	id, email := strings.TrimSpace(res[0].String()), strings.TrimSpace(res[1].String())
	if id == "" {
		return nil, fmt.Errorf("%s profile response missing %s", provider, idPath)
	}
	if email == "" {
		return nil, fmt.Errorf("%s profile response missing %s", provider, emailPath)
	}
	return &model.ExternalProfile{ExternalID: id, Username: email}, nil
}
