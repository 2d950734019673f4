package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"keum-identity/internal/biz/model"
	conf "keum-identity/internal/conf/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider 模拟 provider 的 token 与用户资料接口
type fakeProvider struct {
	t             *testing.T
	tokenStatus   int
	tokenBody     map[string]any
	profileMethod string
	profileBody   string
	delay         time.Duration

	gotForm    map[string]string
	gotAuth    string
	gotCT      string
	gotProfile bool
}

func (f *fakeProvider) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, http.MethodPost, r.Method)
		assert.NoError(f.t, r.ParseForm())
		f.gotForm = map[string]string{}
		for k := range r.PostForm {
			f.gotForm[k] = r.PostForm.Get(k)
		}
		if f.delay > 0 {
			time.Sleep(f.delay)
		}
		w.Header().Set("Content-Type", "application/json")
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
		}
		_ = json.NewEncoder(w).Encode(f.tokenBody)
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		f.gotProfile = true
		f.gotAuth = r.Header.Get("Authorization")
		f.gotCT = r.Header.Get("Content-Type")
		if r.Method != f.profileMethod {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(f.profileBody))
	})
	srv := httptest.NewServer(mux)
	f.t.Cleanup(srv.Close)
	return srv
}

func providerConfig(srv *httptest.Server, secret string) *conf.OAuthProvider {
	return &conf.OAuthProvider{
		ClientId:     "client-1",
		ClientSecret: secret,
		RedirectUri:  "http://localhost:3000/callback",
		TokenUrl:     srv.URL + "/token",
		UserInfoUrl:  srv.URL + "/profile",
	}
}

func TestGoogleProvider(t *testing.T) {
	f := &fakeProvider{
		t:             t,
		tokenBody:     map[string]any{"access_token": "ptok", "token_type": "Bearer", "expires_in": 3599},
		profileMethod: http.MethodGet,
		profileBody:   `{"id":"ext-1","email":"a@b.com","verified_email":true}`,
	}
	srv := f.server()
	p := NewGoogleProvider(providerConfig(srv, "secret-1"), srv.Client(), 2*time.Second)
	assert.Equal(t, model.ProviderGoogle, p.Name())

	tok, err := p.ExchangeCode(context.Background(), "code123")
	require.NoError(t, err)
	assert.Equal(t, "ptok", tok)
	assert.Equal(t, map[string]string{
		"grant_type":    "authorization_code",
		"code":          "code123",
		"redirect_uri":  "http://localhost:3000/callback",
		"client_id":     "client-1",
		"client_secret": "secret-1",
	}, f.gotForm)

	profile, err := p.FetchProfile(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "Bearer ptok", f.gotAuth)
	assert.Equal(t, &model.ExternalProfile{ExternalID: "ext-1", Username: "a@b.com"}, profile)
}

func TestKakaoProvider(t *testing.T) {
	f := &fakeProvider{
		t:             t,
		tokenBody:     map[string]any{"access_token": "ktok", "token_type": "bearer"},
		profileMethod: http.MethodPost,
		profileBody:   `{"id":3012345678,"kakao_account":{"email":"k@kakao.com","has_email":true}}`,
	}
	srv := f.server()
	p := NewKakaoProvider(providerConfig(srv, ""), srv.Client(), 2*time.Second)

	tok, err := p.ExchangeCode(context.Background(), "kcode")
	require.NoError(t, err)
	assert.Equal(t, "ktok", tok)
	_, hasSecret := f.gotForm["client_secret"]
	assert.False(t, hasSecret)

	profile, err := p.FetchProfile(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "Bearer ktok", f.gotAuth)
	assert.Contains(t, f.gotCT, "application/x-www-form-urlencoded")
	assert.Equal(t, "3012345678", profile.ExternalID)
	assert.Equal(t, "k@kakao.com", profile.Username)
}

func TestExchangeCode_Failures(t *testing.T) {
	tests := []struct {
		name string
		f    *fakeProvider
		code string
	}{
		{"non 2xx", &fakeProvider{tokenStatus: http.StatusBadRequest, tokenBody: map[string]any{"error": "invalid_grant"}}, "c"},
		{"missing access_token", &fakeProvider{tokenBody: map[string]any{"token_type": "Bearer"}}, "c"},
		{"timeout", &fakeProvider{tokenBody: map[string]any{"access_token": "late"}, delay: 300 * time.Millisecond}, "c"},
		{"empty code", &fakeProvider{tokenBody: map[string]any{"access_token": "x"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.f.t = t
			srv := tt.f.server()
			p := NewGoogleProvider(providerConfig(srv, "s"), srv.Client(), 100*time.Millisecond)

			tok, err := p.ExchangeCode(context.Background(), tt.code)
			assert.Error(t, err)
			assert.Empty(t, tok)
		})
	}
}

func TestFetchProfile_Failures(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
	}{
		{"wrong method", http.MethodPost, `{"id":"1","email":"a@b.com"}`},
		{"invalid json", http.MethodGet, `{"id":`},
		{"missing id", http.MethodGet, `{"email":"a@b.com"}`},
		{"missing email", http.MethodGet, `{"id":"1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeProvider{t: t, profileMethod: tt.method, profileBody: tt.body}
			srv := f.server()
			p := NewGoogleProvider(providerConfig(srv, "s"), srv.Client(), time.Second)

			profile, err := p.FetchProfile(context.Background(), "ptok")
			assert.Error(t, err)
			assert.Nil(t, profile)
		})
	}
}

func TestNewOAuthProviders(t *testing.T) {
	providers := NewOAuthProviders(&conf.Bootstrap{OAuth: &conf.OAuth{
		Google: &conf.OAuthProvider{ClientId: "g"},
		Kakao:  &conf.OAuthProvider{},
	}}, zap.NewNop())

	assert.Len(t, providers, 1)
	assert.Contains(t, providers, model.ProviderGoogle)

	assert.Empty(t, NewOAuthProviders(&conf.Bootstrap{}, zap.NewNop()))
}

func TestProviderDefaults(t *testing.T) {
	p := NewKakaoProvider(&conf.OAuthProvider{ClientId: "k"}, http.DefaultClient, time.Second).(*kakaoProvider)
	assert.Equal(t, "https://kauth.kakao.com/oauth/token", p.config.Endpoint.TokenURL)
	assert.Equal(t, "https://kapi.kakao.com/v2/user/me", p.userInfoURL)

	g := NewGoogleProvider(&conf.OAuthProvider{ClientId: "g"}, http.DefaultClient, time.Second).(*googleProvider)
	assert.Equal(t, "https://oauth2.googleapis.com/token", g.config.Endpoint.TokenURL)
	assert.Equal(t, "https://www.googleapis.com/oauth2/v1/userinfo", g.userInfoURL)
}
