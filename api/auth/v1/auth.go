// Package v1 auth.v1 服务的请求与响应消息。
package v1

type OAuthCallbackRequest struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
}

type OAuthCallbackResponse struct {
	Username string `json:"username"`
	Provider string `json:"provider"`
	// Login sign-up 或 sign-in
	Login   string `json:"login"`
	Message string `json:"message"`
}

type JoinRequest struct {
	Provider string `json:"provider"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

type LoginRequest struct {
	Provider string `json:"provider"`
	Username string `json:"username"`
}

type RefreshRequest struct {
	Username     string `json:"username"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse Join / Login / Refresh 共用
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Message      string `json:"message"`
}
