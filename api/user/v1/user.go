// Package v1 user.v1 服务的请求与响应消息。
package v1

type User struct {
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
	Provider    string `json:"provider"`
	Active      bool   `json:"active"`
	AccessToken string `json:"access_token,omitempty"`
}

type CheckNicknameRequest struct {
	Nickname string `json:"nickname"`
}

type CheckNicknameResponse struct {
	Nickname string `json:"nickname"`
	Message  string `json:"message"`
}

type UpdateNicknameRequest struct {
	Nickname string `json:"nickname"`
}

type WithdrawRequest struct {
	Username string `json:"username"`
}

// UserResponse UpdateNickname / Withdraw 共用
type UserResponse struct {
	User    *User  `json:"user"`
	Message string `json:"message"`
}
