// Package authctx 在 context 中传递已验证的调用者身份。
package authctx

import "context"

type callerKey struct{}

// Caller 由 access token 验证得到的调用者
type Caller struct {
	Username    string
	AccessToken string
}

// WithCaller 写入调用者
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// FromContext 读取调用者，未经认证时 ok 为 false
func FromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	if !ok || c.Username == "" {
		return Caller{}, false
	}
	return c, true
}
