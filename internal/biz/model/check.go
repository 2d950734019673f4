package model

import "context"

// CheckUseCase 就绪检查，探测用户目录与临时存储
type CheckUseCase interface {
	Ready(ctx context.Context, req HealthCheckReq) (HealthCheckReply, error)
}

type (
	HealthCheckReq struct{}

	// HealthCheckReply Status 为 Ready 或 Unhealthy，Details 仅在失败时给出原因
	HealthCheckReply struct {
		Status  string
		Details map[string]string
	}
)
