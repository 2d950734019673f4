package biz

import (
	"context"

	"keum-identity/internal/biz/model"
	"keum-identity/internal/data"
)

type CheckUseCase struct {
	repo data.CheckRepo
}

func NewCheckUseCase(repo data.CheckRepo) (model.CheckUseCase, error) {
	return &CheckUseCase{
		repo: repo,
	}, nil
}

// Ready 失败时返回 repo 给出的 Connect 错误（Unavailable）
func (c *CheckUseCase) Ready(ctx context.Context, req model.HealthCheckReq) (model.HealthCheckReply, error) {
	reply, err := c.repo.Ready(ctx, req)
	if err != nil {
		return model.HealthCheckReply{}, err
	}
	return model.HealthCheckReply{
		Status:  reply.Status,
		Details: reply.Details,
	}, nil
}
