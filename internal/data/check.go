package data

import (
	"context"
	"fmt"
	"time"

	"keum-identity/internal/biz/model"

	"connectrpc.com/connect"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type checkRepo struct {
	data *Data
	l    *zap.Logger
}

type CheckRepo interface {
	Ready(context.Context, model.HealthCheckReq) (model.HealthCheckReply, error)
}

func NewCheckRepo(data *Data, l *zap.Logger) CheckRepo {
	return &checkRepo{
		data: data,
		l:    l,
	}
}

// Ready 并发探测已启用的存储
func (c checkRepo) Ready(ctx context.Context, _ model.HealthCheckReq) (model.HealthCheckReply, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if c.data.db != nil {
		g.Go(func() error {
			if err := c.data.db.Ping(gctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			return nil
		})
	}
	if c.data.sqlite != nil {
		g.Go(func() error {
			if err := c.data.sqlite.PingContext(gctx); err != nil {
				return fmt.Errorf("sqlite: %w", err)
			}
			return nil
		})
	}
	if c.data.rdb != nil {
		g.Go(func() error {
			if err := c.data.rdb.Ping(gctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.l.Warn("Readiness check failed", zap.Error(err))
		return model.HealthCheckReply{
			Status: "Unhealthy",
			Details: map[string]string{
				"Message": err.Error(),
			},
		}, connect.NewError(connect.CodeUnavailable, err)
	}
	return model.HealthCheckReply{
		Status:  "Ready",
		Details: nil,
	}, nil
}
