package biz

import (
	"context"
	"errors"
	"fmt"

	"keum-identity/internal/biz/model"
	"keum-identity/internal/data"
	"keum-identity/internal/pkg/otel"

	"go.uber.org/zap"
)

type UserUseCase struct {
	repo    data.UserRepo
	tokens  model.TokenUseCase
	logger  *zap.Logger
	auditor *otel.Auditor
}

func NewUserUseCase(repo data.UserRepo, tokens model.TokenUseCase, logger *zap.Logger) (model.UserUseCase, error) {
	return &UserUseCase{
		repo:    repo,
		tokens:  tokens,
		logger:  logger,
		auditor: otel.NewAuditor(instrumentationName),
	}, nil
}

// CheckNicknameAvailable 昵称可用时原样返回
func (uc *UserUseCase) CheckNicknameAvailable(ctx context.Context, nickname string) (string, error) {
	nickname, err := ValidateNickname(nickname)
	if err != nil {
		return "", err
	}

	_, err = uc.repo.GetUserByNickname(ctx, nickname)
	switch {
	case err == nil:
		return "", model.ErrNicknameTaken
	case errors.Is(err, data.ErrUserNotFound):
		return nickname, nil
	default:
		return "", fmt.Errorf("get user by nickname: %w", err)
	}
}

// UpdateNickname 修改调用者的昵称，accessToken 原样放入返回视图
func (uc *UserUseCase) UpdateNickname(ctx context.Context, callerUsername, accessToken, nickname string) (*model.UserView, error) {
	nickname, err := ValidateNickname(nickname)
	if err != nil {
		return nil, err
	}

	holder, err := uc.repo.GetUserByNickname(ctx, nickname)
	switch {
	case err == nil && holder.Username == callerUsername:
		if !holder.Active {
			return nil, model.ErrUnknownUser
		}
		return model.NewUserView(holder, accessToken), nil
	case err == nil:
		return nil, model.ErrNicknameTaken
	case !errors.Is(err, data.ErrUserNotFound):
		return nil, fmt.Errorf("get user by nickname: %w", err)
	}

	// 唯一约束兜底并发修改
	user, err := uc.repo.UpdateNickname(ctx, callerUsername, nickname)
	if errors.Is(err, data.ErrUserNotFound) {
		return nil, model.ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Nickname updated", zap.String("username", callerUsername))
	return model.NewUserView(user, accessToken), nil
}

// Withdraw 注销账号：先撤销 refresh token，再标记为非活跃
func (uc *UserUseCase) Withdraw(ctx context.Context, username string) (*model.UserView, error) {
	user, err := uc.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, data.ErrUserNotFound) {
		return nil, model.ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.Active {
		return nil, model.ErrUnknownUser
	}

	if err := uc.tokens.Revoke(ctx, username); err != nil {
		return nil, err
	}

	user, err = uc.repo.Deactivate(ctx, username)
	if errors.Is(err, data.ErrUserNotFound) {
		return nil, model.ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}

	uc.auditor.Emit(ctx, otel.EventAccountWithdraw, username)
	uc.logger.Info("Account withdrawn", zap.String("username", username))
	return model.NewUserView(user, ""), nil
}
