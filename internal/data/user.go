package data

import (
	"context"
	"errors"
	"fmt"

	"keum-identity/internal/biz/model"
	"keum-identity/internal/data/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrUserNotFound 用户不存在（注销后的用户对修改类操作同样视为不存在）
var ErrUserNotFound = errors.New("user not found")

const (
	uniqueViolation        = "23505"
	usernameConstraintName = "users_username_key"
	nicknameConstraintName = "users_nickname_key"
)

// UserRepo 用户数据访问接口，用户名与昵称的唯一性在写入时保证
type UserRepo interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	UpdateNickname(ctx context.Context, username, nickname string) (*model.User, error)
	Deactivate(ctx context.Context, username string) (*model.User, error)
}

type userRepo struct {
	queries *models.Queries
	l       *zap.Logger
}

// NewPostgresUserRepo 基于 sqlc 生成代码的 PostgreSQL 实现
func NewPostgresUserRepo(db models.DBTX, logger *zap.Logger) UserRepo {
	return &userRepo{
		queries: models.New(db),
		l:       logger,
	}
}

func toUser(u models.User) *model.User {
	return &model.User{
		ID:                u.ID,
		Username:          u.Username,
		PasswordSurrogate: u.PasswordSurrogate,
		Nickname:          u.Nickname,
		Provider:          model.Provider(u.Provider),
		Active:            u.Active,
		CreatedAt:         u.CreatedAt.Time,
		UpdatedAt:         u.UpdatedAt.Time,
	}
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := r.queries.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, mapPgError(err)
	}
	return toUser(u), nil
}

func (r *userRepo) GetUserByNickname(ctx context.Context, nickname string) (*model.User, error) {
	u, err := r.queries.GetUserByNickname(ctx, nickname)
	if err != nil {
		return nil, mapPgError(err)
	}
	return toUser(u), nil
}

func (r *userRepo) CreateUser(ctx context.Context, req *model.User) (*model.User, error) {
	u, err := r.queries.CreateUser(ctx, models.CreateUserParams{
		Username:          req.Username,
		PasswordSurrogate: req.PasswordSurrogate,
		Nickname:          req.Nickname,
		Provider:          string(req.Provider),
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return toUser(u), nil
}

func (r *userRepo) UpdateNickname(ctx context.Context, username, nickname string) (*model.User, error) {
	u, err := r.queries.UpdateUserNickname(ctx, models.UpdateUserNicknameParams{
		Username: username,
		Nickname: nickname,
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return toUser(u), nil
}

func (r *userRepo) Deactivate(ctx context.Context, username string) (*model.User, error) {
	u, err := r.queries.DeactivateUser(ctx, username)
	if err != nil {
		return nil, mapPgError(err)
	}
	return toUser(u), nil
}

// mapPgError 将驱动错误转换为仓储层错误
func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case usernameConstraintName:
			return model.ErrUsernameTaken
		case nicknameConstraintName:
			return model.ErrNicknameTaken
		}
	}
	return fmt.Errorf("postgres: %w", err)
}
