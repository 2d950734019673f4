package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"keum-identity/internal/biz/model"

	"go.uber.org/zap"
)

const sqliteUserColumns = "id, username, password_surrogate, nickname, provider, active, created_at, updated_at"

type sqliteUserRepo struct {
	db  *sql.DB
	l   *zap.Logger
	now func() time.Time
}

// NewSQLiteUserRepo 单机部署使用的 SQLite 实现（modernc.org/sqlite，无需 cgo）
func NewSQLiteUserRepo(db *sql.DB, logger *zap.Logger) UserRepo {
	return &sqliteUserRepo{
		db:  db,
		l:   logger,
		now: time.Now,
	}
}

func scanSQLiteUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u                    model.User
		provider             string
		active               int64
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordSurrogate, &u.Nickname, &provider, &active, &createdAt, &updatedAt); err != nil {
		return nil, mapSQLiteError(err)
	}
	u.Provider = model.Provider(provider)
	u.Active = active != 0
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	u.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &u, nil
}

func (r *sqliteUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sqliteUserColumns+" FROM users WHERE username = ? LIMIT 1", username)
	return scanSQLiteUser(row)
}

func (r *sqliteUserRepo) GetUserByNickname(ctx context.Context, nickname string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sqliteUserColumns+" FROM users WHERE nickname = ? LIMIT 1", nickname)
	return scanSQLiteUser(row)
}

func (r *sqliteUserRepo) CreateUser(ctx context.Context, req *model.User) (*model.User, error) {
	now := r.now().UTC().Format(time.RFC3339Nano)
	row := r.db.QueryRowContext(ctx,
		"INSERT INTO users (username, password_surrogate, nickname, provider, active, created_at, updated_at) "+
			"VALUES (?, ?, ?, ?, 1, ?, ?) RETURNING "+sqliteUserColumns,
		req.Username, req.PasswordSurrogate, req.Nickname, string(req.Provider), now, now,
	)
	return scanSQLiteUser(row)
}

func (r *sqliteUserRepo) UpdateNickname(ctx context.Context, username, nickname string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"UPDATE users SET nickname = ?, updated_at = ? WHERE username = ? AND active = 1 RETURNING "+sqliteUserColumns,
		nickname, r.now().UTC().Format(time.RFC3339Nano), username,
	)
	return scanSQLiteUser(row)
}

func (r *sqliteUserRepo) Deactivate(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"UPDATE users SET active = 0, updated_at = ? WHERE username = ? AND active = 1 RETURNING "+sqliteUserColumns,
		r.now().UTC().Format(time.RFC3339Nano), username,
	)
	return scanSQLiteUser(row)
}

// mapSQLiteError SQLite 的唯一约束错误信息形如 "UNIQUE constraint failed: users.nickname"
func mapSQLiteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "users.nickname"):
			return model.ErrNicknameTaken
		case strings.Contains(msg, "users.username"):
			return model.ErrUsernameTaken
		}
	}
	return fmt.Errorf("sqlite: %w", err)
}
