package models

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetUser(t *testing.T) {
	requireDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := testQueries.CreateUser(ctx, CreateUserParams{
		Username:          "query@b.com",
		PasswordSurrogate: "$2a$04$hash",
		Nickname:          "query1",
		Provider:          "google",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.Active)

	byName, err := testQueries.GetUserByUsername(ctx, "query@b.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byNick, err := testQueries.GetUserByNickname(ctx, "query1")
	require.NoError(t, err)
	assert.Equal(t, "query@b.com", byNick.Username)

	_, err = testQueries.GetUserByUsername(ctx, "missing@b.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUniqueConstraints(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	_, err := testQueries.CreateUser(ctx, CreateUserParams{
		Username: "unique@b.com", PasswordSurrogate: "h", Nickname: "unique1", Provider: "kakao",
	})
	require.NoError(t, err)

	_, err = testQueries.CreateUser(ctx, CreateUserParams{
		Username: "unique2@b.com", PasswordSurrogate: "h", Nickname: "unique1", Provider: "kakao",
	})
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23505", pgErr.Code)
	assert.Equal(t, "users_nickname_key", pgErr.ConstraintName)

	_, err = testQueries.CreateUser(ctx, CreateUserParams{
		Username: "unique@b.com", PasswordSurrogate: "h", Nickname: "unique2", Provider: "kakao",
	})
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "users_username_key", pgErr.ConstraintName)
}

func TestUpdateNicknameAndDeactivate(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	_, err := testQueries.CreateUser(ctx, CreateUserParams{
		Username: "mut@b.com", PasswordSurrogate: "h", Nickname: "mut1", Provider: "google",
	})
	require.NoError(t, err)

	updated, err := testQueries.UpdateUserNickname(ctx, UpdateUserNicknameParams{Username: "mut@b.com", Nickname: "mut2"})
	require.NoError(t, err)
	assert.Equal(t, "mut2", updated.Nickname)

	deactivated, err := testQueries.DeactivateUser(ctx, "mut@b.com")
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	// 已注销的用户不能再次注销或修改昵称
	_, err = testQueries.DeactivateUser(ctx, "mut@b.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = testQueries.UpdateUserNickname(ctx, UpdateUserNicknameParams{Username: "mut@b.com", Nickname: "mut3"})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
