package data

import (
	"context"
	"strconv"
	"testing"
	"time"

	"keum-identity/internal/biz/model"
	conf "keum-identity/internal/conf/v1"

	"connectrpc.com/connect"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// testLifecycle 是用于测试的简单生命周期实现
type testLifecycle struct {
	hooks []fx.Hook
}

func (tl *testLifecycle) Append(hook fx.Hook) {
	tl.hooks = append(tl.hooks, hook)
}

// fakeClock 可手动推进的时钟
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// StoreTestSuite 对两种 EphemeralStore 实现运行同一组用例
type StoreTestSuite struct {
	suite.Suite
	store   EphemeralStore
	advance func(time.Duration)
}

func (s *StoreTestSuite) TestSetGetDelete() {
	ctx := context.Background()

	_, err := s.store.Get(ctx, "k")
	s.ErrorIs(err, ErrKeyNotFound)

	s.Require().NoError(s.store.SetWithTTL(ctx, "k", "v1", time.Minute))
	v, err := s.store.Get(ctx, "k")
	s.Require().NoError(err)
	s.Equal("v1", v)

	// 覆盖写
	s.Require().NoError(s.store.SetWithTTL(ctx, "k", "v2", time.Minute))
	v, err = s.store.Get(ctx, "k")
	s.Require().NoError(err)
	s.Equal("v2", v)

	s.Require().NoError(s.store.Delete(ctx, "k"))
	_, err = s.store.Get(ctx, "k")
	s.ErrorIs(err, ErrKeyNotFound)

	// 删除不存在的 key 不报错
	s.NoError(s.store.Delete(ctx, "missing"))
}

func (s *StoreTestSuite) TestExpiry() {
	ctx := context.Background()

	s.Require().NoError(s.store.SetWithTTL(ctx, "ttl", "v", 60*time.Second))
	s.advance(59 * time.Second)
	v, err := s.store.Get(ctx, "ttl")
	s.Require().NoError(err)
	s.Equal("v", v)

	s.advance(2 * time.Second)
	_, err = s.store.Get(ctx, "ttl")
	s.ErrorIs(err, ErrKeyNotFound)
}

func TestMemoryStore(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	suite.Run(t, &StoreTestSuite{
		store:   NewMemoryStore(clock.Now),
		advance: clock.Advance,
	})
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	suite.Run(t, &StoreTestSuite{
		store:   NewRedisStore(rdb),
		advance: mr.FastForward,
	})
}

func TestMemoryStore_InvalidTTL(t *testing.T) {
	store := NewMemoryStore(nil)
	assert.Error(t, store.SetWithTTL(context.Background(), "k", "v", 0))
}

func TestMemoryStore_SweepsUnreadKeys(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock.Now).(*memoryStore)

	require.NoError(t, store.SetWithTTL(ctx, "oauth_handshake:a@b.com", "h", 10*time.Second))
	require.NoError(t, store.SetWithTTL(ctx, "refresh_token:a@b.com", "r", time.Hour))
	assert.Equal(t, 2, store.Len())

	// 第一个握手信息已过期，但未到清理间隔
	clock.Advance(30 * time.Second)
	require.NoError(t, store.SetWithTTL(ctx, "oauth_handshake:c@d.com", "h", 60*time.Second))
	assert.Equal(t, 3, store.Len())

	// 之后的写入触发清理，两个握手信息都已过期
	clock.Advance(2 * time.Minute)
	require.NoError(t, store.SetWithTTL(ctx, "refresh_token:c@d.com", "r", time.Hour))
	assert.Equal(t, 2, store.Len())

	v, err := store.Get(ctx, "refresh_token:a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "r", v)
	_, err = store.Get(ctx, "oauth_handshake:a@b.com")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	_, err := NewRedisStore(rdb).Get(context.Background(), "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
}

func TestSessionRepo(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewSessionRepo(NewRedisStore(rdb), zap.NewNop())

	// refresh token
	require.NoError(t, repo.SaveRefreshToken(ctx, "a@b.com", "R1", time.Hour))
	assert.Equal(t, "R1", mustGet(t, mr, "refresh_token:a@b.com"))
	assert.Equal(t, time.Hour, mr.TTL("refresh_token:a@b.com"))

	got, err := repo.GetRefreshToken(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "R1", got)

	require.NoError(t, repo.DeleteRefreshToken(ctx, "a@b.com"))
	_, err = repo.GetRefreshToken(ctx, "a@b.com")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// 握手信息与 refresh token 使用不同的 key
	require.NoError(t, repo.SaveRefreshToken(ctx, "a@b.com", "R2", time.Hour))
	require.NoError(t, repo.StageHandshake(ctx, "a@b.com", &model.Handshake{Provider: model.ProviderKakao, Surrogate: "hash"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("oauth_handshake:a@b.com"))

	h, err := repo.GetHandshake(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, model.ProviderKakao, h.Provider)
	assert.Equal(t, "hash", h.Surrogate)

	// 读取不会删除
	_, err = repo.GetHandshake(ctx, "a@b.com")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteHandshake(ctx, "a@b.com"))
	_, err = repo.GetHandshake(ctx, "a@b.com")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.False(t, mr.Exists("oauth_handshake:a@b.com"))

	got, err = repo.GetRefreshToken(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "R2", got)
}

func TestSessionRepo_HandshakeExpires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewSessionRepo(NewRedisStore(rdb), zap.NewNop())
	require.NoError(t, repo.StageHandshake(ctx, "a@b.com", &model.Handshake{Provider: model.ProviderGoogle, Surrogate: "hash"}, 60*time.Second))

	mr.FastForward(61 * time.Second)

	_, err := repo.GetHandshake(ctx, "a@b.com")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

func TestCheckRepo_Ready(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewCheckRepo(NewData(nil, nil, rdb), zap.NewNop())
	reply, err := repo.Ready(context.Background(), model.HealthCheckReq{})
	require.NoError(t, err)
	assert.Equal(t, "Ready", reply.Status)

	mr.Close()
	reply, err = repo.Ready(context.Background(), model.HealthCheckReq{})
	require.Error(t, err)
	assert.Equal(t, "Unhealthy", reply.Status)
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	assert.Contains(t, reply.Details["Message"], "redis")
}

func TestCheckRepo_NoBackends(t *testing.T) {
	repo := NewCheckRepo(NewData(nil, nil, nil), zap.NewNop())
	reply, err := repo.Ready(context.Background(), model.HealthCheckReq{})
	require.NoError(t, err)
	assert.Equal(t, "Ready", reply.Status)
}

func TestNewDB_OtherDriver(t *testing.T) {
	lc := &testLifecycle{}
	cfg := &conf.Bootstrap{Data: &conf.Data{
		Database: &conf.Database{Driver: "memory"},
		Redis:    &conf.Redis{Driver: "memory"},
	}}

	pool, err := NewDB(lc, cfg, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, pool)

	db, err := NewSQLite(lc, cfg, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, db)

	rdb, err := NewCache(lc, cfg, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, rdb)
	assert.Empty(t, lc.hooks)

	d := NewData(pool, db, rdb)
	assert.IsType(t, &memoryStore{}, NewEphemeralStore(d, zap.NewNop()))
	assert.IsType(t, &memoryUserRepo{}, NewUserRepo(d, zap.NewNop()))
}

func TestNewCache_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	lc := &testLifecycle{}
	cfg := &conf.Bootstrap{Data: &conf.Data{Redis: &conf.Redis{
		Driver: "redis",
		Host:   mr.Host(),
		Port:   int32(mustAtoi(t, mr.Port())),
	}}}

	rdb, err := NewCache(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, rdb)
	assert.Len(t, lc.hooks, 1)
	assert.NoError(t, lc.hooks[0].OnStop(context.Background()))
}

func TestPostgresURL(t *testing.T) {
	u := postgresURL("pgx5", &conf.Database{
		User: "postgres", Password: "p@ss", Host: "db", Port: 5432, DbName: "keum", SslMode: "disable",
	})
	assert.Equal(t, "pgx5://postgres:p%40ss@db:5432/keum?sslmode=disable", u)
}
