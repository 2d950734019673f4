package data

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	conf "keum-identity/internal/conf/v1"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Module 导出给 FX 的 Provider
var Module = fx.Module("data",
	fx.Provide(
		NewData,
		NewDB,
		NewSQLite,
		NewCache,
		NewEphemeralStore,
		NewSessionRepo,
		NewUserRepo,
		NewOAuthProviders,
		NewCheckRepo,
	),
)

// Data 包含所有数据源的客户端，未启用的驱动对应字段为 nil
type Data struct {
	db     *pgxpool.Pool
	sqlite *sql.DB
	rdb    *redis.Client
}

// NewData 是 Data 的构造函数
func NewData(db *pgxpool.Pool, sqlite *sql.DB, rdb *redis.Client) *Data {
	return &Data{
		db:     db,
		sqlite: sqlite,
		rdb:    rdb,
	}
}

func postgresURL(scheme string, c *conf.Database) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.DbName,
	}
	q := url.Values{}
	if c.SslMode != "" {
		q.Set("sslmode", c.SslMode)
	}
	if c.Timezone != "" {
		q.Set("timezone", c.Timezone)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// NewDB 创建 PostgreSQL 连接池，driver 不是 postgres 时返回 nil
func NewDB(lc fx.Lifecycle, cfg *conf.Bootstrap, logger *zap.Logger) (*pgxpool.Pool, error) {
	dbCfg := cfg.Data.Database
	if dbCfg.Driver != "postgres" {
		return nil, nil
	}

	if dbCfg.AutoMigrate {
		if err := Migrate("postgres", postgresURL("pgx5", dbCfg)); err != nil {
			return nil, err
		}
		logger.Info("Database migrations applied", zap.String("driver", "postgres"))
	}

	poolCfg, err := pgxpool.ParseConfig(postgresURL("postgresql", dbCfg))
	if err != nil {
		return nil, fmt.Errorf("parse database config failed: %w", err)
	}

	// 链路追踪配置
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database failed: %w", err)
	}

	// 记录数据库统计信息
	if err := otelpgx.RecordStats(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to record database stats: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connected", zap.String("host", dbCfg.Host), zap.String("db", dbCfg.DbName))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing database connection...")
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

// NewSQLite 打开 SQLite 数据库，driver 不是 sqlite 时返回 nil
func NewSQLite(lc fx.Lifecycle, cfg *conf.Bootstrap, logger *zap.Logger) (*sql.DB, error) {
	dbCfg := cfg.Data.Database
	if dbCfg.Driver != "sqlite" {
		return nil, nil
	}

	path := dbCfg.Path
	if path == "" {
		path = "keum.db"
	}

	if dbCfg.AutoMigrate {
		if err := Migrate("sqlite", "sqlite://"+path); err != nil {
			return nil, err
		}
		logger.Info("Database migrations applied", zap.String("driver", "sqlite"))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite 同一时间只允许一个写连接
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}
	logger.Info("SQLite opened", zap.String("path", path))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing SQLite database...")
			return db.Close()
		},
	})
	return db, nil
}

// NewCache 创建 Redis 客户端，driver 为 memory 时返回 nil
func NewCache(lc fx.Lifecycle, cfg *conf.Bootstrap, logger *zap.Logger) (*redis.Client, error) {
	redisCfg := cfg.Data.Redis
	if redisCfg.Driver != "redis" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", redisCfg.Host, redisCfg.Port),
		Username:     redisCfg.Username,
		Password:     redisCfg.Password,
		DB:           int(redisCfg.Db),
		DialTimeout:  time.Duration(redisCfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(redisCfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(redisCfg.WriteTimeout) * time.Second,
		PoolSize:     int(redisCfg.PoolSize),
		MinIdleConns: int(redisCfg.MinIdleConns),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("Redis connected", zap.String("host", redisCfg.Host))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing Redis connection...")
			return rdb.Close()
		},
	})

	return rdb, nil
}

// NewEphemeralStore 根据 redis.driver 选择实现
func NewEphemeralStore(d *Data, logger *zap.Logger) EphemeralStore {
	if d.rdb != nil {
		return NewRedisStore(d.rdb)
	}
	logger.Warn("Using in-memory ephemeral store, sessions are lost on restart")
	return NewMemoryStore(nil)
}

// NewUserRepo 根据 database.driver 选择实现
func NewUserRepo(d *Data, logger *zap.Logger) UserRepo {
	switch {
	case d.db != nil:
		return NewPostgresUserRepo(d.db, logger)
	case d.sqlite != nil:
		return NewSQLiteUserRepo(d.sqlite, logger)
	default:
		logger.Warn("Using in-memory user directory, users are lost on restart")
		return NewMemoryUserRepo()
	}
}
