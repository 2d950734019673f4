package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	conf "keum-identity/internal/conf/v1"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// envPrefix 环境变量前缀，例如 KEUM_AUTH_ACCESS_SECRET 覆盖 auth.access_secret
const envPrefix = "KEUM"

// Module 提供 Fx 模块
var Module = fx.Module("config",
	fx.Provide(
		func() (*conf.Bootstrap, error) {
			// 从环境变量获取配置路径，如果没有设置则使用默认路径
			configPath := getConfigPath()

			c, err := Load(configPath)
			if err != nil {
				return nil, err
			}
			fmt.Printf("Configuration loaded successfully from: %s\n", configPath)
			return c, nil
		},
	),
)

// Load 从本地文件读取配置，环境变量优先于文件
func Load(configPath string) (*conf.Bootstrap, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	localConf := &conf.Bootstrap{}

	// 获取 Viper 的所有配置为一个 map（AutomaticEnv 的覆盖值已生效）
	m := v.AllSettings()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  localConf,
	})
	if err != nil {
		return nil, fmt.Errorf("create config decoder: %w", err)
	}

	if err := decoder.Decode(m); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyDefaults(localConf)
	return localConf, nil
}

// applyDefaults 填充未配置的可选项
func applyDefaults(c *conf.Bootstrap) {
	if c.Auth != nil {
		if c.Auth.AccessExpireSeconds == 0 {
			c.Auth.AccessExpireSeconds = 30 * 60
		}
		if c.Auth.RefreshExpireSeconds == 0 {
			c.Auth.RefreshExpireSeconds = 14 * 24 * 60 * 60
		}
		if c.Auth.HandshakeTtlSeconds == 0 {
			c.Auth.HandshakeTtlSeconds = 60
		}
		if c.Auth.Issuer == "" {
			c.Auth.Issuer = "keum-identity"
		}
	}
	if c.OAuth != nil && c.OAuth.TimeoutSeconds == 0 {
		c.OAuth.TimeoutSeconds = 5
	}
	if c.Data != nil {
		if c.Data.Database != nil && c.Data.Database.Driver == "" {
			c.Data.Database.Driver = "postgres"
		}
		if c.Data.Redis != nil && c.Data.Redis.Driver == "" {
			c.Data.Redis.Driver = "redis"
		}
	}
	if c.Log == nil {
		c.Log = &conf.Log{Level: "info", Format: "json"}
	}
}

// getConfigPath 从环境变量获取配置路径
func getConfigPath() string {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// 在Docker容器中，配置文件位于/app/configs/config.yaml
	if isRunningInContainer() {
		return "/app/configs/config.yaml"
	}

	return "configs/config.yaml"
}

// isRunningInContainer 检查是否在容器中运行
func isRunningInContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	if cgroup, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		s := string(cgroup)
		if strings.Contains(s, "docker") || strings.Contains(s, "kubepods") {
			return true
		}
	}

	return os.Getenv("KUBERNETES_SERVICE_HOST") != "" || os.Getenv("CONTAINER") != ""
}

// ValidateConfig 验证配置的完整性
func ValidateConfig(c *conf.Bootstrap) error {
	if c == nil {
		return errors.New("configuration is nil")
	}

	if c.Server == nil || c.Server.Http == nil {
		return errors.New("server configuration is required")
	}

	if c.Data == nil || c.Data.Database == nil || c.Data.Redis == nil {
		return errors.New("database and redis configuration is required")
	}
	switch c.Data.Database.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Data.Database.Driver)
	}
	switch c.Data.Redis.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported redis driver %q", c.Data.Redis.Driver)
	}

	return validateAuth(c.Auth)
}

func validateAuth(a *conf.Auth) error {
	if a == nil {
		return errors.New("auth configuration is required")
	}
	if len(a.AccessSecret) < 32 {
		return errors.New("auth.access_secret must be at least 32 characters")
	}
	if len(a.RefreshSecret) < 32 {
		return errors.New("auth.refresh_secret must be at least 32 characters")
	}
	if a.AccessSecret == a.RefreshSecret {
		return errors.New("auth.access_secret and auth.refresh_secret must differ")
	}
	if a.AccessExpireSeconds <= 0 {
		return errors.New("auth.access_expire_seconds must be positive")
	}
	if a.RefreshExpireSeconds <= a.AccessExpireSeconds {
		return errors.New("auth.refresh_expire_seconds must be greater than auth.access_expire_seconds")
	}
	return nil
}
