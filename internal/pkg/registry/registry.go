package registry

import (
	"context"
	"fmt"
	"net"
	"strconv"

	conf "keum-identity/internal/conf/v1"

	"github.com/hashicorp/consul/api"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// readyPath Consul HTTP 健康检查地址
const readyPath = "/check.v1.CheckService/Ready"

var Module = fx.Module("registry",
	fx.Provide(NewConsulRegistry),
)

// ConsulRegistry 负责在 Consul 中注册 / 注销当前实例
type ConsulRegistry struct {
	client    *api.Client
	cfg       *conf.Consul
	serviceID string
	name      string
	logger    *zap.Logger
}

// NewConsulRegistry 未启用时返回空注册器，生命周期钩子不做任何事
func NewConsulRegistry(lc fx.Lifecycle, cfg *conf.Bootstrap, serviceName string, logger *zap.Logger) (*ConsulRegistry, error) {
	r := &ConsulRegistry{name: serviceName, logger: logger}
	if cfg.Registry == nil || cfg.Registry.Consul == nil || !cfg.Registry.Consul.Enabled {
		logger.Info("Consul registry disabled")
		return r, nil
	}
	r.cfg = cfg.Registry.Consul

	apiCfg := api.DefaultConfig()
	if r.cfg.Address != "" {
		apiCfg.Address = r.cfg.Address
	}
	if r.cfg.Scheme != "" {
		apiCfg.Scheme = r.cfg.Scheme
	}
	apiCfg.Token = r.cfg.Token

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	r.client = client
	r.serviceID = fmt.Sprintf("%s-%s", serviceName, net.JoinHostPort(r.cfg.ServiceHost, strconv.Itoa(int(r.cfg.ServicePort))))

	lc.Append(fx.Hook{
		OnStart: r.Register,
		OnStop:  r.Deregister,
	})
	return r, nil
}

// Enabled 是否连接了 Consul
func (r *ConsulRegistry) Enabled() bool {
	return r.client != nil
}

// Registration 构造注册信息
func (r *ConsulRegistry) Registration() *api.AgentServiceRegistration {
	interval := r.cfg.HealthCheckInterval
	if interval == "" {
		interval = "10s"
	}
	addr := net.JoinHostPort(r.cfg.ServiceHost, strconv.Itoa(int(r.cfg.ServicePort)))

	return &api.AgentServiceRegistration{
		ID:      r.serviceID,
		Name:    r.name,
		Tags:    r.cfg.Tags,
		Address: r.cfg.ServiceHost,
		Port:    int(r.cfg.ServicePort),
		Check: &api.AgentServiceCheck{
			// Connect 协议支持 GET 形式的幂等调用
			HTTP:                           fmt.Sprintf("http://%s%s?encoding=json&message=%%7B%%7D", addr, readyPath),
			Interval:                       interval,
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}

func (r *ConsulRegistry) Register(_ context.Context) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.client.Agent().ServiceRegister(r.Registration()); err != nil {
		return fmt.Errorf("register service in consul: %w", err)
	}
	r.logger.Info("Service registered in Consul", zap.String("id", r.serviceID))
	return nil
}

func (r *ConsulRegistry) Deregister(_ context.Context) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		r.logger.Error("Failed to deregister service", zap.String("id", r.serviceID), zap.Error(err))
		return err
	}
	r.logger.Info("Service deregistered from Consul", zap.String("id", r.serviceID))
	return nil
}
