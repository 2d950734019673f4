// Package v1 定义服务配置结构，字段与 configs/config.yaml 一一对应。
package v1

// Bootstrap 配置根节点
type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	Auth     *Auth     `json:"auth"`
	OAuth    *OAuth    `json:"oauth"`
	Trace    *Trace    `json:"trace"`
	Registry *Registry `json:"registry"`
	Log      *Log      `json:"log"`
}

type Server struct {
	Http      *ServerHTTP `json:"http"`
	RateLimit *RateLimit  `json:"rate_limit"`
}

type ServerHTTP struct {
	Addr string `json:"addr"`

	// 单位：秒
	ReadTimeout  int32    `json:"read_timeout"`
	WriteTimeout int32    `json:"write_timeout"`
	IdleTimeout  int32    `json:"idle_timeout"`
	CorsOrigins  []string `json:"cors_origins"`
}

// RateLimit 认证相关接口的按客户端限流
type RateLimit struct {
	Enabled bool    `json:"enabled"`
	Rps     float64 `json:"rps"`
	Burst   int32   `json:"burst"`
	// 可信反向代理的 IP 或 CIDR，只有来自这些地址的请求才读取 X-Forwarded-For
	TrustedProxies []string `json:"trusted_proxies"`
}

type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
}

type Database struct {
	// postgres | sqlite | memory
	Driver      string `json:"driver"`
	User        string `json:"user"`
	Password    string `json:"password"`
	Host        string `json:"host"`
	Port        int32  `json:"port"`
	DbName      string `json:"db_name"`
	SslMode     string `json:"ssl_mode"`
	Timezone    string `json:"timezone"`
	Path        string `json:"path"`
	AutoMigrate bool   `json:"auto_migrate"`
}

type Redis struct {
	// redis | memory
	Driver       string `json:"driver"`
	Host         string `json:"host"`
	Port         int32  `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Db           int32  `json:"db"`
	DialTimeout  int32  `json:"dial_timeout"`
	ReadTimeout  int32  `json:"read_timeout"`
	WriteTimeout int32  `json:"write_timeout"`
	PoolSize     int32  `json:"pool_size"`
	MinIdleConns int32  `json:"min_idle_conns"`
}

type Auth struct {
	Issuer              string `json:"issuer"`
	AccessSecret        string `json:"access_secret"`
	RefreshSecret       string `json:"refresh_secret"`
	AccessExpireSeconds int64  `json:"access_expire_seconds"`

	// 同时作为 Redis 中 refresh token 的 TTL
	RefreshExpireSeconds int64 `json:"refresh_expire_seconds"`
	HandshakeTtlSeconds  int64 `json:"handshake_ttl_seconds"`
	BcryptCost           int32 `json:"bcrypt_cost"`
}

type OAuth struct {
	// 调用第三方接口的超时时间，单位：秒
	TimeoutSeconds int32          `json:"timeout_seconds"`
	Google         *OAuthProvider `json:"google"`
	Kakao          *OAuthProvider `json:"kakao"`
}

type OAuthProvider struct {
	ClientId     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectUri  string `json:"redirect_uri"`
	AuthUrl      string `json:"auth_url"`
	TokenUrl     string `json:"token_url"`
	UserInfoUrl  string `json:"user_info_url"`
}

type Trace struct {
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint"`
	Insecure bool   `json:"insecure"`
}

type Registry struct {
	Consul *Consul `json:"consul"`
}

type Consul struct {
	Enabled             bool     `json:"enabled"`
	Address             string   `json:"address"`
	Scheme              string   `json:"scheme"`
	Token               string   `json:"token"`
	ServiceHost         string   `json:"service_host"`
	ServicePort         int32    `json:"service_port"`
	Tags                []string `json:"tags"`
	HealthCheckInterval string   `json:"health_check_interval"`
}

type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}
