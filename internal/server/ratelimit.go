package server

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"keum-identity/api/auth/v1/authv1connect"
	conf "keum-identity/internal/conf/v1"
	"keum-identity/internal/pkg/i18n"

	"connectrpc.com/connect"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 10
	limiterCleanupPeriod  = 5 * time.Minute
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter 按客户端 IP 限制认证相关接口的调用频率
type RateLimiter struct {
	enabled bool
	limit   rate.Limit
	burst   int
	trusted []netip.Prefix
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	limiters map[string]*clientLimiter
	stopCh   chan struct{}
}

var _ connect.Interceptor = (*RateLimiter)(nil)

// NewRateLimiter 未启用时拦截器直接放行
func NewRateLimiter(lc fx.Lifecycle, cfg *conf.Bootstrap, logger *zap.Logger) (*RateLimiter, error) {
	var rlCfg *conf.RateLimit
	if cfg.Server != nil {
		rlCfg = cfg.Server.RateLimit
	}
	rl, err := newRateLimiter(rlCfg, logger)
	if err != nil {
		return nil, err
	}
	if !rl.enabled {
		return rl, nil
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go rl.cleanupLoop()
			return nil
		},
		OnStop: func(context.Context) error {
			close(rl.stopCh)
			return nil
		},
	})
	return rl, nil
}

func newRateLimiter(cfg *conf.RateLimit, logger *zap.Logger) (*RateLimiter, error) {
	rl := &RateLimiter{
		limit:    defaultRateLimitRPS,
		burst:    defaultRateLimitBurst,
		logger:   logger,
		now:      time.Now,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	if cfg == nil {
		return rl, nil
	}
	rl.enabled = cfg.Enabled
	if cfg.Rps > 0 {
		rl.limit = rate.Limit(cfg.Rps)
	}
	if cfg.Burst > 0 {
		rl.burst = int(cfg.Burst)
	}
	trusted, err := parseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	rl.trusted = trusted
	return rl, nil
}

// parseTrustedProxies 支持单个 IP 与 CIDR 两种写法
func parseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (rl *RateLimiter) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastAccess = rl.now()
	return cl.limiter
}

func (rl *RateLimiter) allow(key string) bool {
	return rl.limiterFor(key).AllowN(rl.now(), 1)
}

// Len 当前跟踪的客户端数量
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup 删除超过两个清理周期未访问的条目
func (rl *RateLimiter) cleanup() {
	ttl := 2 * limiterCleanupPeriod
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}

// clientIP 默认使用连接的对端地址。
// 对端是可信代理时，从右向左取 X-Forwarded-For 中第一个不可信的地址。
func (rl *RateLimiter) clientIP(peerAddr, xff string) string {
	host := peerAddr
	if h, _, err := net.SplitHostPort(peerAddr); err == nil {
		host = h
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !rl.isTrusted(peer) || xff == "" {
		return host
	}

	hops := strings.Split(xff, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			// 无法解析的条目之后的内容不可信
			return host
		}
		if !rl.isTrusted(addr) {
			return addr.Unmap().String()
		}
	}
	return host
}

func (rl *RateLimiter) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if !rl.enabled || req.Spec().IsClient || !strings.HasPrefix(req.Spec().Procedure, "/"+authv1connect.AuthServiceName+"/") {
			return next(ctx, req)
		}

		ip := rl.clientIP(req.Peer().Addr, strings.Join(req.Header().Values("X-Forwarded-For"), ","))
		if !rl.allow(ip) {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("client", ip),
				zap.String("procedure", req.Spec().Procedure),
			)
			ce := localizedError(connect.CodeResourceExhausted, req.Header(), i18n.KeyRateLimited)
			ce.Meta().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rl.limit)))
			return nil, ce
		}
		return next(ctx, req)
	}
}

func (rl *RateLimiter) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (rl *RateLimiter) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}

// retryAfterSeconds 补充一个令牌所需的秒数
func retryAfterSeconds(limit rate.Limit) int {
	sec := int(math.Ceil(1.0 / float64(limit)))
	if sec < 1 {
		sec = 1
	}
	return sec
}
