package biz

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

const instrumentationName = "keum-identity/biz"

type metrics struct {
	tokensMinted     metric.Int64Counter
	reissueRejected  metric.Int64Counter
	handshakesStaged metric.Int64Counter
	providerFailures metric.Int64Counter
}

func newMetrics(logger *zap.Logger) *metrics {
	meter := otel.GetMeterProvider().Meter(instrumentationName)
	return &metrics{
		tokensMinted:     counter(meter, "identity.tokens.minted", "签发的 token 对数量", logger),
		reissueRejected:  counter(meter, "identity.reissue.rejected", "被拒绝的续期请求数量", logger),
		handshakesStaged: counter(meter, "identity.handshakes.staged", "暂存的 OAuth 握手数量", logger),
		providerFailures: counter(meter, "identity.provider.failures", "第三方接口调用失败数量", logger),
	}
}

func counter(meter metric.Meter, name, desc string, logger *zap.Logger) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{count}"))
	if err != nil {
		logger.Error("Failed to create counter", zap.String("name", name), zap.Error(err))
		return noop.Int64Counter{}
	}
	return c
}

func reasonAttr(reason string) metric.AddOption {
	return metric.WithAttributes(attribute.String("reason", reason))
}

func providerAttr(provider string) metric.AddOption {
	return metric.WithAttributes(attribute.String("provider", provider))
}
