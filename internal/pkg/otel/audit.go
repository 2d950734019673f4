package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// 审计事件名称
const (
	EventReissueRejected = "session.reissue_rejected"
	EventSessionRevoked  = "session.revoked"
	EventAccountCreated  = "account.created"
	EventAccountWithdraw = "account.withdrawn"
)

// Auditor 通过 OpenTelemetry Logs API 输出安全审计事件
type Auditor struct {
	logger otellog.Logger
	now    func() time.Time
}

// NewAuditor 使用全局 LoggerProvider，SDK 未初始化时为 noop
func NewAuditor(scope string) *Auditor {
	return &Auditor{
		logger: global.GetLoggerProvider().Logger(scope),
		now:    time.Now,
	}
}

// Emit 记录一条审计事件
func (a *Auditor) Emit(ctx context.Context, event, username string, attrs ...otellog.KeyValue) {
	if a == nil {
		return
	}

	var r otellog.Record
	r.SetTimestamp(a.now())
	r.SetSeverity(otellog.SeverityInfo)
	r.SetSeverityText("INFO")
	r.SetBody(otellog.StringValue(event))
	r.AddAttributes(
		otellog.String("event.name", event),
		otellog.String("enduser.id", username),
	)
	r.AddAttributes(attrs...)

	a.logger.Emit(ctx, r)
}

// Reason 审计事件的原因属性
func Reason(reason string) otellog.KeyValue {
	return otellog.String("reason", reason)
}
