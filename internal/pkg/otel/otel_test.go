package otel

import (
	"context"
	"testing"

	conf "keum-identity/internal/conf/v1"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetupOTelSDK_Disabled(t *testing.T) {
	logger := zap.NewNop()

	shutdown, err := SetupOTelSDK(context.Background(), nil, "test", logger)
	assert.NoError(t, err)
	assert.Nil(t, shutdown)

	shutdown, err = SetupOTelSDK(context.Background(), &conf.Trace{Enabled: false, Endpoint: "127.0.0.1:4318"}, "test", logger)
	assert.NoError(t, err)
	assert.Nil(t, shutdown)
}

func TestAuditor_EmitWithNoopProvider(t *testing.T) {
	a := NewAuditor("test")
	assert.NotPanics(t, func() {
		a.Emit(context.Background(), EventSessionRevoked, "a@b.com", Reason("withdraw"))
	})

	var nilAuditor *Auditor
	assert.NotPanics(t, func() {
		nilAuditor.Emit(context.Background(), EventSessionRevoked, "a@b.com")
	})
}
