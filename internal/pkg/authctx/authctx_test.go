package authctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallerRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithCaller(context.Background(), Caller{Username: "a@b.com", AccessToken: "tok"})
	c, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", c.Username)
	assert.Equal(t, "tok", c.AccessToken)

	_, ok = FromContext(WithCaller(context.Background(), Caller{}))
	assert.False(t, ok)
}
