package types

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	NopLogger
	name string
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", GetRequestID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestLoggerFromContext(t *testing.T) {
	fallback := &recordingLogger{name: "fallback"}
	stored := &recordingLogger{name: "stored"}

	assert.Same(t, fallback, LoggerFromContext(context.Background(), fallback))

	ctx := WithLogger(context.Background(), stored)
	assert.Same(t, stored, LoggerFromContext(ctx, fallback))
}
