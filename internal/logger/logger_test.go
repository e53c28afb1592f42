package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFields_Accumulates(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	original := log
	log = zap.New(core)
	defer func() { log = original }()

	ctx := WithFields(context.Background(), zap.String("request_id", "abc"))
	ctx = WithFields(ctx, zap.String("contract", "0x1"))

	InfoCtx(ctx, "resolved")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "abc", fields["request_id"])
		assert.Equal(t, "0x1", fields["contract"])
	}
}

func TestFromContext_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	assert.NotNil(t, FromContext(nil))
}

func TestInitialize_WithoutSentry(t *testing.T) {
	original := log
	defer func() { log = original }()

	assert.NoError(t, Initialize(Config{Debug: true}))
	assert.NotNil(t, Default())
}
