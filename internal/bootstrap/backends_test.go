package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOpenBackends_UnknownBlobDriver(t *testing.T) {
	cfg := testConfig(t, "placeholder")
	cfg.Blob.Driver = "tape"

	b, err := OpenBackends(context.Background(), cfg, zap.NewNop())
	assert.Nil(t, b)
	assert.ErrorContains(t, err, `unknown blob driver "tape"`)
}

func TestBackends_CloseAfterFailureLogsCloseErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	var closed []string
	b := &Backends{closers: []func() error{
		func() error { closed = append(closed, "pool"); return nil },
		func() error { closed = append(closed, "redis"); return errors.New("redis: client is closed") },
	}}
	b.closeAfterFailure(zap.New(core))

	assert.Equal(t, []string{"redis", "pool"}, closed)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "closing partially opened backends", entry.Message)
	assert.Equal(t, "redis: client is closed", entry.ContextMap()["error"])

	b.closeAfterFailure(zap.New(core))
	assert.Equal(t, 1, logs.Len())
}
