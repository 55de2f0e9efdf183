package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_ReturnsAttachedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := &Logger{s: zap.New(core).Sugar()}

	ctx := IntoContext(context.Background(), l.With("handler", "login"))
	FromContext(ctx).Warn("login_failed", "status", 401)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "login_failed", entry.Message)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "login", fields["handler"])
	assert.EqualValues(t, 401, fields["status"])
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	l.Info("ignored")
}
