package observability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/drover-ai/drover/internal/config"
)

type memSink struct {
	strings.Builder
}

func (memSink) Sync() error { return nil }

func TestInitializeWritesToConsole(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{Level: "debug", Format: "json"}, zapcore.AddSync(sink))

	GetLogger().Info("hello")
	require.NoError(t, GetLogger().Sync())
	assert.Contains(t, sink.String(), `"msg":"hello"`)
}

func TestGetLoggerBeforeInitializeIsNop(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	assert.NotPanics(t, func() {
		GetLogger().Info("dropped")
		Sync()
	})
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{Level: "chatty", Format: "json"}, zapcore.AddSync(sink))
	GetLogger().Debug("below info")
	GetLogger().Info("at info")
	require.NoError(t, GetLogger().Sync())
	out := sink.String()
	assert.NotContains(t, out, "below info")
	assert.Contains(t, out, "at info")
}

func TestInitializeOnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &memSink{}
	second := &memSink{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(first))
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(second))
	GetLogger().Info("routed")
	require.NoError(t, GetLogger().Sync())
	assert.Contains(t, first.String(), "routed")
	assert.Empty(t, second.String())
}
