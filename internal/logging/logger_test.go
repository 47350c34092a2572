package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"", "dev", "prod", "PRODUCTION", "quiet"} {
		l, err := New(mode)
		require.NoError(t, err, "mode %q", mode)
		require.NotNil(t, l)
	}
}

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).With("book", "b1")

	l.Info("page generated", "page", 2)
	l.Warn("field missing", "field", "kod")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "page generated", entries[0].Message)
	assert.Equal(t, "b1", entries[0].ContextMap()["book"])
	assert.EqualValues(t, 2, entries[0].ContextMap()["page"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestNop_Discards(t *testing.T) {
	l := Nop()
	l.Debug("x")
	l.Error("y", "k", "v")
	l.Sync()
}
