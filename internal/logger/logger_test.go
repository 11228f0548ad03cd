package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("service", "ReviewService").Info("review built", "entries", 3)
	l.Debug("dropped")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "review built", entry.Message)
	assert.Equal(t, "ReviewService", entry.ContextMap()["service"])
	assert.EqualValues(t, 3, entry.ContextMap()["entries"])
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode)
		require.NoError(t, err)
		assert.NotNil(t, l.SugaredLogger)
	}
}
