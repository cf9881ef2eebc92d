package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energy-admin/config"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		warn  bool
	}{
		{level: "debug", debug: true, warn: true},
		{level: "info", debug: false, warn: true},
		{level: "error", debug: false, warn: false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(config.LogConfig{Level: tt.level, Format: "json"})
			require.NoError(t, err)
			assert.Equal(t, tt.debug, log.Core().Enabled(zap.DebugLevel))
			assert.Equal(t, tt.warn, log.Core().Enabled(zap.WarnLevel))
		})
	}
}

func TestNewFile(t *testing.T) {
	log, err := NewFile(config.LogConfig{Level: "info"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.ErrorLevel))

	path := filepath.Join(t.TempDir(), "console.log")
	log, err = NewFile(config.LogConfig{Level: "info", Format: "json", File: path})
	require.NoError(t, err)
	log.Info("hello", zap.String("page", "machines"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"page":"machines"`)
}
