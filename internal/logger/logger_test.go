package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.log")
	log, err := New(Options{Level: "debug", Encoding: "json", File: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	log.Info("quote calculated")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"quote calculated"`)
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Level: "info", Encoding: "xml"})
	assert.Error(t, err)
}

func TestNewConsole(t *testing.T) {
	log, err := New(Options{Level: "info", Encoding: "console", Dev: true})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(0))
	assert.False(t, log.Core().Enabled(-1))
}
