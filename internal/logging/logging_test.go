package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleOnly(t *testing.T) {
	log, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Debug("console only")
}

func TestNewWithFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")
	log, err := New(Options{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	// Sync flushes the file core; stdout may reject Sync so the error
	// is not checked.
	log.Info("written to file")
	_ = log.Sync()

	assert.FileExists(t, path)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
