package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridastar.log")
	logger, cleanup, err := New(Options{FilePath: path})
	require.NoError(t, err)

	logger.Info("search finished")
	logger.Debug("expanded node")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO")
	assert.Contains(t, string(data), "search finished")
	assert.NotContains(t, string(data), "expanded node")
}

func TestNewDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridastar.log")
	logger, cleanup, err := New(Options{FilePath: path, Debug: true})
	require.NoError(t, err)

	logger.Debug("expanded node")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DEBUG")
	assert.Contains(t, string(data), "expanded node")
}

func TestNewWithoutOutputsIsNop(t *testing.T) {
	logger, cleanup, err := New(Options{})
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, logger)
	logger.Info("dropped")
}

func TestNewFailsOnUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, _, err := New(Options{FilePath: filepath.Join(blocker, "gridastar.log")})
	assert.Error(t, err)
}
