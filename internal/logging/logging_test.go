package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mdd.log")
	l, closer, err := New(path, "debug")
	require.NoError(t, err)

	l.WithField("component", "session").Debug("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdd.log")
	l, closer, err := New(path, "warn")
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNew_BadLevel(t *testing.T) {
	_, _, err := New("", "loud")
	assert.Error(t, err)
}

func TestNew_EmptyPathDiscards(t *testing.T) {
	l, closer, err := New("", "info")
	require.NoError(t, err)
	l.Info("nowhere")
	assert.NoError(t, closer.Close())
}
