package logger

import (
	"college_survey_backend/internal/config"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesServiceFieldToConfiguredFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "survey.log")
	log := New(config.LogConfig{File: file, Level: "warn", MaxSizeMB: 1}, "debug")

	log.Info("dropped below warn")
	log.Warn("kept", zap.String("college", "Lakeside"))
	// stdout may refuse fsync; lumberjack writes through
	_ = log.Sync()

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, "Lakeside", entry["college"])
}

func TestLevelFallsBackToServerMode(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, levelFor("", "debug"))
	assert.Equal(t, zap.InfoLevel, levelFor("", "release"))
	assert.Equal(t, zap.InfoLevel, levelFor("loud", "release"))
	assert.Equal(t, zap.ErrorLevel, levelFor("error", "debug"))
}
