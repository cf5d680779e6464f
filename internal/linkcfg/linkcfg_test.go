package linkcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "linkkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
channels:
  - device: /dev/ttyUSB0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, defaultKISSPort, cfg.KISSPort)
	assert.Equal(t, defaultRingSize, cfg.RingSize)
	assert.Equal(t, defaultFrameLen, cfg.FrameMaxLen)
	assert.Equal(t, "info", cfg.LogLevel)
	require.Len(t, cfg.Channels, 1)
	assert.Equal(t, defaultBaud, cfg.Channels[0].Baud)
}

func TestLoadRejectsNoChannels(t *testing.T) {
	path := writeTempConfig(t, `kiss_port: 9000`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsChannelWithoutDevice(t *testing.T) {
	path := writeTempConfig(t, `
channels:
  - baud: 9600
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadPreservesExplicitValues(t *testing.T) {
	path := writeTempConfig(t, `
kiss_port: 9001
log_level: debug
channels:
  - device: /dev/ttyUSB0
    baud: 115200
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.KISSPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 115200, cfg.Channels[0].Baud)
}
