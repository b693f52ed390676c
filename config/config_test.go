package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "synaptics", c.Input.NameFilter)
	assert.Equal(t, DefaultListenAddress, c.Server.Listen)
	assert.Equal(t, 0, c.Gesture.Mask)
	assert.Equal(t, "screen-on", c.Gesture.Gate)
	assert.Equal(t, 500*time.Millisecond, c.Power.PollInterval)
	assert.Equal(t, "power-key", c.Action.Kind)
	assert.Equal(t, 32, c.History.Size)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[input]
device = "/dev/input/event2"

[gesture]
mask = 28
debug = true
catalog = "/etc/sweep2sleep/gestures.ini"

[power]
backlight = "/sys/class/backlight/panel0/bl_power"
poll_interval = "1s"

[action]
kind = "adb"
serial = "R58M1234"
`), 0o644))

	t.Setenv("SWEEP2SLEEP_GESTURE_MASK", "284")
	t.Setenv("SWEEP2SLEEP_SERVER_LISTEN", "0.0.0.0:13000")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/input/event2", c.Input.Device)
	assert.Equal(t, 284, c.Gesture.Mask, "env overrides file")
	assert.True(t, c.Gesture.Debug)
	assert.Equal(t, "/etc/sweep2sleep/gestures.ini", c.Gesture.Catalog)
	assert.Equal(t, "/sys/class/backlight/panel0/bl_power", c.Power.Backlight)
	assert.Equal(t, time.Second, c.Power.PollInterval)
	assert.Equal(t, "adb", c.Action.Kind)
	assert.Equal(t, "R58M1234", c.Action.Serial)
	assert.Equal(t, "0.0.0.0:13000", c.Server.Listen)
}

func TestLoad_ConfigEnvVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[history]\nsize = 8\n"), 0o644))
	t.Setenv("SWEEP2SLEEP_CONFIG", path)

	assert.Equal(t, path, Path())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, c.History.Size)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[gesture\nmask = "), 0o644))
	_, err := Load(broken)
	assert.ErrorContains(t, err, "read config")

	empty := filepath.Join(dir, "empty-history.toml")
	require.NoError(t, os.WriteFile(empty, []byte("[history]\nsize = 0\n"), 0o644))
	_, err = Load(empty)
	assert.ErrorContains(t, err, "history.size must be positive")
}
