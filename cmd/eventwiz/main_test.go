package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/mark3labs/eventwiz/internal/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FlagsOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("EVENTWIZ_API_URL", "https://env.example.com")
	require.NoError(t, os.WriteFile("eventwiz.yml", []byte("data_dir: .fromfile\nnotify: true\n"), 0600))

	saved := rootFlags
	t.Cleanup(func() { rootFlags = saved })
	rootFlags.apiURL = "https://flag.example.com"
	rootFlags.noNotify = true

	cfg, err := loadConfig(true)

	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", cfg.APIURL)
	assert.Equal(t, ".fromfile", cfg.DataDir)
	assert.False(t, cfg.Notify)
}

func TestLoadConfig_StrictRequiresAPIURL(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("EVENTWIZ_API_URL", "")

	saved := rootFlags
	t.Cleanup(func() { rootFlags = saved })
	rootFlags.apiURL = ""

	_, err := loadConfig(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_url is required")

	_, err = loadConfig(false)
	assert.NoError(t, err)
}

func TestFormatOutcome(t *testing.T) {
	n := submit.Notification{
		Kind:    submit.KindRejected,
		Message: "the events service rejected the event",
		Fields:  map[string]string{"name": "taken", "capacity": "too large"},
		At:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local),
	}

	out := ansi.Strip(formatOutcome(n))

	assert.Contains(t, out, "2025-03-01 09:00:00")
	assert.Contains(t, out, "rejected the events service rejected the event")
	assert.Contains(t, out, "    capacity: too large\n    name: taken")
}
