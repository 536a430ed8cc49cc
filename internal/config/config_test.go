package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureExists(t *testing.T) {
	t.Run("creates config file if missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		require.NoError(t, EnsureExists(path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.False(t, info.IsDir())
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dirs", "config.toml")

		require.NoError(t, EnsureExists(path))

		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("does not overwrite existing config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("default_profile = 'mine'\n"), 0o644))

		require.NoError(t, EnsureExists(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "default_profile = 'mine'\n", string(data))
	})

	t.Run("default profile settings", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, EnsureExists(path))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "default", cfg.DefaultProfile)
		prof, ok := cfg.Profiles["default"]
		require.True(t, ok)
		assert.Equal(t, "BBL_SHUTTER", prof.Device.Name)
		require.NotNil(t, prof.Camera.Rpicam.Width)
		assert.Equal(t, 1920, *prof.Camera.Rpicam.Width)
		require.NotNil(t, prof.Camera.Rpicam.Height)
		assert.Equal(t, 1080, *prof.Camera.Rpicam.Height)
		require.NotNil(t, prof.Camera.Rpicam.NoPreview)
		assert.True(t, *prof.Camera.Rpicam.NoPreview)
		assert.Equal(t, 0.5, prof.Camera.MinIntervalSec)
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads valid toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		toml := `
default_profile = "office"

[profiles.office.device]
mac = "AA:BB:CC:DD:EE:FF"
`
		require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "office", cfg.DefaultProfile)
		assert.Equal(t, "AA:BB:CC:DD:EE:FF", cfg.Profiles["office"].Device.MAC)
	})

	t.Run("errors on missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("errors on malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[[[not toml"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new", "path", "config.toml")
	shutter := 8000
	gain := 2.5
	noPreview := true

	cfg := &Config{
		DefaultProfile: "workshop",
		Profiles: map[string]Profile{
			"workshop": {
				Device: Device{
					Name:       "BBL_SHUTTER",
					MAC:        "AA:BB:CC:DD:EE:FF",
					NotifyUUID: "00002a4d-0000-1000-8000-00805f9b34fb",
					Events: []TriggerEvent{
						{Hex: "4000", Capture: true, Name: "manual_button"},
					},
				},
				Camera: Camera{
					OutputDir:      "/tmp/captures",
					FilenameFormat: "%Y%m%d_%H%M%S.jpg",
					MinIntervalSec: 1.5,
					Rpicam: Rpicam{
						Shutter:   &shutter,
						Gain:      &gain,
						NoPreview: &noPreview,
					},
				},
			},
		},
	}

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "workshop", loaded.DefaultProfile)

	prof := loaded.Profiles["workshop"]
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", prof.Device.MAC)
	require.Len(t, prof.Device.Events, 1)
	assert.Equal(t, "4000", prof.Device.Events[0].Hex)
	assert.True(t, prof.Device.Events[0].Capture)
	assert.Equal(t, 1.5, prof.Camera.MinIntervalSec)
	require.NotNil(t, prof.Camera.Rpicam.Shutter)
	assert.Equal(t, 8000, *prof.Camera.Rpicam.Shutter)
	require.NotNil(t, prof.Camera.Rpicam.Gain)
	assert.Equal(t, 2.5, *prof.Camera.Rpicam.Gain)
	assert.Nil(t, prof.Camera.Rpicam.Width)
}

func TestLoadProfile(t *testing.T) {
	write := func(t *testing.T, toml string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))
		return path
	}

	t.Run("loads named profile", func(t *testing.T) {
		path := write(t, `
[profiles.office.device]
mac = "AA:BB:CC:DD:EE:FF"
`)
		prof, err := LoadProfile(path, "office")
		require.NoError(t, err)
		assert.Equal(t, "AA:BB:CC:DD:EE:FF", prof.Device.MAC)
		assert.Equal(t, "office", prof.Name)
	})

	t.Run("resolves default profile when name empty", func(t *testing.T) {
		path := write(t, `
default_profile = "workshop"

[profiles.workshop.device]
name = "MY_DEVICE"
`)
		prof, err := LoadProfile(path, "")
		require.NoError(t, err)
		assert.Equal(t, "MY_DEVICE", prof.Device.Name)
		assert.Equal(t, "workshop", prof.Name)
	})

	t.Run("errors on missing profiles section", func(t *testing.T) {
		path := write(t, `default_profile = "test"`)

		_, err := LoadProfile(path, "office")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "setup")
	})

	t.Run("errors on unknown profile", func(t *testing.T) {
		path := write(t, "[profiles.office.device]\nname = 'x'\n")

		_, err := LoadProfile(path, "nonexistent")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"nonexistent" not found`)
	})

	t.Run("errors when no default profile set", func(t *testing.T) {
		path := write(t, "[profiles.office.device]\nname = 'x'\n")

		_, err := LoadProfile(path, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no default_profile")
	})
}

func TestTriggerEvents(t *testing.T) {
	t.Run("returns configured events", func(t *testing.T) {
		prof := &Profile{Device: Device{Events: []TriggerEvent{
			{Hex: "4000", Capture: true},
			{Hex: "0000", Capture: false},
		}}}

		events := prof.TriggerEvents()
		require.Len(t, events, 2)
		assert.Equal(t, "4000", events[0].Hex)
		assert.True(t, events[0].Capture)
		assert.False(t, events[1].Capture)
	})

	t.Run("falls back to hardware defaults", func(t *testing.T) {
		prof := &Profile{}

		events := prof.TriggerEvents()
		require.Len(t, events, 3)

		var captures int
		hexes := make(map[string]bool)
		for _, e := range events {
			hexes[e.Hex] = true
			if e.Capture {
				captures++
			}
		}
		assert.True(t, hexes["4000"])
		assert.True(t, hexes["8000"])
		assert.True(t, hexes["0000"])
		assert.Equal(t, 2, captures)
	})
}

func TestCaptureTriggerBytes(t *testing.T) {
	t.Run("returns only capture-enabled events", func(t *testing.T) {
		prof := &Profile{Device: Device{Events: []TriggerEvent{
			{Hex: "4000", Capture: true},
			{Hex: "0000", Capture: false},
			{Hex: "8000", Capture: true},
		}}}

		triggers := prof.CaptureTriggerBytes()
		assert.Equal(t, [][]byte{{0x40, 0x00}, {0x80, 0x00}}, triggers)
	})

	t.Run("converts hex to bytes", func(t *testing.T) {
		prof := &Profile{Device: Device{Events: []TriggerEvent{
			{Hex: "abcd", Capture: true},
		}}}

		assert.Equal(t, [][]byte{{0xab, 0xcd}}, prof.CaptureTriggerBytes())
	})

	t.Run("empty when no capture events", func(t *testing.T) {
		prof := &Profile{Device: Device{Events: []TriggerEvent{
			{Hex: "4000", Capture: false},
		}}}

		assert.Empty(t, prof.CaptureTriggerBytes())
	})

	t.Run("defaults when no events configured", func(t *testing.T) {
		prof := &Profile{}

		triggers := prof.CaptureTriggerBytes()
		assert.Equal(t, [][]byte{{0x40, 0x00}, {0x80, 0x00}}, triggers)
	})

	t.Run("skips invalid hex", func(t *testing.T) {
		prof := &Profile{Device: Device{Events: []TriggerEvent{
			{Hex: "4000", Capture: true},
			{Hex: "invalid", Capture: true},
			{Hex: "8000", Capture: true},
		}}}

		assert.Equal(t, [][]byte{{0x40, 0x00}, {0x80, 0x00}}, prof.CaptureTriggerBytes())
	})
}

func TestUpdateDeviceFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, EnsureExists(path))

	err := UpdateDeviceFields(path, "garage", "11:22:33:44:55:66", "00002a4d-0000-1000-8000-00805f9b34fb")
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "garage", cfg.DefaultProfile)
	prof := cfg.Profiles["garage"]
	assert.Equal(t, "11:22:33:44:55:66", prof.Device.MAC)
	assert.Equal(t, "00002a4d-0000-1000-8000-00805f9b34fb", prof.Device.NotifyUUID)

	// existing default profile untouched
	assert.Contains(t, cfg.Profiles, "default")
}

func TestUpdateSignals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, EnsureExists(path))

	signals := []SignalCount{
		{UUID: "00002a4d-0000-1000-8000-00805f9b34fb", Hex: "4000", Count: 3},
		{UUID: "00002a4d-0000-1000-8000-00805f9b34fb", Hex: "0000", Count: 3},
	}
	require.NoError(t, UpdateSignals(path, "default", signals))

	prof, err := LoadProfile(path, "default")
	require.NoError(t, err)
	require.Len(t, prof.Device.Events, 2)
	assert.True(t, prof.Device.Events[0].Capture)
	assert.False(t, prof.Device.Events[1].Capture, "release payload 0000 must not capture")
	assert.Equal(t, 3, prof.Device.Events[0].Count)

	t.Run("errors on unknown profile", func(t *testing.T) {
		err := UpdateSignals(path, "missing", signals)
		assert.Error(t, err)
	})
}

func TestUpdateCamera(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, EnsureExists(path))

	ev := 2
	noPreview := true
	rp := Rpicam{EV: &ev, NoPreview: &noPreview}
	require.NoError(t, UpdateCamera(path, "default", rp))

	prof, err := LoadProfile(path, "default")
	require.NoError(t, err)
	require.NotNil(t, prof.Camera.Rpicam.EV)
	assert.Equal(t, 2, *prof.Camera.Rpicam.EV)
	// output settings outside rpicam survive the update
	assert.Equal(t, 0.5, prof.Camera.MinIntervalSec)
	assert.Equal(t, "%Y%m%d_%H%M%S.jpg", prof.Camera.FilenameFormat)
}
