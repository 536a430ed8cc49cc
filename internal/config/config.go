package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// AppName is used for the config directory and CLI program name.
const AppName = "bbl-shutter-cam"

// Verbose enables debug output when true
var Verbose bool

// Debugf prints debug messages when Verbose is true
func Debugf(format string, args ...any) {
	if Verbose {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

// Config is the full on-disk configuration: a default profile name plus
// named profiles for each printer/camera pairing.
type Config struct {
	DefaultProfile string             `toml:"default_profile,omitempty"`
	Profiles       map[string]Profile `toml:"profiles"`
}

// Profile is one named device+camera configuration bundle.
type Profile struct {
	Device Device `toml:"device"`
	Camera Camera `toml:"camera"`

	// Name is the resolved profile name, filled in by LoadProfile.
	Name string `toml:"-"`
}

// Device holds BLE pairing fields learned during setup.
type Device struct {
	Name       string         `toml:"name,omitempty"`
	MAC        string         `toml:"mac,omitempty"`
	NotifyUUID string         `toml:"notify_uuid,omitempty"`
	Events     []TriggerEvent `toml:"events,omitempty"`
}

// TriggerEvent maps a notification payload to a capture decision.
type TriggerEvent struct {
	UUID    string `toml:"uuid,omitempty"`
	Hex     string `toml:"hex"`
	Capture bool   `toml:"capture"`
	Name    string `toml:"name,omitempty"`
	Count   int    `toml:"count,omitempty"`
}

// Camera holds output settings plus the rpicam-still flag table.
type Camera struct {
	OutputDir      string  `toml:"output_dir,omitempty"`
	FilenameFormat string  `toml:"filename_format,omitempty"`
	MinIntervalSec float64 `toml:"min_interval_sec,omitempty"`
	Rpicam         Rpicam  `toml:"rpicam"`
}

// Rpicam mirrors the rpicam-still command-line options. Pointer fields are
// omitted from the built command when unset.
type Rpicam struct {
	Width     *int  `toml:"width,omitempty"`
	Height    *int  `toml:"height,omitempty"`
	NoPreview *bool `toml:"nopreview,omitempty"`

	Rotation *int `toml:"rotation,omitempty"`
	HFlip    bool `toml:"hflip,omitempty"`
	VFlip    bool `toml:"vflip,omitempty"`

	AWB       *string  `toml:"awb,omitempty"`
	EV        *int     `toml:"ev,omitempty"`
	Denoise   *string  `toml:"denoise,omitempty"`
	Sharpness *float64 `toml:"sharpness,omitempty"`

	// Manual locks, setting these freezes exposure/white balance.
	Shutter  *int     `toml:"shutter,omitempty"` // microseconds
	Gain     *float64 `toml:"gain,omitempty"`
	AWBGains *string  `toml:"awbgains,omitempty"` // "r,b"

	Saturation *float64 `toml:"saturation,omitempty"`
	Contrast   *float64 `toml:"contrast,omitempty"`
	Brightness *float64 `toml:"brightness,omitempty"`

	Metering      *string  `toml:"metering,omitempty"`
	AutofocusMode *string  `toml:"autofocus_mode,omitempty"`
	LensPosition  *float64 `toml:"lens_position,omitempty"`

	Quality *int `toml:"quality,omitempty"`
	Timeout *int `toml:"timeout,omitempty"` // milliseconds
}

// DefaultPath returns the default config file location,
// ~/.config/bbl-shutter-cam/config.toml on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "config.toml"), nil
}

// EnsureExists creates a config file with a minimal default profile if none
// exists yet. Existing files are left untouched.
func EnsureExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	width, height := 1920, 1080
	noPreview := true
	cfg := Config{
		DefaultProfile: "default",
		Profiles: map[string]Profile{
			"default": {
				Device: Device{
					Name: "BBL_SHUTTER",
					// mac and notify_uuid get filled in by setup
				},
				Camera: Camera{
					OutputDir:      filepath.Join(home, "captures", "default"),
					FilenameFormat: "%Y%m%d_%H%M%S.jpg",
					MinIntervalSec: 0.5,
					Rpicam: Rpicam{
						Width:     &width,
						Height:    &height,
						NoPreview: &noPreview,
					},
				},
			},
		},
	}

	return Save(&cfg, path)
}

// Load reads and parses the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	return &cfg, nil
}

// Save writes the configuration to disk, creating parent directories as
// needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadProfile loads a single named profile. An empty name resolves
// default_profile from the config. The returned profile has Name set to the
// resolved profile name.
func LoadProfile(path, name string) (*Profile, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if len(cfg.Profiles) == 0 {
		return nil, fmt.Errorf("no [profiles] section in config, run: %s setup --profile <name>", AppName)
	}

	if name == "" {
		name = cfg.DefaultProfile
		if name == "" {
			return nil, fmt.Errorf("no profile specified and no default_profile set")
		}
	}

	prof, ok := cfg.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile %q not found in config", name)
	}

	prof.Name = name
	return &prof, nil
}

// DefaultTriggerEvents are the hardware defaults for BBL_SHUTTER devices,
// used when a profile configures no events of its own.
var DefaultTriggerEvents = []TriggerEvent{
	{UUID: "00002a4d-0000-1000-8000-00805f9b34fb", Hex: "4000", Capture: true, Name: "manual_button"},
	{UUID: "00002a4d-0000-1000-8000-00805f9b34fb", Hex: "8000", Capture: true, Name: "bambu_studio"},
	{UUID: "00002a4d-0000-1000-8000-00805f9b34fb", Hex: "0000", Capture: false, Name: "release"},
}

// TriggerEvents returns the profile's configured trigger events, falling
// back to the hardware defaults when none are configured.
func (p *Profile) TriggerEvents() []TriggerEvent {
	if len(p.Device.Events) == 0 {
		return DefaultTriggerEvents
	}
	return p.Device.Events
}

// CaptureTriggerBytes returns the decoded payloads of all capture-enabled
// trigger events. Events with invalid hex are skipped.
func (p *Profile) CaptureTriggerBytes() [][]byte {
	var triggers [][]byte
	for _, evt := range p.TriggerEvents() {
		if !evt.Capture {
			continue
		}
		b, err := hex.DecodeString(evt.Hex)
		if err != nil {
			Debugf("skipping event with invalid hex %q", evt.Hex)
			continue
		}
		triggers = append(triggers, b)
	}
	return triggers
}

// UpdateDeviceFields stores the learned MAC and notify UUID in the named
// profile (created if new) and marks it as the default profile.
func UpdateDeviceFields(path, name, mac, notifyUUID string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}

	prof := cfg.Profiles[name]
	prof.Device.MAC = mac
	prof.Device.NotifyUUID = notifyUUID
	cfg.Profiles[name] = prof
	cfg.DefaultProfile = name

	return Save(cfg, path)
}

// UpdateCamera replaces the named profile's rpicam settings, keeping the
// rest of the camera section intact.
func UpdateCamera(path, name string, rp Rpicam) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}

	prof, ok := cfg.Profiles[name]
	if !ok {
		return fmt.Errorf("profile %q not found in config", name)
	}
	prof.Camera.Rpicam = rp
	cfg.Profiles[name] = prof

	return Save(cfg, path)
}

// SignalCount is one unique payload observed on a characteristic during a
// debug session.
type SignalCount struct {
	UUID  string
	Hex   string
	Count int
}

// UpdateSignals writes discovered signals to the profile's trigger events.
// Everything except the "0000" button release is marked for capture.
func UpdateSignals(path, name string, signals []SignalCount) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}

	prof, ok := cfg.Profiles[name]
	if !ok {
		return fmt.Errorf("profile %q not found in config", name)
	}

	events := make([]TriggerEvent, 0, len(signals))
	for _, sig := range signals {
		events = append(events, TriggerEvent{
			UUID:    sig.UUID,
			Hex:     sig.Hex,
			Count:   sig.Count,
			Capture: sig.Hex != "0000",
		})
	}
	prof.Device.Events = events
	cfg.Profiles[name] = prof

	return Save(cfg, path)
}
