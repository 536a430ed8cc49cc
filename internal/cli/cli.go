// Package cli defines the command structure for bbl-shutter-cam.
package cli

import (
	"context"
	"time"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/commands"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/tui"
)

// CLI is the root command structure.
type CLI struct {
	Config    string `help:"Path to config file (default: per-user config dir)" type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `help:"Log format (plain, time)" default:"plain" enum:"plain,time"`
	LogFile   string `help:"Also append logs to this file" type:"path"`
	Verbose   bool   `short:"v" help:"Enable verbose debug output"`

	Scan     ScanCmd     `cmd:"" help:"Scan for BLE shutter remotes"`
	Setup    SetupCmd    `cmd:"" help:"Pair a remote and learn its button characteristic"`
	Debug    DebugCmd    `cmd:"" help:"Print raw notifications from a connected remote"`
	Tune     TuneCmd     `cmd:"" help:"Interactively tune camera settings"`
	Run      RunCmd      `cmd:"" help:"Listen for shutter presses and capture photos"`
	Captures CapturesCmd `cmd:"" help:"List recorded captures for a profile"`
}

// ConfigPath resolves the config file location, falling back to the per-user
// default when --config is not given.
func (c *CLI) ConfigPath() (string, error) {
	if c.Config != "" {
		return c.Config, nil
	}
	return config.DefaultPath()
}

// ScanCmd scans for nearby devices.
type ScanCmd struct {
	Name    string        `help:"Only show devices with this exact name" default:"${default_device}"`
	All     bool          `help:"Show all devices regardless of name"`
	Timeout time.Duration `help:"How long to scan" default:"10s"`
}

func (c *ScanCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	name := c.Name
	if c.All {
		name = ""
	}
	return commands.Scan(name, c.Timeout)
}

// SetupCmd pairs a remote and stores it in a profile.
type SetupCmd struct {
	Profile      string        `help:"Profile name to create or update" default:"default"`
	Name         string        `help:"Device name to scan for" default:"${default_device}"`
	MAC          string        `help:"Skip scanning and use this MAC address"`
	ScanTimeout  time.Duration `help:"How long to scan for the device" default:"15s"`
	PressTimeout time.Duration `help:"How long to wait for a button press" default:"60s"`
}

func (c *SetupCmd) Run(globals *CLI, ctx context.Context) error {
	config.Verbose = globals.Verbose
	path, err := globals.ConfigPath()
	if err != nil {
		return err
	}
	return commands.Setup(ctx, commands.SetupOptions{
		ConfigPath:      path,
		Profile:         c.Profile,
		DeviceName:      c.Name,
		MAC:             c.MAC,
		ScanTimeout:     c.ScanTimeout,
		PressTimeout:    c.PressTimeout,
		VerbosePayloads: globals.Verbose,
	})
}

// DebugCmd prints every notification a remote sends.
type DebugCmd struct {
	Profile      string        `help:"Profile to read the MAC from" default:"default"`
	MAC          string        `help:"Connect to this MAC instead of the profile's"`
	Duration     time.Duration `help:"Stop after this long (0 = until interrupted)" default:"120s"`
	UpdateConfig bool          `help:"Record observed signals into the profile"`
}

func (c *DebugCmd) Run(globals *CLI, ctx context.Context) error {
	config.Verbose = globals.Verbose
	path, err := globals.ConfigPath()
	if err != nil {
		return err
	}
	return commands.Debug(ctx, commands.DebugOptions{
		ConfigPath:   path,
		Profile:      c.Profile,
		MAC:          c.MAC,
		Duration:     c.Duration,
		UpdateConfig: c.UpdateConfig,
	})
}

// TuneCmd opens the interactive tuning screen.
type TuneCmd struct {
	Profile string `help:"Profile to tune" default:"default"`
}

func (c *TuneCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	path, err := globals.ConfigPath()
	if err != nil {
		return err
	}
	return tui.Run(path, c.Profile)
}

// RunCmd is the long-running capture loop.
type RunCmd struct {
	Profile        string        `help:"Profile to run" default:"default"`
	DryRun         bool          `help:"Log presses without capturing"`
	ReconnectDelay time.Duration `help:"Delay between reconnect attempts" default:"2s"`
}

func (c *RunCmd) Run(globals *CLI, ctx context.Context) error {
	config.Verbose = globals.Verbose
	path, err := globals.ConfigPath()
	if err != nil {
		return err
	}
	return commands.Run(ctx, commands.RunOptions{
		ConfigPath:      path,
		Profile:         c.Profile,
		DryRun:          c.DryRun,
		VerbosePayloads: globals.Verbose,
		ReconnectDelay:  c.ReconnectDelay,
	})
}

// CapturesCmd lists the capture journal.
type CapturesCmd struct {
	Profile string `help:"Profile whose captures to list" default:"default"`
	Limit   int    `help:"Show at most this many entries (0 = all)" default:"20"`
}

func (c *CapturesCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	path, err := globals.ConfigPath()
	if err != nil {
		return err
	}
	return commands.ListCaptures(path, c.Profile, c.Limit)
}
