// Package camera builds and runs rpicam-still invocations from profile
// settings. Only explicitly set parameters appear on the command line so the
// binary's own defaults apply everywhere else.
package camera

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// Binary is the external still-capture program.
const Binary = "rpicam-still"

// captureMargin is added on top of the configured rpicam timeout before the
// subprocess is killed.
const captureMargin = 10 * time.Second

// Settings is the resolved capture configuration for one profile.
type Settings struct {
	OutputDir      string
	FilenameFormat string
	MinInterval    time.Duration
	Rpicam         config.Rpicam
}

// SettingsFromProfile extracts camera settings from a profile, applying
// defaults for anything unset.
func SettingsFromProfile(prof *config.Profile) Settings {
	s := Settings{
		OutputDir:      prof.Camera.OutputDir,
		FilenameFormat: prof.Camera.FilenameFormat,
		Rpicam:         prof.Camera.Rpicam,
	}

	if s.OutputDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		s.OutputDir = filepath.Join(home, "captures")
	}
	if s.FilenameFormat == "" {
		s.FilenameFormat = "%Y%m%d_%H%M%S.jpg"
	}

	interval := prof.Camera.MinIntervalSec
	if interval <= 0 {
		interval = 0.5
	}
	s.MinInterval = time.Duration(interval * float64(time.Second))

	if s.Rpicam.Width == nil {
		w := 1920
		s.Rpicam.Width = &w
	}
	if s.Rpicam.Height == nil {
		h := 1080
		s.Rpicam.Height = &h
	}
	// Headless default: preview stays off unless a profile turns it on.
	if s.Rpicam.NoPreview == nil {
		np := true
		s.Rpicam.NoPreview = &np
	}

	return s
}

// strftimeLayout translates the common strftime tokens used in
// filename_format to a Go time layout. Unknown tokens pass through
// unchanged.
var strftimeReplacer = strings.NewReplacer(
	"%Y", "2006",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%M", "04",
	"%S", "05",
	"%y", "06",
	"%j", "002",
	"%%", "%",
)

func strftimeLayout(format string) string {
	return strftimeReplacer.Replace(format)
}

// Outfile returns the capture destination for the given time, expanding a
// leading ~ in the output dir and creating the directory if needed. The file
// itself is not created.
func (s Settings) Outfile(now time.Time) (string, error) {
	dir := s.OutputDir
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home dir: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	name := now.Format(strftimeLayout(s.FilenameFormat))
	return filepath.Join(dir, name), nil
}

// BuildCommand returns the full rpicam-still argv for the given output file.
func (s Settings) BuildCommand(outfile string) []string {
	rp := s.Rpicam
	cmd := []string{Binary, "-o", outfile}

	if rp.NoPreview != nil && *rp.NoPreview {
		cmd = append(cmd, "--nopreview")
	}

	if rp.Width != nil {
		cmd = append(cmd, "--width", strconv.Itoa(*rp.Width))
	}
	if rp.Height != nil {
		cmd = append(cmd, "--height", strconv.Itoa(*rp.Height))
	}

	if rp.Rotation != nil {
		cmd = append(cmd, "--rotation", strconv.Itoa(*rp.Rotation))
	}
	if rp.HFlip {
		cmd = append(cmd, "--hflip")
	}
	if rp.VFlip {
		cmd = append(cmd, "--vflip")
	}

	if rp.AWB != nil {
		cmd = append(cmd, "--awb", *rp.AWB)
	}
	if rp.EV != nil {
		cmd = append(cmd, "--ev", strconv.Itoa(*rp.EV))
	}
	if rp.Denoise != nil {
		cmd = append(cmd, "--denoise", *rp.Denoise)
	}
	if rp.Sharpness != nil {
		cmd = append(cmd, "--sharpness", formatFloat(*rp.Sharpness))
	}

	// Locks, set these to freeze exposure/white balance
	if rp.Shutter != nil {
		cmd = append(cmd, "--shutter", strconv.Itoa(*rp.Shutter))
	}
	if rp.Gain != nil {
		cmd = append(cmd, "--gain", formatFloat(*rp.Gain))
	}
	if rp.AWBGains != nil {
		cmd = append(cmd, "--awbgains", *rp.AWBGains)
	}

	if rp.Saturation != nil {
		cmd = append(cmd, "--saturation", formatFloat(*rp.Saturation))
	}
	if rp.Contrast != nil {
		cmd = append(cmd, "--contrast", formatFloat(*rp.Contrast))
	}
	if rp.Brightness != nil {
		cmd = append(cmd, "--brightness", formatFloat(*rp.Brightness))
	}

	if rp.Metering != nil {
		cmd = append(cmd, "--metering", *rp.Metering)
	}
	if rp.AutofocusMode != nil {
		cmd = append(cmd, "--autofocus-mode", *rp.AutofocusMode)
	}
	if rp.LensPosition != nil {
		cmd = append(cmd, "--lens-position", formatFloat(*rp.LensPosition))
	}

	if rp.Quality != nil {
		cmd = append(cmd, "--quality", strconv.Itoa(*rp.Quality))
	}
	if rp.Timeout != nil {
		cmd = append(cmd, "--timeout", strconv.Itoa(*rp.Timeout))
	}

	return cmd
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Capture runs rpicam-still and returns the path of the captured image.
func (s Settings) Capture(ctx context.Context) (string, error) {
	outfile, err := s.Outfile(time.Now())
	if err != nil {
		return "", err
	}
	if err := s.CaptureTo(ctx, outfile); err != nil {
		return "", err
	}
	return outfile, nil
}

// CaptureTo runs rpicam-still writing to the given path. The subprocess is
// killed if it outlives the configured timeout plus a margin.
func (s Settings) CaptureTo(ctx context.Context, outfile string) error {
	argv := s.BuildCommand(outfile)
	log.Debugf("running: %s", strings.Join(argv, " "))

	deadline := captureMargin
	if s.Rpicam.Timeout != nil {
		deadline += time.Duration(*s.Rpicam.Timeout) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s failed: %w: %s", Binary, err, strings.TrimSpace(string(out)))
		}
		return fmt.Errorf("%s failed: %w", Binary, err)
	}

	return nil
}
