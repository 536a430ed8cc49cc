package commands

import (
	"fmt"
	"path/filepath"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/camera"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/captures"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// ListCaptures prints the capture journal for a profile, newest first.
func ListCaptures(configPath, profile string, limit int) error {
	prof, err := config.LoadProfile(configPath, profile)
	if err != nil {
		return err
	}

	settings := camera.SettingsFromProfile(prof)
	journal, err := captures.Open(settings.OutputDir)
	if err != nil {
		return err
	}

	recs, err := journal.List(limit)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		fmt.Printf("No captures recorded for profile '%s'.\n", prof.Name)
		return nil
	}

	fmt.Printf("Found %d capture(s) in %s:\n\n", len(recs), settings.OutputDir)
	for _, rec := range recs {
		trig := rec.Trigger
		if trig == "" {
			trig = "-"
		}
		fmt.Printf("  %s  %-16s  %s\n",
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			trig,
			filepath.Base(rec.File))
	}
	return nil
}
