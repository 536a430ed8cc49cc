// Package tui implements the interactive camera tuning screen.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// Run starts the tuning screen for the given profile and blocks until the
// user saves or quits.
func Run(configPath, profile string) error {
	prof, err := config.LoadProfile(configPath, profile)
	if err != nil {
		return err
	}

	m := NewModel(configPath, prof)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tuning screen failed: %w", err)
	}
	return nil
}
