// Package commands implements the CLI subcommands. The cli package parses
// flags and delegates here.
package commands

import (
	"fmt"
	"time"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/ble"
)

// Scan lists nearby BLE devices, optionally filtered by exact name. Returns
// an error when nothing is found so the CLI exits nonzero.
func Scan(nameFilter string, timeout time.Duration) error {
	adapter, err := ble.EnableAdapter()
	if err != nil {
		return err
	}

	if nameFilter != "" {
		fmt.Printf("Scanning for '%s' (%s)...\n", nameFilter, timeout)
	} else {
		fmt.Printf("Scanning (%s)...\n", timeout)
	}

	results, err := ble.Scan(adapter, nameFilter, timeout)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		return fmt.Errorf("no devices found (try increasing --timeout or moving closer)")
	}

	fmt.Printf("\nFound %d device(s):\n", len(results))
	for _, r := range results {
		name := r.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("  %-24s %s  RSSI %d\n", name, r.MAC, r.RSSI)
	}
	return nil
}
