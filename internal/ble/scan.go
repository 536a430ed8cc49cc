// Package ble wraps the small slice of Bluetooth functionality the shutter
// device needs: scanning, connecting by MAC, and subscribing to notify
// characteristics. Payload interpretation lives elsewhere.
package ble

import (
	"fmt"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// DefaultDeviceName is the advertised name of the Bambu Lab shutter remote.
const DefaultDeviceName = "BBL_SHUTTER"

// ScanResult is one discovered device.
type ScanResult struct {
	Name string
	MAC  string
	RSSI int16
}

// EnableAdapter enables the default Bluetooth adapter.
func EnableAdapter() (*bluetooth.Adapter, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable Bluetooth: %w", err)
	}
	return adapter, nil
}

// Scan discovers advertising devices for the given duration and returns them
// deduplicated by MAC. A non-empty nameFilter keeps only devices whose
// advertised name matches it exactly.
func Scan(adapter *bluetooth.Adapter, nameFilter string, timeout time.Duration) ([]ScanResult, error) {
	config.Debugf("BLE scan start: timeout=%s filter=%q", timeout, nameFilter)

	seen := make(map[string]bool)
	var results []ScanResult

	timer := time.AfterFunc(timeout, func() {
		adapter.StopScan()
	})
	defer timer.Stop()

	err := adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		name := result.LocalName()
		mac := result.Address.String()

		if config.Verbose && name != "" {
			fmt.Printf("  Found: '%s' (%s)\n", name, mac)
		}

		if seen[mac] {
			return
		}
		if nameFilter != "" && name != nameFilter {
			return
		}
		seen[mac] = true
		results = append(results, ScanResult{Name: name, MAC: mac, RSSI: result.RSSI})
	})
	if err != nil {
		return nil, fmt.Errorf("scan error: %w", err)
	}

	config.Debugf("BLE scan done: %d device(s)", len(results))
	return results, nil
}
