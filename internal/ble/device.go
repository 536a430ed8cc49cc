package ble

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// ParseAddress converts a MAC string to a connectable address.
func ParseAddress(mac string) (bluetooth.Address, error) {
	parsed, err := bluetooth.ParseMAC(mac)
	if err != nil {
		return bluetooth.Address{}, fmt.Errorf("invalid MAC address %q: %w", mac, err)
	}
	return bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: parsed}}, nil
}

// Connect connects to the device at the given MAC.
func Connect(adapter *bluetooth.Adapter, mac string) (bluetooth.Device, error) {
	addr, err := ParseAddress(mac)
	if err != nil {
		return bluetooth.Device{}, err
	}

	config.Debugf("Connecting to %s...", mac)
	device, err := adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return bluetooth.Device{}, fmt.Errorf("failed to connect to %s: %w", mac, err)
	}
	return device, nil
}

// ConnectWithRetry connects to the device at the given MAC, retrying forever
// with a fixed delay until the context is cancelled. The shutter remote
// sleeps aggressively, so failed attempts are routine.
func ConnectWithRetry(ctx context.Context, adapter *bluetooth.Adapter, mac string, delay time.Duration) (bluetooth.Device, error) {
	addr, err := ParseAddress(mac)
	if err != nil {
		return bluetooth.Device{}, err
	}

	for {
		config.Debugf("Connecting to %s...", mac)
		device, err := adapter.Connect(addr, bluetooth.ConnectionParams{})
		if err == nil {
			return device, nil
		}

		log.Warnf("connect to %s failed: %v (retrying in %s)", mac, err, delay)
		select {
		case <-ctx.Done():
			return bluetooth.Device{}, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// DiscoverCharacteristics returns every characteristic of every service the
// device exposes. The shutter remote only has a handful.
func DiscoverCharacteristics(device bluetooth.Device) ([]bluetooth.DeviceCharacteristic, error) {
	config.Debugf("Discovering services...")

	services, err := device.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to discover services: %w", err)
	}

	var all []bluetooth.DeviceCharacteristic
	for i := range services {
		config.Debugf("Found service: %s", services[i].UUID().String())
		chars, err := services[i].DiscoverCharacteristics(nil)
		if err != nil {
			config.Debugf("characteristic discovery failed for service %s: %v", services[i].UUID().String(), err)
			continue
		}
		for j := range chars {
			config.Debugf("Found characteristic: %s", chars[j].UUID().String())
		}
		all = append(all, chars...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no characteristics found")
	}
	return all, nil
}
