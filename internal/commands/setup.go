package commands

import (
	"bytes"
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/ble"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// pressBytes is the manual button press payload used to learn which
// characteristic the shutter signals on.
var pressBytes = []byte{0x40, 0x00}

// reconnectDelay between connection attempts during setup and debug.
const reconnectDelay = 2 * time.Second

// SetupOptions holds the flags for the setup command.
type SetupOptions struct {
	ConfigPath      string
	Profile         string
	DeviceName      string
	MAC             string
	ScanTimeout     time.Duration
	PressTimeout    time.Duration
	VerbosePayloads bool
}

// Setup pairs a shutter device with a profile: find the device, learn the
// notify UUID from a button press, and persist both to the config file.
func Setup(ctx context.Context, opts SetupOptions) error {
	if err := config.EnsureExists(opts.ConfigPath); err != nil {
		return err
	}

	adapter, err := ble.EnableAdapter()
	if err != nil {
		return err
	}

	mac := opts.MAC
	if mac == "" {
		log.Infof("Scanning for BLE device named %q...", opts.DeviceName)
		hits, err := ble.Scan(adapter, opts.DeviceName, opts.ScanTimeout)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			return fmt.Errorf("no matching devices found (try again, increase --timeout, or provide --mac)")
		}
		mac = hits[0].MAC
		log.Infof("Found %s @ %s", opts.DeviceName, mac)
	}

	notifyUUID, err := learnNotifyUUID(ctx, adapter, mac, opts.PressTimeout, opts.VerbosePayloads)
	if err != nil {
		return err
	}

	if err := config.UpdateDeviceFields(opts.ConfigPath, opts.Profile, mac, notifyUUID); err != nil {
		return err
	}
	log.Infof("Wrote MAC + notify_uuid to profile '%s'", opts.Profile)

	fmt.Println()
	fmt.Println("Setup complete. Next steps:")
	fmt.Printf("  %s run --profile %s           start capturing\n", config.AppName, opts.Profile)
	fmt.Printf("  %s tune --profile %s          adjust camera settings\n", config.AppName, opts.Profile)
	return nil
}

// learnNotifyUUID subscribes to everything the device offers and waits for a
// manual button press to reveal which characteristic carries the signal.
func learnNotifyUUID(ctx context.Context, adapter *bluetooth.Adapter, mac string, pressTimeout time.Duration, verbose bool) (string, error) {
	log.Infof("Connecting to shutter @ %s (may require waking the device)...", mac)
	device, err := ble.ConnectWithRetry(ctx, adapter, mac, reconnectDelay)
	if err != nil {
		return "", err
	}
	defer device.Disconnect()

	chars, err := ble.DiscoverCharacteristics(device)
	if err != nil {
		return "", err
	}

	found := make(chan string, 1)
	subs := ble.SubscribeAll(chars, func(uuid string, payload []byte) {
		if verbose {
			fmt.Printf("[notify:%s] %x\n", uuid, payload)
		}
		if bytes.Equal(payload, pressBytes) {
			select {
			case found <- uuid:
			default:
			}
		}
	})
	defer ble.UnsubscribeAll(subs)

	config.Debugf("Subscribed to %d/%d characteristic(s)", len(subs), len(chars))
	if len(subs) == 0 {
		return "", fmt.Errorf("could not subscribe to any notify characteristics")
	}

	log.Infof("Learning notify UUID: press the shutter button now (timeout %s)...", pressTimeout)
	select {
	case uuid := <-found:
		log.Infof("Learned notify UUID: %s", uuid)
		return uuid, nil
	case <-time.After(pressTimeout):
		return "", fmt.Errorf("no button press seen within %s", pressTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
