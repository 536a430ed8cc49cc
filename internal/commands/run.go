package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/ble"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/camera"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/captures"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/trigger"
)

// RunOptions holds the flags for the run command.
type RunOptions struct {
	ConfigPath      string
	Profile         string
	DryRun          bool
	VerbosePayloads bool
	ReconnectDelay  time.Duration
}

// Run is the main event loop: connect to the shutter, listen for trigger
// signals, capture on each press, reconnect on disconnect. Runs until the
// context is cancelled.
func Run(ctx context.Context, opts RunOptions) error {
	prof, err := config.LoadProfile(opts.ConfigPath, opts.Profile)
	if err != nil {
		return err
	}

	mac := prof.Device.MAC
	notifyUUID := prof.Device.NotifyUUID
	if mac == "" {
		return fmt.Errorf("profile has no device.mac; run: %s setup --profile <name>", config.AppName)
	}
	if notifyUUID == "" {
		return fmt.Errorf("profile has no device.notify_uuid; run setup to learn it")
	}

	settings := camera.SettingsFromProfile(prof)
	matcher := trigger.NewMatcher(prof.TriggerEvents())
	debouncer := trigger.NewDebouncer(settings.MinInterval)

	log.Infof("Profile: %s", prof.Name)
	log.Infof("MAC: %s", mac)
	log.Infof("Notify UUID: %s", notifyUUID)
	log.Infof("Output dir: %s", settings.OutputDir)
	log.Infof("Configured triggers: %d", matcher.Len())
	if opts.DryRun {
		log.Warn("Dry-run enabled: no photos will be taken.")
	}

	journal, err := captures.Open(settings.OutputDir)
	if err != nil {
		log.Warnf("capture journal unavailable: %v", err)
		journal = nil
	}

	adapter, err := ble.EnableAdapter()
	if err != nil {
		return err
	}

	disconnected := make(chan struct{}, 1)
	adapter.SetConnectHandler(func(dev bluetooth.Device, connected bool) {
		if !connected {
			select {
			case disconnected <- struct{}{}:
			default:
			}
		}
	})

	onNotify := func(uuid string, payload []byte) {
		if opts.VerbosePayloads {
			fmt.Printf("[notify] %x\n", payload)
		}

		evt, ok := matcher.Match(payload)
		if !ok {
			return
		}
		if !debouncer.Allow() {
			log.Debug("Debounced press (too soon).")
			return
		}

		name := evt.Name
		if name == "" {
			name = evt.Hex
		}
		log.Infof("SHUTTER PRESS (%s) %x", name, payload)
		if opts.DryRun {
			return
		}

		outfile, err := settings.Capture(ctx)
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		log.Infof("Captured: %s", outfile)

		if journal != nil {
			err := journal.Append(captures.Record{
				File:      outfile,
				Trigger:   name,
				Profile:   prof.Name,
				Timestamp: time.Now(),
			})
			if err != nil {
				log.Debugf("journal append failed: %v", err)
			}
		}
	}

	for {
		log.Info("Connecting...")
		device, err := ble.ConnectWithRetry(ctx, adapter, mac, opts.ReconnectDelay)
		if err != nil {
			return err // context cancelled
		}
		// Tearing down the previous connection fires the connect handler
		// too; clear its event so it cannot cancel this connection.
		drainDisconnects(disconnected)
		log.Info("Connected; subscribing to notifications...")

		subs, err := subscribeNotifyUUID(device, notifyUUID, onNotify)
		if err != nil {
			log.Errorf("%v", err)
			device.Disconnect()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.ReconnectDelay):
			}
			continue
		}

		log.Info("Listening... (Ctrl+C to quit)")
		select {
		case <-ctx.Done():
			ble.UnsubscribeAll(subs)
			device.Disconnect()
			log.Info("Exiting.")
			return nil
		case <-disconnected:
			device.Disconnect()
			log.Warn("Disconnected; will reconnect...")
		}
	}
}

// drainDisconnects empties pending disconnect events without blocking.
func drainDisconnects(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// subscribeNotifyUUID subscribes only to the learned notify characteristic.
func subscribeNotifyUUID(device bluetooth.Device, notifyUUID string, handler ble.NotifyHandler) ([]ble.Subscription, error) {
	chars, err := ble.DiscoverCharacteristics(device)
	if err != nil {
		return nil, err
	}

	var match []bluetooth.DeviceCharacteristic
	for i := range chars {
		if strings.EqualFold(chars[i].UUID().String(), notifyUUID) {
			match = append(match, chars[i])
		}
	}
	if len(match) == 0 {
		return nil, fmt.Errorf("notify characteristic %s not found on device", notifyUUID)
	}

	subs := ble.SubscribeAll(match, handler)
	if len(subs) == 0 {
		return nil, fmt.Errorf("failed to subscribe to %s", notifyUUID)
	}
	return subs, nil
}
