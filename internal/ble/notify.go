package ble

import (
	"tinygo.org/x/bluetooth"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// NotifyHandler receives each notification payload with the UUID of the
// characteristic that produced it.
type NotifyHandler func(uuid string, payload []byte)

// Subscription is one characteristic with notifications enabled.
type Subscription struct {
	Char bluetooth.DeviceCharacteristic
	UUID string
}

// SubscribeAll enables notifications on every characteristic that accepts
// them and returns the successful subscriptions. The BLE stack doesn't tell
// us up front which characteristics support notify, so we just try them all
// and skip the ones that refuse.
func SubscribeAll(chars []bluetooth.DeviceCharacteristic, handler NotifyHandler) []Subscription {
	var subs []Subscription
	for i := range chars {
		char := chars[i]
		uuid := char.UUID().String()

		err := char.EnableNotifications(func(buf []byte) {
			payload := make([]byte, len(buf))
			copy(payload, buf)
			handler(uuid, payload)
		})
		if err != nil {
			config.Debugf("subscribe failed for %s: %v", uuid, err)
			continue
		}

		config.Debugf("subscribed to %s", uuid)
		subs = append(subs, Subscription{Char: char, UUID: uuid})
	}
	return subs
}

// UnsubscribeAll disables notifications on all subscriptions, best effort.
func UnsubscribeAll(subs []Subscription) {
	for _, sub := range subs {
		if err := sub.Char.EnableNotifications(nil); err != nil {
			config.Debugf("unsubscribe failed for %s: %v", sub.UUID, err)
		}
	}
}
