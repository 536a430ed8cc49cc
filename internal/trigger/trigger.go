// Package trigger decides whether a BLE notification payload should fire a
// capture: byte-pattern matching against the profile's trigger events plus
// debounce suppression of rapid repeats.
package trigger

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// Matcher maps notification payloads to capture-enabled trigger events.
type Matcher struct {
	events map[string]config.TriggerEvent
}

// NewMatcher builds a matcher from the profile's trigger events. Only
// capture-enabled events participate; invalid hex patterns are skipped.
func NewMatcher(events []config.TriggerEvent) *Matcher {
	m := &Matcher{events: make(map[string]config.TriggerEvent)}
	for _, evt := range events {
		if !evt.Capture {
			continue
		}
		key := strings.ToLower(evt.Hex)
		if _, err := hex.DecodeString(key); err != nil {
			config.Debugf("ignoring trigger with invalid hex %q", evt.Hex)
			continue
		}
		m.events[key] = evt
	}
	return m
}

// Match returns the capture event matching the payload, if any.
func (m *Matcher) Match(payload []byte) (config.TriggerEvent, bool) {
	evt, ok := m.events[hex.EncodeToString(payload)]
	return evt, ok
}

// Len reports how many capture patterns are armed.
func (m *Matcher) Len() int {
	return len(m.events)
}

// Debouncer suppresses triggers that arrive within the minimum interval of
// the previous allowed trigger. A physical button press often emits several
// notifications back to back.
type Debouncer struct {
	minInterval time.Duration
	last        time.Time
	now         func() time.Time
}

// NewDebouncer returns a debouncer with the given minimum interval between
// allowed triggers. A non-positive interval allows everything.
func NewDebouncer(minInterval time.Duration) *Debouncer {
	return &Debouncer{minInterval: minInterval, now: time.Now}
}

// Allow reports whether a trigger arriving now should fire, and records it
// as the last allowed trigger if so.
func (d *Debouncer) Allow() bool {
	now := d.now()
	if !d.last.IsZero() && now.Sub(d.last) < d.minInterval {
		return false
	}
	d.last = now
	return true
}
