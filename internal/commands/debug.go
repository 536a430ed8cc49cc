package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/ble"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// DebugOptions holds the flags for the debug command.
type DebugOptions struct {
	ConfigPath   string
	Profile      string
	MAC          string
	Duration     time.Duration
	UpdateConfig bool
}

// signalLog tracks every payload seen per characteristic.
type signalLog struct {
	mu   sync.Mutex
	seen map[string]map[string]int // uuid -> hex -> count
}

func (s *signalLog) record(uuid, hexSig string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[uuid] == nil {
		s.seen[uuid] = make(map[string]int)
	}
	s.seen[uuid][hexSig]++
}

// Debug subscribes to every characteristic on the device and dumps each
// notification, then prints a per-UUID summary of unique signals. With
// UpdateConfig set, the discovered signals become the profile's trigger
// events.
func Debug(ctx context.Context, opts DebugOptions) error {
	mac := opts.MAC
	if mac == "" {
		prof, err := config.LoadProfile(opts.ConfigPath, opts.Profile)
		if err != nil {
			return err
		}
		mac = prof.Device.MAC
		if mac == "" {
			return fmt.Errorf("profile has no device.mac; run: %s setup --profile <name>, or pass --mac", config.AppName)
		}
	}

	adapter, err := ble.EnableAdapter()
	if err != nil {
		return err
	}

	log.Infof("Connecting to %s...", mac)
	device, err := ble.ConnectWithRetry(ctx, adapter, mac, reconnectDelay)
	if err != nil {
		return err
	}
	defer device.Disconnect()

	chars, err := ble.DiscoverCharacteristics(device)
	if err != nil {
		return err
	}

	signals := &signalLog{seen: make(map[string]map[string]int)}
	subs := ble.SubscribeAll(chars, func(uuid string, payload []byte) {
		hexSig := strings.ToUpper(fmt.Sprintf("%x", payload))
		signals.record(uuid, hexSig)

		decVals := make([]string, len(payload))
		for i, b := range payload {
			decVals[i] = fmt.Sprintf("%3d", b)
		}
		fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), uuid)
		fmt.Printf("           HEX: %s\n", hexSig)
		fmt.Printf("           DEC: %s\n", strings.Join(decVals, " "))
		fmt.Printf("           LEN: %d bytes\n\n", len(payload))
	})
	defer ble.UnsubscribeAll(subs)

	log.Infof("Subscribed to %d/%d characteristic(s)", len(subs), len(chars))
	if len(subs) == 0 {
		return fmt.Errorf("could not subscribe to any notify characteristics")
	}
	fmt.Println()

	if opts.Duration > 0 {
		fmt.Printf("Listening for %s...\n", opts.Duration)
		fmt.Println("(Trigger your device now to see signals)")
		fmt.Println()
		select {
		case <-time.After(opts.Duration):
		case <-ctx.Done():
		}
	} else {
		fmt.Println("Listening indefinitely... Press Ctrl+C to exit")
		fmt.Println()
		<-ctx.Done()
	}

	printSignalSummary(signals)

	if opts.UpdateConfig {
		counts := collectSignals(signals)
		if len(counts) == 0 {
			log.Warn("No signals received; config not updated.")
			return nil
		}
		if err := config.UpdateSignals(opts.ConfigPath, opts.Profile, counts); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		log.Infof("Updated profile '%s' with %d discovered signal(s)", opts.Profile, len(counts))
		fmt.Printf("\nConfig updated with %d signal(s)\n", len(counts))
		fmt.Printf("  Location: %s\n", opts.ConfigPath)
	}

	return nil
}

func printSignalSummary(signals *signalLog) {
	signals.mu.Lock()
	defer signals.mu.Unlock()

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SIGNAL SUMMARY")
	fmt.Println(strings.Repeat("=", 60))

	uuids := make([]string, 0, len(signals.seen))
	for uuid := range signals.seen {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)

	for _, uuid := range uuids {
		fmt.Printf("\n%s:\n", uuid)
		for _, sig := range sortedByCount(signals.seen[uuid]) {
			fmt.Printf("  %-20s (received %d time(s))\n", sig.Hex, sig.Count)
		}
	}
}

// collectSignals flattens the log into per-UUID signal counts, UUIDs in
// lexical order and signals most frequent first.
func collectSignals(signals *signalLog) []config.SignalCount {
	signals.mu.Lock()
	defer signals.mu.Unlock()

	uuids := make([]string, 0, len(signals.seen))
	for uuid := range signals.seen {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)

	var out []config.SignalCount
	for _, uuid := range uuids {
		for _, sig := range sortedByCount(signals.seen[uuid]) {
			out = append(out, config.SignalCount{UUID: uuid, Hex: sig.Hex, Count: sig.Count})
		}
	}
	return out
}

type sigCount struct {
	Hex   string
	Count int
}

func sortedByCount(m map[string]int) []sigCount {
	out := make([]sigCount, 0, len(m))
	for hexSig, count := range m {
		out = append(out, sigCount{Hex: hexSig, Count: count})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Hex < out[b].Hex
	})
	return out
}
