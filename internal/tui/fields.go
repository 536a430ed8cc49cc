package tui

import (
	"fmt"
	"strconv"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// fieldKind determines how a tunable setting is edited: text entry with
// validation, cycling through fixed options, or a plain toggle.
type fieldKind int

const (
	fieldText fieldKind = iota
	fieldEnum
	fieldBool
)

// field is one tunable rpicam setting.
type field struct {
	name    string
	section string
	kind    fieldKind
	hint    string
	options []string

	// value renders the current setting; set parses and applies input
	// (fieldText), cycle advances to the next option (fieldEnum), toggle
	// flips (fieldBool), clear resets to unset.
	value  func(rp *config.Rpicam) string
	set    func(rp *config.Rpicam, input string) error
	cycle  func(rp *config.Rpicam)
	toggle func(rp *config.Rpicam)
	clear  func(rp *config.Rpicam)
}

func intField(v *int, fallback string) string {
	if v == nil {
		return fallback
	}
	return strconv.Itoa(*v)
}

func floatField(v *float64, fallback string) string {
	if v == nil {
		return fallback
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func stringField(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func parseIntIn(input string, min, max int) (int, error) {
	v, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number")
	}
	if v < min || v > max {
		return 0, fmt.Errorf("out of range (%d to %d)", min, max)
	}
	return v, nil
}

func parseFloatIn(input string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number")
	}
	if v < min || v > max {
		return 0, fmt.Errorf("out of range (%g to %g)", min, max)
	}
	return v, nil
}

// nextOption returns the option after current, wrapping around. An unset
// current lands on the first option.
func nextOption(options []string, current *string) string {
	if current == nil {
		return options[0]
	}
	for i, opt := range options {
		if opt == *current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// tuneFields is the full list of tunable settings, grouped the way the
// tuning screen displays them.
func tuneFields() []field {
	return []field{
		{
			name: "Width", section: "Resolution & Orientation", kind: fieldText,
			hint:  "pixels",
			value: func(rp *config.Rpicam) string { return intField(rp.Width, "1920") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := parseIntIn(in, 1, 10000)
				if err != nil {
					return err
				}
				rp.Width = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.Width = nil },
		},
		{
			name: "Height", section: "Resolution & Orientation", kind: fieldText,
			hint:  "pixels",
			value: func(rp *config.Rpicam) string { return intField(rp.Height, "1080") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := parseIntIn(in, 1, 10000)
				if err != nil {
					return err
				}
				rp.Height = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.Height = nil },
		},
		{
			name: "Rotation", section: "Resolution & Orientation", kind: fieldText,
			hint:  "0, 90, 180, or 270",
			value: func(rp *config.Rpicam) string { return intField(rp.Rotation, "default (0)") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := strconv.Atoi(in)
				if err != nil {
					return fmt.Errorf("invalid number")
				}
				if v != 0 && v != 90 && v != 180 && v != 270 {
					return fmt.Errorf("must be 0, 90, 180, or 270")
				}
				rp.Rotation = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.Rotation = nil },
		},
		{
			name: "H-Flip", section: "Resolution & Orientation", kind: fieldBool,
			value:  func(rp *config.Rpicam) string { return strconv.FormatBool(rp.HFlip) },
			toggle: func(rp *config.Rpicam) { rp.HFlip = !rp.HFlip },
		},
		{
			name: "V-Flip", section: "Resolution & Orientation", kind: fieldBool,
			value:  func(rp *config.Rpicam) string { return strconv.FormatBool(rp.VFlip) },
			toggle: func(rp *config.Rpicam) { rp.VFlip = !rp.VFlip },
		},
		{
			name: "AF Mode", section: "Focus", kind: fieldEnum,
			options: []string{"auto", "manual", "continuous"},
			value:   func(rp *config.Rpicam) string { return stringField(rp.AutofocusMode, "default") },
			cycle: func(rp *config.Rpicam) {
				v := nextOption([]string{"auto", "manual", "continuous"}, rp.AutofocusMode)
				rp.AutofocusMode = &v
			},
			clear: func(rp *config.Rpicam) { rp.AutofocusMode = nil },
		},
		{
			name: "Lens Position", section: "Focus", kind: fieldText,
			hint:  "0.0 = infinity, ~8.0 = near",
			value: func(rp *config.Rpicam) string { return floatField(rp.LensPosition, "auto") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := parseFloatIn(in, 0, 100)
				if err != nil {
					return err
				}
				rp.LensPosition = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.LensPosition = nil },
		},
		{
			name: "EV", section: "Exposure & Color", kind: fieldText,
			hint:  "-10 to +10",
			value: func(rp *config.Rpicam) string { return intField(rp.EV, "0") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := parseIntIn(in, -10, 10)
				if err != nil {
					return err
				}
				rp.EV = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.EV = nil },
		},
		{
			name: "AWB", section: "Exposure & Color", kind: fieldEnum,
			options: []string{"auto", "daylight", "tungsten", "fluorescent", "indoor", "cloudy"},
			value:   func(rp *config.Rpicam) string { return stringField(rp.AWB, "auto") },
			cycle: func(rp *config.Rpicam) {
				v := nextOption([]string{"auto", "daylight", "tungsten", "fluorescent", "indoor", "cloudy"}, rp.AWB)
				rp.AWB = &v
			},
			clear: func(rp *config.Rpicam) { rp.AWB = nil },
		},
		{
			name: "Saturation", section: "Exposure & Color", kind: fieldText,
			hint:  "0.0 to 2.0, default 1.0",
			value: func(rp *config.Rpicam) string { return floatField(rp.Saturation, "default") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := parseFloatIn(in, 0, 2)
				if err != nil {
					return err
				}
				rp.Saturation = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.Saturation = nil },
		},
		{
			name: "Contrast", section: "Exposure & Color", kind: fieldText,
			hint:  "0.0 to 2.0, default 1.0",
			value: func(rp *config.Rpicam) string { return floatField(rp.Contrast, "default") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := parseFloatIn(in, 0, 2)
				if err != nil {
					return err
				}
				rp.Contrast = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.Contrast = nil },
		},
		{
			name: "Brightness", section: "Exposure & Color", kind: fieldText,
			hint:  "-1.0 to 1.0, default 0.0",
			value: func(rp *config.Rpicam) string { return floatField(rp.Brightness, "default") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := parseFloatIn(in, -1, 1)
				if err != nil {
					return err
				}
				rp.Brightness = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.Brightness = nil },
		},
		{
			name: "Sharpness", section: "Exposure & Color", kind: fieldText,
			hint:  "0.0 to 2.0, default 1.0",
			value: func(rp *config.Rpicam) string { return floatField(rp.Sharpness, "default") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := parseFloatIn(in, 0, 2)
				if err != nil {
					return err
				}
				rp.Sharpness = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.Sharpness = nil },
		},
		{
			name: "Denoise", section: "Advanced", kind: fieldEnum,
			options: []string{"off", "cdn_off", "cdn_fast", "cdn_hq"},
			value:   func(rp *config.Rpicam) string { return stringField(rp.Denoise, "default") },
			cycle: func(rp *config.Rpicam) {
				v := nextOption([]string{"off", "cdn_off", "cdn_fast", "cdn_hq"}, rp.Denoise)
				rp.Denoise = &v
			},
			clear: func(rp *config.Rpicam) { rp.Denoise = nil },
		},
		{
			name: "Metering", section: "Advanced", kind: fieldEnum,
			options: []string{"centre", "spot", "matrix", "custom"},
			value:   func(rp *config.Rpicam) string { return stringField(rp.Metering, "default") },
			cycle: func(rp *config.Rpicam) {
				v := nextOption([]string{"centre", "spot", "matrix", "custom"}, rp.Metering)
				rp.Metering = &v
			},
			clear: func(rp *config.Rpicam) { rp.Metering = nil },
		},
		{
			name: "Quality", section: "Advanced", kind: fieldText,
			hint:  "0 to 100, default 93",
			value: func(rp *config.Rpicam) string { return intField(rp.Quality, "default (93)") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := parseIntIn(in, 0, 100)
				if err != nil {
					return err
				}
				rp.Quality = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.Quality = nil },
		},
		{
			name: "Shutter", section: "Advanced", kind: fieldText,
			hint:  "microseconds, 10000 = 1/100s",
			value: func(rp *config.Rpicam) string { return intField(rp.Shutter, "auto") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := strconv.Atoi(in)
				if err != nil {
					return fmt.Errorf("invalid number")
				}
				if v < 0 {
					return fmt.Errorf("must be positive")
				}
				rp.Shutter = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.Shutter = nil },
		},
		{
			name: "Gain", section: "Advanced", kind: fieldText,
			hint:  "typically 1.0 to 16.0",
			value: func(rp *config.Rpicam) string { return floatField(rp.Gain, "auto") },
			set: func(rp *config.Rpicam, in string) error {
				v, err := strconv.ParseFloat(in, 64)
				if err != nil {
					return fmt.Errorf("invalid number")
				}
				if v < 0 {
					return fmt.Errorf("must be positive")
				}
				rp.Gain = &v
				return nil
			},
			clear: func(rp *config.Rpicam) { rp.Gain = nil },
		},
	}
}
