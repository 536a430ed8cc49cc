package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

func fieldByName(t *testing.T, name string) field {
	t.Helper()
	for _, f := range tuneFields() {
		if f.name == name {
			return f
		}
	}
	t.Fatalf("no field named %q", name)
	return field{}
}

func TestNextOptionCyclesAndWraps(t *testing.T) {
	opts := []string{"auto", "daylight", "cloudy"}

	assert.Equal(t, "auto", nextOption(opts, nil))

	cur := "auto"
	assert.Equal(t, "daylight", nextOption(opts, &cur))

	cur = "cloudy"
	assert.Equal(t, "auto", nextOption(opts, &cur))

	cur = "bogus"
	assert.Equal(t, "auto", nextOption(opts, &cur))
}

func TestRotationAcceptsOnlyRightAngles(t *testing.T) {
	f := fieldByName(t, "Rotation")
	var rp config.Rpicam

	require.NoError(t, f.set(&rp, "180"))
	require.NotNil(t, rp.Rotation)
	assert.Equal(t, 180, *rp.Rotation)

	assert.Error(t, f.set(&rp, "45"))
	assert.Error(t, f.set(&rp, "abc"))
	assert.Equal(t, 180, *rp.Rotation)
}

func TestNumericFieldRanges(t *testing.T) {
	tests := []struct {
		field string
		ok    []string
		bad   []string
	}{
		{"EV", []string{"-10", "0", "10"}, []string{"-11", "11", "x"}},
		{"Lens Position", []string{"0", "8.5", "100"}, []string{"-1", "101"}},
		{"Saturation", []string{"0", "1.0", "2"}, []string{"-0.1", "2.1"}},
		{"Brightness", []string{"-1", "0", "1"}, []string{"-1.5", "1.5"}},
		{"Quality", []string{"0", "93", "100"}, []string{"-1", "101"}},
		{"Shutter", []string{"0", "10000"}, []string{"-1", "fast"}},
		{"Gain", []string{"1.0", "16"}, []string{"-2", "x"}},
	}

	for _, tt := range tests {
		f := fieldByName(t, tt.field)
		for _, in := range tt.ok {
			var rp config.Rpicam
			assert.NoError(t, f.set(&rp, in), "%s = %s", tt.field, in)
		}
		for _, in := range tt.bad {
			var rp config.Rpicam
			assert.Error(t, f.set(&rp, in), "%s = %s", tt.field, in)
		}
	}
}

func TestBoolFieldsToggle(t *testing.T) {
	f := fieldByName(t, "H-Flip")
	var rp config.Rpicam

	assert.Equal(t, "false", f.value(&rp))
	f.toggle(&rp)
	assert.True(t, rp.HFlip)
	assert.Equal(t, "true", f.value(&rp))
	f.toggle(&rp)
	assert.False(t, rp.HFlip)
}

func TestEnumFieldCyclesThroughOptions(t *testing.T) {
	f := fieldByName(t, "Denoise")
	var rp config.Rpicam

	f.cycle(&rp)
	require.NotNil(t, rp.Denoise)
	assert.Equal(t, "off", *rp.Denoise)

	f.cycle(&rp)
	assert.Equal(t, "cdn_off", *rp.Denoise)

	f.clear(&rp)
	assert.Nil(t, rp.Denoise)
}

func TestClearResetsToUnset(t *testing.T) {
	f := fieldByName(t, "Width")
	var rp config.Rpicam

	require.NoError(t, f.set(&rp, "2560"))
	require.NotNil(t, rp.Width)

	f.clear(&rp)
	assert.Nil(t, rp.Width)
	assert.Equal(t, "1920", f.value(&rp))
}
