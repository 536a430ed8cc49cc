package cli

import (
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/ble"
)

func newParser(t *testing.T, root *CLI) *kong.Kong {
	t.Helper()
	parser, err := kong.New(root,
		kong.Vars{"default_device": ble.DefaultDeviceName},
	)
	require.NoError(t, err)
	return parser
}

func TestDebugDefaultDuration(t *testing.T) {
	var root CLI
	_, err := newParser(t, &root).Parse([]string{"debug"})
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, root.Debug.Duration)
}

func TestDebugDurationZeroMeansIndefinite(t *testing.T) {
	var root CLI
	_, err := newParser(t, &root).Parse([]string{"debug", "--duration", "0s"})
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), root.Debug.Duration)
}

func TestScanDefaultsToShutterName(t *testing.T) {
	var root CLI
	_, err := newParser(t, &root).Parse([]string{"scan"})
	require.NoError(t, err)

	assert.Equal(t, ble.DefaultDeviceName, root.Scan.Name)
	assert.Equal(t, 10*time.Second, root.Scan.Timeout)
}

func TestRunDefaults(t *testing.T) {
	var root CLI
	_, err := newParser(t, &root).Parse([]string{"run"})
	require.NoError(t, err)

	assert.Equal(t, "default", root.Run.Profile)
	assert.False(t, root.Run.DryRun)
	assert.Equal(t, 2*time.Second, root.Run.ReconnectDelay)
}
