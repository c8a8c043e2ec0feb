package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testDevices() []Device {
	return []Device{
		{ID: "alsa_input.usb-mic", Description: "USB Microphone", Available: true},
		{ID: "alsa_input.builtin", Description: "Built-in Audio", Available: true, Default: true},
		{ID: "alsa_input.hdmi", Description: "HDMI Audio", Available: false},
		{ID: "alsa_input.muted", Description: "Muted Mic", Available: true, Muted: true},
	}
}

func TestPickDefault(t *testing.T) {
	device, err := pick(testDevices(), "default")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.builtin", device.ID)

	device, err = pick(testDevices(), "")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.builtin", device.ID)
}

func TestPickByIDSubstring(t *testing.T) {
	device, err := pick(testDevices(), "usb-mic")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.usb-mic", device.ID)
}

func TestPickByDescriptionCaseInsensitive(t *testing.T) {
	device, err := pick(testDevices(), "usb microphone")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.usb-mic", device.ID)
}

func TestPickNoMatch(t *testing.T) {
	_, err := pick(testDevices(), "nonexistent")
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not match")
}

func TestPickRejectsUnavailable(t *testing.T) {
	_, err := pick(testDevices(), "hdmi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unavailable")
}

func TestPickRejectsMuted(t *testing.T) {
	_, err := pick(testDevices(), "muted mic")
	require.Error(t, err)
	require.Contains(t, err.Error(), "muted")
}

func TestPickEmptyList(t *testing.T) {
	_, err := pick(nil, "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no audio input devices")
}

func TestSourceStateString(t *testing.T) {
	require.Equal(t, "running", sourceStateString(0))
	require.Equal(t, "idle", sourceStateString(1))
	require.Equal(t, "suspended", sourceStateString(2))
	require.Contains(t, sourceStateString(7), "unknown")
}
