package mapping

import (
	"testing"

	"artnet2magichome/internal/config"
	"artnet2magichome/internal/magichome"
	"github.com/stretchr/testify/require"
)

func frameAt(start int, block ...byte) Frame {
	data := make([]byte, 512)
	copy(data[start-1:], block)
	return Frame{Universe: 0, Data: data}
}

func TestLookupPresetBuckets(t *testing.T) {
	for code := 0; code <= 10; code++ {
		_, ok := LookupPreset(byte(code))
		require.False(t, ok, "code %d", code)
	}
	for code := 191; code <= 255; code++ {
		_, ok := LookupPreset(byte(code))
		require.False(t, ok, "code %d", code)
	}

	prev, ok := LookupPreset(11)
	require.True(t, ok)
	require.Equal(t, magichome.SevenColorsCrossFade, prev)
	for code := 11; code <= 190; code++ {
		p, ok := LookupPreset(byte(code))
		require.True(t, ok, "code %d", code)
		require.Equal(t, presetTable[(code-11)/10], p)
		require.GreaterOrEqual(t, byte(p), byte(prev))
		prev = p
	}
}

func TestLookupPresetEdges(t *testing.T) {
	cases := map[byte]PresetID{
		20:  magichome.SevenColorsCrossFade,
		21:  magichome.RedGradualChange,
		91:  magichome.RedGreenCrossFade,
		100: magichome.RedGreenCrossFade,
		101: magichome.SevenColorStrobeFlash,
		180: magichome.WhiteStrobeFlash,
		181: magichome.SevenColorsJumping,
		190: magichome.SevenColorsJumping,
	}
	for code, want := range cases {
		got, ok := LookupPreset(code)
		require.True(t, ok)
		require.Equal(t, want, got, "code %d", code)
	}
}

func TestMapPresetSelected(t *testing.T) {
	cfg := config.ChannelMap{StartChannel: 1}
	cmd := Map(frameAt(1, 255, 255, 0, 0, 11, 255), cfg)
	require.Equal(t, Preset(magichome.SevenColorsCrossFade, 100), cmd)
}

func TestMapPresetOutOfTable(t *testing.T) {
	cfg := config.ChannelMap{StartChannel: 1}
	cmd := Map(frameAt(1, 255, 255, 0, 0, 200, 0), cfg)
	require.Equal(t, Color(255, 0, 0), cmd)
}

func TestMapZeroIntensity(t *testing.T) {
	cfg := config.ChannelMap{StartChannel: 1}
	for _, preset := range []byte{0, 11, 150, 255} {
		cmd := Map(frameAt(1, 0, 255, 128, 7, preset, 200), cfg)
		require.Equal(t, Off(), cmd)
	}
}

func TestMapZeroColorIgnoresPreset(t *testing.T) {
	cfg := config.ChannelMap{StartChannel: 1}
	require.Equal(t, Off(), Map(frameAt(1, 255, 0, 0, 0, 50, 255), cfg))
	// Scaled down to nothing.
	require.Equal(t, Off(), Map(frameAt(1, 1, 100, 100, 100, 50, 255), cfg))
}

func TestMapIntensityTruncates(t *testing.T) {
	cfg := config.ChannelMap{StartChannel: 10}
	// 200 * 128/255 = 100.39, 255 * 128/255 = 128, 3 * 128/255 = 1.5
	cmd := Map(frameAt(10, 128, 200, 255, 3, 0, 0), cfg)
	require.Equal(t, Color(100, 128, 1), cmd)
}

func TestMapSpeedTruncates(t *testing.T) {
	cfg := config.ChannelMap{StartChannel: 1}
	speeds := map[byte]uint8{0: 0, 1: 0, 3: 1, 128: 50, 254: 99, 255: 100}
	for raw, want := range speeds {
		cmd := Map(frameAt(1, 255, 255, 255, 255, 15, raw), cfg)
		require.Equal(t, PresetAnimation, cmd.Kind)
		require.Equal(t, want, cmd.Speed, "raw %d", raw)
	}
}

func TestMapLastStartChannel(t *testing.T) {
	cfg := config.ChannelMap{StartChannel: config.MaxStartChannel}
	cmd := Map(frameAt(config.MaxStartChannel, 255, 10, 20, 30, 0, 0), cfg)
	require.Equal(t, Color(10, 20, 30), cmd)
}

func TestCheckFrame(t *testing.T) {
	cfg := config.ChannelMap{StartChannel: 5}
	require.NoError(t, CheckFrame(Frame{Data: make([]byte, 10)}, cfg))
	require.ErrorIs(t, CheckFrame(Frame{Data: make([]byte, 9)}, cfg), ErrMalformedFrame)
	require.ErrorIs(t, CheckFrame(Frame{}, cfg), ErrMalformedFrame)
}

func TestCommandString(t *testing.T) {
	require.Equal(t, "color (1,2,3)", Color(1, 2, 3).String())
	require.Equal(t, "preset RedStrobeFlash speed 40%", Preset(magichome.RedStrobeFlash, 40).String())
}
