package mapping

import (
	"errors"
	"fmt"

	"artnet2magichome/internal/config"
)

// BlockSize is the number of channels the light occupies:
// intensity, red, green, blue, preset, preset speed.
const BlockSize = 6

// ErrMalformedFrame is returned for frames too short for the channel block.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is one DMX universe worth of channel data.
type Frame struct {
	Universe int
	Data     []byte
}

// CheckFrame verifies the frame reaches the last channel of the block.
func CheckFrame(f Frame, cfg config.ChannelMap) error {
	need := cfg.StartChannel - 1 + BlockSize
	if len(f.Data) < need {
		return fmt.Errorf("%w: %d channels, need %d", ErrMalformedFrame, len(f.Data), need)
	}
	return nil
}

// Map turns a frame into a command. The frame must pass CheckFrame.
func Map(f Frame, cfg config.ChannelMap) LightCommand {
	block := f.Data[cfg.StartChannel-1 : cfg.StartChannel-1+BlockSize]

	intensity := block[0]
	red := scale(block[1], intensity)
	green := scale(block[2], intensity)
	blue := scale(block[3], intensity)
	preset := block[4]
	speed := uint8(int(block[5]) * 100 / 255)

	if intensity == 0 || (red == 0 && green == 0 && blue == 0) {
		return Off()
	}

	if p, ok := LookupPreset(preset); ok {
		return Preset(p, speed)
	}

	return Color(red, green, blue)
}

// scale returns v * intensity/255 truncated toward zero.
func scale(v, intensity byte) uint8 {
	return uint8(int(v) * int(intensity) / 255)
}
