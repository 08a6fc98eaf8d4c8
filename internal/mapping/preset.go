package mapping

import "artnet2magichome/internal/magichome"

// PresetID is the device animation selected by the preset channel.
type PresetID = magichome.Pattern

const (
	presetFirstCode = 11
	presetBucket    = 10
)

// presetTable is ordered by bucket: 11-20, 21-30, ... 181-190.
var presetTable = [...]PresetID{
	magichome.SevenColorsCrossFade,
	magichome.RedGradualChange,
	magichome.GreenGradualChange,
	magichome.BlueGradualChange,
	magichome.YellowGradualChange,
	magichome.CyanGradualChange,
	magichome.PurpleGradualChange,
	magichome.WhiteGradualChange,
	magichome.RedGreenCrossFade,
	magichome.SevenColorStrobeFlash,
	magichome.RedStrobeFlash,
	magichome.GreenStrobeFlash,
	magichome.BlueStrobeFlash,
	magichome.YellowStrobeFlash,
	magichome.CyanStrobeFlash,
	magichome.PurpleStrobeFlash,
	magichome.WhiteStrobeFlash,
	magichome.SevenColorsJumping,
}

// LookupPreset maps a preset channel value to an animation.
// Codes 0-10 and 191-255 select no animation.
func LookupPreset(code byte) (PresetID, bool) {
	if code < presetFirstCode {
		return 0, false
	}
	k := (int(code) - presetFirstCode) / presetBucket
	if k >= len(presetTable) {
		return 0, false
	}
	return presetTable[k], true
}
