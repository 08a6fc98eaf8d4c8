package magichome

import "fmt"

// Pattern is a built-in animation code understood by the controller.
type Pattern byte

const (
	SevenColorsCrossFade Pattern = 0x25 + iota
	RedGradualChange
	GreenGradualChange
	BlueGradualChange
	YellowGradualChange
	CyanGradualChange
	PurpleGradualChange
	WhiteGradualChange
	RedGreenCrossFade
	RedBlueCrossFade
	GreenBlueCrossFade
	SevenColorStrobeFlash
	RedStrobeFlash
	GreenStrobeFlash
	BlueStrobeFlash
	YellowStrobeFlash
	CyanStrobeFlash
	PurpleStrobeFlash
	WhiteStrobeFlash
	SevenColorsJumping
)

var patternNames = map[Pattern]string{
	SevenColorsCrossFade:  "SevenColorsCrossFade",
	RedGradualChange:      "RedGradualChange",
	GreenGradualChange:    "GreenGradualChange",
	BlueGradualChange:     "BlueGradualChange",
	YellowGradualChange:   "YellowGradualChange",
	CyanGradualChange:     "CyanGradualChange",
	PurpleGradualChange:   "PurpleGradualChange",
	WhiteGradualChange:    "WhiteGradualChange",
	RedGreenCrossFade:     "RedGreenCrossFade",
	RedBlueCrossFade:      "RedBlueCrossFade",
	GreenBlueCrossFade:    "GreenBlueCrossFade",
	SevenColorStrobeFlash: "SevenColorStrobeFlash",
	RedStrobeFlash:        "RedStrobeFlash",
	GreenStrobeFlash:      "GreenStrobeFlash",
	BlueStrobeFlash:       "BlueStrobeFlash",
	YellowStrobeFlash:     "YellowStrobeFlash",
	CyanStrobeFlash:       "CyanStrobeFlash",
	PurpleStrobeFlash:     "PurpleStrobeFlash",
	WhiteStrobeFlash:      "WhiteStrobeFlash",
	SevenColorsJumping:    "SevenColorsJumping",
}

func (p Pattern) String() string {
	if name, ok := patternNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Pattern(0x%02x)", byte(p))
}

func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Valid reports whether the controller knows the pattern.
func (p Pattern) Valid() bool {
	_, ok := patternNames[p]
	return ok
}

// State is the controller status as reported by a state query.
type State struct {
	Power bool
	Mode  byte
	Red   uint8
	Green uint8
	Blue  uint8
	Warm  uint8
}

// Device is a controller that answered a discovery broadcast.
type Device struct {
	IP    string
	MAC   string
	Model string
}

// Addr returns the TCP control address of the device.
func (d Device) Addr() string {
	return fmt.Sprintf("%s:%d", d.IP, ControlPort)
}
