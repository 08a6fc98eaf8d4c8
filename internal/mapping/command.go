package mapping

import "fmt"

// Kind tells which variant a LightCommand holds.
type Kind int

const (
	SolidColor Kind = iota
	PresetAnimation
)

func (k Kind) String() string {
	switch k {
	case SolidColor:
		return "color"
	case PresetAnimation:
		return "preset"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// RGB is an 8 bit per channel color.
type RGB struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
}

// LightCommand is what one frame asks the light to do.
// Color is used when Kind is SolidColor, Pattern and Speed when PresetAnimation.
type LightCommand struct {
	Kind    Kind     `json:"kind"`
	Color   RGB      `json:"color"`
	Pattern PresetID `json:"pattern,omitempty"`
	Speed   uint8    `json:"speed,omitempty"` // Speed - скорость анимации в процентах 0..100.
}

// Color builds a SolidColor command.
func Color(r, g, b uint8) LightCommand {
	return LightCommand{Kind: SolidColor, Color: RGB{r, g, b}}
}

// Off is a black SolidColor.
func Off() LightCommand {
	return Color(0, 0, 0)
}

// Preset builds a PresetAnimation command.
func Preset(p PresetID, speed uint8) LightCommand {
	return LightCommand{Kind: PresetAnimation, Pattern: p, Speed: speed}
}

func (c LightCommand) String() string {
	if c.Kind == PresetAnimation {
		return fmt.Sprintf("preset %v speed %d%%", c.Pattern, c.Speed)
	}
	return fmt.Sprintf("color (%d,%d,%d)", c.Color.Red, c.Color.Green, c.Color.Blue)
}
