// Package gate decides which device writes a command really needs.
//
// The light is a slow Wi-Fi controller fed at DMX frame rate, so repeated
// writes of the same color or animation are suppressed against a cache of
// what was last sent, and a power-on is issued first whenever the light is
// believed to be off.
package gate

import (
	"fmt"

	"artnet2magichome/internal/mapping"
)

// ActionKind is a single device write.
type ActionKind int

const (
	PowerOn ActionKind = iota
	SetColor
	SetPreset
)

func (k ActionKind) String() string {
	switch k {
	case PowerOn:
		return "power-on"
	case SetColor:
		return "set-color"
	case SetPreset:
		return "set-preset"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is one write to the light.
type Action struct {
	Kind    ActionKind
	Color   mapping.RGB
	Pattern mapping.PresetID
	Speed   uint8
}

func (a Action) String() string {
	switch a.Kind {
	case SetColor:
		return fmt.Sprintf("%v (%d,%d,%d)", a.Kind, a.Color.Red, a.Color.Green, a.Color.Blue)
	case SetPreset:
		return fmt.Sprintf("%v %v %d%%", a.Kind, a.Pattern, a.Speed)
	default:
		return a.Kind.String()
	}
}

// PresetSelection is an animation with its speed.
type PresetSelection struct {
	Pattern mapping.PresetID `json:"pattern"`
	Speed   uint8            `json:"speed"`
}

// DeviceState is what we believe the light is doing. A nil Color or Preset
// means unknown. Values pointed to are never modified, only replaced.
type DeviceState struct {
	Power  bool             `json:"power"`
	Color  *mapping.RGB     `json:"color,omitempty"`
	Preset *PresetSelection `json:"preset,omitempty"`
}

// Apply returns the writes needed to carry out cmd from state, in order,
// and the state after all of them succeed. The caller keeps the old state
// if any write fails.
func Apply(cmd mapping.LightCommand, state DeviceState) ([]Action, DeviceState) {
	var actions []Action
	next := state

	if !state.Power {
		actions = append(actions, Action{Kind: PowerOn})
		next.Power = true
	}

	switch cmd.Kind {
	case mapping.SolidColor:
		if state.Color != nil && *state.Color == cmd.Color {
			break
		}
		c := cmd.Color
		actions = append(actions, Action{Kind: SetColor, Color: c})
		next.Color = &c
		next.Preset = nil

	case mapping.PresetAnimation:
		sel := PresetSelection{Pattern: cmd.Pattern, Speed: cmd.Speed}
		if state.Preset != nil && *state.Preset == sel {
			break
		}
		actions = append(actions, Action{Kind: SetPreset, Pattern: sel.Pattern, Speed: sel.Speed})
		// Color after an animation is not predictable.
		next.Color = nil
		next.Preset = &sel
	}

	return actions, next
}
