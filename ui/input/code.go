// Package input maps host keyboards and game controllers to the keypad of
// the emulated machine.
package input

import (
	"fmt"
	"strings"

	"github.com/veandco/go-sdl2/sdl"
)

// Source is the kind of host input a keypad key is bound to.
type Source uint8

const (
	Unbound Source = iota
	Key
	Button
	Axis
)

// Text form prefixes, indexed by Source.
var prefixes = [...]string{Key: "key", Button: "joybtn", Axis: "joyaxis"}

func (s Source) String() string {
	if s == Unbound || int(s) >= len(prefixes) {
		return "unbound"
	}
	return prefixes[s]
}

// A Code binds a keypad key to one host input: a keyboard key, or a button
// or axis direction of the game controller with the given GUID.
//
// In the configuration a code is written "key <scancode name>",
// "joybtn <button> <guid>" or "joyaxis <axis>+|- <guid>". The empty string
// leaves the key unbound.
type Code struct {
	Source Source

	Scancode sdl.Scancode

	GUID   string
	Button sdl.GameControllerButton
	Axis   sdl.GameControllerAxis
	Dir    int16 // +1 or -1
}

// Name returns the host name of the input, without the controller.
func (c Code) Name() string {
	switch c.Source {
	case Key:
		return sdl.GetScancodeName(c.Scancode)
	case Button:
		return sdl.GameControllerGetStringForButton(c.Button)
	case Axis:
		if c.Dir < 0 {
			return sdl.GameControllerGetStringForAxis(c.Axis) + "-"
		}
		return sdl.GameControllerGetStringForAxis(c.Axis) + "+"
	}
	return ""
}

func (c Code) MarshalText() ([]byte, error) {
	switch c.Source {
	case Unbound:
		return nil, nil
	case Key:
		return []byte(prefixes[Key] + " " + c.Name()), nil
	case Button, Axis:
		return []byte(prefixes[c.Source] + " " + c.Name() + " " + c.GUID), nil
	}
	return nil, fmt.Errorf("unknown input source %d", c.Source)
}

func (c *Code) UnmarshalText(text []byte) error {
	*c = Code{}
	fields := strings.Fields(string(text))
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case prefixes[Key]:
		// Some scancode names have spaces, "Left Shift" for example.
		if len(fields) < 2 {
			return fmt.Errorf("malformed key code %q", text)
		}
		name := strings.Join(fields[1:], " ")
		if c.Scancode = sdl.GetScancodeFromName(name); c.Scancode == sdl.SCANCODE_UNKNOWN {
			return fmt.Errorf("unrecognized scancode %q", name)
		}
		c.Source = Key

	case prefixes[Button]:
		if len(fields) != 3 {
			return fmt.Errorf("malformed joybtn code %q, want joybtn <button> <guid>", text)
		}
		if c.Button = sdl.GameControllerGetButtonFromString(fields[1]); c.Button == sdl.CONTROLLER_BUTTON_INVALID {
			return fmt.Errorf("unrecognized button %q", fields[1])
		}
		c.GUID = fields[2]
		c.Source = Button

	case prefixes[Axis]:
		if len(fields) != 3 {
			return fmt.Errorf("malformed joyaxis code %q, want joyaxis <axis>+|- <guid>", text)
		}
		name := fields[1]
		switch {
		case strings.HasSuffix(name, "+"):
			c.Dir = 1
		case strings.HasSuffix(name, "-"):
			c.Dir = -1
		default:
			return fmt.Errorf("axis %q has no direction", name)
		}
		if c.Axis = sdl.GameControllerGetAxisFromString(name[:len(name)-1]); c.Axis == sdl.CONTROLLER_AXIS_INVALID {
			return fmt.Errorf("unrecognized axis %q", name)
		}
		c.GUID = fields[2]
		c.Source = Axis

	default:
		return fmt.Errorf("unrecognized input code %q", text)
	}
	return nil
}

// down reports whether the input is held, given the keyboard state and the
// connected controllers.
func (c Code) down(keys []uint8, ctrls *GameControllers) bool {
	switch c.Source {
	case Key:
		return int(c.Scancode) < len(keys) && keys[c.Scancode] != 0
	case Button:
		if ctrl := ctrls.byGUID(c.GUID); ctrl != nil {
			return ctrl.Button(c.Button) != 0
		}
	case Axis:
		if ctrl := ctrls.byGUID(c.GUID); ctrl != nil {
			return int(ctrl.Axis(c.Axis))*int(c.Dir) >= JoyAxisThreshold
		}
	}
	return false
}
