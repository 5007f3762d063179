package input

import (
	"fmt"
	"strconv"

	"github.com/veandco/go-sdl2/sdl"

	"multiemu/emu"
)

// NumKeys is the number of keys of the keypad, 0 to F.
const NumKeys = 16

// ParseKeypad decodes the keypad mapping of the configuration. Empty or
// missing codes leave the key unmapped.
func ParseKeypad(cfg emu.InputConfig) ([NumKeys]Code, error) {
	var codes [NumKeys]Code
	for key := range cfg.Keypad {
		i, err := strconv.ParseUint(key, 16, 8)
		if err != nil || i >= NumKeys || fmt.Sprintf("%X", i) != key {
			return codes, fmt.Errorf("keypad: invalid key %q, want 0 to F", key)
		}
	}
	for i := range codes {
		text := cfg.Keypad[fmt.Sprintf("%X", i)]
		if err := codes[i].UnmarshalText([]byte(text)); err != nil {
			return codes, fmt.Errorf("keypad key %X: %w", i, err)
		}
	}
	return codes, nil
}

// Keypad reads the state of the host inputs mapped to the keypad.
type Keypad struct {
	codes    [NumKeys]Code
	keystate []uint8
	ctrls    *GameControllers
}

// NewKeypad must be called from the SDL thread, after SDL initialization.
func NewKeypad(cfg emu.InputConfig, ctrls *GameControllers) (*Keypad, error) {
	codes, err := ParseKeypad(cfg)
	if err != nil {
		return nil, err
	}
	return &Keypad{
		codes:    codes,
		keystate: sdl.GetKeyboardState(),
		ctrls:    ctrls,
	}, nil
}

// State returns the keypad state, bit n set if key n is down. Like the
// keyboard state it's updated by the SDL event loop.
func (kp *Keypad) State() uint32 {
	var state uint32
	for i, code := range kp.codes {
		if code.down(kp.keystate, kp.ctrls) {
			state |= 1 << i
		}
	}
	return state
}
