package input

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"multiemu/emu/log"
)

// Capture waits for a key or game controller button/axis press and returns
// the code identifying it, or an unset code if the user pressed Escape or
// closed the window. The prompt is shown in the window title. It must be
// called from the SDL thread.
func Capture(prompt string) (Code, error) {
	var code Code

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_GAMECONTROLLER); err != nil {
		return code, fmt.Errorf("failed to initialize SDL: %s", err)
	}
	defer sdl.Quit()

	win, err := sdl.CreateWindow(
		prompt,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		400,
		120,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return code, fmt.Errorf("failed to create window: %s", err)
	}
	defer win.Destroy()

	gamectrls := NewGameControllers()
	defer gamectrls.Close()

	// Drain the events queue before starting. This removes previous events
	// which could have been generated during the release of a joystick trigger
	// for example.
	drainEvents(200 * time.Millisecond)
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				return code, nil

			case *sdl.KeyboardEvent:
				if e.State != sdl.PRESSED {
					continue
				}
				if e.Keysym.Scancode != sdl.SCANCODE_ESCAPE {
					code.Source = Key
					code.Scancode = e.Keysym.Scancode
				}
				return code, nil

			case *sdl.ControllerDeviceEvent:
				gamectrls.UpdateDevices(e)

			case *sdl.ControllerButtonEvent:
				if e.Type != sdl.CONTROLLERBUTTONDOWN {
					continue
				}
				if gamectrls.Get(e.Which) == nil {
					log.ModInput.WarnZ("controller not found").Int("id", int(e.Which)).End()
					continue
				}
				code.Source = Button
				code.Button = sdl.GameControllerButton(e.Button)
				code.GUID = gamectrls.GUID(e.Which)
				return code, nil

			case *sdl.ControllerAxisEvent:
				if e.Value > -JoyAxisThreshold && e.Value < JoyAxisThreshold {
					continue
				}
				if gamectrls.Get(e.Which) == nil {
					log.ModInput.WarnZ("controller not found").Int("id", int(e.Which)).End()
					continue
				}
				code.Source = Axis
				code.Axis = sdl.GameControllerAxis(e.Axis)
				code.Dir = axissign(e.Value)
				code.GUID = gamectrls.GUID(e.Which)
				return code, nil
			}
		}
		sdl.Delay(16)
	}
}

// Drain the events queue before exiting. But since some joystick axes are
// noisy, wait just long enough to drain 'actual' events, like for example
// the events generated when releasing a joystick trigger.
func drainEvents(maxwait time.Duration) {
	deadline := time.Now().Add(maxwait)
	for {
		if event := sdl.PollEvent(); event == nil {
			break
		}
		if time.Now().After(deadline) {
			break
		}
	}
}
