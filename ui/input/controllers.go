package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"multiemu/emu/log"
)

// threshold for joystick axis to be considered as 'pressed'.
// goes from -32768 to 32767
const JoyAxisThreshold = 32000

// GameControllers tracks the plugged game controllers, by GUID (as found in
// the configuration) and by joystick ID (as found in events).
type GameControllers struct {
	guids map[string]*sdl.GameController
	ids   map[sdl.JoystickID]*sdl.GameController
}

// NewGameControllers opens all the controllers currently plugged. Then
// UpdateDevices must be called for each controller device event in order to
// remain in sync.
func NewGameControllers() *GameControllers {
	gcs := GameControllers{
		guids: make(map[string]*sdl.GameController),
		ids:   make(map[sdl.JoystickID]*sdl.GameController),
	}
	for i := range sdl.NumJoysticks() {
		if sdl.IsGameController(i) {
			gcs.open(i)
		}
	}
	return &gcs
}

func (gcs *GameControllers) open(idx int) {
	c := sdl.GameControllerOpen(idx)
	if c == nil {
		log.ModInput.WarnZ("can't open controller").Int("index", idx).End()
		return
	}
	joy := c.Joystick()
	guid := sdl.JoystickGetGUIDString(joy.GUID())
	id := joy.InstanceID()
	gcs.guids[guid] = c
	gcs.ids[id] = c

	log.ModInput.InfoZ("added controller").
		Int("id", int(id)).
		String("guid", guid).
		String("name", c.Name()).
		End()
}

// returns -1 for [-32768, 0) and 1 for [0, 32767]
func axissign(v int16) int16 {
	return int16(1 - 2*(uint16(v)>>15))
}

func (gcs *GameControllers) Get(id sdl.JoystickID) *sdl.GameController {
	return gcs.ids[id]
}

func (gcs *GameControllers) GUID(id sdl.JoystickID) string {
	gc := gcs.Get(id)
	if gc == nil {
		return ""
	}
	return sdl.JoystickGetGUIDString(gc.Joystick().GUID())
}

func (gcs *GameControllers) byGUID(guid string) *sdl.GameController {
	return gcs.guids[guid]
}

func (gcs *GameControllers) UpdateDevices(e *sdl.ControllerDeviceEvent) {
	switch e.Type {
	case sdl.CONTROLLERDEVICEADDED:
		gcs.open(int(e.Which))

	case sdl.CONTROLLERDEVICEREMOVED:
		c := gcs.Get(e.Which)
		if c == nil {
			log.ModInput.WarnZ("removed controller not found").
				Int("id", int(e.Which)).
				End()
			return
		}
		guid := sdl.JoystickGetGUIDString(c.Joystick().GUID())
		delete(gcs.guids, guid)
		delete(gcs.ids, e.Which)
		c.Close()

		log.ModInput.InfoZ("removed controller").
			Int("id", int(e.Which)).
			String("guid", guid).
			End()
	}
}

func (gcs *GameControllers) Close() {
	for _, c := range gcs.guids {
		c.Close()
	}
	clear(gcs.guids)
	clear(gcs.ids)
}
