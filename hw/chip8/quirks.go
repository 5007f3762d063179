package chip8

import "multiemu/hw"

// Quirk names.
const (
	QuirkVFReset       = "vf_reset"         // 8XY1/8XY2/8XY3 clear VF
	QuirkShiftVY       = "shift_vy"         // 8XY6/8XYE shift VY into VX
	QuirkJumpVX        = "jump_vx"          // BNNN jumps to XNN+VX
	QuirkMemIncrement  = "memory_increment" // FX55/FX65 increment I
	QuirkDisplayWait   = "display_wait"     // DXYN waits for the next vblank
	QuirkClipSprites   = "clip_sprites"     // sprites clip at screen edges instead of wrapping
	QuirkClearOnResize = "clear_on_resolution_change"
)

// Defaults are the original COSMAC VIP behaviors; the SUPER-CHIP definition
// overrides them.
var cpuQuirks = []hw.QuirkSpec{
	{Name: QuirkVFReset, Kind: hw.QuirkBool, Default: true},
	{Name: QuirkShiftVY, Kind: hw.QuirkBool, Default: true},
	{Name: QuirkJumpVX, Kind: hw.QuirkBool, Default: false},
	{Name: QuirkMemIncrement, Kind: hw.QuirkBool, Default: true},
	{Name: QuirkDisplayWait, Kind: hw.QuirkBool, Default: true},
}

var displayQuirks = []hw.QuirkSpec{
	{Name: QuirkClipSprites, Kind: hw.QuirkBool, Default: true},
	{Name: QuirkClearOnResize, Kind: hw.QuirkBool, Default: true},
}

type cpuQuirkSet struct {
	vfReset      bool
	shiftVY      bool
	jumpVX       bool
	memIncrement bool
	displayWait  bool
}

func newCPUQuirks(q hw.Quirks) cpuQuirkSet {
	return cpuQuirkSet{
		vfReset:      q.Bool(QuirkVFReset),
		shiftVY:      q.Bool(QuirkShiftVY),
		jumpVX:       q.Bool(QuirkJumpVX),
		memIncrement: q.Bool(QuirkMemIncrement),
		displayWait:  q.Bool(QuirkDisplayWait),
	}
}

// Mode is the instruction set variant the interpreter runs.
type Mode uint8

const (
	ModeChip8 Mode = iota
	ModeSuperChip
)

func (m Mode) String() string {
	if m == ModeSuperChip {
		return "schip"
	}
	return "chip8"
}

func parseMode(s string) (Mode, bool) {
	switch s {
	case "", "chip8":
		return ModeChip8, true
	case "schip":
		return ModeSuperChip, true
	}
	return 0, false
}

// Keypad is the state of the 16 keys, bit N set when key N is held. The
// machine input port 0 carries it.
type Keypad uint16

func (k Keypad) Pressed(key uint8) bool { return k&(1<<(key&0xF)) != 0 }
