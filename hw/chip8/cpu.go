package chip8

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"multiemu/emu/log"
	"multiemu/hw"
	"multiemu/hw/hwio"
	"multiemu/hw/snapshot"
)

const (
	EntryPoint = 0x200
	stackSize  = 16
	numFlags   = 8

	// DefaultRate is the number of instructions per second. The interpreter
	// runs one instruction per cycle.
	DefaultRate = 600
)

// ExecState is what the processor is doing.
type ExecState uint8

const (
	ExecNormal ExecState = iota
	ExecAwaitVBlank
	ExecAwaitKeyPress
	ExecAwaitKeyRelease
	ExecHalted
)

func (s ExecState) String() string {
	switch s {
	case ExecNormal:
		return "normal"
	case ExecAwaitVBlank:
		return "await-vblank"
	case ExecAwaitKeyPress:
		return "await-key-press"
	case ExecAwaitKeyRelease:
		return "await-key-release"
	case ExecHalted:
		return "halted"
	}
	return fmt.Sprintf("ExecState(%d)", s)
}

// An InvalidOpcodeError is reported, in strict mode, when the processor
// fetches an opcode it doesn't know.
type InvalidOpcodeError struct {
	PC, Op uint16
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %04X at %03X", e.Op, e.PC)
}

// A StackError is reported, in strict mode, on stack overflow or underflow.
type StackError struct {
	PC       uint16
	Overflow bool
}

func (e *StackError) Error() string {
	if e.Overflow {
		return fmt.Sprintf("stack overflow at %03X", e.PC)
	}
	return fmt.Sprintf("stack underflow at %03X", e.PC)
}

type cpuRegs struct {
	V     [16]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Stack [stackSize]uint16

	Mode     Mode
	Exec     ExecState
	WaitReg  uint8
	WaitKeys Keypad
	Flags    [numFlags]uint8
}

// CPU is the CHIP-8 / SUPER-CHIP interpreter.
type CPU struct {
	cpuRegs

	ctx *hw.Context
	bus *hwio.Table

	display *Display
	timer   *Timer
	beeper  *Beeper

	initMode Mode
	entry    uint16
	quirks   cpuQuirkSet
	sprite   [32]byte
}

func (c *CPU) Reset(hard bool) {
	flags := c.Flags
	c.cpuRegs = cpuRegs{
		PC:   c.entry,
		Mode: c.initMode,
	}
	// The flag registers survive soft resets, like on the HP48.
	if !hard {
		c.Flags = flags
	}
}

// Step runs up to budget instructions.
func (c *CPU) Step(budget int64) int64 {
	keys := Keypad(c.ctx.Input(0))

	var n int64
	for n < budget && !c.ctx.Frozen() {
		switch c.Exec {
		case ExecNormal:
			c.execute(keys)
			n++
			continue

		case ExecAwaitKeyPress:
			if pressed := keys & 0xFFFF; pressed != 0 {
				c.WaitKeys = pressed
				c.Exec = ExecAwaitKeyRelease
				n++
				continue
			}

		case ExecAwaitKeyRelease:
			if released := c.WaitKeys &^ keys; released != 0 {
				for k := range uint8(16) {
					if released.Pressed(k) {
						c.V[c.WaitReg] = k
						break
					}
				}
				c.WaitKeys = 0
				c.Exec = ExecNormal
				n++
				continue
			}
		}

		// Waiting: input is latched for the whole step and vblank is only
		// delivered at the end of the slice, nothing can change until then.
		n = budget
	}
	return n
}

// HandleSignal implements hw.SignalHandler.
func (c *CPU) HandleSignal(sig hw.Signal) {
	switch sig.Kind {
	case hw.SigVBlank:
		if c.Exec == ExecAwaitVBlank {
			c.Exec = ExecNormal
		}
	case hw.SigReset:
		c.Reset(false)
	}
}

func (c *CPU) fault(err error) {
	if c.ctx.Strict() {
		c.ctx.Fault(err)
		return
	}
	log.ModCPU.WarnZ("ignored").
		Error("err", err).
		End()
}

func (c *CPU) invalid(pc, op uint16) {
	c.fault(&InvalidOpcodeError{PC: pc, Op: op})
}

// schip marks the use of a SUPER-CHIP instruction.
func (c *CPU) schip() {
	if c.Mode != ModeSuperChip {
		log.ModCPU.DebugZ("switching to schip mode").Hex16("pc", c.PC).End()
		c.Mode = ModeSuperChip
	}
}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.PC = (c.PC + 2) & 0xFFF
	}
}

func (c *CPU) execute(keys Keypad) {
	pc := c.PC
	op := c.bus.Read16BE(pc)
	c.PC = (pc + 2) & 0xFFF

	if log.ModCPU.Enabled(log.DebugLevel) {
		log.ModCPU.DebugZ("exec").
			Hex16("pc", pc).
			Hex16("op", op).
			String("dis", Disasm(op)).
			End()
	}

	x := (op >> 8) & 0xF
	y := (op >> 4) & 0xF
	n := uint8(op & 0xF)
	nn := uint8(op)
	nnn := op & 0xFFF

	switch op >> 12 {
	case 0x0:
		switch {
		case op == 0x00E0:
			c.display.Clear()
		case op == 0x00EE:
			if c.SP == 0 {
				log.ModCPU.ErrorZ("stack underflow").Hex16("pc", pc).End()
				c.fault(&StackError{PC: pc})
				c.PC = c.entry
				return
			}
			c.SP--
			c.PC = c.Stack[c.SP]
		case op&0xFFF0 == 0x00C0:
			c.schip()
			c.display.ScrollDown(int(n))
		case op == 0x00FB:
			c.schip()
			c.display.ScrollRight()
		case op == 0x00FC:
			c.schip()
			c.display.ScrollLeft()
		case op == 0x00FD:
			c.schip()
			log.ModCPU.InfoZ("program exited").Hex16("pc", pc).End()
			c.Exec = ExecHalted
		case op == 0x00FE:
			c.schip()
			c.display.SetHires(false)
		case op == 0x00FF:
			c.schip()
			c.display.SetHires(true)
		default:
			c.invalid(pc, op)
		}

	case 0x1:
		c.PC = nnn

	case 0x2:
		if int(c.SP) == stackSize {
			c.fault(&StackError{PC: pc, Overflow: true})
			return
		}
		c.Stack[c.SP] = c.PC
		c.SP++
		c.PC = nnn

	case 0x3:
		c.skipIf(c.V[x] == nn)

	case 0x4:
		c.skipIf(c.V[x] != nn)

	case 0x5:
		if n != 0 {
			c.invalid(pc, op)
			return
		}
		c.skipIf(c.V[x] == c.V[y])

	case 0x6:
		c.V[x] = nn

	case 0x7:
		c.V[x] += nn

	case 0x8:
		c.alu(pc, op, x, y, n)

	case 0x9:
		if n != 0 {
			c.invalid(pc, op)
			return
		}
		c.skipIf(c.V[x] != c.V[y])

	case 0xA:
		c.I = nnn

	case 0xB:
		if c.quirks.jumpVX {
			c.PC = (nnn + uint16(c.V[x])) & 0xFFF
		} else {
			c.PC = (nnn + uint16(c.V[0])) & 0xFFF
		}

	case 0xC:
		c.V[x] = c.ctx.Rand().Uint8() & nn

	case 0xD:
		c.draw(x, y, n)

	case 0xE:
		switch nn {
		case 0x9E:
			c.skipIf(keys.Pressed(c.V[x]))
		case 0xA1:
			c.skipIf(!keys.Pressed(c.V[x]))
		default:
			c.invalid(pc, op)
		}

	case 0xF:
		c.misc(pc, op, x, nn)
	}
}

func (c *CPU) alu(pc, op, x, y uint16, n uint8) {
	vx, vy := c.V[x], c.V[y]

	switch n {
	case 0x0:
		c.V[x] = vy
	case 0x1:
		c.V[x] = vx | vy
		if c.quirks.vfReset {
			c.V[0xF] = 0
		}
	case 0x2:
		c.V[x] = vx & vy
		if c.quirks.vfReset {
			c.V[0xF] = 0
		}
	case 0x3:
		c.V[x] = vx ^ vy
		if c.quirks.vfReset {
			c.V[0xF] = 0
		}
	case 0x4:
		sum := uint16(vx) + uint16(vy)
		c.V[x] = uint8(sum)
		c.V[0xF] = uint8(sum >> 8)
	case 0x5:
		c.V[x] = vx - vy
		c.V[0xF] = b2u8(vx >= vy)
	case 0x6:
		if c.quirks.shiftVY {
			vx = vy
		}
		c.V[x] = vx >> 1
		c.V[0xF] = vx & 1
	case 0x7:
		c.V[x] = vy - vx
		c.V[0xF] = b2u8(vy >= vx)
	case 0xE:
		if c.quirks.shiftVY {
			vx = vy
		}
		c.V[x] = vx << 1
		c.V[0xF] = vx >> 7
	default:
		c.invalid(pc, op)
	}
}

func (c *CPU) draw(x, y uint16, n uint8) {
	var sprite []byte
	wide := n == 0 && c.Mode == ModeSuperChip
	if wide {
		sprite = c.sprite[:32]
	} else {
		sprite = c.sprite[:n]
	}
	c.bus.Read(c.I, sprite)

	c.V[0xF] = b2u8(c.display.Draw(c.V[x], c.V[y], sprite, wide))
	if c.quirks.displayWait {
		c.Exec = ExecAwaitVBlank
	}
}

func (c *CPU) misc(pc, op, x uint16, nn uint8) {
	switch nn {
	case 0x07:
		c.V[x] = c.timer.Get()
	case 0x0A:
		c.WaitReg = uint8(x)
		c.Exec = ExecAwaitKeyPress
	case 0x15:
		c.timer.Set(c.V[x])
	case 0x18:
		c.beeper.Set(c.V[x])
	case 0x1E:
		c.I += uint16(c.V[x])
	case 0x29:
		c.I = FontAddr + uint16(c.V[x])*glyphSize
	case 0x30:
		c.schip()
		c.I = BigFontAddr + uint16(c.V[x]%10)*bigGlyphSize
	case 0x33:
		v := c.V[x]
		c.bus.Write(c.I, []byte{v / 100, (v / 10) % 10, v % 10})
	case 0x55:
		c.bus.Write(c.I, c.V[:x+1])
		if c.quirks.memIncrement {
			c.I += x + 1
		}
	case 0x65:
		c.bus.Read(c.I, c.V[:x+1])
		if c.quirks.memIncrement {
			c.I += x + 1
		}
	case 0x75:
		c.schip()
		copy(c.Flags[:], c.V[:min(x+1, numFlags)])
	case 0x85:
		c.schip()
		copy(c.V[:], c.Flags[:min(x+1, numFlags)])
	default:
		c.invalid(pc, op)
	}
}

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) Inspect() []hw.Field {
	fields := make([]hw.Field, 0, 22)
	for i, v := range c.V {
		fields = append(fields, hw.Field{Name: fmt.Sprintf("V%X", i), Value: uint64(v), Width: 8})
	}
	return append(fields,
		hw.Field{Name: "I", Value: uint64(c.I), Width: 16},
		hw.Field{Name: "PC", Value: uint64(c.PC), Width: 12},
		hw.Field{Name: "SP", Value: uint64(c.SP), Width: 8},
		hw.Field{Name: "exec", Value: uint64(c.Exec), Width: 8},
		hw.Field{Name: "mode", Value: uint64(c.Mode), Width: 8},
		hw.Field{Name: "keys", Value: uint64(c.WaitKeys), Width: 16},
	)
}

const cpuStateVersion = 1

func (c *CPU) StateVersion() uint16 { return cpuStateVersion }

func (c *CPU) State() *snapshot.CPU {
	st := snapshot.CPU{
		V:        c.V,
		I:        c.I,
		PC:       c.PC,
		SP:       c.SP,
		Stack:    c.Stack,
		Mode:     uint8(c.Mode),
		Exec:     uint8(c.Exec),
		WaitReg:  c.WaitReg,
		WaitKeys: uint16(c.WaitKeys),
		Flags:    c.Flags,
	}
	return &st
}

func (c *CPU) SetState(st *snapshot.CPU) {
	c.cpuRegs = cpuRegs{
		V:        st.V,
		I:        st.I,
		PC:       st.PC,
		SP:       st.SP,
		Stack:    st.Stack,
		Mode:     Mode(st.Mode),
		Exec:     ExecState(st.Exec),
		WaitReg:  st.WaitReg,
		WaitKeys: Keypad(st.WaitKeys),
		Flags:    st.Flags,
	}
}

func (c *CPU) SaveState(w *msgp.Writer) error { return c.State().EncodeMsg(w) }

func (c *CPU) LoadState(version uint16, r *msgp.Reader) (func(), error) {
	var st snapshot.CPU
	if err := st.DecodeMsg(r); err != nil {
		return nil, err
	}
	if int(st.SP) > stackSize || Mode(st.Mode) > ModeSuperChip || ExecState(st.Exec) > ExecHalted || st.WaitReg > 0xF {
		return nil, fmt.Errorf("%w: cpu registers out of range", snapshot.ErrCorruptSnapshot)
	}
	return func() { c.SetState(&st) }, nil
}
