package chip8_test

import (
	"errors"
	"testing"

	"multiemu/hw"
	"multiemu/hw/chip8"
)

func registers(c *chip8.CPU) map[string]uint64 {
	regs := make(map[string]uint64)
	for _, f := range c.Inspect() {
		regs[f.Name] = f.Value
	}
	return regs
}

func TestOpcodes(t *testing.T) {
	randV0 := uint64(hw.NewRand(testSeed).Uint8() & 0xF0)

	tests := []struct {
		name   string
		prog   []uint16
		steps  int // len(prog) if zero
		quirks map[string]any
		want   map[string]uint64
	}{
		{
			name: "add wraps",
			prog: []uint16{0x60FF, 0x7002},
			want: map[string]uint64{"V0": 1, "VF": 0},
		},
		{
			name: "add carry",
			prog: []uint16{0x60FF, 0x6102, 0x8014},
			want: map[string]uint64{"V0": 1, "VF": 1},
		},
		{
			name: "carry overwrites result in VF",
			prog: []uint16{0x6FFF, 0x6102, 0x8F14},
			want: map[string]uint64{"VF": 1},
		},
		{
			name: "sub borrow",
			prog: []uint16{0x6005, 0x6107, 0x8015},
			want: map[string]uint64{"V0": 0xFE, "VF": 0},
		},
		{
			name: "subn",
			prog: []uint16{0x6005, 0x6107, 0x8017},
			want: map[string]uint64{"V0": 2, "VF": 1},
		},
		{
			name: "shift vy",
			prog: []uint16{0x6105, 0x8016},
			want: map[string]uint64{"V0": 2, "V1": 5, "VF": 1},
		},
		{
			name:   "shift vx",
			prog:   []uint16{0x6081, 0x800E},
			quirks: map[string]any{"shift_vy": false},
			want:   map[string]uint64{"V0": 2, "VF": 1},
		},
		{
			name: "vf reset",
			prog: []uint16{0x6F05, 0x8011},
			want: map[string]uint64{"VF": 0},
		},
		{
			name:   "no vf reset",
			prog:   []uint16{0x6F05, 0x8011},
			quirks: map[string]any{"vf_reset": false},
			want:   map[string]uint64{"VF": 5},
		},
		{
			name: "jump v0",
			prog: []uint16{0x6004, 0x6108, 0xB300},
			want: map[string]uint64{"PC": 0x304},
		},
		{
			name:   "jump vx",
			prog:   []uint16{0x6004, 0x6108, 0xB120},
			quirks: map[string]any{"jump_vx": true},
			want:   map[string]uint64{"PC": 0x128},
		},
		{
			name: "call ret",
			prog: []uint16{0x2206, 0x6001, 0x1204, 0x00EE},
			want: map[string]uint64{"V0": 1, "PC": 0x204, "SP": 0},
		},
		{
			name:  "skip if equal",
			prog:  []uint16{0x6005, 0x3005, 0x6001, 0x6102},
			steps: 3,
			want:  map[string]uint64{"V0": 5, "V1": 2, "PC": 0x208},
		},
		{
			name:  "no skip if registers equal",
			prog:  []uint16{0x6005, 0x6105, 0x9010, 0x6201},
			steps: 3,
			want:  map[string]uint64{"PC": 0x206},
		},
		{
			name: "bcd",
			prog: []uint16{0x60FE, 0xA300, 0xF033, 0xA300, 0xF265},
			want: map[string]uint64{"V0": 2, "V1": 5, "V2": 4, "I": 0x303},
		},
		{
			name:   "store without increment",
			prog:   []uint16{0x6007, 0x6108, 0xA300, 0xF155, 0x6000, 0x6100, 0xF165},
			quirks: map[string]any{"memory_increment": false},
			want:   map[string]uint64{"V0": 7, "V1": 8, "I": 0x300},
		},
		{
			name: "font",
			prog: []uint16{0x6007, 0xF029},
			want: map[string]uint64{"I": 35},
		},
		{
			name: "big font",
			prog: []uint16{0x6003, 0xF030},
			want: map[string]uint64{"I": 0x50 + 30, "mode": uint64(chip8.ModeSuperChip)},
		},
		{
			name: "add to I",
			prog: []uint16{0xA0FF, 0x6002, 0xF01E},
			want: map[string]uint64{"I": 0x101},
		},
		{
			name: "flag registers",
			prog: []uint16{0x6011, 0x6122, 0xF175, 0x6000, 0x6100, 0xF185},
			want: map[string]uint64{"V0": 0x11, "V1": 0x22, "mode": uint64(chip8.ModeSuperChip)},
		},
		{
			name: "random",
			prog: []uint16{0xC0F0},
			want: map[string]uint64{"V0": randV0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, program(tt.prog...), machineOpts{rate: 60, quirks: tt.quirks})
			steps := tt.steps
			if steps == 0 {
				steps = len(tt.prog)
			}
			runSteps(t, m, steps)

			regs := registers(cpuOf(t, m))
			for name, want := range tt.want {
				if got := regs[name]; got != want {
					t.Errorf("%s = %#x, want %#x", name, got, want)
				}
			}
		})
	}
}

func TestInvalidOpcode(t *testing.T) {
	m := newMachine(t, program(0x5001, 0x6042), machineOpts{rate: 60})
	runSteps(t, m, 2)
	if got := registers(cpuOf(t, m))["V0"]; got != 0x42 {
		t.Errorf("V0 = %#x, invalid opcode wasn't skipped", got)
	}

	m = newMachine(t, program(0x5001, 0x6042), machineOpts{rate: 60, strict: true})
	_, err := m.Step()

	var fault *hw.MachineFault
	if !errors.As(err, &fault) {
		t.Fatalf("Step() error = %v, want a MachineFault", err)
	}
	if fault.Component != "cpu" || fault.Variant != chip8.VariantCPU {
		t.Errorf("fault component = %s (%s), want cpu", fault.Component, fault.Variant)
	}
	var ie *chip8.InvalidOpcodeError
	if !errors.As(err, &ie) || ie.Op != 0x5001 || ie.PC != 0x200 {
		t.Errorf("fault error = %v, want invalid opcode 5001 at 200", err)
	}
	if got := m.State(); got != hw.Paused {
		t.Errorf("State() = %s, want Paused", got)
	}
}

func TestStackUnderflowRestarts(t *testing.T) {
	m := newMachine(t, program(0x6001, 0x00EE), machineOpts{rate: 60})
	runSteps(t, m, 2)
	if got := registers(cpuOf(t, m))["PC"]; got != chip8.EntryPoint {
		t.Errorf("PC = %#x, want entry point", got)
	}

	m = newMachine(t, program(0x00EE), machineOpts{rate: 60, strict: true})
	_, err := m.Step()
	var se *chip8.StackError
	if !errors.As(err, &se) || se.Overflow {
		t.Errorf("Step() error = %v, want stack underflow", err)
	}
}

func TestDisplayWait(t *testing.T) {
	prog := program(
		0xA000, // LD I, 0
		0xD015, // DRW V0, V1, 5
		0x7101, // ADD V1, 1
		0x1202, // JP 202
	)

	m := newMachine(t, prog, machineOpts{})
	runSteps(t, m, 5)
	if got := registers(cpuOf(t, m))["V1"]; got != 4 {
		t.Errorf("V1 = %d, want one draw per frame", got)
	}

	m = newMachine(t, prog, machineOpts{quirks: map[string]any{"display_wait": false}})
	runSteps(t, m, 5)
	if got := registers(cpuOf(t, m))["V1"]; got <= 5 {
		t.Errorf("V1 = %d, want more than one draw per frame", got)
	}
}

func TestKeyWait(t *testing.T) {
	m := newMachine(t, program(0xF30A, 0x6142), machineOpts{rate: 60})
	cpu := cpuOf(t, m)

	runSteps(t, m, 3)
	if cpu.Exec != chip8.ExecAwaitKeyPress {
		t.Fatalf("Exec = %s, want await-key-press", cpu.Exec)
	}

	m.SetInput(0, 1<<5|1<<9)
	runSteps(t, m, 2)
	if cpu.Exec != chip8.ExecAwaitKeyRelease {
		t.Fatalf("Exec = %s, want await-key-release", cpu.Exec)
	}

	// Key 9 is released first.
	m.SetInput(0, 1<<5)
	runSteps(t, m, 1)
	if cpu.Exec != chip8.ExecNormal || cpu.V[3] != 9 {
		t.Fatalf("Exec = %s, V3 = %d, want normal and key 9", cpu.Exec, cpu.V[3])
	}
	runSteps(t, m, 1)
	if cpu.V[1] != 0x42 {
		t.Errorf("V1 = %#x, execution didn't resume", cpu.V[1])
	}
}

func TestSkipIfKey(t *testing.T) {
	prog := program(
		0x6007, // LD V0, 7
		0xE09E, // SKP V0
		0x6101, // LD V1, 1
		0xE0A1, // SKNP V0
		0x6201, // LD V2, 1
	)
	m := newMachine(t, prog, machineOpts{rate: 60})
	m.SetInput(0, 1<<7)
	runSteps(t, m, 4)

	regs := registers(cpuOf(t, m))
	if regs["V1"] != 0 || regs["V2"] != 1 {
		t.Errorf("V1 = %d, V2 = %d, want 0 and 1", regs["V1"], regs["V2"])
	}
}

func TestExit(t *testing.T) {
	m := newMachine(t, program(0x00FD, 0x6001), machineOpts{rate: 60})
	runSteps(t, m, 3)

	cpu := cpuOf(t, m)
	if cpu.Exec != chip8.ExecHalted || cpu.V[0] != 0 {
		t.Errorf("Exec = %s, V0 = %d, want halted", cpu.Exec, cpu.V[0])
	}
}

func TestSoftResetKeepsFlags(t *testing.T) {
	m := newMachine(t, program(0x6011, 0xF075, 0x1204), machineOpts{rate: 60})
	runSteps(t, m, 3)

	if err := m.Reset(false); err != nil {
		t.Fatal(err)
	}
	cpu := cpuOf(t, m)
	if cpu.PC != chip8.EntryPoint || cpu.Flags[0] != 0x11 {
		t.Errorf("after soft reset: PC = %#x, flags[0] = %#x", cpu.PC, cpu.Flags[0])
	}

	if err := m.Reset(true); err != nil {
		t.Fatal(err)
	}
	if cpu.Flags[0] != 0 {
		t.Errorf("after hard reset: flags[0] = %#x, want 0", cpu.Flags[0])
	}
}

func TestDisasm(t *testing.T) {
	tests := []struct {
		op   uint16
		want string
	}{
		{0x00E0, "CLS"},
		{0x00C4, "SCD 4"},
		{0x1ABC, "JP $ABC"},
		{0x3A12, "SE VA, $12"},
		{0x8AB4, "ADD VA, VB"},
		{0x8AB8, "DW $8AB8"},
		{0xD125, "DRW V1, V2, 5"},
		{0xF533, "LD B, V5"},
		{0xF0FF, "DW $F0FF"},
	}
	for _, tt := range tests {
		if got := chip8.Disasm(tt.op); got != tt.want {
			t.Errorf("Disasm(%04X) = %q, want %q", tt.op, got, tt.want)
		}
	}
}
