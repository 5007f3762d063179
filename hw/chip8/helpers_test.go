package chip8_test

import (
	"testing"

	"multiemu/hw"
	"multiemu/hw/chip8"
	"multiemu/hw/systems"
	"multiemu/rom"
	"multiemu/tests"
)

const testSeed = 0xC8

var program = tests.Program

type machineOpts struct {
	system string
	rate   int64 // instructions per second, 60 means one per macro-step
	quirks map[string]any
	strict bool
}

func newMachine(tb testing.TB, prog []byte, opts machineOpts) *hw.Machine {
	tb.Helper()
	if opts.system == "" {
		opts.system = "chip8"
	}
	cfg, err := systems.Config(rom.New("test.ch8", prog), systems.Options{
		System:  opts.system,
		Quirks:  opts.quirks,
		Strict:  opts.strict,
		Seed:    testSeed,
		Workers: 1,
	})
	if err != nil {
		tb.Fatalf("Config: %v", err)
	}
	if opts.rate != 0 {
		cfg.Components[0].Params["rate"] = opts.rate
	}
	m, err := hw.NewMachine(systems.Registry(), cfg)
	if err != nil {
		tb.Fatalf("NewMachine: %v", err)
	}
	if err := m.Start(); err != nil {
		tb.Fatalf("Start: %v", err)
	}
	return m
}

func runSteps(tb testing.TB, m *hw.Machine, n int) hw.StepOutput {
	tb.Helper()
	var out hw.StepOutput
	for i := range n {
		var err error
		if out, err = m.Step(); err != nil {
			tb.Fatalf("Step %d: %v", i, err)
		}
	}
	return out
}

func component[T any](tb testing.TB, m *hw.Machine, name string) T {
	tb.Helper()
	c, ok := m.Component(name)
	if !ok {
		tb.Fatalf("no component %q", name)
	}
	t, ok := c.(T)
	if !ok {
		tb.Fatalf("component %q has type %T", name, c)
	}
	return t
}

func cpuOf(tb testing.TB, m *hw.Machine) *chip8.CPU {
	tb.Helper()
	return component[*chip8.CPU](tb, m, "cpu")
}

func displayOf(tb testing.TB, m *hw.Machine) *chip8.Display {
	tb.Helper()
	return component[*chip8.Display](tb, m, "display")
}
