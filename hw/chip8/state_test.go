package chip8_test

import (
	"testing"

	"multiemu/emu/digest"
	"multiemu/hw"
	"multiemu/hw/snapshot"
)

// scribble draws the first glyph at random positions, one per frame.
var scribble = program(
	0xA000, // LD I, 0
	0xC03F, // RND V0, 3F
	0xC11F, // RND V1, 1F
	0xD015, // DRW V0, V1, 5
	0x1202, // JP 202
)

func hashSteps(tb testing.TB, m *hw.Machine, n int) string {
	tb.Helper()
	var d digest.Digest
	for i := range n {
		out, err := m.Step()
		if err != nil {
			tb.Fatalf("Step %d: %v", i, err)
		}
		d.Add(out)
	}
	return d.Hash()
}

func TestCaptureRestore(t *testing.T) {
	m := newMachine(t, scribble, machineOpts{})
	runSteps(t, m, 10)

	st, err := m.Capture()
	if err != nil {
		t.Fatal(err)
	}
	want := hashSteps(t, m, 20)

	if err := m.Restore(st); err != nil {
		t.Fatal(err)
	}
	if got := m.StepCount(); got != 10 {
		t.Errorf("StepCount() = %d after restore, want 10", got)
	}
	if got := hashSteps(t, m, 20); got != want {
		t.Errorf("hash after restore = %s, want %s", got, want)
	}
}

func TestRestoreIntoNewMachine(t *testing.T) {
	m := newMachine(t, scribble, machineOpts{})
	runSteps(t, m, 7)
	st, err := m.Capture()
	if err != nil {
		t.Fatal(err)
	}
	buf, err := snapshot.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	want := hashSteps(t, m, 30)

	// The random source is part of the state, the seed doesn't matter.
	m2 := newMachine(t, scribble, machineOpts{})
	runSteps(t, m2, 3)
	st2, err := snapshot.Unmarshal(buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := m2.Restore(st2); err != nil {
		t.Fatal(err)
	}
	if got := hashSteps(t, m2, 30); got != want {
		t.Errorf("hash after restore = %s, want %s", got, want)
	}
}

func TestRestoreMidKeyWait(t *testing.T) {
	m := newMachine(t, program(0xF30A, 0x6142), machineOpts{})
	runSteps(t, m, 2)
	st, err := m.Capture()
	if err != nil {
		t.Fatal(err)
	}

	m.SetInput(0, 1<<4)
	runSteps(t, m, 1)
	m.SetInput(0, 0)
	runSteps(t, m, 2)
	if cpuOf(t, m).V[1] != 0x42 {
		t.Fatal("key wait didn't complete")
	}

	if err := m.Restore(st); err != nil {
		t.Fatal(err)
	}
	if cpu := cpuOf(t, m); cpu.V[1] != 0 || cpu.V[3] != 0 {
		t.Errorf("V1 = %#x, V3 = %d after restore, want 0", cpu.V[1], cpu.V[3])
	}
}
