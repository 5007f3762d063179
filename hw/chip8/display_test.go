package chip8_test

import (
	"bytes"
	"testing"

	"multiemu/hw/chip8"
)

var noWait = map[string]any{"display_wait": false}

func TestDrawCollision(t *testing.T) {
	m := newMachine(t, program(0xA000, 0xD015, 0xD015), machineOpts{rate: 60, quirks: noWait})
	cpu, disp := cpuOf(t, m), displayOf(t, m)

	runSteps(t, m, 2)
	if cpu.V[0xF] != 0 || !disp.Pixel(0, 0) || disp.Pixel(4, 0) {
		t.Fatalf("after first draw: VF = %d, (0,0) = %t, (4,0) = %t", cpu.V[0xF], disp.Pixel(0, 0), disp.Pixel(4, 0))
	}

	runSteps(t, m, 1)
	if cpu.V[0xF] != 1 || disp.Pixel(0, 0) {
		t.Errorf("after second draw: VF = %d, (0,0) = %t, want collision and erased", cpu.V[0xF], disp.Pixel(0, 0))
	}
}

func TestDrawEdges(t *testing.T) {
	// Glyph 0 first row is 0xF0: 4 pixels starting at x=62.
	prog := program(0x603E, 0x6100, 0xA000, 0xD015)

	m := newMachine(t, prog, machineOpts{rate: 60, quirks: noWait})
	runSteps(t, m, 4)
	disp := displayOf(t, m)
	if !disp.Pixel(63, 0) || disp.Pixel(0, 0) || disp.Pixel(1, 0) {
		t.Errorf("clipped draw: (63,0) = %t, (0,0) = %t, (1,0) = %t", disp.Pixel(63, 0), disp.Pixel(0, 0), disp.Pixel(1, 0))
	}

	m = newMachine(t, prog, machineOpts{rate: 60, quirks: map[string]any{"display_wait": false, "clip_sprites": false}})
	runSteps(t, m, 4)
	disp = displayOf(t, m)
	if !disp.Pixel(63, 0) || !disp.Pixel(0, 0) || !disp.Pixel(1, 0) {
		t.Errorf("wrapped draw: (63,0) = %t, (0,0) = %t, (1,0) = %t", disp.Pixel(63, 0), disp.Pixel(0, 0), disp.Pixel(1, 0))
	}
}

func TestDrawStartWraps(t *testing.T) {
	// x=66 and y=33 start at (2,1).
	m := newMachine(t, program(0x6042, 0x6121, 0xA000, 0xD015), machineOpts{rate: 60, quirks: noWait})
	runSteps(t, m, 4)

	disp := displayOf(t, m)
	if !disp.Pixel(2, 1) || !disp.Pixel(5, 1) || disp.Pixel(6, 1) {
		t.Errorf("glyph not drawn at (2,1)")
	}
}

func TestFrame(t *testing.T) {
	m := newMachine(t, program(0xA000, 0xD015, 0x1204), machineOpts{rate: 60})
	out := runSteps(t, m, 2)

	f := out.Frame
	if f == nil {
		t.Fatal("no frame")
	}
	if f.Width != chip8.LoresWidth || f.Height != chip8.LoresHeight || f.Stride != chip8.LoresWidth*4 {
		t.Fatalf("frame is %dx%d stride %d", f.Width, f.Height, f.Stride)
	}
	on := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	off := []byte{0x00, 0x00, 0x00, 0xFF}
	if px := f.Pix[0:4]; !bytes.Equal(px, on) {
		t.Errorf("pixel (0,0) = %x, want lit", px)
	}
	if px := f.Pix[4*4 : 5*4]; !bytes.Equal(px, off) {
		t.Errorf("pixel (4,0) = %x, want unlit", px)
	}
	if px := f.Pix[f.Stride*31:][:4]; !bytes.Equal(px, off) {
		t.Errorf("pixel (0,31) = %x, want unlit", px)
	}
}

func TestHires(t *testing.T) {
	prog := program(
		0xA000, // LD I, 0
		0xD015, // DRW V0, V1, 5
		0x00FF, // HIGH
		0xD015, // DRW V0, V1, 5
	)
	m := newMachine(t, prog, machineOpts{system: "schip", rate: 60})
	disp := displayOf(t, m)

	runSteps(t, m, 3)
	if !disp.Hires() || disp.Pixel(0, 0) {
		t.Fatalf("hires = %t, (0,0) = %t, want hires and cleared screen", disp.Hires(), disp.Pixel(0, 0))
	}

	out := runSteps(t, m, 1)
	if f := out.Frame; f.Width != chip8.HiresWidth || f.Height != chip8.HiresHeight {
		t.Errorf("frame is %dx%d, want 128x64", f.Width, f.Height)
	}
	if !disp.Pixel(0, 0) {
		t.Error("glyph not drawn in hires")
	}
}

func TestWideSprite(t *testing.T) {
	// The first 2 bytes of the font, F0 90, make the first row.
	m := newMachine(t, program(0x00FF, 0xA000, 0xD010), machineOpts{system: "schip", rate: 60})
	runSteps(t, m, 3)

	disp := displayOf(t, m)
	for x, want := range []bool{true, true, true, true, false, false, false, false, true, false, false, true} {
		if got := disp.Pixel(x, 0); got != want {
			t.Errorf("(%d,0) = %t, want %t", x, got, want)
		}
	}

	// Height 0 draws nothing in chip8 mode.
	m = newMachine(t, program(0xA000, 0xD010), machineOpts{rate: 60, quirks: noWait})
	runSteps(t, m, 2)
	if displayOf(t, m).Pixel(0, 0) {
		t.Error("DXY0 drew in chip8 mode")
	}
}

func TestScroll(t *testing.T) {
	prog := program(
		0x00FF, // HIGH
		0xA000, // LD I, 0
		0xD015, // DRW V0, V1, 5
		0x00C2, // SCD 2
		0x00FB, // SCR
		0x00FC, // SCL
		0x00FC, // SCL
	)
	m := newMachine(t, prog, machineOpts{system: "schip", rate: 60})
	disp := displayOf(t, m)

	runSteps(t, m, 4)
	if disp.Pixel(0, 0) || !disp.Pixel(0, 2) {
		t.Errorf("scroll down: (0,0) = %t, (0,2) = %t", disp.Pixel(0, 0), disp.Pixel(0, 2))
	}
	runSteps(t, m, 1)
	if disp.Pixel(0, 2) || !disp.Pixel(4, 2) {
		t.Errorf("scroll right: (0,2) = %t, (4,2) = %t", disp.Pixel(0, 2), disp.Pixel(4, 2))
	}
	runSteps(t, m, 1)
	if !disp.Pixel(0, 2) || disp.Pixel(4, 2) {
		t.Errorf("scroll left: (0,2) = %t, (4,2) = %t", disp.Pixel(0, 2), disp.Pixel(4, 2))
	}
	// Pixels scrolled out are lost.
	runSteps(t, m, 1)
	if disp.Pixel(0, 2) {
		t.Error("scroll left: (0,2) still lit")
	}
}
