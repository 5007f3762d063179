package systems_test

import (
	"bytes"
	"errors"
	"testing"

	"multiemu/emu/digest"
	"multiemu/hw"
	"multiemu/hw/chip8"
	"multiemu/hw/hwio"
	"multiemu/hw/snapshot"
	"multiemu/hw/systems"
	"multiemu/rom"
	"multiemu/tests"
)

var program = tests.Program

func build(tb testing.TB, r *rom.Rom, opts systems.Options) *hw.Machine {
	tb.Helper()
	m, err := systems.Build(r, opts)
	if err != nil {
		tb.Fatalf("Build: %v", err)
	}
	if err := m.Start(); err != nil {
		tb.Fatal(err)
	}
	return m
}

func run(tb testing.TB, m *hw.Machine, n int) *digest.Digest {
	tb.Helper()
	var d digest.Digest
	for i := range n {
		out, err := m.Step()
		if err != nil {
			tb.Fatalf("Step %d: %v", i, err)
		}
		d.Add(out)
	}
	return &d
}

func TestDefinitions(t *testing.T) {
	names := systems.Names()
	if len(names) < 2 {
		t.Fatalf("Names() = %v", names)
	}
	for _, name := range names {
		def, err := systems.Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		if def.System != name {
			t.Errorf("definition %s has system %q", name, def.System)
		}
		m := build(t, rom.New("test.bin", program(0x1200)), systems.Options{System: name, Workers: 1})
		run(t, m, 2)
	}
}

func TestParseDef(t *testing.T) {
	_, err := systems.ParseDef(`
system = "x"
frame_rate = { num = 60, den = 1 }
unknown = 1
`)
	if err == nil {
		t.Error("ParseDef accepted an unknown key")
	}
	if _, err := systems.ParseDef(`description = "no name"`); err == nil {
		t.Error("ParseDef accepted a definition without system")
	}
}

func TestUnknownSystem(t *testing.T) {
	_, err := systems.Build(rom.New("test.ch8", program(0x1200)), systems.Options{System: "vectrex"})
	if !errors.Is(err, hw.ErrUnsupported) {
		t.Errorf("Build() error = %v, want ErrUnsupported", err)
	}

	_, err = systems.Build(rom.New("test.xyz", program(0x1200)), systems.Options{})
	if !errors.Is(err, hw.ErrUnsupported) {
		t.Errorf("Build() error = %v, want ErrUnsupported", err)
	}
}

func TestUnknownQuirk(t *testing.T) {
	_, err := systems.Build(rom.New("test.ch8", program(0x1200)), systems.Options{
		Quirks: map[string]any{"warp_speed": true},
	})
	if !errors.Is(err, hw.ErrConfiguration) {
		t.Errorf("Build() error = %v, want ErrConfiguration", err)
	}
}

func TestDetect(t *testing.T) {
	data := program(0x1200)
	tests := []struct {
		name string
		db   string
		want string
	}{
		{name: "game.ch8", want: "chip8"},
		{name: "GAME.SC8", want: "schip"},
		{name: "game.ch8", db: `[[rom]]
sha1 = "` + rom.Identify(data).String() + `"
name = "game"
system = "schip"
`, want: "schip"},
	}
	for _, tt := range tests {
		db, err := systems.ParseQuirkDB(tt.db)
		if err != nil {
			t.Fatal(err)
		}
		got, err := systems.Detect(rom.New(tt.name, data), db)
		if err != nil || got != tt.want {
			t.Errorf("Detect(%s) = %q, %v, want %q", tt.name, got, err, tt.want)
		}
	}
}

func TestQuirkPriority(t *testing.T) {
	r := rom.New("game.ch8", program(0x1200))
	db, err := systems.ParseQuirkDB(`[[rom]]
sha1 = "` + r.ID.String() + `"
name = "game"

[rom.quirks]
shift_vy = false
jump_vx = true
`)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := systems.Config(r, systems.Options{DB: db, Quirks: map[string]any{"jump_vx": false}})
	if err != nil {
		t.Fatal(err)
	}
	q := cfg.Quirks
	if !q.Bool(chip8.QuirkVFReset) || q.Bool(chip8.QuirkShiftVY) || q.Bool(chip8.QuirkJumpVX) {
		t.Errorf("quirks = %v", q.Table())
	}
}

func TestQuirkDBEntryForOtherSystem(t *testing.T) {
	r := rom.New("game.ch8", program(0x1200))
	db, err := systems.ParseQuirkDB(`[[rom]]
sha1 = "` + r.ID.String() + `"
system = "schip"

[rom.quirks]
display_wait = false
`)
	if err != nil {
		t.Fatal(err)
	}

	// Forcing another system ignores the entry.
	cfg, err := systems.Config(r, systems.Options{System: "chip8", DB: db})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Quirks.Bool(chip8.QuirkDisplayWait) {
		t.Error("quirks of an entry for another system were applied")
	}
}

func TestQuirkDBErrors(t *testing.T) {
	if _, err := systems.ParseQuirkDB("[[rom]]\nname = \"nohash\"\n"); err == nil {
		t.Error("entry without sha1 accepted")
	}
	if _, err := systems.ParseQuirkDB("[[rom]]\nsha1 = \"1234\"\n"); err == nil {
		t.Error("short sha1 accepted")
	}
}

func TestQuirkDBMerge(t *testing.T) {
	id := rom.Identify([]byte{1}).String()
	a, _ := systems.ParseQuirkDB("[[rom]]\nsha1 = \"" + id + "\"\nname = \"a\"\n")
	b, _ := systems.ParseQuirkDB("[[rom]]\nsha1 = \"" + id + "\"\nname = \"b\"\n")

	merged := a.Merge(b)
	e, ok := merged.Lookup(rom.Identify([]byte{1}))
	if !ok || e.Name != "b" || merged.Len() != 1 {
		t.Errorf("Lookup() = %+v, %t, want entry b", e, ok)
	}
}

func TestOpenBusOverride(t *testing.T) {
	r := rom.New("game.ch8", program(0x1200))
	m := build(t, r, systems.Options{OpenBus: "strict"})
	if pol, _ := m.Bus().OpenBus(); pol != hwio.OpenBusStrict {
		t.Errorf("open bus = %s, want strict", pol)
	}

	_, err := systems.Build(r, systems.Options{OpenBus: "random"})
	if !errors.Is(err, hw.ErrConfiguration) {
		t.Errorf("Build() error = %v, want ErrConfiguration", err)
	}
}

// randomDraws draws glyphs at random positions, forever.
var randomDraws = program(
	0xC00F, // RND V0, F
	0xF029, // LD F, V0
	0xC13F, // RND V1, 3F
	0xC21F, // RND V2, 1F
	0xD125, // DRW V1, V2, 5
	0x1200, // JP 200
)

// keyDraws draws the glyph of a random key when that key is held.
var keyDraws = program(
	0xC00F, // RND V0, F
	0xE09E, // SKP V0
	0x1200, // JP 200
	0xF029, // LD F, V0
	0xC13F, // RND V1, 3F
	0xC21F, // RND V2, 1F
	0xD125, // DRW V1, V2, 5
	0x1200, // JP 200
)

func TestDeterminism(t *testing.T) {
	r := rom.New("game.ch8", randomDraws)

	a := run(t, build(t, r, systems.Options{Seed: 42, Workers: 1}), 60)
	b := run(t, build(t, r, systems.Options{Seed: 42, Workers: 4}), 60)
	if a.Hash() != b.Hash() {
		t.Errorf("same seed, different hashes: %s and %s", a.Hash(), b.Hash())
	}

	c := run(t, build(t, r, systems.Options{Seed: 43, Workers: 1}), 60)
	if a.VideoHash() == c.VideoHash() {
		t.Error("different seeds, same video")
	}
}

func TestDeterministicReplay(t *testing.T) {
	r := rom.New("keys.ch8", keyDraws)
	src := build(t, r, systems.Options{Seed: 1})
	run(t, src, 10)
	start, err := src.Capture()
	if err != nil {
		t.Fatal(err)
	}
	inputs := []uint32{0, 1 << 3, 1 << 3, 1<<3 | 1<<7, 0xFFFF, 0, 0, 1 << 0xA, 0xFFFF, 0xFFFF, 1 << 0, 0}

	// replay restores start in a new machine and feeds it the inputs, one
	// step each. It returns the hash of the outputs and the final state.
	replay := func(seed uint64, workers int) (string, []byte) {
		m := build(t, r, systems.Options{Seed: seed, Workers: workers})
		if err := m.Restore(start); err != nil {
			t.Fatal(err)
		}
		var d digest.Digest
		for i, keys := range inputs {
			m.SetInput(0, keys)
			out, err := m.Step()
			if err != nil {
				t.Fatalf("Step %d: %v", i, err)
			}
			d.Add(out)
		}
		end, err := m.Capture()
		if err != nil {
			t.Fatal(err)
		}
		buf, err := snapshot.Marshal(end)
		if err != nil {
			t.Fatal(err)
		}
		return d.Hash(), buf
	}

	// The seed is part of the save-state, the worker count is irrelevant.
	hash1, state1 := replay(1, 1)
	hash2, state2 := replay(99, 4)
	if hash1 != hash2 {
		t.Errorf("same inputs, different hashes: %s and %s", hash1, hash2)
	}
	if !bytes.Equal(state1, state2) {
		t.Error("same inputs, different final save-states")
	}
}

func TestRestoreOtherRom(t *testing.T) {
	m1 := build(t, rom.New("a.ch8", randomDraws), systems.Options{})
	run(t, m1, 5)
	st, err := m1.Capture()
	if err != nil {
		t.Fatal(err)
	}

	m2 := build(t, rom.New("b.ch8", program(0x6001, 0x1202)), systems.Options{})
	run(t, m2, 5)
	before, err := m2.Capture()
	if err != nil {
		t.Fatal(err)
	}

	if err := m2.Restore(st); !errors.Is(err, snapshot.ErrRomMismatch) {
		t.Fatalf("Restore() error = %v, want ErrRomMismatch", err)
	}
	after, err := m2.Capture()
	if err != nil {
		t.Fatal(err)
	}
	b1, _ := snapshot.Marshal(before)
	b2, _ := snapshot.Marshal(after)
	if string(b1) != string(b2) {
		t.Error("failed restore modified the machine")
	}
}

func TestRestoreOtherSystem(t *testing.T) {
	r := rom.New("a.ch8", randomDraws)
	m1 := build(t, r, systems.Options{System: "schip"})
	st, err := m1.Capture()
	if err != nil {
		t.Fatal(err)
	}
	m2 := build(t, r, systems.Options{System: "chip8"})
	if err := m2.Restore(st); !errors.Is(err, snapshot.ErrRomMismatch) {
		t.Errorf("Restore() error = %v, want ErrRomMismatch", err)
	}
}

// Reference fingerprints of 100 steps of the program below: glyph A drawn
// at (5,3) and silence.
const (
	chip8VideoHash = "40ebfed177a5eb44f5796ec5d8fc94f562b673c3"
	chip8AudioHash = "2ec8d18fffa72ce5f7515e69391fa913e95c44e3"
	chip8Hash      = "e6f8dfc2afb27f25ef0c2586c3bf9faec527e74c"
)

func TestChip8Hash(t *testing.T) {
	prog := program(
		0x6005, // LD V0, 5
		0x6103, // LD V1, 3
		0xC20F, // RND V2, F
		0xF229, // LD F, V2
		0xD015, // DRW V0, V1, 5
		0x120A, // JP 20A
	)
	m := build(t, rom.New("hash.ch8", prog), systems.Options{Seed: 0x5EED, Workers: 2})
	got := run(t, m, 100)

	if got.Frames() != 100 {
		t.Fatalf("hashed %d frames, want 100", got.Frames())
	}
	if got.VideoHash() != chip8VideoHash {
		t.Errorf("video hash = %s, want %s", got.VideoHash(), chip8VideoHash)
	}
	if got.AudioHash() != chip8AudioHash {
		t.Errorf("audio hash = %s, want %s", got.AudioHash(), chip8AudioHash)
	}
	if got.Hash() != chip8Hash {
		t.Errorf("hash = %s, want %s", got.Hash(), chip8Hash)
	}
}
