package emu

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"multiemu/hw/shaders"
	"multiemu/hw/systems"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	const data = `
[machine]
system = "schip"
open_bus = "strict"
seed = 1234
workers = 2

[audio]
sample_rate = 48000

[input.keypad]
0 = "key 0"
F = ""

[storage]
states_path = "/tmp/states.db"

[quirks]
vf_reset = false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	want := systems.Options{
		System:     "schip",
		OpenBus:    "strict",
		Seed:       1234,
		Workers:    2,
		SampleRate: 48000,
		Quirks:     map[string]any{"vf_reset": false},
	}
	if diff := cmp.Diff(want, cfg.Options()); diff != "" {
		t.Errorf("Options() mismatch (-want +got):\n%s", diff)
	}

	// Sections missing from the file keep their defaults.
	if cfg.Video.Scale != 8 || cfg.Emulation.BackBuffers != DefaultBackBuffers {
		t.Errorf("defaults lost: video %+v, emulation %+v", cfg.Video, cfg.Emulation)
	}
	// Keys missing from the table keep their default code.
	wantKeys := DefaultConfig().Input.Keypad
	wantKeys["0"] = "key 0"
	wantKeys["F"] = ""
	if diff := cmp.Diff(wantKeys, cfg.Input.Keypad); diff != "" {
		t.Errorf("keypad mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.StatesPath(); got != "/tmp/states.db" {
		t.Errorf("StatesPath() = %q", got)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("LoadConfig of a missing file succeeded")
	}

	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[machine\nseed = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig of a malformed file succeeded")
	}
}

func TestVideoConfigCheck(t *testing.T) {
	vcfg := VideoConfig{Scale: -1, Shader: "no such shader"}
	vcfg.Check()
	if vcfg.Scale != 8 || vcfg.Shader != shaders.DefaultName {
		t.Errorf("Check() = %+v", vcfg)
	}

	names := shaders.Names()
	vcfg = VideoConfig{Scale: 3, Shader: names[len(names)-1]}
	vcfg.Check()
	if vcfg.Scale != 3 || vcfg.Shader != names[len(names)-1] {
		t.Errorf("Check() changed a valid config: %+v", vcfg)
	}
}

func TestDefaultKeypad(t *testing.T) {
	keypad := DefaultConfig().Input.Keypad
	if len(keypad) != 16 {
		t.Errorf("%d keys mapped, want 16", len(keypad))
	}
	seen := make(map[string]bool)
	for i := range 16 {
		code := keypad[fmt.Sprintf("%X", i)]
		if code == "" || seen[code] {
			t.Errorf("key %X: code %q empty or duplicated", i, code)
		}
		seen[code] = true
	}
}
