package hw

import (
	"fmt"

	"multiemu/hw/hwio"
	"multiemu/rom"
)

// Rate is a rational frequency, in Hz.
type Rate struct {
	Num uint64 `toml:"num"`
	Den uint64 `toml:"den"`
}

func (r Rate) String() string {
	if r.Den == 1 {
		return fmt.Sprintf("%dHz", r.Num)
	}
	return fmt.Sprintf("%d/%dHz", r.Num, r.Den)
}

// ComponentConfig is the definition of one component of a machine.
type ComponentConfig struct {
	Name    string         `toml:"name"`
	Variant Variant        `toml:"variant"`
	Params  map[string]any `toml:"params"`
}

// MachineConfig is everything needed to build a machine. Components are
// listed in priority order: within a slice they are stepped in this order,
// and it's also the tie-break order for signals of the same kind.
type MachineConfig struct {
	System string
	Rom    *rom.Rom

	FrameRate   Rate // macro-steps per second
	Slices      int  // sync points per macro-step
	AddressBits int

	OpenBus      hwio.OpenBus
	OpenBusValue uint8

	// Strict makes components fault on conditions they would otherwise
	// skip (invalid opcodes, stack errors).
	Strict bool

	Seed       uint64
	Workers    int
	SampleRate uint32 // host audio sample rate

	Components []ComponentConfig
	Quirks     Quirks
}

const (
	DefaultSampleRate = 44100
	maxSlices         = 1024
)

func (cfg *MachineConfig) normalize() error {
	if cfg.FrameRate.Num == 0 && cfg.FrameRate.Den == 0 {
		cfg.FrameRate = Rate{Num: 60, Den: 1}
	}
	if cfg.FrameRate.Num == 0 || cfg.FrameRate.Den == 0 {
		return configErrorf("machine", "", "invalid frame rate %d/%d", cfg.FrameRate.Num, cfg.FrameRate.Den)
	}
	if cfg.Slices == 0 {
		cfg.Slices = 1
	}
	if cfg.Slices < 0 || cfg.Slices > maxSlices {
		return configErrorf("machine", "", "invalid slice count %d", cfg.Slices)
	}
	if cfg.AddressBits == 0 {
		cfg.AddressBits = 16
	}
	if cfg.AddressBits < 0 || cfg.AddressBits > 16 {
		return configErrorf("machine", "", "invalid address width %d", cfg.AddressBits)
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if len(cfg.Components) == 0 {
		return configErrorf("machine", "", "system %q has no components", cfg.System)
	}
	seen := make(map[string]bool, len(cfg.Components))
	for _, c := range cfg.Components {
		if c.Name == "" {
			return configErrorf("machine", c.Variant, "component without a name")
		}
		if seen[c.Name] {
			return configErrorf(c.Name, c.Variant, "duplicate component name")
		}
		seen[c.Name] = true
	}
	return nil
}
