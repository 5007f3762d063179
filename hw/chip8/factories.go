package chip8

import (
	"fmt"

	"multiemu/hw"
)

// Component variants.
const (
	VariantCPU     hw.Variant = "chip8.cpu"
	VariantDisplay hw.Variant = "chip8.display"
	VariantTimer   hw.Variant = "chip8.timer"
	VariantBeeper  hw.Variant = "chip8.beeper"
)

// Factories returns the descriptors of the CHIP-8 components.
func Factories() []hw.FactoryDesc {
	return []hw.FactoryDesc{
		{Variant: VariantCPU, Quirks: cpuQuirks, New: newCPUComponent},
		{Variant: VariantDisplay, Quirks: displayQuirks, New: newDisplayComponent},
		{Variant: VariantTimer, New: newTimerComponent},
		{Variant: VariantBeeper, New: newBeeperComponent},
	}
}

func newCPUComponent(b *hw.Builder, p *hw.Params, q hw.Quirks) (hw.Handles, error) {
	rate := p.Uint("rate", DefaultRate, 1<<32)
	entry := p.Uint("entry", EntryPoint, 0xFFF)
	modeName := p.String("mode", "chip8")
	display := p.String("display", "display")
	timer := p.String("timer", "timer")
	beeper := p.String("beeper", "beeper")

	mode, ok := parseMode(modeName)
	if !ok {
		return hw.Handles{}, fmt.Errorf("unknown mode %q", modeName)
	}

	c := &CPU{
		ctx:      b.Context(),
		bus:      b.Bus(),
		initMode: mode,
		entry:    uint16(entry),
		quirks:   newCPUQuirks(q),
	}
	c.Reset(true)

	b.Defer(func() error {
		var err error
		if c.display, _, err = hw.Peer[*Display](b, display); err != nil {
			return err
		}
		if c.timer, _, err = hw.Peer[*Timer](b, timer); err != nil {
			return err
		}
		c.beeper, _, err = hw.Peer[*Beeper](b, beeper)
		return err
	})

	h := hw.Auto(c)
	h.Rate = rate
	return h, nil
}

func newDisplayComponent(b *hw.Builder, p *hw.Params, q hw.Quirks) (hw.Handles, error) {
	cpu := p.String("cpu", "cpu")

	d := newDisplay(b.Context(), q)
	if cpu != "" {
		b.Defer(func() error {
			var err error
			_, d.cpu, err = hw.Peer[*CPU](b, cpu)
			return err
		})
	}

	h := hw.Auto(d)
	h.Rate = TimerRate
	return h, nil
}

func newTimerComponent(b *hw.Builder, p *hw.Params, q hw.Quirks) (hw.Handles, error) {
	h := hw.Auto(&Timer{})
	h.Rate = TimerRate
	return h, nil
}

func newBeeperComponent(b *hw.Builder, p *hw.Params, q hw.Quirks) (hw.Handles, error) {
	amp := p.Int("amplitude", DefaultAmplitude)
	stereo := p.Bool("stereo", false)
	if amp < 0 || amp > 0x3FFF {
		return hw.Handles{}, fmt.Errorf("amplitude %d out of range", amp)
	}

	layout := hw.Mono
	if stereo {
		layout = hw.Stereo
	}
	bp, err := newBeeper(b.SampleRate(), int32(amp), layout)
	if err != nil {
		return hw.Handles{}, err
	}

	h := hw.Auto(bp)
	h.Rate = TimerRate
	return h, nil
}
