package hw

import (
	"fmt"

	"multiemu/hw/hwio"
	"multiemu/rom"
)

// A Builder is handed to a factory while its component is built.
type Builder struct {
	m       *Machine
	reg     *Registry
	rom     *rom.Rom
	name    string
	id      ComponentID
	variant Variant

	deferred []deferredFn
}

type deferredFn struct {
	b  *Builder
	fn func() error
}

func (b *Builder) Context() *Context { return b.m.ctx }

func (b *Builder) Bus() *hwio.Table { return b.m.bus }

func (b *Builder) Name() string { return b.name }

func (b *Builder) ID() ComponentID { return b.id }

func (b *Builder) Variant() Variant { return b.variant }

// SampleRate returns the host audio sample rate.
func (b *Builder) SampleRate() uint32 { return b.m.sampleRate }

// FrameRate returns the macro-step rate of the machine.
func (b *Builder) FrameRate() Rate { return b.m.frameRate }

// Blob returns a named data blob: "rom" is the cartridge, other names are
// the blobs of the registry (fonts, boot ROMs).
func (b *Builder) Blob(name string) ([]byte, error) {
	if name == "rom" {
		if b.rom == nil {
			return nil, fmt.Errorf("no rom loaded")
		}
		return b.rom.Data, nil
	}
	if data, ok := b.reg.blob(name); ok {
		return data, nil
	}
	return nil, fmt.Errorf("unknown blob %q", name)
}

// Defer registers a function run once all components have been created, in
// definition order. It's where components connect to peers defined after
// them.
func (b *Builder) Defer(fn func() error) {
	b.deferred = append(b.deferred, deferredFn{b: b, fn: fn})
}

// Peer returns the component called name, which must implement T. Inside a
// factory, only components defined earlier are visible; use Builder.Defer
// for the others.
func Peer[T any](b *Builder, name string) (T, ComponentID, error) {
	var zero T
	id, ok := b.m.byName[name]
	if !ok {
		return zero, NoComponent, fmt.Errorf("unknown peer component %q", name)
	}
	c, ok := b.m.comps[id].h.Component.(T)
	if !ok {
		return zero, NoComponent, fmt.Errorf("peer component %q (%s) has type %T, want %T", name, b.m.comps[id].variant, b.m.comps[id].h.Component, zero)
	}
	return c, id, nil
}
