package hw

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"multiemu/emu/log"
)

// A FactoryDesc describes how to build one hardware variant.
type FactoryDesc struct {
	Variant Variant
	Quirks  []QuirkSpec

	// New builds the component. p holds the component parameters, q the
	// machine quirks with the defaults of the declared quirks applied.
	New func(b *Builder, p *Params, q Quirks) (Handles, error)
}

// Registry is the closed set of component factories a machine can be built
// from. It is created once and never modified afterwards.
type Registry struct {
	descs map[Variant]*FactoryDesc
	blobs map[string][]byte
}

// NewRegistry creates a registry from a list of factories and named blobs
// (fonts, boot ROMs) factories can ask for. It panics on duplicate variants.
func NewRegistry(blobs map[string][]byte, descs ...FactoryDesc) *Registry {
	r := &Registry{
		descs: make(map[Variant]*FactoryDesc, len(descs)),
		blobs: maps.Clone(blobs),
	}
	for i := range descs {
		d := descs[i]
		if _, ok := r.descs[d.Variant]; ok {
			panic(fmt.Sprintf("hw: duplicate variant %q", d.Variant))
		}
		r.descs[d.Variant] = &d
	}
	return r
}

// Variants returns the registered variants, sorted.
func (r *Registry) Variants() []Variant {
	return slices.Sorted(maps.Keys(r.descs))
}

func (r *Registry) Lookup(v Variant) (*FactoryDesc, bool) {
	d, ok := r.descs[v]
	return d, ok
}

func (r *Registry) blob(name string) ([]byte, bool) {
	b, ok := r.blobs[name]
	return b, ok
}

func unsupported(cfg ComponentConfig) error {
	return fmt.Errorf("component %q: %w %q", cfg.Name, ErrUnsupported, cfg.Variant)
}

// Create builds a component from its configuration.
func (r *Registry) Create(b *Builder, cfg ComponentConfig, q Quirks) (Handles, error) {
	d, ok := r.descs[cfg.Variant]
	if !ok {
		return Handles{}, unsupported(cfg)
	}

	p := NewParams(cfg.Params)
	h, err := d.New(b, p, q.withDefaults(d.Quirks))
	if err == nil {
		err = p.Err()
	}
	if err == nil {
		if unused := p.Unused(); len(unused) != 0 {
			err = fmt.Errorf("unknown parameters: %s", strings.Join(unused, ", "))
		}
	}
	if err == nil {
		err = checkHandles(&h)
	}
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			return Handles{}, err
		}
		return Handles{}, &ConfigError{Component: cfg.Name, Variant: cfg.Variant, Err: err}
	}

	log.ModEmu.DebugZ("component created").
		String("name", cfg.Name).
		String("variant", string(cfg.Variant)).
		Stringer("caps", h.Caps()).
		Uint64("rate", h.Rate).
		End()
	return h, nil
}

func checkHandles(h *Handles) error {
	if h.Component == nil {
		return errors.New("factory returned no component")
	}
	if h.Clock != nil && h.Rate == 0 {
		return errors.New("clocked component without a clock rate")
	}
	return nil
}
