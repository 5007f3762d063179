package hw

// Inspection is a read-only copy of the observable state of a machine, made
// at a macro-step boundary. It shares nothing with the live machine and can
// be handed to other goroutines.
type Inspection struct {
	System     string
	Rom        string
	State      State
	Time       VirtualTime
	Generation uint64 // bus map generation
	Components []ComponentView
	Fault      string
}

type ComponentView struct {
	Name    string
	Variant Variant
	Caps    Capability
	Rate    uint64
	Cycles  uint64
	Fields  []Field
}

// Inspect builds an Inspection. Like Capture it must be called between
// macro-steps, from the stepping goroutine.
func (m *Machine) Inspect() *Inspection {
	m.mu.Lock()
	defer m.mu.Unlock()

	in := &Inspection{
		System:     m.system,
		Rom:        m.romID.String(),
		State:      m.state,
		Time:       VirtualTime{Step: m.step},
		Generation: m.bus.Generation(),
		Components: make([]ComponentView, len(m.comps)),
	}
	if m.fault != nil {
		in.Fault = m.fault.Error()
	}
	for i := range m.comps {
		c := &m.comps[i]
		v := ComponentView{
			Name:    c.name,
			Variant: c.variant,
			Caps:    c.caps,
			Rate:    c.clock.rate,
			Cycles:  c.clock.cycles,
		}
		if c.h.Inspect != nil && !m.stepping {
			v.Fields = append([]Field(nil), c.h.Inspect.Inspect()...)
		}
		in.Components[i] = v
	}
	return in
}
