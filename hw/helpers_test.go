package hw_test

import (
	"errors"
	"testing"

	"github.com/tinylib/msgp/msgp"

	"multiemu/hw"
	"multiemu/hw/hwio"
	"multiemu/rom"
)

// probe is a test component recording what the machine does to it.
type probe struct {
	name  string
	ctx   *hw.Context
	trace *[]string

	budgets []int64
	signals []hw.Signal
	speed   int64
	count   uint64

	overshoot int64
	onStep    func(p *probe, budget int64)
}

func (p *probe) Reset(hard bool) { p.count = 0 }

func (p *probe) Step(budget int64) int64 {
	p.budgets = append(p.budgets, budget)
	if p.trace != nil {
		*p.trace = append(*p.trace, p.name)
	}
	if p.onStep != nil {
		p.onStep(p, budget)
	}
	p.count += uint64(budget)
	return budget + p.overshoot
}

func (p *probe) HandleSignal(sig hw.Signal) {
	p.signals = append(p.signals, sig)
	if sig.Kind == hw.SigNMI && sig.Value == 3 {
		p.ctx.Raise(hw.Signal{Kind: hw.SigIRQ, Target: 0, Value: 9})
	}
}

func (p *probe) StateVersion() uint16 { return 1 }

func (p *probe) SaveState(w *msgp.Writer) error {
	return w.WriteUint64(p.count)
}

func (p *probe) LoadState(version uint16, r *msgp.Reader) (func(), error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	return func() { p.count = n }, nil
}

func (p *probe) Inspect() []hw.Field {
	return []hw.Field{{Name: "count", Value: p.count, Width: 64}}
}

var errProbe = errors.New("probe factory failure")

// probeRegistry returns a registry with a single "test.probe" variant. Built
// probes are recorded in probes by name.
func probeRegistry(probes map[string]*probe) *hw.Registry {
	desc := hw.FactoryDesc{
		Variant: "test.probe",
		Quirks: []hw.QuirkSpec{
			{Name: "speed", Kind: hw.QuirkInt, Default: int64(1)},
			{Name: "verbose", Kind: hw.QuirkBool},
		},
		New: func(b *hw.Builder, p *hw.Params, q hw.Quirks) (hw.Handles, error) {
			rate := p.Uint("rate", 600, 1<<40)
			fail := p.Bool("fail", false)
			mapAt := p.Int("map", -1)
			peer := p.String("peer", "")
			if fail {
				return hw.Handles{}, errProbe
			}

			pr := &probe{name: b.Name(), ctx: b.Context(), speed: q.Int("speed")}
			if mapAt >= 0 {
				mem := &hwio.Mem{Name: b.Name(), Data: make([]byte, 16)}
				_, err := b.Bus().Map(hwio.Region{Name: b.Name(), Begin: uint16(mapAt), End: uint16(mapAt) + 15, Dev: mem})
				if err != nil {
					return hw.Handles{}, err
				}
			}
			if peer != "" {
				b.Defer(func() error {
					_, _, err := hw.Peer[*probe](b, peer)
					return err
				})
			}
			if probes != nil {
				probes[b.Name()] = pr
			}

			h := hw.Auto(pr)
			h.Rate = rate
			return h, nil
		},
	}
	return hw.NewRegistry(nil, desc)
}

func probeConfig(names ...string) hw.MachineConfig {
	cfg := hw.MachineConfig{
		System:  "test",
		Rom:     rom.New("test.bin", []byte{1, 2, 3}),
		Workers: 1,
	}
	for _, n := range names {
		cfg.Components = append(cfg.Components, hw.ComponentConfig{Name: n, Variant: "test.probe"})
	}
	return cfg
}

// newProbeMachine builds and starts a machine made of probes.
func newProbeMachine(tb testing.TB, cfg hw.MachineConfig) (*hw.Machine, map[string]*probe) {
	tb.Helper()
	probes := make(map[string]*probe)
	m, err := hw.NewMachine(probeRegistry(probes), cfg)
	if err != nil {
		tb.Fatalf("NewMachine: %v", err)
	}
	if err := m.Start(); err != nil {
		tb.Fatalf("Start: %v", err)
	}
	return m, probes
}

func runSteps(tb testing.TB, m *hw.Machine, n int) {
	tb.Helper()
	for i := range n {
		if _, err := m.Step(); err != nil {
			tb.Fatalf("Step %d: %v", i, err)
		}
	}
}
