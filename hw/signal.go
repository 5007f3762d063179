package hw

import (
	"cmp"
	"slices"

	"multiemu/emu/log"
)

// SignalKind is the kind of an inter-component signal. Kinds are declared in
// resolution priority order.
type SignalKind uint8

//go:generate go tool stringer -type=SignalKind -trimprefix=Sig

const (
	SigReset SignalKind = iota
	SigNMI
	SigStall
	SigIRQ
	SigVBlank
)

// A Signal is raised by a component during a slice and delivered at the end
// of it.
type Signal struct {
	Kind   SignalKind
	Source ComponentID
	Target ComponentID
	Value  int64 // stall cycles, IRQ line, ...
}

type queuedSignal struct {
	Signal
	seq uint64
}

// After this many rounds (signals raised while handling signals) the
// remaining signals are dropped.
const maxSignalRounds = 16

// sortSignals orders a queue for delivery: kind priority, then source
// registration order, then raise order.
func sortSignals(q []queuedSignal) {
	slices.SortFunc(q, func(a, b queuedSignal) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

func (m *Machine) resolveSignals() {
	ctx := m.ctx
	for round := 0; len(ctx.queue) > 0; round++ {
		if round == maxSignalRounds {
			log.ModSched.WarnZ("too many signal rounds, dropping signals").
				Int("pending", len(ctx.queue)).
				End()
			ctx.queue = ctx.queue[:0]
			return
		}

		q := ctx.queue
		ctx.queue = ctx.spare[:0]
		sortSignals(q)
		for i := range q {
			m.deliver(q[i].Signal)
		}
		ctx.spare = q[:0]
	}
}

func (m *Machine) deliver(sig Signal) {
	if sig.Target < 0 || int(sig.Target) >= len(m.comps) {
		log.ModSched.WarnZ("signal to unknown component").
			Stringer("kind", sig.Kind).
			Int("target", int(sig.Target)).
			End()
		return
	}
	c := &m.comps[sig.Target]

	log.ModSched.DebugZ("signal").
		Stringer("kind", sig.Kind).
		String("src", m.compName(sig.Source)).
		String("dst", c.name).
		Int64("val", sig.Value).
		End()

	prev := m.ctx.cur
	m.ctx.cur = sig.Target
	defer func() { m.ctx.cur = prev }()

	switch {
	case sig.Kind == SigStall:
		c.clock.debt -= sig.Value
	case c.h.Signals != nil:
		c.h.Signals.HandleSignal(sig)
	case sig.Kind == SigReset:
		c.h.Component.Reset(false)
	}
}
