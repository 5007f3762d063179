package hw

import (
	"multiemu/emu/log"
	"multiemu/hw/hwio"
)

// NumPorts is the number of input ports of a machine.
const NumPorts = 4

// Context is the machine-wide state shared by the components of one
// machine: the bus, the quirks, the random source and the signal queue. It
// is owned by the machine and only used from the stepping path.
type Context struct {
	m      *Machine
	bus    *hwio.Table
	quirks Quirks
	rand   *Rand
	pool   *Pool
	strict bool

	cur   ComponentID // component currently running
	now   VirtualTime
	input [NumPorts]uint32

	queue []queuedSignal
	spare []queuedSignal
	seq   uint64

	fault *MachineFault
}

func (c *Context) Bus() *hwio.Table { return c.bus }

func (c *Context) Quirks() Quirks { return c.quirks }

func (c *Context) Rand() *Rand { return c.rand }

// Strict reports whether components must fault on invalid conditions rather
// than skip them.
func (c *Context) Strict() bool { return c.strict }

// Now returns the current virtual time.
func (c *Context) Now() VirtualTime { return c.now }

// Input returns the state of an input port, as latched at the start of the
// macro-step.
func (c *Context) Input(port int) uint32 {
	if port < 0 || port >= NumPorts {
		return 0
	}
	return c.input[port]
}

// Raise queues a signal from the running component. It is delivered at the
// end of the current slice.
func (c *Context) Raise(sig Signal) {
	sig.Source = c.cur
	c.seq++
	c.queue = append(c.queue, queuedSignal{Signal: sig, seq: c.seq})
}

// Fault reports a fatal error of the running component. The component isn't
// stepped anymore until the end of the macro-step, after which the machine
// pauses. Only the first fault of a step is kept.
func (c *Context) Fault(err error) {
	if c.fault != nil {
		return
	}

	f := &MachineFault{Component: "machine", Time: c.now, Err: err}
	if c.cur >= 0 && int(c.cur) < len(c.m.comps) {
		e := &c.m.comps[c.cur]
		e.frozen = true
		f.Component = e.name
		f.Variant = e.variant
		f.Cycle = e.clock.cycles
	}
	c.fault = f

	log.ModSched.WarnZ("machine fault").
		String("component", f.Component).
		Stringer("time", f.Time).
		Error("err", err).
		End()
}

// Parallel runs fn(i) for i in [0, n) on the machine worker pool.
func (c *Context) Parallel(n int, fn func(i int) error) error {
	return c.pool.Run(n, fn)
}

// Frozen reports whether the running component faulted during this
// macro-step. Components running long loops check it to return early.
func (c *Context) Frozen() bool {
	if c.cur < 0 || int(c.cur) >= len(c.m.comps) {
		return false
	}
	return c.m.comps[c.cur].frozen
}
