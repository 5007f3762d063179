package hw

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"multiemu/emu/log"
	"multiemu/hw/hwio"
	"multiemu/rom"
)

// State is the scheduler state of a machine.
type State uint8

//go:generate go tool stringer -type=State

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

// ResumeMode tells a paused machine how to deal with the fault that paused
// it.
type ResumeMode uint8

const (
	// ResumeBestEffort disables strict mode and goes on running: invalid
	// conditions are skipped and the strict bus returns the last driven
	// value. The configured policy comes back on restore or hard reset.
	ResumeBestEffort ResumeMode = iota
	// ResumeHalt stops the machine for good.
	ResumeHalt
)

type compEntry struct {
	id      ComponentID
	name    string
	variant Variant
	h       Handles
	caps    Capability
	clock   clockDomain
	frozen  bool
}

// Machine is one emulation session. It owns all components, the address
// space and the virtual clock. Step, Capture, Restore and Inspect must be
// called from a single goroutine (the stepping path); state commands
// (Start, Pause, Stop, Resume) and SetInput may be called from anywhere.
type Machine struct {
	system     string
	romID      rom.ID
	frameRate  Rate
	slices     int
	sampleRate uint32

	ctx    *Context
	bus    *hwio.Table
	comps  []compEntry
	byName map[string]ComponentID

	video []ComponentID
	audio []ComponentID
	mix   []int16

	step    uint64        // completed macro-steps
	pubStep atomic.Uint64 // copy of step for other goroutines
	pending [NumPorts]atomic.Uint32

	// configured error policy, best-effort resumes relax it
	strict       bool
	openBus      hwio.OpenBus
	openBusValue uint8

	mu       sync.Mutex
	state    State
	stepping bool
	pauseReq bool
	stopReq  bool
	fault    *MachineFault
}

// NewMachine builds a machine. It returns either a fully wired machine, in
// the Idle state, or an error; never a partially built machine.
func NewMachine(reg *Registry, cfg MachineConfig) (*Machine, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	// Check variants and quirks before running any factory.
	specs := make(map[string]QuirkSpec)
	for _, cc := range cfg.Components {
		d, ok := reg.Lookup(cc.Variant)
		if !ok {
			return nil, unsupported(cc)
		}
		for _, s := range d.Quirks {
			specs[s.Name] = s
		}
	}
	if err := cfg.Quirks.validate(specs); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	m := &Machine{
		system:     cfg.System,
		frameRate:  cfg.FrameRate,
		slices:     cfg.Slices,
		sampleRate: cfg.SampleRate,
		bus:        hwio.NewTable(cfg.System, cfg.AddressBits),
		byName:     make(map[string]ComponentID, len(cfg.Components)),

		strict:       cfg.Strict,
		openBus:      cfg.OpenBus,
		openBusValue: cfg.OpenBusValue,
	}
	if cfg.Rom != nil {
		m.romID = cfg.Rom.ID
	}
	m.ctx = &Context{
		m:      m,
		bus:    m.bus,
		quirks: cfg.Quirks,
		rand:   NewRand(cfg.Seed),
		pool:   NewPool(workers),
		cur:    NoComponent,
	}
	m.applyPolicy()
	m.bus.SetFaultHandler(m.ctx.Fault)

	var deferred []deferredFn
	for i, cc := range cfg.Components {
		b := &Builder{
			m:       m,
			reg:     reg,
			rom:     cfg.Rom,
			name:    cc.Name,
			id:      ComponentID(i),
			variant: cc.Variant,
		}
		m.ctx.cur = b.id
		h, err := reg.Create(b, cc, cfg.Quirks)
		if err != nil {
			return nil, err
		}
		m.comps = append(m.comps, compEntry{
			id:      b.id,
			name:    cc.Name,
			variant: cc.Variant,
			h:       h,
			caps:    h.Caps(),
			clock:   clockDomain{rate: h.Rate},
		})
		m.byName[cc.Name] = b.id
		deferred = append(deferred, b.deferred...)
	}

	for _, d := range deferred {
		m.ctx.cur = d.b.id
		if err := d.fn(); err != nil {
			var ce *ConfigError
			if errors.As(err, &ce) {
				return nil, err
			}
			return nil, &ConfigError{Component: d.b.name, Variant: d.b.variant, Err: err}
		}
	}
	m.ctx.cur = NoComponent

	for _, c := range m.comps {
		if c.caps&CapVideo != 0 {
			m.video = append(m.video, c.id)
		}
		if c.caps&CapAudio != 0 {
			m.audio = append(m.audio, c.id)
		}
	}

	log.ModEmu.InfoZ("machine built").
		String("system", m.system).
		Stringer("rom", m.romID).
		Int("components", len(m.comps)).
		Stringer("framerate", m.frameRate).
		Int("slices", m.slices).
		Stringer("openbus", cfg.OpenBus).
		End()
	return m, nil
}

func (m *Machine) System() string { return m.system }

func (m *Machine) RomID() rom.ID { return m.romID }

func (m *Machine) Bus() *hwio.Table { return m.bus }

func (m *Machine) FrameRate() Rate { return m.frameRate }

// StepCount returns the number of completed macro-steps. Safe for concurrent
// use.
func (m *Machine) StepCount() uint64 { return m.pubStep.Load() }

func (m *Machine) compName(id ComponentID) string {
	if id < 0 || int(id) >= len(m.comps) {
		return "machine"
	}
	return m.comps[id].name
}

// Component returns the component with the given name.
func (m *Machine) Component(name string) (Component, bool) {
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.comps[id].h.Component, true
}

// AddLogContext implements log.Context.
func (m *Machine) AddLogContext(z *log.EntryZ) {
	z.Uint64("step", m.pubStep.Load())
}

// SetInput sets the state of an input port. The value is latched by the
// machine at the start of the next macro-step.
func (m *Machine) SetInput(port int, bits uint32) {
	if port < 0 || port >= NumPorts {
		return
	}
	m.pending[port].Store(bits)
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Fault returns the fault that paused the machine, if any.
func (m *Machine) Fault() *MachineFault {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fault
}

// Start moves an idle machine to Running. Starting a running machine does
// nothing.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Idle:
		m.setState(Running)
	case Paused:
		if m.fault != nil {
			return fmt.Errorf("%w: pending fault, resume or stop it", ErrNotRunning)
		}
		m.setState(Running)
	case Stopped:
		return ErrStopped
	}
	return nil
}

// Pause pauses a running machine. When called during a macro-step, the step
// completes first.
func (m *Machine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Running:
		if m.stepping {
			m.pauseReq = true
			return nil
		}
		m.setState(Paused)
	case Stopped:
		return ErrStopped
	}
	return nil
}

// Stop stops the machine permanently, at the end of the current macro-step
// if one is running.
func (m *Machine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stepping {
		m.stopReq = true
		return nil
	}
	m.setState(Stopped)
	return nil
}

// Resume restarts a paused machine. If the machine was paused by a fault,
// mode decides what to do with it.
func (m *Machine) Resume(mode ResumeMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Idle:
		return ErrNotRunning
	case Stopped:
		return ErrStopped
	case Running:
		return nil
	}

	if mode == ResumeHalt {
		m.setState(Stopped)
		return nil
	}
	if m.fault != nil {
		m.ctx.strict = false
		if pol, val := m.bus.OpenBus(); pol == hwio.OpenBusStrict {
			m.bus.SetOpenBus(hwio.OpenBusLast, val)
		}
		log.ModSched.InfoZ("resuming in best-effort mode").
			String("component", m.fault.Component).
			End()
		m.fault = nil
	}
	m.setState(Running)
	return nil
}

// applyPolicy puts back the configured strict mode and open bus policy.
func (m *Machine) applyPolicy() {
	m.ctx.strict = m.strict
	m.bus.SetOpenBus(m.openBus, m.openBusValue)
}

func (m *Machine) setState(s State) {
	if s == m.state {
		return
	}
	log.ModSched.DebugZ("state change").
		Stringer("from", m.state).
		Stringer("to", s).
		End()
	m.state = s
}

// Reset resets all components, in priority order. A hard reset also puts
// back the configured error policy.
func (m *Machine) Reset(hard bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stepping {
		return ErrMidStep
	}
	if m.state == Stopped {
		return ErrStopped
	}
	if hard {
		m.applyPolicy()
	}
	for i := range m.comps {
		m.ctx.cur = m.comps[i].id
		m.comps[i].h.Component.Reset(hard)
	}
	m.ctx.cur = NoComponent
	return nil
}

// Step runs one macro-step and returns its output. The output buffers belong
// to the components and are only valid until the next call to Step.
//
// If a component faulted during the step, the step still completes, the
// machine enters the Paused state and the *MachineFault is returned along
// with the output.
func (m *Machine) Step() (StepOutput, error) {
	m.mu.Lock()
	switch m.state {
	case Idle, Paused:
		m.mu.Unlock()
		return StepOutput{}, ErrNotRunning
	case Stopped:
		m.mu.Unlock()
		return StepOutput{}, ErrStopped
	}
	m.stepping = true
	m.mu.Unlock()

	out, fault := m.runStep()

	m.mu.Lock()
	m.stepping = false
	switch {
	case m.stopReq:
		m.setState(Stopped)
	case fault != nil:
		m.fault = fault
		m.setState(Paused)
	case m.pauseReq:
		m.setState(Paused)
	}
	m.stopReq, m.pauseReq = false, false
	m.mu.Unlock()

	if fault != nil {
		return out, fault
	}
	return out, nil
}

func (m *Machine) runStep() (StepOutput, *MachineFault) {
	ctx := m.ctx
	ctx.fault = nil
	for i := range ctx.input {
		ctx.input[i] = m.pending[i].Load()
	}
	for i := range m.comps {
		m.comps[i].frozen = false
	}

	for s := 0; s < m.slices; s++ {
		ctx.now = VirtualTime{Step: m.step, Slice: s}
		for i := range m.comps {
			c := &m.comps[i]
			if c.h.Clock == nil || c.frozen {
				continue
			}
			ctx.cur = c.id
			budget := c.clock.grant(m.frameRate, m.slices)
			if budget <= 0 {
				c.clock.skip(budget)
				continue
			}
			c.clock.consume(budget, c.h.Clock.Step(budget))
		}
		ctx.cur = NoComponent
		m.resolveSignals()
	}

	out := StepOutput{Step: m.step}
	m.collect(&out)
	ctx.cur = NoComponent

	m.step++
	m.pubStep.Store(m.step)
	return out, ctx.fault
}
