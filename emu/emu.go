// Package emu drives a machine: it paces macro-steps, hands their output to
// the shell and services control requests between steps.
package emu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"multiemu/emu/digest"
	"multiemu/emu/log"
	"multiemu/emu/slots"
	"multiemu/hw"
	"multiemu/hw/snapshot"
	"multiemu/rom"
)

var ErrNoQuickSave = errors.New("no quick save")

// Options configure an Emulator.
type Options struct {
	// Output receives a copy of each macro-step output. If nil the emulator
	// runs headless.
	Output *Output
	// Slots persists save-states. Slot requests fail if nil.
	Slots *slots.Store

	// Frames stops the emulation after that many macro-steps, if not 0.
	Frames uint64
	// Unthrottled runs as fast as possible instead of following the frame
	// rate of the machine. Output backpressure still applies.
	Unthrottled bool
	// Hash fingerprints every output, see Digest.
	Hash bool
	// Inspect publishes an inspection of the machine after each step, see
	// Inspection.
	Inspect bool
	// ExitOnFault makes Run return when the machine faults, instead of
	// waiting paused for Resume or Stop.
	ExitOnFault bool
}

type reqKind uint8

const (
	reqSave reqKind = iota
	reqLoad
	reqQuickSave
	reqQuickLoad
	reqReset
)

type request struct {
	kind reqKind
	slot int
	hard bool
	done chan error
}

// Emulator runs a machine in its own goroutine. All methods except Run are
// safe for concurrent use.
type Emulator struct {
	m    *hw.Machine
	rom  *rom.Rom
	opts Options

	reqs     chan request
	done     chan struct{}
	stopc    chan struct{}
	stopOnce sync.Once
	quick    *snapshot.SaveState // owned by the loop

	digest    *digest.Digest
	published atomic.Pointer[hw.Inspection]
}

// pollPause is how often a paused emulator checks for requests.
const pollPause = 100 * time.Millisecond

// New creates an emulator running m, which runs r.
func New(m *hw.Machine, r *rom.Rom, opts Options) *Emulator {
	e := &Emulator{
		m:     m,
		rom:   r,
		opts:  opts,
		reqs:  make(chan request, 4),
		done:  make(chan struct{}),
		stopc: make(chan struct{}),
	}
	if opts.Hash {
		e.digest = &digest.Digest{}
	}
	if opts.Inspect {
		e.published.Store(m.Inspect())
	}
	return e
}

func (e *Emulator) Machine() *hw.Machine { return e.m }

// Run is the emulation loop. It returns when ctx is done, after Stop, after
// the configured number of frames or, with ExitOnFault, when the machine
// faults. It must only be called once.
func (e *Emulator) Run(parent context.Context) error {
	defer close(e.done)

	// Stop also interrupts a loop waiting for the output to drain.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go func() {
		select {
		case <-e.stopc:
			cancel()
		case <-ctx.Done():
		}
	}()

	if e.opts.Output != nil {
		defer e.opts.Output.Close()
	}
	defer e.drainRequests()

	if err := e.m.Start(); err != nil {
		return err
	}
	log.AddContext(e.m)
	defer log.RemoveContext(e.m)

	var tick <-chan time.Time
	if !e.opts.Unthrottled {
		ticker := time.NewTicker(framePeriod(e.m.FrameRate()))
		defer ticker.Stop()
		tick = ticker.C
	}

loop:
	for {
		select {
		case <-ctx.Done():
			if err := parent.Err(); err != nil {
				e.m.Stop()
				return err
			}
			break loop
		case req := <-e.reqs:
			req.done <- e.handle(req)
			continue
		default:
		}

		switch e.m.State() {
		case hw.Stopped:
			log.ModEmu.InfoZ("emulation loop exited").End()
			return nil
		case hw.Paused:
			if f := e.m.Fault(); f != nil && e.opts.ExitOnFault {
				return f
			}
			e.waitRequest(ctx, pollPause)
			continue
		}

		out, err := e.m.Step()
		switch {
		case errors.Is(err, hw.ErrNotRunning), errors.Is(err, hw.ErrStopped):
			// Paused or stopped from another goroutine since the check.
			continue
		case err != nil && !errors.As(err, new(*hw.MachineFault)):
			return err
		}
		e.deliver(ctx, out)

		if err != nil {
			e.reportFault(err)
		}
		if e.opts.Frames != 0 && e.m.StepCount() >= e.opts.Frames {
			break loop
		}
		if tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
			}
		}
	}

	e.m.Stop()
	log.ModEmu.InfoZ("emulation loop exited").Uint64("steps", e.m.StepCount()).End()
	return nil
}

func framePeriod(r hw.Rate) time.Duration {
	return time.Duration(uint64(time.Second) * r.Den / r.Num)
}

func (e *Emulator) deliver(ctx context.Context, out hw.StepOutput) {
	if e.digest != nil {
		e.digest.Add(out)
	}
	if e.opts.Inspect {
		e.published.Store(e.m.Inspect())
	}
	if e.opts.Output == nil {
		return
	}

	err := e.opts.Output.TrySubmit(out)
	if errors.Is(err, ErrBackpressure) {
		// The shell is late: wait for it rather than queue more frames.
		log.ModVideo.DebugZ("output backpressure").Uint64("step", out.Step).End()
		err = e.opts.Output.Submit(ctx, out)
	}
	if err != nil && ctx.Err() == nil {
		log.ModVideo.WarnZ("frame dropped").Error("err", err).End()
	}
}

func (e *Emulator) reportFault(err error) {
	var f *hw.MachineFault
	if !errors.As(err, &f) {
		return
	}
	log.ModEmu.ErrorZ("machine paused by a fault").
		String("component", f.Component).
		String("variant", string(f.Variant)).
		Stringer("time", f.Time).
		Uint64("cycle", f.Cycle).
		Error("err", f.Err).
		End()
}

// waitRequest services one request, if any arrives before timeout.
func (e *Emulator) waitRequest(ctx context.Context, timeout time.Duration) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case req := <-e.reqs:
		req.done <- e.handle(req)
	case <-t.C:
	case <-ctx.Done():
	}
}

// drainRequests fails the requests still queued when the loop exits.
func (e *Emulator) drainRequests() {
	for {
		select {
		case req := <-e.reqs:
			req.done <- hw.ErrStopped
		default:
			return
		}
	}
}

func (e *Emulator) handle(req request) error {
	switch req.kind {
	case reqSave:
		if e.opts.Slots == nil {
			return fmt.Errorf("save slot %d: no save-states storage", req.slot)
		}
		st, err := e.m.Capture()
		if err != nil {
			return err
		}
		return e.opts.Slots.Save(req.slot, st)

	case reqLoad:
		if e.opts.Slots == nil {
			return fmt.Errorf("load slot %d: no save-states storage", req.slot)
		}
		st, err := e.opts.Slots.Load(e.m.RomID(), req.slot)
		if err != nil {
			return err
		}
		if err := e.m.Restore(st); err != nil {
			return fmt.Errorf("slot %d: %w", req.slot, err)
		}
		log.ModState.InfoZ("state loaded").Int("slot", req.slot).Uint64("step", st.Step).End()

	case reqQuickSave:
		st, err := e.m.Capture()
		if err != nil {
			return err
		}
		e.quick = st

	case reqQuickLoad:
		if e.quick == nil {
			return ErrNoQuickSave
		}
		return e.m.Restore(e.quick)

	case reqReset:
		log.ModEmu.InfoZ("performing reset").Bool("hard", req.hard).End()
		return e.m.Reset(req.hard)
	}

	if e.opts.Inspect {
		e.published.Store(e.m.Inspect())
	}
	return nil
}

// do sends a request to the loop and waits for its result.
func (e *Emulator) do(req request) error {
	req.done = make(chan error, 1)
	select {
	case e.reqs <- req:
	case <-e.done:
		return hw.ErrStopped
	}
	select {
	case err := <-req.done:
		return err
	case <-e.done:
		// The loop may have answered just before exiting.
		select {
		case err := <-req.done:
			return err
		default:
			return hw.ErrStopped
		}
	}
}

// SaveSlot captures the machine into a persisted slot, 1 to slots.MaxSlot,
// or the in-memory quick slot, slots.QuickSlot.
func (e *Emulator) SaveSlot(slot int) error {
	if slot == slots.QuickSlot {
		return e.do(request{kind: reqQuickSave})
	}
	return e.do(request{kind: reqSave, slot: slot})
}

// LoadSlot restores the machine from a slot. On error the machine is left
// as it was.
func (e *Emulator) LoadSlot(slot int) error {
	if slot == slots.QuickSlot {
		return e.do(request{kind: reqQuickLoad})
	}
	return e.do(request{kind: reqLoad, slot: slot})
}

// Reset performs a soft reset, or a hard one, at the next step boundary.
func (e *Emulator) Reset(hard bool) error {
	return e.do(request{kind: reqReset, hard: hard})
}

// SetPause pauses or resumes the emulation. Resuming a machine paused by a
// fault continues in best-effort mode.
func (e *Emulator) SetPause(pause bool) error {
	if pause {
		return e.m.Pause()
	}
	if e.m.State() == hw.Idle {
		return e.m.Start()
	}
	return e.m.Resume(hw.ResumeBestEffort)
}

// Stop ends the emulation loop.
func (e *Emulator) Stop() {
	e.stopOnce.Do(func() { close(e.stopc) })
	e.m.Stop()
}

// Done is closed when Run returns.
func (e *Emulator) Done() <-chan struct{} { return e.done }

// SetInput sets the state of an input port, it is latched at the start of
// the next step.
func (e *Emulator) SetInput(port int, bits uint32) { e.m.SetInput(port, bits) }

// Inspection returns the last published inspection, nil if inspection isn't
// enabled.
func (e *Emulator) Inspection() *hw.Inspection { return e.published.Load() }

// Digest returns the fingerprint of all outputs so far, nil unless Hash is
// set. It must not be used while Run is running.
func (e *Emulator) Digest() *digest.Digest { return e.digest }

// Rom returns the rom being emulated.
func (e *Emulator) Rom() *rom.Rom { return e.rom }
