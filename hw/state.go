package hw

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"multiemu/emu/log"
	"multiemu/hw/snapshot"
	"multiemu/rom"
)

// Capture takes a snapshot of the whole machine. It must be called between
// macro-steps.
func (m *Machine) Capture() (*snapshot.SaveState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stepping {
		return nil, ErrMidStep
	}

	rnd, err := m.ctx.rand.MarshalBinary()
	if err != nil {
		return nil, err
	}
	st := &snapshot.SaveState{
		Version:  snapshot.FormatVersion,
		System:   m.system,
		Rom:      m.romID,
		Step:     m.step,
		Rand:     rnd,
		BusLatch: m.bus.Latch(),
	}

	var buf bytes.Buffer
	for i := range m.comps {
		c := &m.comps[i]
		if c.h.Clock != nil {
			st.Clocks = append(st.Clocks, snapshot.Clock{
				Name:      c.name,
				Remainder: c.clock.rem,
				Debt:      c.clock.debt,
				Cycles:    c.clock.cycles,
			})
		}
		if c.h.State == nil {
			continue
		}

		buf.Reset()
		w := msgp.NewWriter(&buf)
		if err := c.h.State.SaveState(w); err != nil {
			return nil, fmt.Errorf("save %s: %w", c.name, err)
		}
		if err := w.Flush(); err != nil {
			return nil, err
		}
		st.Components = append(st.Components, snapshot.Component{
			Name:    c.name,
			Version: c.h.State.StateVersion(),
			Data:    bytes.Clone(buf.Bytes()),
		})
	}

	log.ModState.DebugZ("captured").
		Uint64("step", st.Step).
		Int("components", len(st.Components)).
		End()
	return st, nil
}

// Restore replaces the state of the machine with st. It is all-or-nothing:
// on error the machine is left untouched.
func (m *Machine) Restore(st *snapshot.SaveState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stepping {
		return ErrMidStep
	}
	if m.state == Stopped {
		return ErrStopped
	}

	if st.Version != snapshot.FormatVersion {
		return fmt.Errorf("%w: format version %d, want %d", snapshot.ErrVersionMismatch, st.Version, snapshot.FormatVersion)
	}
	if st.System != m.system {
		return fmt.Errorf("%w: system %q, running %q", snapshot.ErrRomMismatch, st.System, m.system)
	}
	if st.Rom != m.romID {
		return fmt.Errorf("%w: rom %s, running %s", snapshot.ErrRomMismatch, rom.ID(st.Rom), m.romID)
	}

	commits, err := m.stage(st)
	if err != nil {
		log.ModState.WarnZ("restore failed").
			Error("err", err).
			End()
		return err
	}
	for _, commit := range commits {
		commit()
	}
	m.fault = nil
	m.applyPolicy()

	log.ModState.DebugZ("restored").
		Uint64("step", st.Step).
		End()
	return nil
}

// stage decodes every part of st without modifying the machine and returns
// the functions applying them.
func (m *Machine) stage(st *snapshot.SaveState) ([]func(), error) {
	var commits []func()

	clocks := make(map[string]snapshot.Clock, len(st.Clocks))
	for _, c := range st.Clocks {
		clocks[c.Name] = c
	}
	nclocked := 0
	for i := range m.comps {
		c := &m.comps[i]
		if c.h.Clock == nil {
			continue
		}
		nclocked++
		sc, ok := clocks[c.name]
		if !ok {
			return nil, fmt.Errorf("%w: no clock state for %s", snapshot.ErrCorruptSnapshot, c.name)
		}
		if sc.Debt > 0 {
			return nil, fmt.Errorf("%w: %s: positive clock debt %d", snapshot.ErrCorruptSnapshot, c.name, sc.Debt)
		}
		commits = append(commits, func() {
			c.clock.rem = sc.Remainder
			c.clock.debt = sc.Debt
			c.clock.cycles = sc.Cycles
		})
	}
	if nclocked != len(clocks) {
		return nil, fmt.Errorf("%w: %d clock states for %d clocked components", snapshot.ErrCorruptSnapshot, len(clocks), nclocked)
	}

	rnd, err := m.ctx.rand.stage(st.Rand)
	if err != nil {
		return nil, snapshot.Corrupt("rand", err)
	}
	commits = append(commits, rnd)

	nstate := 0
	for i := range m.comps {
		c := &m.comps[i]
		if c.h.State == nil {
			continue
		}
		nstate++
		rec, ok := st.Find(c.name)
		if !ok {
			return nil, fmt.Errorf("%w: no state for %s", snapshot.ErrCorruptSnapshot, c.name)
		}
		if err := snapshot.CheckVersion(c.name, rec.Version, c.h.State.StateVersion()); err != nil {
			return nil, err
		}
		commit, err := c.h.State.LoadState(rec.Version, msgp.NewReader(bytes.NewReader(rec.Data)))
		if err != nil {
			return nil, snapshot.Corrupt(c.name, err)
		}
		commits = append(commits, commit)
	}
	if nstate != len(st.Components) {
		return nil, fmt.Errorf("%w: %d component states for %d stateful components", snapshot.ErrCorruptSnapshot, len(st.Components), nstate)
	}

	step, latch := st.Step, st.BusLatch
	commits = append(commits, func() {
		m.step = step
		m.pubStep.Store(step)
		m.bus.SetLatch(latch)
	})
	return commits, nil
}

// IsSnapshotError reports whether err is one of the restore errors that
// leave the machine untouched.
func IsSnapshotError(err error) bool {
	return errors.Is(err, snapshot.ErrVersionMismatch) ||
		errors.Is(err, snapshot.ErrRomMismatch) ||
		errors.Is(err, snapshot.ErrCorruptSnapshot)
}
