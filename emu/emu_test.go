package emu

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"multiemu/emu/digest"
	"multiemu/emu/slots"
	"multiemu/hw"
	"multiemu/hw/systems"
)

func TestHeadlessHash(t *testing.T) {
	const frames = 100

	// Reference: step the machine by hand.
	m := newMachine(t, glyphLoop, systems.Options{})
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	var want digest.Digest
	for range frames {
		out, err := m.Step()
		if err != nil {
			t.Fatal(err)
		}
		want.Add(out)
	}

	e := New(newMachine(t, glyphLoop, systems.Options{}), glyphLoop, Options{
		Frames:      frames,
		Unthrottled: true,
		Hash:        true,
	})
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := e.Machine().StepCount(); got != frames {
		t.Errorf("ran %d steps, want %d", got, frames)
	}
	if got := e.Digest(); got.Hash() != want.Hash() || got.Frames() != frames {
		t.Errorf("digest = %s (%d frames), want %s (%d frames)", got.Hash(), got.Frames(), want.Hash(), frames)
	}
	if st := e.Machine().State(); st != hw.Stopped {
		t.Errorf("machine state = %s after Run, want Stopped", st)
	}
}

func TestRunDeliversFrames(t *testing.T) {
	const frames = 20
	out := NewOutput(2)
	e := New(newMachine(t, glyphLoop, systems.Options{}), glyphLoop, Options{
		Output:      out,
		Frames:      frames,
		Unthrottled: true,
	})

	errc := make(chan error, 1)
	go func() { errc <- e.Run(context.Background()) }()

	var steps []uint64
	for f := range out.Frames() {
		if !f.HasVideo || f.Video.Width != 64 || f.Video.Height != 32 {
			t.Errorf("step %d: unexpected video %dx%d (%t)", f.Step, f.Video.Width, f.Video.Height, f.HasVideo)
		}
		if !f.HasAudio || f.Audio.SampleRate != hw.DefaultSampleRate {
			t.Errorf("step %d: unexpected audio at %d Hz (%t)", f.Step, f.Audio.SampleRate, f.HasAudio)
		}
		steps = append(steps, f.Step)
		// Slow consumer, the loop must wait rather than drop frames.
		time.Sleep(time.Millisecond)
		out.Release(f)
	}
	if err := <-errc; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(steps) != frames {
		t.Fatalf("received %d frames, want %d", len(steps), frames)
	}
	for i, s := range steps {
		if s != uint64(i) {
			t.Fatalf("frame %d is step %d", i, s)
		}
	}
}

func TestRunCancel(t *testing.T) {
	e := New(newMachine(t, glyphLoop, systems.Options{}), glyphLoop, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()

	waitFor(t, "first steps", func() bool { return e.Machine().StepCount() > 2 })
	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run didn't return after cancel")
	}
}

func TestStopUnblocksOutput(t *testing.T) {
	// Nobody consumes the output: the loop blocks on the second frame.
	out := NewOutput(1)
	e := New(newMachine(t, glyphLoop, systems.Options{}), glyphLoop, Options{
		Output:      out,
		Unthrottled: true,
	})
	errc := make(chan error, 1)
	go func() { errc <- e.Run(context.Background()) }()

	waitFor(t, "blocked output", func() bool { return e.Machine().StepCount() >= 2 })
	e.Stop()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run didn't return after Stop")
	}
}

// pause pauses e and waits for the loop to notice.
func pause(tb testing.TB, e *Emulator) uint64 {
	tb.Helper()
	if err := e.SetPause(true); err != nil {
		tb.Fatal(err)
	}
	waitFor(tb, "pause", func() bool { return e.Machine().State() == hw.Paused })
	return e.Machine().StepCount()
}

func resume(tb testing.TB, e *Emulator, from uint64) {
	tb.Helper()
	if err := e.SetPause(false); err != nil {
		tb.Fatal(err)
	}
	waitFor(tb, "resume", func() bool { return e.Machine().StepCount() > from+3 })
}

func TestSlots(t *testing.T) {
	store, err := slots.Open(filepath.Join(t.TempDir(), "states.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	e := New(newMachine(t, glyphLoop, systems.Options{}), glyphLoop, Options{
		Slots:       store,
		Unthrottled: true,
		Inspect:     true,
	})
	start(t, e)
	waitFor(t, "first steps", func() bool { return e.Machine().StepCount() > 2 })

	saved := pause(t, e)
	if err := e.SaveSlot(1); err != nil {
		t.Fatalf("SaveSlot(1): %v", err)
	}
	if err := e.SaveSlot(slots.QuickSlot); err != nil {
		t.Fatalf("quick save: %v", err)
	}

	resume(t, e, saved)
	pause(t, e)
	if err := e.LoadSlot(1); err != nil {
		t.Fatalf("LoadSlot(1): %v", err)
	}
	if got := e.Machine().StepCount(); got != saved {
		t.Errorf("step count after load = %d, want %d", got, saved)
	}
	if in := e.Inspection(); in == nil || in.Time.Step != saved {
		t.Errorf("published inspection = %+v, want step %d", in, saved)
	}

	resume(t, e, saved)
	pause(t, e)
	if err := e.LoadSlot(slots.QuickSlot); err != nil {
		t.Fatalf("quick load: %v", err)
	}
	if got := e.Machine().StepCount(); got != saved {
		t.Errorf("step count after quick load = %d, want %d", got, saved)
	}

	if err := e.LoadSlot(2); !errors.Is(err, slots.ErrEmptySlot) {
		t.Errorf("LoadSlot(2) = %v, want ErrEmptySlot", err)
	}
	if err := e.SaveSlot(slots.MaxSlot + 1); !errors.Is(err, slots.ErrInvalidSlot) {
		t.Errorf("SaveSlot(%d) = %v, want ErrInvalidSlot", slots.MaxSlot+1, err)
	}

	infos, err := store.List(e.Machine().RomID())
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Slot != 1 || infos[0].Step != saved {
		t.Errorf("List() = %+v, want slot 1 at step %d", infos, saved)
	}
}

func TestNoQuickSave(t *testing.T) {
	e := New(newMachine(t, glyphLoop, systems.Options{}), glyphLoop, Options{Unthrottled: true})
	start(t, e)
	if err := e.LoadSlot(slots.QuickSlot); !errors.Is(err, ErrNoQuickSave) {
		t.Errorf("quick load = %v, want ErrNoQuickSave", err)
	}
	if err := e.SaveSlot(1); err == nil {
		t.Error("SaveSlot without storage succeeded")
	}
}

func TestReset(t *testing.T) {
	// Counts up in V0 forever.
	r := program(0x7001, 0x1200)
	e := New(newMachine(t, r, systems.Options{}), r, Options{Unthrottled: true, Inspect: true})
	start(t, e)
	waitFor(t, "first steps", func() bool { return e.Machine().StepCount() > 2 })

	if err := e.Reset(true); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	in := e.Inspection()
	if in == nil {
		t.Fatal("no inspection published")
	}
	for _, c := range in.Components {
		if c.Name != "cpu" {
			continue
		}
		for _, f := range c.Fields {
			if f.Name == "PC" && f.Value != 0x200 {
				t.Errorf("PC = %#x after reset, want 0x200", f.Value)
			}
		}
	}
}

func TestExitOnFault(t *testing.T) {
	r := program(0x6001, 0x5001)
	e := New(newMachine(t, r, systems.Options{Strict: true}), r, Options{
		Unthrottled: true,
		ExitOnFault: true,
	})
	err := e.Run(context.Background())
	var fault *hw.MachineFault
	if !errors.As(err, &fault) {
		t.Fatalf("Run = %v, want a MachineFault", err)
	}
	if fault.Component != "cpu" {
		t.Errorf("fault component = %q, want cpu", fault.Component)
	}
}

func TestFaultPausesUntilResume(t *testing.T) {
	r := program(0x6001, 0x5001, 0x1204)
	e := New(newMachine(t, r, systems.Options{Strict: true}), r, Options{Unthrottled: true})
	start(t, e)

	waitFor(t, "fault", func() bool { return e.Machine().Fault() != nil })
	if st := e.Machine().State(); st != hw.Paused {
		t.Fatalf("state = %s after fault, want Paused", st)
	}
	faulted := e.Machine().StepCount()
	resume(t, e, faulted)
}

func TestStoppedRequests(t *testing.T) {
	e := New(newMachine(t, glyphLoop, systems.Options{}), glyphLoop, Options{Unthrottled: true, Frames: 5})
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := e.SaveSlot(slots.QuickSlot); !errors.Is(err, hw.ErrStopped) {
		t.Errorf("SaveSlot after Run = %v, want ErrStopped", err)
	}
	if err := e.Reset(false); !errors.Is(err, hw.ErrStopped) {
		t.Errorf("Reset after Run = %v, want ErrStopped", err)
	}
	if err := e.SetPause(false); !errors.Is(err, hw.ErrStopped) {
		t.Errorf("SetPause(false) after Run = %v, want ErrStopped", err)
	}
}

func TestFramePeriod(t *testing.T) {
	tests := []struct {
		rate hw.Rate
		want time.Duration
	}{
		{hw.Rate{Num: 60, Den: 1}, 16666666 * time.Nanosecond},
		{hw.Rate{Num: 50, Den: 1}, 20 * time.Millisecond},
		{hw.Rate{Num: 60000, Den: 1001}, 16683333 * time.Nanosecond},
	}
	for _, tt := range tests {
		if got := framePeriod(tt.rate); got != tt.want {
			t.Errorf("framePeriod(%s) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}
