package rpc

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

type fakeEmu struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func (f *fakeEmu) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeEmu) Reset(hard bool) error {
	if hard {
		f.record("hard reset")
	} else {
		f.record("soft reset")
	}
	return nil
}

func (f *fakeEmu) SetPause(pause bool) error {
	f.record(map[bool]string{true: "pause", false: "resume"}[pause])
	return nil
}

func (f *fakeEmu) SaveSlot(slot int) error {
	f.record("save")
	return nil
}

func (f *fakeEmu) LoadSlot(slot int) error {
	return errors.New("empty save slot")
}

func (f *fakeEmu) Stop() {
	f.record("stop")
	close(f.done)
}

func (f *fakeEmu) Done() <-chan struct{} { return f.done }

func TestClientServer(t *testing.T) {
	emu := &fakeEmu{done: make(chan struct{})}
	srv, err := NewServer(0, emu)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()
	if srv.Port() == 0 {
		t.Fatal("server didn't report its port")
	}

	c, err := NewClient(srv.Port())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if ok, err := c.IsReady(); err != nil || !ok {
		t.Fatalf("IsReady() = %t, %v", ok, err)
	}
	for _, err := range []error{
		c.SetPause(true),
		c.Reset(true),
		c.SaveSlot(3),
		c.SetPause(false),
		c.Stop(),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := c.LoadSlot(3); err == nil {
		t.Error("LoadSlot error not forwarded")
	}
	if ok, _ := c.IsReady(); ok {
		t.Error("IsReady() = true after Stop")
	}

	want := []string{"pause", "hard reset", "save", "resume", "stop"}
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if !slices.Equal(emu.calls, want) {
		t.Errorf("calls = %q, want %q", emu.calls, want)
	}
}
