package emu

import (
	"context"
	"testing"
	"time"

	"multiemu/emu/log"
	"multiemu/hw"
	"multiemu/hw/systems"
	"multiemu/rom"
	"multiemu/tests"
)

func init() { log.Disable() }

const testSeed = 0xC8

func program(ops ...uint16) *rom.Rom {
	return rom.New("test.ch8", tests.Program(ops...))
}

// glyphLoop draws a random glyph then loops forever.
var glyphLoop = program(0x6005, 0x6103, 0xC20F, 0xF229, 0xD015, 0x120A)

func newMachine(tb testing.TB, r *rom.Rom, opts systems.Options) *hw.Machine {
	tb.Helper()
	if opts.Seed == 0 {
		opts.Seed = testSeed
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}
	m, err := systems.Build(r, opts)
	if err != nil {
		tb.Fatalf("Build: %v", err)
	}
	return m
}

// start runs e in a goroutine and stops it at the end of the test.
func start(tb testing.TB, e *Emulator) <-chan error {
	tb.Helper()
	errc := make(chan error, 1)
	go func() { errc <- e.Run(context.Background()) }()
	tb.Cleanup(func() {
		e.Stop()
		select {
		case <-e.Done():
		case <-time.After(5 * time.Second):
			tb.Error("emulation loop didn't stop")
		}
	})
	return errc
}

// waitFor polls cond until it's true or a timeout expires.
func waitFor(tb testing.TB, what string, cond func() bool) {
	tb.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			tb.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
