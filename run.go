package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sync/errgroup"

	"multiemu/emu"
	"multiemu/emu/inspect"
	"multiemu/emu/log"
	"multiemu/emu/rpc"
	"multiemu/emu/slots"
	"multiemu/hw"
	"multiemu/hw/systems"
	"multiemu/rom"
	"multiemu/ui"
	"multiemu/ui/input"
)

// applyFlags overrides the configuration with the command line.
func applyFlags(args Run, cfg *emu.Config) {
	if args.System != "" {
		cfg.Machine.System = args.System
	}
	if args.Seed != 0 {
		cfg.Machine.Seed = args.Seed
	}
	if args.Strict {
		cfg.Machine.Strict = true
	}
	if args.OpenBus != "" {
		cfg.Machine.OpenBus = args.OpenBus
	}
	if args.Unthrottled {
		cfg.Emulation.Unthrottled = true
	}
	if args.Shader != "" {
		cfg.Video.Shader = args.Shader
	}
	cfg.Video.Monitor = args.Monitor
}

// emuMain runs the emulator with the given rom, in a window unless headless.
func emuMain(args Run, cfg emu.Config) int {
	applyFlags(args, &cfg)

	r, err := rom.Open(args.RomPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading ROM: %s\n", err)
		return 1
	}
	m, err := systems.Build(r, cfg.Options())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build machine: %s\n", err)
		return 1
	}

	// Save-states are optional, the emulator runs without them.
	store, err := slots.Open(cfg.StatesPath())
	if err != nil {
		log.ModState.WarnZ("save-states disabled").Error("err", err).End()
		store = nil
	} else {
		defer store.Close()
	}

	if args.Slot >= 0 {
		if err := loadSlot(m, store, args.Slot); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load slot %d: %s\n", args.Slot, err)
			return 1
		}
	}

	var out *emu.Output
	if !args.Headless {
		out = emu.NewOutput(cfg.Emulation.BackBuffers)
	}
	e := emu.New(m, r, emu.Options{
		Output:      out,
		Slots:       store,
		Frames:      args.Frames,
		Unthrottled: cfg.Emulation.Unthrottled,
		Hash:        args.Hash != nil,
		Inspect:     args.Inspect != "",
		ExitOnFault: args.Headless,
	})

	if args.Inspect != "" {
		srv, err := inspect.Listen(args.Inspect, e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "inspection server: %s\n", err)
			return 1
		}
		defer srv.Close()
		fmt.Println("serving machine state on http://" + srv.Addr() + "/state")
	}

	if args.Port != 0 {
		fmt.Println("creating rpc server", args.Port)
		server, err := rpc.NewServer(args.Port, e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "RPC error: %v\n", err)
			return 1
		}
		defer server.Close()
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if args.Headless {
		err = e.Run(ctx)
	} else {
		sdl.Main(func() { err = runWindowed(ctx, e, out, cfg) })
	}

	var fault *hw.MachineFault
	switch {
	case errors.As(err, &fault):
		fmt.Fprintf(os.Stderr, "machine fault: %s\n", fault)
	case errors.Is(err, context.Canceled):
		err = nil
	case err != nil:
		fmt.Fprintf(os.Stderr, "emulation error: %s\n", err)
	}

	if args.Hash != nil {
		d := e.Digest()
		fmt.Fprintf(args.Hash, "%s %d\n", d.Hash(), d.Frames())
		args.Hash.Close()
	}
	if err != nil {
		return 1
	}
	return 0
}

// runWindowed runs the emulation loop alongside the shell presenting its
// output. Either one ending stops the other.
func runWindowed(ctx context.Context, e *emu.Emulator, out *emu.Output, cfg emu.Config) error {
	var g errgroup.Group
	g.Go(func() error {
		return e.Run(ctx)
	})
	g.Go(func() error {
		defer e.Stop()
		return ui.Run(e, out, cfg)
	})
	return g.Wait()
}

func loadSlot(m *hw.Machine, store *slots.Store, slot int) error {
	if store == nil {
		return errors.New("save-states are disabled")
	}
	st, err := store.Load(m.RomID(), slot)
	if err != nil {
		return err
	}
	return m.Restore(st)
}

func captureMain(args Capture) int {
	var (
		code input.Code
		err  error
	)
	sdl.Main(func() {
		sdl.Do(func() {
			code, err = input.Capture("press a key for keypad " + args.Key)
		})
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error capturing input: %v\n", err)
		return 1
	}
	out, err := code.MarshalText()
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal text error: %v\n", err)
		return 1
	}
	fmt.Printf("%s", out)
	return 0
}
