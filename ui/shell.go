// Package ui is the windowed shell of the emulator: it presents the frames
// of a running emulator with SDL and OpenGL, plays its audio and feeds it
// with keypad input.
package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"multiemu/emu"
	"multiemu/emu/log"
	"multiemu/emu/slots"
	"multiemu/hw"
	"multiemu/ui/input"
)

// Hotkeys:
//
//	Escape              quit
//	Space               pause/resume
//	Backspace           soft reset, hard reset with Shift
//	F1 to F9            load slot 1 to 9, save with Shift
//	F10 / F11           quick save / quick load
const (
	keyQuit      = sdl.SCANCODE_ESCAPE
	keyPause     = sdl.SCANCODE_SPACE
	keyReset     = sdl.SCANCODE_BACKSPACE
	keyQuickSave = sdl.SCANCODE_F10
	keyQuickLoad = sdl.SCANCODE_F11
)

// pollInterval is how often events are processed when no frame comes in,
// like when the emulation is paused.
const pollInterval = 16 * time.Millisecond

type shell struct {
	emu   *emu.Emulator
	out   *emu.Output
	cfg   emu.Config
	title string

	win    *window
	audio  audioQueue
	ctrls  *input.GameControllers
	keypad *input.Keypad

	status string // shown in the title
	quit   bool
}

// Run shows the output of e until the window is closed or the emulation
// ends. out must be the Output e delivers frames to. Run must be called
// from within sdl.Main, it performs all SDL calls on the main thread.
func Run(e *emu.Emulator, out *emu.Output, cfg emu.Config) error {
	cfg.Video.Check()
	s := &shell{
		emu:   e,
		out:   out,
		cfg:   cfg,
		title: "multiemu - " + e.Rom().Name,
	}
	s.audio.disabled = cfg.Audio.DisableAudio

	var err error
	sdl.Do(func() { err = s.init() })
	if err != nil {
		return err
	}
	defer sdl.Do(s.close)

	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for {
		select {
		case f, ok := <-out.Frames():
			if !ok {
				return nil
			}
			sdl.Do(func() {
				err = s.present(f)
				s.handleEvents()
			})
			out.Release(f)
			if err != nil {
				e.Stop()
				return err
			}
		case <-tick.C:
			sdl.Do(s.handleEvents)
		case <-e.Done():
			// Drain the frames still in the ring.
			for f := range out.Frames() {
				out.Release(f)
			}
			return nil
		}
		if s.quit {
			e.Stop()
		}
	}
}

// init initializes SDL. The window is created at the first frame, once the
// screen size is known.
func (s *shell) init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_GAMECONTROLLER); err != nil {
		return fmt.Errorf("failed to initialize SDL: %s", err)
	}
	s.ctrls = input.NewGameControllers()

	var err error
	s.keypad, err = input.NewKeypad(s.cfg.Input, s.ctrls)
	if err != nil {
		s.close()
		return err
	}
	return nil
}

func (s *shell) close() {
	s.audio.close()
	if s.ctrls != nil {
		s.ctrls.Close()
	}
	if s.win != nil {
		if err := s.win.Close(); err != nil {
			log.ModVideo.WarnZ("failed to close window").Error("err", err).End()
		}
	}
	sdl.Quit()
}

func (s *shell) present(f *emu.Frame) error {
	if f.HasVideo {
		if s.win == nil {
			win, err := newWindow(s.title, f.Video.Width, f.Video.Height, s.cfg.Video)
			if err != nil {
				return err
			}
			s.win = win
		}
		s.win.upload(&f.Video)
		s.win.draw()
	}
	if f.HasAudio {
		s.audio.queue(&f.Audio)
	}
	return nil
}

func (s *shell) handleEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			s.quit = true
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				s.hotkey(e.Keysym)
			}
		case *sdl.ControllerDeviceEvent:
			s.ctrls.UpdateDevices(e)
		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_EXPOSED && s.win != nil {
				s.win.draw()
			}
		}
	}
	s.emu.SetInput(0, s.keypad.State())
	s.updateTitle()
}

func (s *shell) hotkey(key sdl.Keysym) {
	shift := key.Mod&sdl.KMOD_SHIFT != 0
	sc := key.Scancode
	switch {
	case sc == keyQuit:
		s.quit = true

	case sc == keyPause:
		// Resuming a machine paused by a fault continues in best-effort mode.
		if s.emu.Machine().State() == hw.Paused {
			report("resume", s.emu.SetPause(false))
		} else {
			report("pause", s.emu.SetPause(true))
		}

	case sc == keyReset:
		s.async("reset", func() error { return s.emu.Reset(shift) })

	case sc == keyQuickSave:
		s.async("quick save", func() error { return s.emu.SaveSlot(slots.QuickSlot) })

	case sc == keyQuickLoad:
		s.async("quick load", func() error { return s.emu.LoadSlot(slots.QuickSlot) })

	case sc >= sdl.SCANCODE_F1 && sc <= sdl.SCANCODE_F9:
		slot := int(sc-sdl.SCANCODE_F1) + 1
		if shift {
			s.async(fmt.Sprintf("save slot %d", slot), func() error { return s.emu.SaveSlot(slot) })
		} else {
			s.async(fmt.Sprintf("load slot %d", slot), func() error { return s.emu.LoadSlot(slot) })
		}
	}
}

// async runs an emulator request without blocking the shell: the request is
// serviced by the emulation loop, which may be waiting for the shell to
// consume frames.
func (s *shell) async(action string, do func() error) {
	go func() { report(action, do()) }()
}

// report logs the result of a hotkey action. Errors don't stop the session:
// a failed load leaves the machine as it was.
func report(action string, err error) {
	switch {
	case err == nil:
		log.ModEmu.InfoZ(action).End()
	case errors.Is(err, slots.ErrEmptySlot), errors.Is(err, emu.ErrNoQuickSave):
		log.ModEmu.InfoZ(action).String("result", "nothing saved").End()
	default:
		log.ModEmu.WarnZ(action+" failed").Error("err", err).End()
	}
}

func (s *shell) updateTitle() {
	var status string
	switch m := s.emu.Machine(); {
	case m.Fault() != nil:
		status = " [fault, space to resume]"
	case m.State() == hw.Paused:
		status = " [paused]"
	}
	if status == s.status || s.win == nil {
		return
	}
	s.status = status
	s.win.SetTitle(s.title + status)
}
