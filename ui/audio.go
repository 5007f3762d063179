package ui

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"multiemu/emu/log"
	"multiemu/hw"
)

const (
	AudioFormat     = sdl.AUDIO_S16LSB
	AudioBufferSize = 1024 // in samples per channel

	// Samples queued beyond that many milliseconds are dropped, so that a
	// slow device doesn't build up latency.
	maxQueuedMillis = 100
)

// audioQueue plays the audio of the emulated machine through an SDL audio
// device, opened at the first audio frame with its sample rate and layout.
type audioQueue struct {
	dev       sdl.AudioDeviceID
	rate      uint32
	layout    hw.ChannelLayout
	maxQueued uint32 // in bytes
	disabled  bool
}

func (aq *audioQueue) open(rate uint32, layout hw.ChannelLayout) error {
	aq.close()

	want := sdl.AudioSpec{
		Freq:     int32(rate),
		Format:   AudioFormat,
		Channels: uint8(layout.Channels()),
		Samples:  AudioBufferSize,
	}
	var have sdl.AudioSpec
	dev, err := sdl.OpenAudioDevice("", false, &want, &have, 0)
	if err != nil {
		return fmt.Errorf("failed to open audio device: %s", err)
	}
	aq.dev = dev
	aq.rate = rate
	aq.layout = layout
	aq.maxQueued = rate * uint32(layout.Channels()) * 2 * maxQueuedMillis / 1000
	sdl.PauseAudioDevice(dev, false)

	log.ModSound.InfoZ("audio device opened").
		Uint("rate", uint(have.Freq)).
		Stringer("layout", layout).
		Uint("buffer", uint(have.Samples)).
		End()
	return nil
}

// queue plays the samples of one macro-step. It must be called on the SDL
// thread.
func (aq *audioQueue) queue(a *hw.AudioDescriptor) {
	if aq.disabled || len(a.Samples) == 0 {
		return
	}
	if aq.dev == 0 || aq.rate != a.SampleRate || aq.layout != a.Layout {
		if err := aq.open(a.SampleRate, a.Layout); err != nil {
			log.ModSound.WarnZ("audio disabled").Error("err", err).End()
			aq.disabled = true
			return
		}
	}
	if sdl.GetQueuedAudioSize(aq.dev) > aq.maxQueued {
		log.ModSound.DebugZ("audio queue full, dropping samples").End()
		return
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(&a.Samples[0])), len(a.Samples)*2)
	if err := sdl.QueueAudio(aq.dev, buf); err != nil {
		log.ModSound.DebugZ("failed to queue audio buffer").Error("err", err).End()
	}
}

func (aq *audioQueue) close() {
	if aq.dev != 0 {
		sdl.CloseAudioDevice(aq.dev)
		aq.dev = 0
	}
}
