package emu

import (
	"context"
	"errors"
	"sync"

	"multiemu/hw"
)

// ErrBackpressure is returned by Output.TrySubmit when the shell hasn't
// released any frame buffer yet.
var ErrBackpressure = errors.New("output ring full")

// DefaultBackBuffers is the default number of frames in the output ring.
const DefaultBackBuffers = 3

// Frame is a copy of the output of a macro-step, owned by the output ring.
type Frame struct {
	Step  uint64
	Video hw.FrameDescriptor
	Audio hw.AudioDescriptor

	HasVideo bool
	HasAudio bool
}

func (f *Frame) copyFrom(out hw.StepOutput) {
	f.Step = out.Step
	f.HasVideo = out.Frame != nil
	if f.HasVideo {
		pix := append(f.Video.Pix[:0], out.Frame.Pix...)
		f.Video = *out.Frame
		f.Video.Pix = pix
	}
	f.HasAudio = out.Audio != nil
	if f.HasAudio {
		samples := append(f.Audio.Samples[:0], out.Audio.Samples...)
		f.Audio = *out.Audio
		f.Audio.Samples = samples
	}
}

// Output is a bounded ring of frames between the emulation loop, which
// fills them, and the shell, which presents them and gives them back.
type Output struct {
	free  chan *Frame
	ready chan *Frame

	closeOnce sync.Once
}

// NewOutput creates an output ring of n frames.
func NewOutput(n int) *Output {
	if n <= 0 {
		n = DefaultBackBuffers
	}
	o := &Output{
		free:  make(chan *Frame, n),
		ready: make(chan *Frame, n),
	}
	for range n {
		o.free <- &Frame{}
	}
	return o
}

// TrySubmit copies out into a free frame and hands it to the shell. It
// never blocks: ErrBackpressure is returned when all frames are in use.
func (o *Output) TrySubmit(out hw.StepOutput) error {
	select {
	case f := <-o.free:
		f.copyFrom(out)
		o.ready <- f
		return nil
	default:
		return ErrBackpressure
	}
}

// Submit is like TrySubmit but waits for a free frame, or for ctx to be done.
func (o *Output) Submit(ctx context.Context, out hw.StepOutput) error {
	select {
	case f := <-o.free:
		f.copyFrom(out)
		o.ready <- f
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Frames returns the channel on which submitted frames are delivered. It is
// closed by Close.
func (o *Output) Frames() <-chan *Frame { return o.ready }

// Release gives a frame back to the ring once the shell is done with it.
func (o *Output) Release(f *Frame) {
	select {
	case o.free <- f:
	default:
		panic("emu: more frames released than submitted")
	}
}

// Close tells the shell no more frames will be submitted. Only the
// emulation loop may call it.
func (o *Output) Close() {
	o.closeOnce.Do(func() { close(o.ready) })
}
