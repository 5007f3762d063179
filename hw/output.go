package hw

import (
	"math"

	"multiemu/emu/log"
)

type PixelFormat uint8

const (
	// RGBA8888 is 4 bytes per pixel, in R, G, B, A order.
	RGBA8888 PixelFormat = iota + 1
)

func (f PixelFormat) String() string {
	if f == RGBA8888 {
		return "RGBA8888"
	}
	return "unknown"
}

// FrameDescriptor describes a picture produced during a macro-step.
type FrameDescriptor struct {
	Width, Height int
	Format        PixelFormat
	Stride        int // bytes per line
	Pix           []byte
}

type ChannelLayout uint8

const (
	Mono ChannelLayout = iota + 1
	Stereo
)

func (l ChannelLayout) Channels() int {
	if l == Stereo {
		return 2
	}
	return 1
}

func (l ChannelLayout) String() string {
	switch l {
	case Mono:
		return "mono"
	case Stereo:
		return "stereo"
	}
	return "unknown"
}

// AudioDescriptor describes the samples produced during a macro-step.
// Samples are interleaved when the layout has more than one channel.
type AudioDescriptor struct {
	SampleRate uint32
	Layout     ChannelLayout
	Samples    []int16
}

// StepOutput is what a macro-step produced. Frame or Audio are nil when the
// machine has no such source.
type StepOutput struct {
	Step  uint64
	Frame *FrameDescriptor
	Audio *AudioDescriptor
}

func (m *Machine) collect(out *StepOutput) {
	if len(m.video) > 0 {
		c := &m.comps[m.video[0]]
		m.ctx.cur = c.id
		f := c.h.Video.Frame()
		out.Frame = &f
	}

	var first *AudioDescriptor
	mixed := false
	for _, id := range m.audio {
		c := &m.comps[id]
		m.ctx.cur = id
		a := c.h.Audio.Audio()
		if first == nil {
			first = &a
			continue
		}
		if a.SampleRate != first.SampleRate || a.Layout != first.Layout {
			log.ModSound.WarnZ("audio source format mismatch, dropped").
				String("component", c.name).
				End()
			continue
		}
		// The first source buffer is copied before mixing, it belongs to
		// its component.
		if !mixed {
			m.mix = append(m.mix[:0], first.Samples...)
			first.Samples = m.mix
			mixed = true
		}
		mixInto(first.Samples, a.Samples)
	}
	out.Audio = first
}

// mixInto adds src to dst with saturation.
func mixInto(dst, src []int16) {
	for i := range min(len(dst), len(src)) {
		s := int32(dst[i]) + int32(src[i])
		dst[i] = int16(max(math.MinInt16, min(math.MaxInt16, s)))
	}
}
