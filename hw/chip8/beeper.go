package chip8

import (
	"fmt"

	"github.com/arl/blip"
	"github.com/tinylib/msgp/msgp"

	"multiemu/hw"
	"multiemu/hw/snapshot"
)

const (
	toneFreq         = 440
	DefaultAmplitude = 0x2000

	// Input clocks per output sample. A power of two keeps the blip
	// resampling factor exact.
	clocksPerSample = 64

	// Samples of history replayed before each tick: sixteen time
	// constants of the blip high-pass filter.
	historySamples = 16 << 9
)

// Beeper is the sound timer: it counts down at 60Hz and a 440Hz square wave
// plays while it's non zero.
//
// Each tick starts from a cleared blip buffer into which the recent ticks are
// replayed, so the samples only depend on what SaveState records.
type Beeper struct {
	value uint8
	level int32
	next  uint64 // next edge, in 1/(2*toneFreq) clocks from the tick start

	hist    []tone // oldest first, since the last silent tick
	histLen int

	buf        *blip.Buffer
	sampleRate uint32
	clockRate  uint64
	tickClocks uint64
	amp        int32
	layout     hw.ChannelLayout

	tmp []int16
	out []int16
}

// tone is the beeper state at the start of a tick.
type tone struct {
	on    bool
	level int32
	next  uint64
}

func (t tone) silent() bool { return !t.on && t.level == 0 }

func newBeeper(sampleRate uint32, amp int32, layout hw.ChannelLayout) (*Beeper, error) {
	if sampleRate == 0 || sampleRate%TimerRate != 0 {
		return nil, fmt.Errorf("sample rate %d is not a multiple of %d", sampleRate, TimerRate)
	}
	perTick := int(sampleRate / TimerRate)
	if perTick > blip.MaxFrame {
		return nil, fmt.Errorf("sample rate %d too high", sampleRate)
	}

	b := &Beeper{
		histLen:    (historySamples + perTick - 1) / perTick,
		buf:        blip.NewBuffer(perTick * 2),
		sampleRate: sampleRate,
		clockRate:  uint64(sampleRate) * clocksPerSample,
		amp:        amp,
		layout:     layout,
		tmp:        make([]int16, perTick*2),
	}
	b.hist = make([]tone, 0, b.histLen)
	b.tickClocks = b.clockRate / TimerRate
	b.buf.SetRates(float64(b.clockRate), float64(sampleRate))
	return b, nil
}

func (b *Beeper) Reset(hard bool) {
	b.value, b.level, b.next = 0, 0, 0
	b.hist = b.hist[:0]
	b.buf.Clear()
	b.out = b.out[:0]
}

func (b *Beeper) Get() uint8 { return b.value }

func (b *Beeper) Set(v uint8) { b.value = v }

// Playing reports whether the tone is currently audible.
func (b *Beeper) Playing() bool { return b.level != 0 }

func (b *Beeper) Step(budget int64) int64 {
	for range budget {
		b.tick()
	}
	return budget
}

func (b *Beeper) tick() {
	cur := tone{on: b.value > 0, level: b.level, next: b.next}

	b.buf.Clear()
	for i, t := range b.hist {
		if i == 0 && t.level != 0 {
			b.buf.AddDelta(0, t.level)
		}
		b.render(t)
		b.buf.ReadSamples(b.tmp, len(b.tmp), blip.Mono)
	}
	if len(b.hist) == 0 && cur.level != 0 {
		b.buf.AddDelta(0, cur.level)
	}
	end := b.render(cur)

	n := b.buf.ReadSamples(b.tmp, len(b.tmp), blip.Mono)
	for _, s := range b.tmp[:n] {
		b.out = append(b.out, s)
		if b.layout == hw.Stereo {
			b.out = append(b.out, s)
		}
	}

	b.push(cur)
	b.level, b.next = end.level, end.next
	if b.value > 0 {
		b.value--
	}
}

// render adds the edges of a tick starting in state t to the buffer, ends
// the blip frame and returns the state at the start of the next tick.
func (b *Beeper) render(t tone) tone {
	end := b.tickClocks * 2 * toneFreq
	switch {
	case t.on:
		if t.level == 0 {
			b.buf.AddDelta(0, b.amp)
			t.level = b.amp
			t.next = b.clockRate
		}
		for ; t.next < end; t.next += b.clockRate {
			b.buf.AddDelta(t.next/(2*toneFreq), -2*t.level)
			t.level = -t.level
		}
		t.next -= end

	case t.level != 0:
		b.buf.AddDelta(0, -t.level)
		t.level, t.next = 0, 0
	}
	b.buf.EndFrame(int(b.tickClocks))
	return tone{level: t.level, next: t.next}
}

// push records the tick that just played. A silent tick drops the history:
// the next one starts from an empty buffer.
func (b *Beeper) push(t tone) {
	if t.silent() {
		b.hist = b.hist[:0]
		return
	}
	if len(b.hist) == b.histLen {
		copy(b.hist, b.hist[1:])
		b.hist = b.hist[:len(b.hist)-1]
	}
	b.hist = append(b.hist, t)
}

// Audio implements hw.AudioSource. The returned samples are valid until the
// next step.
func (b *Beeper) Audio() hw.AudioDescriptor {
	a := hw.AudioDescriptor{
		SampleRate: b.sampleRate,
		Layout:     b.layout,
		Samples:    b.out,
	}
	b.out = b.out[:0]
	return a
}

func (b *Beeper) Inspect() []hw.Field {
	return []hw.Field{
		{Name: "ST", Value: uint64(b.value), Width: 8},
		{Name: "playing", Value: uint64(b2u8(b.Playing())), Width: 1},
	}
}

func (b *Beeper) StateVersion() uint16 { return 2 }

func (b *Beeper) State() *snapshot.Beeper {
	st := &snapshot.Beeper{
		Value:   b.value,
		Level:   b.level,
		Next:    b.next,
		History: make([]snapshot.Tone, len(b.hist)),
	}
	for i, t := range b.hist {
		st.History[i] = snapshot.Tone{On: t.on, Level: t.level, Next: t.next}
	}
	return st
}

func (b *Beeper) SetState(st *snapshot.Beeper) {
	b.value, b.level, b.next = st.Value, st.Level, st.Next
	b.hist = b.hist[:0]
	for _, t := range st.History[max(0, len(st.History)-b.histLen):] {
		b.hist = append(b.hist, tone{on: t.On, level: t.Level, next: t.Next})
	}
	b.out = b.out[:0]
}

func (b *Beeper) SaveState(w *msgp.Writer) error { return b.State().EncodeMsg(w) }

func (b *Beeper) LoadState(version uint16, r *msgp.Reader) (func(), error) {
	if version < 2 {
		return nil, fmt.Errorf("%w: beeper state version %d", snapshot.ErrVersionMismatch, version)
	}
	var st snapshot.Beeper
	if err := st.DecodeMsg(r); err != nil {
		return nil, err
	}
	if err := b.checkTone(st.Level, st.Next); err != nil {
		return nil, err
	}
	for _, t := range st.History {
		if err := b.checkTone(t.Level, t.Next); err != nil {
			return nil, err
		}
	}
	return func() { b.SetState(&st) }, nil
}

func (b *Beeper) checkTone(level int32, next uint64) error {
	if level != 0 && level != b.amp && level != -b.amp {
		return fmt.Errorf("%w: beeper level %d", snapshot.ErrCorruptSnapshot, level)
	}
	if next >= b.clockRate {
		return fmt.Errorf("%w: beeper phase %d", snapshot.ErrCorruptSnapshot, next)
	}
	return nil
}
