package chip8

import (
	"github.com/tinylib/msgp/msgp"

	"multiemu/hw"
	"multiemu/hw/snapshot"
)

// TimerRate is the countdown frequency of the delay and sound timers.
const TimerRate = 60

// Timer is the delay timer: it counts down to zero at 60Hz.
type Timer struct {
	value uint8
}

func (t *Timer) Reset(hard bool) { t.value = 0 }

func (t *Timer) Get() uint8 { return t.value }

func (t *Timer) Set(v uint8) { t.value = v }

func (t *Timer) Step(budget int64) int64 {
	t.value = uint8(max(0, int64(t.value)-budget))
	return budget
}

func (t *Timer) Inspect() []hw.Field {
	return []hw.Field{{Name: "DT", Value: uint64(t.value), Width: 8}}
}

func (t *Timer) StateVersion() uint16 { return 1 }

func (t *Timer) SaveState(w *msgp.Writer) error {
	return snapshot.Timer{Value: t.value}.EncodeMsg(w)
}

func (t *Timer) LoadState(version uint16, r *msgp.Reader) (func(), error) {
	var st snapshot.Timer
	if err := st.DecodeMsg(r); err != nil {
		return nil, err
	}
	return func() { t.value = st.Value }, nil
}
