package hwio

import (
	"multiemu/emu/log"
)

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlagReadOnly  MemFlags = (1 << iota) // writes are rejected
	MemFlagNoROLog                          // skip logging rejected writes
)

// Mem is a linear memory area. Offsets beyond the buffer wrap around, which
// gives mirroring for free when a region is larger than the buffer.
type Mem struct {
	Name    string              // name of the memory area (for debugging)
	Data    []byte              // actual memory buffer
	Flags   MemFlags            // flags determining how the memory can be accessed
	WriteCb func(uint32, uint8) // optional write callback, called after the write
}

func (m *Mem) index(off uint32) uint32 {
	if n := uint32(len(m.Data)); off >= n {
		if n&(n-1) == 0 {
			return off & (n - 1)
		}
		return off % n
	}
	return off
}

func (m *Mem) Read8(off uint32, _ bool) uint8 {
	if len(m.Data) == 0 {
		return 0
	}
	return m.Data[m.index(off)]
}

func (m *Mem) Write8(off uint32, val uint8) {
	if len(m.Data) == 0 {
		return
	}
	if m.Flags&MemFlagReadOnly != 0 {
		if m.Flags&MemFlagNoROLog == 0 {
			log.ModHwIo.WarnZ("Write8 to readonly memory").
				String("name", m.Name).
				Hex32("off", off).
				Hex8("val", val).
				End()
		}
		return
	}
	m.Data[m.index(off)] = val
	if m.WriteCb != nil {
		m.WriteCb(off, val)
	}
}
