// Package memory provides the RAM and ROM components mapped on the bus.
package memory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tinylib/msgp/msgp"

	"multiemu/emu/log"
	"multiemu/hw"
	"multiemu/hw/hwio"
	"multiemu/hw/snapshot"
)

const (
	VariantRAM hw.Variant = "memory.ram"
	VariantROM hw.Variant = "memory.rom"
)

func Factories() []hw.FactoryDesc {
	return []hw.FactoryDesc{
		{Variant: VariantRAM, New: newRAM},
		{Variant: VariantROM, New: newROM},
	}
}

// A Load copies a blob into memory at a bus address.
type Load struct {
	Blob string
	Addr uint16
}

// ParseLoad parses "blob@addr", addr being any Go integer literal.
func ParseLoad(s string) (Load, error) {
	name, addr, ok := strings.Cut(s, "@")
	if !ok || name == "" {
		return Load{}, fmt.Errorf("invalid load %q, want blob@addr", s)
	}
	a, err := strconv.ParseUint(addr, 0, 16)
	if err != nil {
		return Load{}, fmt.Errorf("invalid load %q: %v", s, err)
	}
	return Load{Blob: name, Addr: uint16(a)}, nil
}

// RAM is a read/write memory area initialized from blobs on hard reset.
type RAM struct {
	hwio.Mem

	base uint16
	init []byte
}

func (r *RAM) Reset(hard bool) {
	if hard {
		copy(r.Data, r.init)
	}
}

func (r *RAM) Inspect() []hw.Field {
	return []hw.Field{
		{Name: "base", Value: uint64(r.base), Width: 16},
		{Name: "size", Value: uint64(len(r.Data)), Width: 32},
	}
}

func (r *RAM) StateVersion() uint16 { return 1 }

func (r *RAM) SaveState(w *msgp.Writer) error {
	return (&snapshot.RAM{Data: r.Data}).EncodeMsg(w)
}

func (r *RAM) LoadState(version uint16, rd *msgp.Reader) (func(), error) {
	var st snapshot.RAM
	if err := st.DecodeMsg(rd); err != nil {
		return nil, err
	}
	if len(st.Data) != len(r.Data) {
		return nil, fmt.Errorf("%w: %s: %d bytes, want %d", snapshot.ErrCorruptSnapshot, r.Name, len(st.Data), len(r.Data))
	}
	return func() { copy(r.Data, st.Data) }, nil
}

// region returns the bus range of a memory of size bytes at base.
func region(b *hw.Builder, base, size uint64) (begin, end uint16, err error) {
	mask := uint64(b.Bus().AddrMask())
	if size == 0 || base+size-1 > mask {
		return 0, 0, fmt.Errorf("memory [%#x+%#x] doesn't fit the bus", base, size)
	}
	return uint16(base), uint16(base + size - 1), nil
}

func newRAM(b *hw.Builder, p *hw.Params, _ hw.Quirks) (hw.Handles, error) {
	base := p.Uint("base", 0, 0xFFFF)
	size := p.Uint("size", uint64(b.Bus().AddrMask())+1, 0x10000)
	mirror := p.Uint("mirror", 0, 0x10000)
	loads := p.Strings("load")
	if err := p.Err(); err != nil {
		return hw.Handles{}, err
	}

	span := size
	if mirror != 0 {
		if mirror < size {
			return hw.Handles{}, fmt.Errorf("mirror size %#x smaller than memory size %#x", mirror, size)
		}
		span = mirror
	}
	begin, end, err := region(b, base, span)
	if err != nil {
		return hw.Handles{}, err
	}

	r := &RAM{
		Mem:  hwio.Mem{Name: b.Name(), Data: make([]byte, size)},
		base: begin,
		init: make([]byte, size),
	}
	for _, s := range loads {
		l, err := ParseLoad(s)
		if err != nil {
			return hw.Handles{}, err
		}
		data, err := b.Blob(l.Blob)
		if err != nil {
			return hw.Handles{}, err
		}
		if l.Addr < begin || uint64(l.Addr)-base+uint64(len(data)) > size {
			return hw.Handles{}, fmt.Errorf("blob %q (%d bytes) at %#x doesn't fit in memory [%#x+%#x]", l.Blob, len(data), l.Addr, base, size)
		}
		copy(r.init[uint64(l.Addr)-base:], data)
		log.ModMem.DebugZ("blob loaded").
			String("mem", b.Name()).
			String("blob", l.Blob).
			Hex16("addr", l.Addr).
			Int("size", len(data)).
			End()
	}
	copy(r.Data, r.init)

	if _, err := b.Bus().Map(hwio.Region{Name: b.Name(), Begin: begin, End: end, Dev: &r.Mem}); err != nil {
		return hw.Handles{}, err
	}
	return hw.Auto(r), nil
}

// ROM is a read-only memory area holding a blob, by default the cartridge.
type ROM struct {
	hwio.Mem
	base uint16
}

func (r *ROM) Reset(bool) {}

func (r *ROM) Inspect() []hw.Field {
	return []hw.Field{
		{Name: "base", Value: uint64(r.base), Width: 16},
		{Name: "size", Value: uint64(len(r.Data)), Width: 32},
	}
}

func newROM(b *hw.Builder, p *hw.Params, _ hw.Quirks) (hw.Handles, error) {
	blob := p.String("blob", "rom")
	base := p.Uint("base", 0, 0xFFFF)
	size := p.Uint("size", 0, 0x10000)
	if err := p.Err(); err != nil {
		return hw.Handles{}, err
	}

	data, err := b.Blob(blob)
	if err != nil {
		return hw.Handles{}, err
	}
	if size == 0 {
		size = uint64(len(data))
	}
	// A window larger than the data mirrors it.
	begin, end, err := region(b, base, size)
	if err != nil {
		return hw.Handles{}, err
	}

	r := &ROM{
		Mem: hwio.Mem{
			Name:  b.Name(),
			Data:  data,
			Flags: hwio.MemFlagReadOnly,
		},
		base: begin,
	}
	if _, err := b.Bus().Map(hwio.Region{Name: b.Name(), Begin: begin, End: end, Access: hwio.Read, Dev: &r.Mem}); err != nil {
		return hw.Handles{}, err
	}
	return hw.Auto(r), nil
}
