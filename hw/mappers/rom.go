package mappers

import (
	"fmt"

	"multiemu/hw"
	"multiemu/hw/hwio"
)

// fixed is a cartridge without bank switching. A window larger than the
// ROM shows mirrors of it.
type fixed struct {
	rom    *hwio.Mem
	begin  uint16
	window uint32
}

func (m *fixed) Reset(bool) {}

func (m *fixed) Inspect() []hw.Field {
	return []hw.Field{
		{Name: "base", Value: uint64(m.begin), Width: 16},
		{Name: "size", Value: uint64(len(m.rom.Data)), Width: 32},
		{Name: "window", Value: uint64(m.window), Width: 32},
	}
}

func loadROM(b *hw.Builder, p *hw.Params, _ hw.Quirks) (hw.Handles, error) {
	blob := p.String("blob", "rom")
	start := p.Uint("base", 0, 0xFFFF)
	window := p.Uint("size", 0, 0x10000)
	if err := p.Err(); err != nil {
		return hw.Handles{}, err
	}

	data, err := b.Blob(blob)
	if err != nil {
		return hw.Handles{}, err
	}
	if len(data) == 0 || !ispow2(len(data)) {
		return hw.Handles{}, fmt.Errorf("only support rom with power of 2 size, got %d", len(data))
	}
	if window == 0 {
		window = uint64(len(data))
	}
	if start+window-1 > uint64(b.Bus().AddrMask()) {
		return hw.Handles{}, fmt.Errorf("rom window [%#x+%#x] doesn't fit the bus", start, window)
	}

	m := &fixed{
		rom:    &hwio.Mem{Name: b.Name(), Data: data, Flags: hwio.MemFlagReadOnly},
		begin:  uint16(start),
		window: uint32(window),
	}
	_, err = b.Bus().Map(hwio.Region{
		Name:   b.Name(),
		Begin:  uint16(start),
		End:    uint16(start + window - 1),
		Access: hwio.Read,
		Dev:    m.rom,
		Mask:   uint32(len(data) - 1),
	})
	if err != nil {
		return hw.Handles{}, err
	}
	return hw.Auto(m), nil
}
