// Package mappers implements cartridge bank switching on top of the bus
// remapping primitive.
package mappers

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"multiemu/emu/log"
	"multiemu/hw"
	"multiemu/hw/hwio"
	"multiemu/hw/snapshot"
)

var modMapper = log.NewModule("mapper")

// Mapper variants.
const (
	VariantROM   hw.Variant = "mapper.rom"
	VariantUxROM hw.Variant = "mapper.uxrom"
	VariantAxROM hw.Variant = "mapper.axrom"
	VariantF8    hw.Variant = "mapper.f8"
	VariantF6    hw.Variant = "mapper.f6"
	VariantF4    hw.Variant = "mapper.f4"
)

func Factories() []hw.FactoryDesc {
	return []hw.FactoryDesc{
		{Variant: VariantROM, New: loadROM},
		{Variant: VariantUxROM, New: loadUxROM},
		{Variant: VariantAxROM, New: loadAxROM},
		{Variant: VariantF8, New: hotspotLoader(f8)},
		{Variant: VariantF6, New: hotspotLoader(f6)},
		{Variant: VariantF4, New: hotspotLoader(f4)},
	}
}

func ispow2(n int) bool {
	return n&(n-1) == 0
}

// slot is a bus window showing one bank of the cartridge.
type slot struct {
	h     hwio.Handle
	begin uint16
	bank  int
	fixed int // bank selected on reset, negative counts from the end
}

// base is the part shared by all bank switching mappers: the cartridge ROM,
// cut in banks, and the bus windows showing them.
type base struct {
	name   string
	bus    *hwio.Table
	rom    *hwio.Mem
	banksz uint32
	nbanks int
	slots  []slot
}

// newbase reads the common mapper parameters and cuts the cartridge in banks
// of banksz bytes. It also returns the start of the cartridge window.
func newbase(b *hw.Builder, p *hw.Params, banksz uint32, defStart uint64) (*base, uint16, error) {
	blob := p.String("blob", "rom")
	start := p.Uint("base", defStart, 0xFFFF)
	if err := p.Err(); err != nil {
		return nil, 0, err
	}
	data, err := b.Blob(blob)
	if err != nil {
		return nil, 0, err
	}
	if len(data) == 0 || len(data)%int(banksz) != 0 || !ispow2(len(data)/int(banksz)) {
		return nil, 0, fmt.Errorf("rom size %d is not a power of 2 number of %d bytes banks", len(data), banksz)
	}
	return &base{
		name: b.Name(),
		bus:  b.Bus(),
		rom: &hwio.Mem{
			Name:  b.Name(),
			Data:  data,
			Flags: hwio.MemFlagReadOnly,
		},
		banksz: banksz,
		nbanks: len(data) / int(banksz),
	}, uint16(start), nil
}

// addSlot maps a window of one bank at addr, showing the given bank after
// reset.
func (m *base) addSlot(addr uint16, bank int) error {
	end := uint32(addr) + m.banksz - 1
	if end > uint32(m.bus.AddrMask()) {
		return fmt.Errorf("bank window at %#x doesn't fit the bus", addr)
	}
	h, err := m.bus.Map(hwio.Region{
		Name:   fmt.Sprintf("%s/%d", m.name, len(m.slots)),
		Begin:  addr,
		End:    uint16(end),
		Access: hwio.Read,
		Dev:    m.rom,
	})
	if err != nil {
		return err
	}
	m.slots = append(m.slots, slot{h: h, begin: addr, bank: -1, fixed: bank})
	return m.selectBank(len(m.slots)-1, bank)
}

// selectBank shows a bank in a slot. Negative banks count from the last one,
// others wrap around the number of banks.
func (m *base) selectBank(i, bank int) error {
	if bank < 0 {
		bank += m.nbanks
	}
	bank &= m.nbanks - 1

	s := &m.slots[i]
	if s.bank == bank {
		return nil
	}
	if err := m.bus.Remap(s.h, m.rom, uint32(bank)*m.banksz); err != nil {
		return err
	}
	modMapper.DebugZ("bank switch").
		String("mapper", m.name).
		Int("slot", i).
		Int("prev", s.bank).
		Int("new", bank).
		End()
	s.bank = bank
	return nil
}

// switchBank is selectBank for callbacks running inside bus accesses, where
// only a stale handle could fail.
func (m *base) switchBank(i, bank int) {
	if err := m.selectBank(i, bank); err != nil {
		log.ModHwIo.ErrorZ("bank switch failed").String("mapper", m.name).Error("err", err).End()
	}
}

// peek reads the ROM byte at offset off of the bank shown in slot i.
func (m *base) peek(i int, off uint32) uint8 {
	return m.rom.Data[uint32(m.slots[i].bank)*m.banksz+off%m.banksz]
}

func (m *base) Reset(hard bool) {
	for i := range m.slots {
		m.switchBank(i, m.slots[i].fixed)
	}
}

func (m *base) Inspect() []hw.Field {
	fields := make([]hw.Field, 0, len(m.slots)+1)
	fields = append(fields, hw.Field{Name: "banks", Value: uint64(m.nbanks), Width: 16})
	for i, s := range m.slots {
		fields = append(fields, hw.Field{Name: fmt.Sprintf("slot%d", i), Value: uint64(s.bank), Width: 16})
	}
	return fields
}

func (m *base) StateVersion() uint16 { return 1 }

func (m *base) SaveState(w *msgp.Writer) error {
	st := snapshot.Mapper{Banks: make([]int, len(m.slots))}
	for i, s := range m.slots {
		st.Banks[i] = s.bank
	}
	return st.EncodeMsg(w)
}

func (m *base) LoadState(version uint16, r *msgp.Reader) (func(), error) {
	var st snapshot.Mapper
	if err := st.DecodeMsg(r); err != nil {
		return nil, err
	}
	if len(st.Banks) != len(m.slots) {
		return nil, fmt.Errorf("%w: %s: %d slots, want %d", snapshot.ErrCorruptSnapshot, m.name, len(st.Banks), len(m.slots))
	}
	for _, bank := range st.Banks {
		if bank < 0 || bank >= m.nbanks {
			return nil, fmt.Errorf("%w: %s: bank %d out of range", snapshot.ErrCorruptSnapshot, m.name, bank)
		}
	}
	return func() {
		for i, bank := range st.Banks {
			m.switchBank(i, bank)
		}
	}, nil
}
