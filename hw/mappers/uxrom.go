package mappers

import (
	"multiemu/hw"
	"multiemu/hw/hwio"
)

// uxrom has a switchable 16KB bank in the lower half of its 32KB window and
// the last bank fixed in the upper half.
type uxrom struct {
	*base

	bankmask     uint8
	busConflicts bool
}

func (m *uxrom) WriteBankReg(off uint32, val uint8) {
	if m.busConflicts {
		val &= m.peek(int(off/m.banksz), off)
	}

	// 7  bit  0
	// ---- ----
	// xxxx pPPP
	//      ||||
	//      ++++- Select 16 KB bank for the lower half of the window
	m.switchBank(0, int(val&m.bankmask))
}

// mapBankReg maps a write-only register over the whole window, above the
// banks.
func mapBankReg(m *base, begin uint16, size uint32, write func(uint32, uint8)) error {
	_, err := m.bus.Map(hwio.Region{
		Name:   m.name + "/reg",
		Begin:  begin,
		End:    uint16(uint32(begin) + size - 1),
		Layer:  1,
		Access: hwio.Write,
		Dev: &hwio.Device{
			Name:    m.name,
			Flags:   hwio.WriteOnlyFlag,
			WriteCb: write,
		},
	})
	return err
}

func loadUxROM(b *hw.Builder, p *hw.Params, _ hw.Quirks) (hw.Handles, error) {
	busConflicts := p.Bool("bus_conflicts", false)
	base, start, err := newbase(b, p, 0x4000, 0x8000)
	if err != nil {
		return hw.Handles{}, err
	}

	m := &uxrom{
		base:         base,
		bankmask:     uint8(min(base.nbanks, 16)) - 1,
		busConflicts: busConflicts,
	}
	if err := m.addSlot(start, 0); err != nil {
		return hw.Handles{}, err
	}
	if err := m.addSlot(start+0x4000, -1); err != nil {
		return hw.Handles{}, err
	}
	if err := mapBankReg(base, start, 0x8000, m.WriteBankReg); err != nil {
		return hw.Handles{}, err
	}
	return hw.Auto(m), nil
}
