package mappers

import "multiemu/hw"

// axrom switches its whole 32KB window at once.
type axrom struct {
	*base

	busConflicts bool
}

func (m *axrom) WriteBankReg(off uint32, val uint8) {
	if m.busConflicts {
		val &= m.peek(0, off)
	}

	// 7  bit  0
	// ---- ----
	// xxxx xPPP
	//       |||
	//       +++- Select 32 KB bank
	m.switchBank(0, int(val&0x7))
}

func loadAxROM(b *hw.Builder, p *hw.Params, _ hw.Quirks) (hw.Handles, error) {
	busConflicts := p.Bool("bus_conflicts", false)
	base, start, err := newbase(b, p, 0x8000, 0x8000)
	if err != nil {
		return hw.Handles{}, err
	}

	m := &axrom{base: base, busConflicts: busConflicts}
	if err := m.addSlot(start, 0); err != nil {
		return hw.Handles{}, err
	}
	if err := mapBankReg(base, start, 0x8000, m.WriteBankReg); err != nil {
		return hw.Handles{}, err
	}
	return hw.Auto(m), nil
}
