package mappers

import (
	"fmt"

	"multiemu/hw"
	"multiemu/hw/hwio"
)

// hotspotKind describes the Atari style bank switching schemes: a 4KB
// window, and any access to one of the addresses at the end of it selects a
// bank.
type hotspotKind struct {
	name   string
	first  uint32 // offset of the first hotspot in the window
	nbanks int
}

var (
	f8 = hotspotKind{name: "F8", first: 0xFF8, nbanks: 2}
	f6 = hotspotKind{name: "F6", first: 0xFF6, nbanks: 4}
	f4 = hotspotKind{name: "F4", first: 0xFF4, nbanks: 8}
)

const hotspotBanksz = 0x1000

type hotspot struct {
	*base
	kind hotspotKind
}

func (m *hotspot) ReadHotspot(off uint32) uint8 {
	// The byte is read from the bank shown before the switch.
	val := m.peek(0, off)
	m.switchBank(0, int(off-m.kind.first))
	return val
}

func (m *hotspot) PeekHotspot(off uint32) uint8 {
	return m.peek(0, off)
}

func (m *hotspot) WriteHotspot(off uint32, _ uint8) {
	m.switchBank(0, int(off-m.kind.first))
}

func hotspotLoader(kind hotspotKind) func(*hw.Builder, *hw.Params, hw.Quirks) (hw.Handles, error) {
	return func(b *hw.Builder, p *hw.Params, _ hw.Quirks) (hw.Handles, error) {
		base, start, err := newbase(b, p, hotspotBanksz, 0x1000)
		if err != nil {
			return hw.Handles{}, err
		}
		if base.nbanks != kind.nbanks {
			return hw.Handles{}, fmt.Errorf("%s cartridge must be %d bytes, got %d", kind.name, kind.nbanks*hotspotBanksz, len(base.rom.Data))
		}

		m := &hotspot{base: base, kind: kind}
		if err := m.addSlot(start, -1); err != nil {
			return hw.Handles{}, err
		}

		begin := uint32(start) + kind.first
		_, err = b.Bus().Map(hwio.Region{
			Name:  b.Name() + "/hotspots",
			Begin: uint16(begin),
			End:   uint16(begin + uint32(kind.nbanks) - 1),
			Layer: 1,
			Base:  kind.first,
			Dev: &hwio.Device{
				Name:    b.Name(),
				ReadCb:  m.ReadHotspot,
				PeekCb:  m.PeekHotspot,
				WriteCb: m.WriteHotspot,
			},
		})
		if err != nil {
			return hw.Handles{}, err
		}
		return hw.Auto(m), nil
	}
}
