package hwio

import "multiemu/emu/log"

type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = (1 << iota)
	WriteOnlyFlag
)

// Device is a BankIO8 implementation that allows manual management of an
// entire range of offsets through callbacks (I/O ports, bank switching
// hotspots).
type Device struct {
	Name  string // name of the device (for debugging)
	Flags RWFlags

	ReadCb  func(off uint32) uint8
	PeekCb  func(off uint32) uint8
	WriteCb func(off uint32, val uint8)
}

func (d *Device) Read8(off uint32, peek bool) uint8 {
	if peek {
		if d.PeekCb != nil {
			return d.PeekCb(off)
		}
		return 0
	}
	switch {
	case d.Flags&WriteOnlyFlag != 0:
		log.ModHwIo.ErrorZ("invalid Read8 from writeonly device").
			String("name", d.Name).
			Hex32("off", off).
			End()
		fallthrough
	case d.ReadCb == nil:
		return 0
	}
	return d.ReadCb(off)
}

func (d *Device) Write8(off uint32, val uint8) {
	switch {
	case d.Flags&ReadOnlyFlag != 0:
		log.ModHwIo.ErrorZ("invalid Write8 to readonly device").
			String("name", d.Name).
			Hex32("off", off).
			End()
		fallthrough
	case d.WriteCb == nil:
		return
	}
	d.WriteCb(off, val)
}
