package hwio

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"multiemu/emu/log"
)

// BankIO8 is implemented by anything that can be mapped on a Table. Devices
// receive an offset relative to the region they are mapped at (see
// Region.Base and Region.Mask), not the bus address.
type BankIO8 interface {
	// Read8 reads a byte at the given offset. If peek is true, the read
	// shouldn't have any side effects (debugging/inspection).
	Read8(off uint32, peek bool) uint8
	Write8(off uint32, val uint8)
}

type Access uint8

const (
	Read Access = 1 << iota
	Write
	ReadWrite = Read | Write
)

func (a Access) String() string {
	switch a {
	case Read:
		return "r"
	case Write:
		return "w"
	case ReadWrite:
		return "rw"
	}
	return "-"
}

// Region describes a range of bus addresses routed to a device.
type Region struct {
	Name   string
	Begin  uint16
	End    uint16 // inclusive
	Layer  int
	Access Access
	Dev    BankIO8
	Base   uint32 // device offset of Begin
	Mask   uint32 // if non zero, mask applied to (addr-Begin), for mirrors
}

// A Handle identifies a mapped region; it stays valid until Unmap.
type Handle int32

type region struct {
	Region
	seq  uint64
	live bool
}

// span is a resolved, non-overlapping range of the effective bus map. It
// carries a copy of the routing information so that arena mutations don't
// affect accesses until the next commit.
type span struct {
	begin, end uint16
	rbegin     uint16
	base, mask uint32
	dev        BankIO8
	h          Handle
}

func (s *span) offset(addr uint16) uint32 {
	off := uint32(addr - s.rbegin)
	if s.mask != 0 {
		off &= s.mask
	}
	return off + s.base
}

// Table is an address space. Regions live in an arena indexed by Handle;
// every commit rebuilds the read and write lookup tables and increments the
// generation counter. Mutations made during a bus access are deferred to the
// end of the outermost access.
type Table struct {
	Name string

	addrMask uint16
	regions  []region
	reads    []span
	writes   []span
	lastR    int
	lastW    int

	gen   uint64
	seq   uint64
	depth int
	dirty bool

	policy   OpenBus
	sentinel uint8
	latch    uint8
	onFault  func(error)
}

// NewTable creates an address space of addrBits bits (at most 16). Addresses
// wrap at the bus width.
func NewTable(name string, addrBits int) *Table {
	if addrBits <= 0 || addrBits > 16 {
		panic(fmt.Sprintf("hwio: invalid address width %d", addrBits))
	}
	return &Table{
		Name:     name,
		addrMask: uint16((1 << addrBits) - 1),
	}
}

// AddrMask returns the mask applied to every bus address.
func (t *Table) AddrMask() uint16 { return t.addrMask }

// Generation returns the number of commits performed on the table.
func (t *Table) Generation() uint64 { return t.gen }

func (t *Table) SetOpenBus(policy OpenBus, sentinel uint8) {
	t.policy = policy
	t.sentinel = sentinel
}

func (t *Table) OpenBus() (OpenBus, uint8) { return t.policy, t.sentinel }

// SetFaultHandler sets the function called on unmapped accesses under the
// strict open-bus policy.
func (t *Table) SetFaultHandler(fn func(error)) { t.onFault = fn }

// Latch returns the last value driven on the data bus.
func (t *Table) Latch() uint8 { return t.latch }

func (t *Table) SetLatch(v uint8) { t.latch = v }

// Reset unmaps everything.
func (t *Table) Reset() {
	for i := range t.regions {
		t.regions[i].live = false
	}
	t.markDirty()
}

// Map registers a region and returns its handle. It fails with an
// *OverlapError if a live region of the same layer intersects it.
func (t *Table) Map(r Region) (Handle, error) {
	if r.Dev == nil {
		return -1, fmt.Errorf("hwio: %s: region %q has no device", t.Name, r.Name)
	}
	if r.Begin > r.End || r.End > t.addrMask {
		return -1, fmt.Errorf("hwio: %s: region %q [%04x-%04x]: %w", t.Name, r.Name, r.Begin, r.End, ErrRange)
	}
	if r.Access == 0 {
		r.Access = ReadWrite
	}
	for i := range t.regions {
		old := &t.regions[i]
		if !old.live || old.Layer != r.Layer {
			continue
		}
		if r.Begin <= old.End && old.Begin <= r.End {
			return -1, &OverlapError{Bus: t.Name, Region: r, Existing: old.Region}
		}
	}

	log.ModHwIo.DebugZ("map region").
		String("bus", t.Name).
		String("name", r.Name).
		Hex16("begin", r.Begin).
		Hex16("end", r.End).
		Int("layer", r.Layer).
		Stringer("access", r.Access).
		End()

	t.seq++
	reg := region{Region: r, seq: t.seq, live: true}

	h := Handle(-1)
	for i := range t.regions {
		if !t.regions[i].live {
			t.regions[i] = reg
			h = Handle(i)
			break
		}
	}
	if h < 0 {
		t.regions = append(t.regions, reg)
		h = Handle(len(t.regions) - 1)
	}
	t.markDirty()
	return h, nil
}

func (t *Table) lookupHandle(h Handle) (*region, error) {
	if h < 0 || int(h) >= len(t.regions) || !t.regions[h].live {
		return nil, fmt.Errorf("hwio: %s: invalid handle %d", t.Name, h)
	}
	return &t.regions[h], nil
}

// Remap changes the device and base offset of a mapped region. This is the
// bank switching primitive: the region keeps its range, layer and priority.
func (t *Table) Remap(h Handle, dev BankIO8, base uint32) error {
	r, err := t.lookupHandle(h)
	if err != nil {
		return err
	}
	if dev == nil {
		return fmt.Errorf("hwio: %s: remap of %q with nil device", t.Name, r.Name)
	}
	if r.Dev == dev && r.Base == base {
		return nil
	}
	r.Dev = dev
	r.Base = base
	t.markDirty()
	return nil
}

func (t *Table) Unmap(h Handle) error {
	r, err := t.lookupHandle(h)
	if err != nil {
		return err
	}
	r.live = false
	t.markDirty()
	return nil
}

// Regions returns the live regions, in installation order.
func (t *Table) Regions() []Region {
	live := make([]region, 0, len(t.regions))
	for _, r := range t.regions {
		if r.live {
			live = append(live, r)
		}
	}
	slices.SortFunc(live, func(a, b region) int { return cmp.Compare(a.seq, b.seq) })

	out := make([]Region, len(live))
	for i := range live {
		out[i] = live[i].Region
	}
	return out
}

func (t *Table) markDirty() {
	t.dirty = true
	if t.depth == 0 {
		t.commit()
	}
}

func (t *Table) commit() {
	t.reads = resolve(t.regions, Read)
	t.writes = resolve(t.regions, Write)
	t.lastR, t.lastW = 0, 0
	t.dirty = false
	t.gen++
}

// resolve computes the effective map for one access kind: for every
// elementary interval, the most recently installed covering region wins.
func resolve(regions []region, kind Access) []span {
	var cuts []uint32
	for _, r := range regions {
		if r.live && r.Access&kind != 0 {
			cuts = append(cuts, uint32(r.Begin), uint32(r.End)+1)
		}
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	var spans []span
	for i := 0; i+1 < len(cuts); i++ {
		lo, hi := cuts[i], cuts[i+1]-1

		best := -1
		for j := range regions {
			r := &regions[j]
			if !r.live || r.Access&kind == 0 {
				continue
			}
			if uint32(r.Begin) <= lo && uint32(r.End) >= hi {
				if best < 0 || r.seq > regions[best].seq {
					best = j
				}
			}
		}
		if best < 0 {
			continue
		}

		if n := len(spans); n > 0 && spans[n-1].h == Handle(best) && uint32(spans[n-1].end)+1 == lo {
			spans[n-1].end = uint16(hi)
			continue
		}
		r := &regions[best]
		spans = append(spans, span{
			begin:  uint16(lo),
			end:    uint16(hi),
			rbegin: r.Begin,
			base:   r.Base,
			mask:   r.Mask,
			dev:    r.Dev,
			h:      Handle(best),
		})
	}
	return spans
}

func find(spans []span, last *int, addr uint16) *span {
	if i := *last; i < len(spans) && spans[i].begin <= addr && addr <= spans[i].end {
		return &spans[i]
	}
	i := sort.Search(len(spans), func(i int) bool { return spans[i].end >= addr })
	if i < len(spans) && spans[i].begin <= addr {
		*last = i
		return &spans[i]
	}
	return nil
}

func (t *Table) beginAccess() { t.depth++ }

func (t *Table) endAccess() {
	t.depth--
	if t.depth == 0 && t.dirty {
		t.commit()
	}
}

// Read8 forwards the read to the device mapped at the given address, or
// returns the open bus value.
func (t *Table) Read8(addr uint16, peek bool) uint8 {
	t.beginAccess()
	v := t.read8(addr&t.addrMask, peek)
	t.endAccess()
	return v
}

func (t *Table) read8(addr uint16, peek bool) uint8 {
	s := find(t.reads, &t.lastR, addr)
	if s == nil {
		return t.openBus(addr, false, 0, peek)
	}
	v := s.dev.Read8(s.offset(addr), peek)
	if !peek {
		t.latch = v
	}
	return v
}

// Peek8 is a convenience function.
func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	t.beginAccess()
	t.write8(addr&t.addrMask, val)
	t.endAccess()
}

func (t *Table) write8(addr uint16, val uint8) {
	t.latch = val
	s := find(t.writes, &t.lastW, addr)
	if s == nil {
		t.openBus(addr, true, val, false)
		return
	}
	s.dev.Write8(s.offset(addr), val)
}

// Read fills p with consecutive bytes starting at addr. The whole access is
// resolved against a single generation of the table.
func (t *Table) Read(addr uint16, p []byte) {
	t.beginAccess()
	for i := range p {
		p[i] = t.read8((addr+uint16(i))&t.addrMask, false)
	}
	t.endAccess()
}

// Write stores p at consecutive addresses starting at addr, as a single
// access.
func (t *Table) Write(addr uint16, p []byte) {
	t.beginAccess()
	for i := range p {
		t.write8((addr+uint16(i))&t.addrMask, p[i])
	}
	t.endAccess()
}

// Read16 reads a little-endian word.
func (t *Table) Read16(addr uint16) uint16 {
	var b [2]byte
	t.Read(addr, b[:])
	return uint16(b[1])<<8 | uint16(b[0])
}

// Read16BE reads a big-endian word.
func (t *Table) Read16BE(addr uint16) uint16 {
	var b [2]byte
	t.Read(addr, b[:])
	return uint16(b[0])<<8 | uint16(b[1])
}

// Write16 writes a little-endian word.
func (t *Table) Write16(addr uint16, val uint16) {
	t.Write(addr, []byte{uint8(val), uint8(val >> 8)})
}

func (t *Table) openBus(addr uint16, write bool, val uint8, peek bool) uint8 {
	if !peek {
		log.ModHwIo.DebugZ("unmapped access").
			String("bus", t.Name).
			Hex16("addr", addr).
			Bool("write", write).
			End()
	}

	switch t.policy {
	case OpenBusSentinel:
		return t.sentinel
	case OpenBusStrict:
		if !peek && t.onFault != nil {
			t.onFault(&UnmappedError{Bus: t.Name, Addr: addr, Write: write, Value: val})
		}
		return t.sentinel
	}
	return t.latch
}
