package mappers_test

import (
	"bytes"
	"errors"
	"testing"

	"multiemu/hw"
	"multiemu/hw/mappers"
	"multiemu/rom"
)

// banks returns a cartridge of n banks of size bytes, bank i filled with
// i+1.
func banks(n, size int) []byte {
	var data []byte
	for i := range n {
		data = append(data, bytes.Repeat([]byte{byte(i + 1)}, size)...)
	}
	return data
}

func newMachine(tb testing.TB, variant hw.Variant, data []byte, addrBits int, params map[string]any) *hw.Machine {
	tb.Helper()
	m, err := hw.NewMachine(hw.NewRegistry(nil, mappers.Factories()...), hw.MachineConfig{
		System:      "test",
		Rom:         rom.New("cart.bin", data),
		AddressBits: addrBits,
		Workers:     1,
		Components:  []hw.ComponentConfig{{Name: "cart", Variant: variant, Params: params}},
	})
	if err != nil {
		tb.Fatalf("NewMachine: %v", err)
	}
	return m
}

func wantRead(tb testing.TB, m *hw.Machine, addr uint16, want uint8) {
	tb.Helper()
	if got := m.Bus().Read8(addr, false); got != want {
		tb.Errorf("Read8(%04X) = %02X, want %02X", addr, got, want)
	}
}

func TestFixedROMMirrors(t *testing.T) {
	data := make([]byte, 0x800)
	data[0], data[0x7FF] = 0xAA, 0xBB
	m := newMachine(t, mappers.VariantROM, data, 13, map[string]any{"base": int64(0x1000), "size": int64(0x1000)})

	wantRead(t, m, 0x1000, 0xAA)
	wantRead(t, m, 0x1800, 0xAA)
	wantRead(t, m, 0x1FFF, 0xBB)

	// Writes are ignored.
	m.Bus().Write8(0x1000, 0x55)
	wantRead(t, m, 0x1000, 0xAA)
}

func TestHotspots(t *testing.T) {
	tests := []struct {
		variant hw.Variant
		nbanks  int
		first   uint16
	}{
		{mappers.VariantF8, 2, 0x1FF8},
		{mappers.VariantF6, 4, 0x1FF6},
		{mappers.VariantF4, 8, 0x1FF4},
	}
	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			m := newMachine(t, tt.variant, banks(tt.nbanks, 0x1000), 13, nil)

			// Starts on the last bank.
			wantRead(t, m, 0x1000, uint8(tt.nbanks))

			for bank := range tt.nbanks {
				gen := m.Bus().Generation()
				m.Bus().Read8(tt.first+uint16(bank), false)
				wantRead(t, m, 0x1000, uint8(bank+1))
				if bank != tt.nbanks-1 && m.Bus().Generation() == gen {
					t.Errorf("bank %d: bus generation unchanged after a switch", bank)
				}
			}

			// Writes switch too, peeks don't.
			m.Bus().Write8(tt.first, 0)
			wantRead(t, m, 0x1000, 1)
			m.Bus().Peek8(tt.first + 1)
			wantRead(t, m, 0x1000, 1)
		})
	}
}

func TestHotspotSize(t *testing.T) {
	_, err := hw.NewMachine(hw.NewRegistry(nil, mappers.Factories()...), hw.MachineConfig{
		System:      "test",
		Rom:         rom.New("cart.bin", banks(4, 0x1000)),
		AddressBits: 13,
		Components:  []hw.ComponentConfig{{Name: "cart", Variant: mappers.VariantF8}},
	})
	if !errors.Is(err, hw.ErrConfiguration) {
		t.Fatalf("NewMachine() error = %v, want ErrConfiguration", err)
	}
}

func TestUxROM(t *testing.T) {
	m := newMachine(t, mappers.VariantUxROM, banks(4, 0x4000), 16, nil)

	wantRead(t, m, 0x8000, 1)
	wantRead(t, m, 0xC000, 4)

	m.Bus().Write8(0x8123, 2)
	wantRead(t, m, 0x8000, 3)
	wantRead(t, m, 0xBFFF, 3)
	wantRead(t, m, 0xC000, 4)

	// Only the bank mask is used.
	m.Bus().Write8(0xFFFF, 0xF1)
	wantRead(t, m, 0x8000, 2)
}

func TestUxROMBusConflicts(t *testing.T) {
	m := newMachine(t, mappers.VariantUxROM, banks(4, 0x4000), 16, map[string]any{"bus_conflicts": true})

	// The fixed bank is filled with 4: 3&4 selects bank 0.
	m.Bus().Write8(0xC000, 3)
	wantRead(t, m, 0x8000, 1)

	// Bank 0 is filled with 1: 3&1 selects bank 1.
	m.Bus().Write8(0x8000, 3)
	wantRead(t, m, 0x8000, 2)
}

func TestAxROM(t *testing.T) {
	m := newMachine(t, mappers.VariantAxROM, banks(4, 0x8000), 16, nil)

	wantRead(t, m, 0x8000, 1)
	m.Bus().Write8(0x9000, 3)
	wantRead(t, m, 0x8000, 4)
	wantRead(t, m, 0xFFFF, 4)
}

func TestBankStateRoundTrip(t *testing.T) {
	m := newMachine(t, mappers.VariantF6, banks(4, 0x1000), 13, nil)

	m.Bus().Read8(0x1FF7, false)
	wantRead(t, m, 0x1000, 2)
	st, err := m.Capture()
	if err != nil {
		t.Fatal(err)
	}

	m.Bus().Read8(0x1FF9, false)
	wantRead(t, m, 0x1000, 4)

	if err := m.Restore(st); err != nil {
		t.Fatal(err)
	}
	wantRead(t, m, 0x1000, 2)

	// Reset goes back to the last bank.
	if err := m.Reset(true); err != nil {
		t.Fatal(err)
	}
	wantRead(t, m, 0x1000, 4)
}
