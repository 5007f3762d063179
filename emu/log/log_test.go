package log

import (
	"errors"
	"slices"
	"testing"
)

type name string

func (n name) String() string { return string(n) }

func TestFieldValue(t *testing.T) {
	tests := []struct {
		f    *EntryZ
		want string
	}{
		{new(EntryZ).Bool("k", true), "true"},
		{new(EntryZ).String("k", "cpu"), "cpu"},
		{new(EntryZ).Hex8("k", 0xA), "0a"},
		{new(EntryZ).Hex16("k", 0x200), "0200"},
		{new(EntryZ).Hex32("k", 0xBEEF), "0000beef"},
		{new(EntryZ).Int("k", -3), "-3"},
		{new(EntryZ).Int64("k", -1<<40), "-1099511627776"},
		{new(EntryZ).Uint64("k", 1<<63), "9223372036854775808"},
		{new(EntryZ).Error("k", errors.New("boom")), "boom"},
		{new(EntryZ).Error("k", nil), "<nil>"},
		{new(EntryZ).Stringer("k", name("chip8")), "chip8"},
		{new(EntryZ).Stringer("k", nil), "<nil>"},
	}
	for _, tt := range tests {
		if got := tt.f.zfbuf[0].Value(); got != tt.want {
			t.Errorf("%+v: Value() = %q, want %q", tt.f.zfbuf[0], got, tt.want)
		}
	}
}

func TestFieldOverflow(t *testing.T) {
	z := new(EntryZ)
	for range maxZFields + 3 {
		z.Int("k", 1)
	}
	if z.zfidx != maxZFields {
		t.Errorf("entry holds %d fields, want %d", z.zfidx, maxZFields)
	}

	var nilz *EntryZ
	if nilz.String("k", "v").Int("n", 1) != nil {
		t.Error("fields on a disabled entry aren't discarded")
	}
}

func TestModules(t *testing.T) {
	mod := NewModule("testmod")
	if got, ok := ModuleByName("testmod"); !ok || got != mod {
		t.Errorf("ModuleByName(testmod) = %d, %t, want %d", got, ok, mod)
	}
	if mod.String() != "testmod" {
		t.Errorf("String() = %q", mod.String())
	}
	if !slices.Contains(ModuleNames(), "testmod") || slices.Contains(ModuleNames(), "<error>") {
		t.Errorf("ModuleNames() = %q", ModuleNames())
	}
	if _, ok := ModuleByName("<error>"); ok {
		t.Error("found the invalid module by name")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("registering a module twice didn't panic")
			}
		}()
		NewModule("testmod")
	}()

	if mod.Enabled(DebugLevel) {
		t.Error("debug logs enabled by default")
	}
	if !mod.Enabled(WarnLevel) {
		t.Error("warnings disabled by default")
	}
	EnableDebugModules(mod.Mask())
	if !mod.Enabled(DebugLevel) {
		t.Error("debug logs still disabled")
	}
	if ModCPU.Enabled(DebugLevel) {
		t.Error("enabling a module enabled another")
	}
}
