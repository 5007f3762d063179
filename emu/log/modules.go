package log

import "fmt"

// A Module is a source of log entries. Debug and info entries of a module
// are only emitted once its debug logs are enabled.
type Module uint

// ModuleMask is a set of modules, bit n for module n.
type ModuleMask uint64

const ModuleMaskAll = ^ModuleMask(0)

// Modules of the emulator core. Hardware packages register their own with
// NewModule.
const (
	ModEmu Module = iota + 1
	ModCPU
	ModMem
	ModHwIo
	ModVideo
	ModInput
	ModSound
	ModSched
	ModState
)

// Indexed by Module, 0 is not a module.
var modNames = []string{
	"<error>", "emu", "cpu", "mem", "hwio", "video", "input", "sound", "sched", "state",
}

var debugMask ModuleMask

// NewModule registers a module. It's meant to be called from package level
// variable declarations.
func NewModule(name string) Module {
	if _, ok := ModuleByName(name); ok {
		panic(fmt.Sprintf("log: module %q registered twice", name))
	}
	if len(modNames) >= 64 {
		panic(fmt.Sprintf("log: no room for module %q", name))
	}
	modNames = append(modNames, name)
	return Module(len(modNames) - 1)
}

func ModuleByName(name string) (Module, bool) {
	for idx, s := range modNames[1:] {
		if s == name {
			return Module(idx + 1), true
		}
	}
	return 0, false
}

// ModuleNames returns the names of all registered modules.
func ModuleNames() []string {
	return append([]string(nil), modNames[1:]...)
}

func (mod Module) String() string {
	if int(mod) < len(modNames) {
		return modNames[mod]
	}
	return modNames[0]
}

func EnableDebugModules(mask ModuleMask) {
	debugMask |= mask
}

func (mod Module) Mask() ModuleMask {
	return 1 << ModuleMask(mod)
}

// Enabled reports whether an entry of mod at lvl would be emitted. Warnings
// and errors always are, unless logging is disabled.
func (mod Module) Enabled(lvl Level) bool {
	if disabled {
		return false
	}
	return lvl <= WarnLevel || debugMask&mod.Mask() != 0
}

func (mod Module) logz(lvl Level, msg string) *EntryZ {
	if !mod.Enabled(lvl) {
		return nil
	}
	e := NewEntryZ()
	e.lvl = lvl
	e.msg = msg
	e.mod = mod
	return e
}

func (mod Module) DebugZ(msg string) *EntryZ { return mod.logz(DebugLevel, msg) }
func (mod Module) InfoZ(msg string) *EntryZ  { return mod.logz(InfoLevel, msg) }
func (mod Module) WarnZ(msg string) *EntryZ  { return mod.logz(WarnLevel, msg) }
func (mod Module) ErrorZ(msg string) *EntryZ { return mod.logz(ErrorLevel, msg) }
func (mod Module) FatalZ(msg string) *EntryZ { return mod.logz(FatalLevel, msg) }
func (mod Module) PanicZ(msg string) *EntryZ { return mod.logz(PanicLevel, msg) }
