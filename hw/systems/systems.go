// Package systems holds the machine definitions and builds machines from
// roms.
package systems

import (
	"embed"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"multiemu/emu/log"
	"multiemu/hw"
	"multiemu/hw/chip8"
	"multiemu/hw/hwio"
	"multiemu/hw/mappers"
	"multiemu/hw/memory"
	"multiemu/rom"
)

//go:embed defs/*.toml
var defsFS embed.FS

//go:embed quirks.toml
var quirksDB []byte

// Registry returns the registry of every component variant.
var Registry = sync.OnceValue(func() *hw.Registry {
	var descs []hw.FactoryDesc
	descs = append(descs, chip8.Factories()...)
	descs = append(descs, memory.Factories()...)
	descs = append(descs, mappers.Factories()...)
	return hw.NewRegistry(chip8.Blobs(), descs...)
})

// Def is a machine definition, as found in defs/<system>.toml.
type Def struct {
	System       string               `toml:"system"`
	Description  string               `toml:"description"`
	FrameRate    hw.Rate              `toml:"frame_rate"`
	Slices       int                  `toml:"slices"`
	AddressBits  int                  `toml:"address_bits"`
	OpenBus      string               `toml:"open_bus"`
	OpenBusValue uint8                `toml:"open_bus_value"`
	Quirks       map[string]any       `toml:"quirks"`
	Components   []hw.ComponentConfig `toml:"component"`
}

// ParseDef decodes a machine definition.
func ParseDef(data string) (*Def, error) {
	var def Def
	md, err := toml.Decode(data, &def)
	if err != nil {
		return nil, err
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		return nil, fmt.Errorf("unknown keys in definition: %v", undec)
	}
	if def.System == "" {
		return nil, fmt.Errorf("definition without system name")
	}
	return &def, nil
}

var defs = sync.OnceValues(func() (map[string]*Def, error) {
	entries, err := defsFS.ReadDir("defs")
	if err != nil {
		return nil, err
	}
	m := make(map[string]*Def)
	for _, e := range entries {
		buf, err := defsFS.ReadFile(path.Join("defs", e.Name()))
		if err != nil {
			return nil, err
		}
		def, err := ParseDef(string(buf))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		m[def.System] = def
	}
	return m, nil
})

// Names returns the names of the supported systems, sorted.
func Names() []string {
	m, err := defs()
	if err != nil {
		log.ModEmu.FatalZ("invalid embedded definitions").Error("err", err).End()
	}
	return slices.Sorted(maps.Keys(m))
}

// Lookup returns the definition of a system.
func Lookup(system string) (*Def, error) {
	m, err := defs()
	if err != nil {
		return nil, err
	}
	def, ok := m[system]
	if !ok {
		return nil, fmt.Errorf("%w: unknown system %q", hw.ErrUnsupported, system)
	}
	return def, nil
}

// Options are the user choices applied on top of a definition.
type Options struct {
	System string         // force the system, instead of detecting it
	Quirks map[string]any // quirk overrides
	DB     *QuirkDB       // per-rom overrides, DefaultDB if nil

	OpenBus    string // override the open-bus policy of the definition
	Strict     bool
	Seed       uint64
	Workers    int
	SampleRate uint32
}

// Detect returns the system a rom runs on: the database entry of the rom if
// any, or the system guessed from its extension.
func Detect(r *rom.Rom, db *QuirkDB) (string, error) {
	if e, ok := db.Lookup(r.ID); ok && e.System != "" {
		return e.System, nil
	}
	if r.System != "" {
		return r.System, nil
	}
	return "", fmt.Errorf("%w: can't detect the system of rom %s", hw.ErrUnsupported, r.Name)
}

// Config returns the configuration of a machine running r. Quirks come from
// the definition, then the database, then opts.
func Config(r *rom.Rom, opts Options) (hw.MachineConfig, error) {
	db := opts.DB
	if db == nil {
		db = DefaultDB()
	}

	system := opts.System
	if system == "" {
		var err error
		if system, err = Detect(r, db); err != nil {
			return hw.MachineConfig{}, err
		}
	}
	def, err := Lookup(system)
	if err != nil {
		return hw.MachineConfig{}, err
	}

	tables := []map[string]any{def.Quirks}
	if e, ok := db.Lookup(r.ID); ok && (e.System == "" || e.System == system) {
		log.ModEmu.InfoZ("rom found in quirks database").
			String("name", e.Name).
			String("system", system).
			End()
		tables = append(tables, e.Quirks)
	}
	tables = append(tables, opts.Quirks)
	quirks, err := hw.NewQuirks(tables...)
	if err != nil {
		return hw.MachineConfig{}, err
	}

	policy := def.OpenBus
	if opts.OpenBus != "" {
		policy = opts.OpenBus
	}
	openBus, err := hwio.ParseOpenBus(policy)
	if err != nil {
		return hw.MachineConfig{}, &hw.ConfigError{Component: "machine", Err: err}
	}

	return hw.MachineConfig{
		System:       def.System,
		Rom:          r,
		FrameRate:    def.FrameRate,
		Slices:       def.Slices,
		AddressBits:  def.AddressBits,
		OpenBus:      openBus,
		OpenBusValue: def.OpenBusValue,
		Strict:       opts.Strict,
		Seed:         opts.Seed,
		Workers:      opts.Workers,
		SampleRate:   opts.SampleRate,
		Components:   cloneComponents(def.Components),
		Quirks:       quirks,
	}, nil
}

// cloneComponents deep-copies definition components so that a config can be
// modified without affecting the shared definition.
func cloneComponents(comps []hw.ComponentConfig) []hw.ComponentConfig {
	out := make([]hw.ComponentConfig, len(comps))
	for i, c := range comps {
		out[i] = c
		out[i].Params = maps.Clone(c.Params)
	}
	return out
}

// Build creates the machine running r.
func Build(r *rom.Rom, opts Options) (*hw.Machine, error) {
	cfg, err := Config(r, opts)
	if err != nil {
		return nil, err
	}
	return hw.NewMachine(Registry(), cfg)
}

// QuirkDB maps roms to the system and quirks they need.
type QuirkDB struct {
	entries map[rom.ID]DBEntry
}

type DBEntry struct {
	ID     rom.ID         `toml:"sha1"`
	Name   string         `toml:"name"`
	System string         `toml:"system"`
	Quirks map[string]any `toml:"quirks"`
}

// ParseQuirkDB decodes a quirks database.
func ParseQuirkDB(data string) (*QuirkDB, error) {
	var file struct {
		Roms []DBEntry `toml:"rom"`
	}
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, err
	}
	db := &QuirkDB{entries: make(map[rom.ID]DBEntry, len(file.Roms))}
	for _, e := range file.Roms {
		if e.ID.IsZero() {
			return nil, fmt.Errorf("quirks database: entry %q without sha1", e.Name)
		}
		db.entries[e.ID] = e
	}
	return db, nil
}

// DefaultDB returns the embedded quirks database.
var DefaultDB = sync.OnceValue(func() *QuirkDB {
	db, err := ParseQuirkDB(string(quirksDB))
	if err != nil {
		log.ModEmu.FatalZ("invalid embedded quirks database").Error("err", err).End()
	}
	return db
})

func (db *QuirkDB) Lookup(id rom.ID) (DBEntry, bool) {
	if db == nil {
		return DBEntry{}, false
	}
	e, ok := db.entries[id]
	return e, ok
}

func (db *QuirkDB) Len() int { return len(db.entries) }

// Merge returns a database with the entries of db and other, other taking
// precedence.
func (db *QuirkDB) Merge(other *QuirkDB) *QuirkDB {
	out := &QuirkDB{entries: maps.Clone(db.entries)}
	if out.entries == nil {
		out.entries = make(map[rom.ID]DBEntry)
	}
	if other != nil {
		maps.Copy(out.entries, other.entries)
	}
	return out
}

// Describe returns a one-line summary of a definition.
func (def *Def) Describe() string {
	names := make([]string, len(def.Components))
	for i, c := range def.Components {
		names[i] = fmt.Sprintf("%s=%s", c.Name, c.Variant)
	}
	return fmt.Sprintf("%s: %s [%s]", def.System, def.Description, strings.Join(names, " "))
}
