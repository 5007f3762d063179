package emu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"multiemu/emu/log"
	"multiemu/hw/shaders"
	"multiemu/hw/systems"
)

type Config struct {
	Machine   MachineConfig   `toml:"machine"`
	Video     VideoConfig     `toml:"video"`
	Audio     AudioConfig     `toml:"audio"`
	Input     InputConfig     `toml:"input"`
	Storage   StorageConfig   `toml:"storage"`
	Emulation EmulationConfig `toml:"emulation"`

	// Quirks overrides, applied on top of the system and rom defaults.
	Quirks map[string]any `toml:"quirks"`
}

type MachineConfig struct {
	System  string `toml:"system"`   // force a system instead of detecting it
	OpenBus string `toml:"open_bus"` // last, sentinel or strict
	Strict  bool   `toml:"strict"`
	Seed    uint64 `toml:"seed"`
	Workers int    `toml:"workers"`
}

type VideoConfig struct {
	DisableVSync bool   `toml:"disable_vsync"`
	Monitor      int32  `toml:"monitor"`
	Scale        int    `toml:"scale"`
	Shader       string `toml:"shader"`
}

func (vcfg *VideoConfig) Check() {
	if vcfg.Scale <= 0 {
		vcfg.Scale = 8
	}
	// Ensure we have a valid shader.
	if vcfg.Shader == "" {
		vcfg.Shader = shaders.DefaultName
	}
	if !slices.Contains(shaders.Names(), vcfg.Shader) {
		log.ModEmu.WarnZ("invalid shader name, using default").
			String("name", vcfg.Shader).
			String("default", shaders.DefaultName).
			End()
		vcfg.Shader = shaders.DefaultName
	}
}

type AudioConfig struct {
	DisableAudio bool   `toml:"disable_audio"`
	SampleRate   uint32 `toml:"sample_rate"`
}

// InputConfig maps host inputs to the keys of the keypad, indexed by hex
// digit, "0" to "F". Codes are in the form "key <name>",
// "joybtn <button> <guid>" or "joyaxis <axis>[+-] <guid>". An empty code
// unmaps the key.
type InputConfig struct {
	Keypad map[string]string `toml:"keypad"`
}

type StorageConfig struct {
	// StatesPath is the save-states database. Relative paths are relative to
	// the config directory.
	StatesPath string `toml:"states_path"`
}

type EmulationConfig struct {
	BackBuffers int  `toml:"back_buffers"`
	Unthrottled bool `toml:"unthrottled"`
}

// Options returns the options to build a machine with this configuration.
func (cfg *Config) Options() systems.Options {
	return systems.Options{
		System:     cfg.Machine.System,
		Quirks:     cfg.Quirks,
		OpenBus:    cfg.Machine.OpenBus,
		Strict:     cfg.Machine.Strict,
		Seed:       cfg.Machine.Seed,
		Workers:    cfg.Machine.Workers,
		SampleRate: cfg.Audio.SampleRate,
	}
}

// StatesPath returns the absolute path of the save-states database.
func (cfg *Config) StatesPath() string {
	p := cfg.Storage.StatesPath
	if p == "" {
		p = "states.db"
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ConfigDir(), p)
}

// DefaultConfig uses the COSMAC VIP keypad layout on the left of a QWERTY
// keyboard:
//
//	1 2 3 C    1 2 3 4
//	4 5 6 D    Q W E R
//	7 8 9 E    A S D F
//	A 0 B F    Z X C V
func DefaultConfig() Config {
	return Config{
		Video: VideoConfig{Scale: 8, Shader: shaders.DefaultName},
		Input: InputConfig{
			Keypad: map[string]string{
				"0": "key X", "1": "key 1", "2": "key 2", "3": "key 3",
				"4": "key Q", "5": "key W", "6": "key E", "7": "key A",
				"8": "key S", "9": "key D", "A": "key Z", "B": "key C",
				"C": "key 4", "D": "key R", "E": "key F", "F": "key V",
			},
		},
		Emulation: EmulationConfig{BackBuffers: DefaultBackBuffers},
	}
}

var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("multiemu")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.FatalZ("failed to create config directory").
			String("dir", dir).
			Error("err", err).
			End()
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfig reads a configuration file. Settings missing from the file keep
// their default value, keypad keys included.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		log.ModEmu.WarnZ("unknown configuration keys").
			String("file", path).
			String("keys", fmt.Sprint(undec)).
			End()
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the config directory, or
// provides a default one.
func LoadConfigOrDefault() Config {
	path := filepath.Join(ConfigDir(), cfgFilename)
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("using default configuration").Error("err", err).End()
		}
		return DefaultConfig()
	}
	return cfg
}

// SaveConfig into the config directory.
func SaveConfig(cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ConfigDir(), cfgFilename), buf, 0o644)
}
