package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"multiemu/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM
	romInfosMode             // Show ROM infos
	statesMode               // List or delete save-states
	systemsMode              // List supported systems
	versionMode              // Show version
	captureMode              // Capture a host input code (hidden command)
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run ROM in emulator. (default command)" default:"withargs"`
		RomInfos RomInfos `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		States   States   `cmd:"" help:"List or delete the save-states of a ROM."`
		Systems  Systems  `cmd:"" help:"List supported systems."`
		Version  Version  `cmd:"" help:"Show multiemu version."`
		Capture  Capture  `cmd:"" hidden:"true"`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `name:"config" help:"${config_help}" type:"existingfile" placeholder:"FILE"`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" required:"true" type:"existingfile"`

		System      string `name:"system" help:"Force the system instead of detecting it."`
		Seed        uint64 `name:"seed" help:"Seed of the machine random source. (default: from config)"`
		Strict      bool   `name:"strict" help:"Fault on invalid opcodes and strict open-bus accesses."`
		OpenBus     string `name:"open-bus" help:"Open-bus policy: last, sentinel or strict."`
		Slot        int    `name:"slot" help:"Load save-state slot before starting." default:"-1"`
		Unthrottled bool   `name:"unthrottled" help:"Run as fast as possible."`

		Headless bool     `name:"headless" help:"Run without window nor audio."`
		Frames   uint64   `name:"frames" help:"Stop after that many frames. (0: never)"`
		Hash     *outfile `name:"hash" help:"Write the hash of the output at exit." placeholder:"FILE|stdout|stderr"`
		Inspect  string   `name:"inspect" help:"${inspect_help}" placeholder:"ADDR"`

		Monitor    int32  `name:"monitor" help:"Monitor index to use." default:"0"`
		Shader     string `name:"shader" help:"Shader to present the screen with."`
		CPUProfile string `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Port       int    `name:"port" hidden:"true"`
	}

	RomInfos struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	States struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
		Delete  []int  `name:"delete" help:"Delete the given slots." placeholder:"SLOT"`
	}

	Capture struct {
		Key string `name:"key" hidden:"true" required:""`
	}

	Systems struct{}
	Version struct{}
)

var vars = kong.Vars{
	"rompath_help":    "ROM file to run.",
	"cpuprofile_help": "Write CPU profile to file.",
	"inspect_help":    "Serve the machine state as JSON on ADDR (GET /state).",
	"config_help":     "Configuration file. (default: config.toml in the config directory)",
	"log_help":        "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("multiemu"),
		kong.Description("Multi-system ROM console emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch ctx.Command() {
	case "capture":
		cfg.mode = captureMode
	case "rom-infos </path/to/rom>":
		cfg.mode = romInfosMode
	case "states </path/to/rom>":
		cfg.mode = statesMode
	case "systems":
		cfg.mode = systemsMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
