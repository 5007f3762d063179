package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"multiemu/emu"
)

func main() {
	args := parseArgs(os.Args[1:])

	var cfg emu.Config
	if args.Config != "" {
		var err error
		cfg, err = emu.LoadConfig(args.Config)
		checkf(err, "failed to load configuration")
	} else {
		cfg = emu.LoadConfigOrDefault()
	}

	switch args.mode {
	case runMode:
		os.Exit(emuMain(args.Run, cfg))
	case romInfosMode:
		checkf(romInfos(os.Stdout, args.RomInfos.RomPath), "rom-infos")
	case statesMode:
		checkf(statesMain(os.Stdout, args.States, cfg), "states")
	case systemsMode:
		listSystems(os.Stdout)
	case versionMode:
		printVersion()
	case captureMode:
		os.Exit(captureMain(args.Capture))
	}
}

func printVersion() {
	const path = "multiemu"
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Println(path, "(unknown version)")
		return
	}
	version := bi.Main.Version
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			version += " " + s.Value
		}
	}
	fmt.Println(path, version, bi.GoVersion)
}
