package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"multiemu/emu"
	"multiemu/emu/slots"
	"multiemu/hw/systems"
	"multiemu/rom"
)

func romInfos(w io.Writer, path string) error {
	r, err := rom.Open(path)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "name:\t%s\n", r.Name)
	fmt.Fprintf(tw, "id:\t%s\n", r.ID)
	fmt.Fprintf(tw, "size:\t%d bytes\n", len(r.Data))

	db := systems.DefaultDB()
	if e, ok := db.Lookup(r.ID); ok {
		fmt.Fprintf(tw, "database:\t%s\n", e.Name)
		for k, v := range e.Quirks {
			fmt.Fprintf(tw, "  %s:\t%v\n", k, v)
		}
	}

	system, err := systems.Detect(r, db)
	if err != nil {
		fmt.Fprintf(tw, "system:\tunknown\n")
		return tw.Flush()
	}
	def, err := systems.Lookup(system)
	if err != nil {
		return err
	}
	fmt.Fprintf(tw, "system:\t%s\n", def.Describe())
	return tw.Flush()
}

func statesMain(w io.Writer, args States, cfg emu.Config) error {
	r, err := rom.Open(args.RomPath)
	if err != nil {
		return err
	}
	store, err := slots.Open(cfg.StatesPath())
	if err != nil {
		return err
	}
	defer store.Close()

	for _, slot := range args.Delete {
		if err := store.Delete(r.ID, slot); err != nil {
			return fmt.Errorf("slot %d: %w", slot, err)
		}
		fmt.Fprintf(w, "deleted slot %d\n", slot)
	}

	infos, err := store.List(r.ID)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintf(w, "no save-states for %s\n", r.Name)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tSYSTEM\tSTEP\tSIZE")
	for _, info := range infos {
		if info.Err != nil {
			fmt.Fprintf(tw, "%d\t-\t-\t%d\t(%s)\n", info.Slot, info.Size, info.Err)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", info.Slot, info.System, info.Step, info.Size)
	}
	return tw.Flush()
}

func listSystems(w io.Writer) {
	for _, name := range systems.Names() {
		def, err := systems.Lookup(name)
		if err != nil {
			continue
		}
		fmt.Fprintln(w, def.Describe())
	}
}
