// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/retroenv/psptransmog/internal/layout"
	"github.com/retroenv/psptransmog/internal/options"
)

// ParseFlags parses command line flags and returns the program options.
func ParseFlags() (options.Program, error) {
	return parse(os.Args[0], os.Args[1:])
}

func parse(name string, args []string) (options.Program, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags}
	}

	if err := validateOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: psptransmog [options]\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateOptions checks option consistency for the selected mode.
func validateOptions(opts *options.Program) error {
	if _, err := strconv.ParseUint(opts.RawBase, 0, 32); err != nil {
		return fmt.Errorf("invalid raw base address %q", opts.RawBase)
	}

	if !opts.Generate.Enabled {
		if opts.Input == "" {
			return &UsageError{msg: "no input save state or RAM dump given"}
		}
		return nil
	}

	gen := &opts.Generate
	if opts.Watch {
		return &UsageError{msg: "-watch only applies to catalog building"}
	}

	wantsWeapon := gen.WeaponSource != "" || gen.WeaponTarget != ""
	wantsArmor := gen.Slot != "" || gen.Source != "" || gen.Target != "" ||
		gen.Invisible || gen.AllInvisible
	if !wantsWeapon && !wantsArmor {
		return &UsageError{msg: "nothing to generate, give a weapon or armor selection"}
	}

	if wantsWeapon && (gen.WeaponSource == "" || gen.WeaponTarget == "") {
		return &UsageError{msg: "weapon generation needs both -weapon-source and -weapon-target"}
	}

	if wantsArmor {
		if gen.Slot == "" {
			return &UsageError{msg: "armor generation needs -slot"}
		}
		if !validSlot(gen.Slot) {
			return &UsageError{msg: fmt.Sprintf("unknown armor slot %q", gen.Slot)}
		}
		if gen.AllInvisible {
			if gen.Source != "" || gen.Target != "" || gen.Invisible {
				return &UsageError{msg: "-all-invisible does not take a source or target"}
			}
		} else {
			if gen.Source == "" {
				return &UsageError{msg: "armor generation needs -source"}
			}
			if gen.Target == "" && !gen.Invisible {
				return &UsageError{msg: "armor generation needs -target or -invisible"}
			}
			if gen.Target != "" && gen.Invisible {
				return &UsageError{msg: "-target and -invisible are mutually exclusive"}
			}
		}
	}
	return nil
}

func validSlot(name string) bool {
	for _, slot := range layout.Slots() {
		if string(slot) == name {
			return true
		}
	}
	return false
}

// RawBaseAddress returns the parsed raw dump base address.
func RawBaseAddress(opts options.Program) uint32 {
	base, _ := strconv.ParseUint(opts.RawBase, 0, 32)
	return uint32(base)
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "input PPSSPP save state (.ppst) or raw RAM dump")
	flags.StringVar(&opts.Catalog, "catalog", "transmog_data.json", "equipment catalog file")
	flags.StringVar(&opts.Names, "names", "", "equipment names file from the documentation scraper")
	flags.StringVar(&opts.Layout, "layout", "", "table layout file, uses the built-in ULJM-05500 layout if empty")
	flags.StringVar(&opts.Output, "o", "", "write generated codes to this file instead of stdout")
	flags.StringVar(&opts.Append, "append", "", "append generated codes to this cheat database file")
	flags.StringVar(&opts.RawBase, "base", "0x08000000", "base address of a raw RAM dump")
	flags.BoolVar(&opts.Watch, "watch", false, "rebuild the catalog whenever the input file changes")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	gen := &opts.Generate
	flags.BoolVar(&gen.Enabled, "generate", false, "generate cheat codes from the catalog instead of building it")
	flags.StringVar(&gen.WeaponSource, "weapon-source", "", "equipped weapon, by name or model id")
	flags.StringVar(&gen.WeaponTarget, "weapon-target", "", "weapon visual to show, by name or model id")
	flags.StringVar(&gen.Slot, "slot", "", "armor slot: head, chest, arms, waist, legs")
	flags.StringVar(&gen.Source, "source", "", "equipped armor set, by name")
	flags.StringVar(&gen.Target, "target", "", "armor visual to show, by name")
	flags.BoolVar(&gen.Invisible, "invisible", false, "hide the selected armor slot")
	flags.BoolVar(&gen.AllInvisible, "all-invisible", false, "hide the slot for every equipment set")
	flags.IntVar(&gen.Variant, "variant", -1, "force this target variant index for all source variants")
	flags.BoolVar(&gen.SwapGender, "swap-gender", false, "swap which gender model each half-word receives")
	flags.StringVar(&gen.Title, "title", "", "cheat block title override")
}
