// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input   string // save state or raw RAM dump
	Catalog string // equipment catalog document
	Names   string // names document from the external scraper
	Layout  string // layout override, empty uses the embedded layout
	Output  string // generated code output, empty prints to stdout
	Append  string // cheat database file to append generated codes to
}

// Flags contains behavior options.
type Flags struct {
	RawBase string // base address for raw dumps, hex
	Watch   bool   // rebuild the catalog when the input file changes
	Debug   bool
	Quiet   bool
}

// Generate contains the code generation request options.
type Generate struct {
	Enabled bool

	WeaponSource string // weapon family query
	WeaponTarget string

	Slot         string // armor slot name
	Source       string // armor set query
	Target       string
	Invisible    bool // target the (0,0) model pair
	AllInvisible bool // slot wide invisibility override
	Variant      int  // forced target variant index, -1 disables
	SwapGender   bool

	Title string // block title override
}

// Program options of the transmog tool.
type Program struct {
	Parameters
	Flags
	Generate Generate
}
