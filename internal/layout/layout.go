// Package layout describes the in-memory equipment table layout of the game.
// The layout is configuration data: base addresses, entry sizes and field
// offsets are supplied by a YAML document, never derived at runtime.
package layout

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayout []byte

// Slot identifies one of the five armor tables.
type Slot string

// Armor slots in table address order.
const (
	Head  Slot = "head"
	Chest Slot = "chest"
	Arms  Slot = "arms"
	Waist Slot = "waist"
	Legs  Slot = "legs"
)

// Slots returns all armor slots in table address order.
func Slots() []Slot {
	return []Slot{Head, Chest, Arms, Waist, Legs}
}

// Label returns the display label of the slot.
func (s Slot) Label() string {
	switch s {
	case Head:
		return "Head"
	case Chest:
		return "Chest"
	case Arms:
		return "Arms"
	case Waist:
		return "Waist"
	case Legs:
		return "Legs"
	default:
		return string(s)
	}
}

// Field describes one value inside a table entry.
type Field struct {
	Offset uint32 `yaml:"offset"`
	Width  int    `yaml:"width"`
	Signed bool   `yaml:"signed"`
}

// PointerTable is the secondary table holding per-slot armor table base
// addresses. Slots lists the indices that hold real pointers, all other
// indices hold flag words and must never be dereferenced.
type PointerTable struct {
	Address uint32 `yaml:"address"`
	Slots   []int  `yaml:"slots"`
}

// ArmorTable locates one armor slot table. Either Base is set directly or
// PointerSlot selects an index of the pointer table to read the base from.
type ArmorTable struct {
	Base        uint32 `yaml:"base"`
	PointerSlot *int   `yaml:"pointer_slot"`
	EntryCount  uint32 `yaml:"entry_count"`
}

// ArmorTables describes the armor tables shared layout plus per-slot location.
type ArmorTables struct {
	EntrySize uint32              `yaml:"entry_size"`
	Fields    map[string]Field    `yaml:"fields"`
	Tables    map[Slot]ArmorTable `yaml:"tables"`
}

// WeaponTable describes the single weapon table.
type WeaponTable struct {
	Base       uint32           `yaml:"base"`
	EntrySize  uint32           `yaml:"entry_size"`
	EntryCount uint32           `yaml:"entry_count"`
	Fields     map[string]Field `yaml:"fields"`
}

// Layout is the complete table layout document.
type Layout struct {
	ExternalBase uint32       `yaml:"external_base"`
	PointerTable PointerTable `yaml:"pointer_table"`
	Weapon       WeaponTable  `yaml:"weapon"`
	Armor        ArmorTables  `yaml:"armor"`
}

// Armor entry field names.
const (
	FieldModelMale   = "model_male"
	FieldModelFemale = "model_female"
	FieldVariantFlag = "variant_flag"
)

// Weapon entry field names.
const (
	FieldModel  = "model"
	FieldAttack = "attack"
)

// Default returns the embedded layout for MHFU ULJM-05500 v1.01.
func Default() (Layout, error) {
	return parse(defaultLayout)
}

// LoadFile reads and validates a layout document from disk.
func LoadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("reading layout file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("parsing layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, fmt.Errorf("validating layout: %w", err)
	}
	return l, nil
}

// AllowsPointerSlot reports whether the pointer table index is on the
// allow-list of real pointer slots.
func (l Layout) AllowsPointerSlot(index int) bool {
	return slices.Contains(l.PointerTable.Slots, index)
}

// Validate checks structural consistency of the layout document.
func (l Layout) Validate() error {
	if l.ExternalBase == 0 {
		return fmt.Errorf("missing external_base")
	}
	if err := validateTable("weapon", l.Weapon.EntrySize, l.Weapon.EntryCount, l.Weapon.Fields); err != nil {
		return err
	}
	for _, name := range []string{FieldModel, FieldAttack} {
		if _, ok := l.Weapon.Fields[name]; !ok {
			return fmt.Errorf("weapon table: missing field %q", name)
		}
	}

	if l.Armor.EntrySize == 0 {
		return fmt.Errorf("armor tables: entry size is zero")
	}
	for _, name := range []string{FieldModelMale, FieldModelFemale, FieldVariantFlag} {
		if _, ok := l.Armor.Fields[name]; !ok {
			return fmt.Errorf("armor tables: missing field %q", name)
		}
	}
	for name, field := range l.Armor.Fields {
		if err := validateField(name, field, l.Armor.EntrySize); err != nil {
			return fmt.Errorf("armor tables: %w", err)
		}
	}

	for _, slot := range Slots() {
		table, ok := l.Armor.Tables[slot]
		if !ok {
			return fmt.Errorf("armor tables: missing slot %q", slot)
		}
		if table.EntryCount == 0 {
			return fmt.Errorf("armor table %s: entry count is zero", slot)
		}
		if table.Base == 0 && table.PointerSlot == nil {
			return fmt.Errorf("armor table %s: neither base nor pointer_slot set", slot)
		}
		if table.PointerSlot != nil && !l.AllowsPointerSlot(*table.PointerSlot) {
			return fmt.Errorf("armor table %s: pointer slot %d is not on the allow-list",
				slot, *table.PointerSlot)
		}
	}
	return nil
}

func validateTable(name string, entrySize, entryCount uint32, fields map[string]Field) error {
	if entrySize == 0 {
		return fmt.Errorf("%s table: entry size is zero", name)
	}
	if entryCount == 0 {
		return fmt.Errorf("%s table: entry count is zero", name)
	}
	for fieldName, field := range fields {
		if err := validateField(fieldName, field, entrySize); err != nil {
			return fmt.Errorf("%s table: %w", name, err)
		}
	}
	return nil
}

func validateField(name string, field Field, entrySize uint32) error {
	switch field.Width {
	case 1, 2, 4:
	default:
		return fmt.Errorf("field %q: unsupported width %d", name, field.Width)
	}
	if field.Offset+uint32(field.Width) > entrySize {
		return fmt.Errorf("field %q: exceeds entry size %d", name, entrySize)
	}
	return nil
}
