// Package names resolves equipment display names by visual model id.
// The name data itself comes from an external documentation source, this
// package only defines the lookup boundary and a JSON file backed source.
package names

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/retroenv/psptransmog/internal/layout"
)

// NothingEquipped is the display name of the (0,0) sentinel entry.
const NothingEquipped = "Nothing Equipped"

// Source resolves display names for equipment models. Names are display
// labels only and never participate in address computation.
type Source interface {
	// WeaponNames returns the tier names and the weapon class tag of a
	// weapon model family.
	WeaponNames(model uint16) (names []string, weaponType string)

	// ArmorNames returns the names of an armor piece given both gender
	// model ids of one variant.
	ArmorNames(slot layout.Slot, modelMale, modelFemale int16) []string
}

type weaponNames struct {
	Names []string `json:"names"`
	Type  string   `json:"type"`
}

type armorNames struct {
	Male   map[string][]string `json:"male"`
	Female map[string][]string `json:"female"`
}

// Document is a JSON name table, the persisted output of the external
// name scraper.
type Document struct {
	Weapons map[string]weaponNames     `json:"weapons"`
	Armor   map[layout.Slot]armorNames `json:"armor"`
}

// LoadFile reads a names document from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading names file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing names file: %w", err)
	}
	return &doc, nil
}

// WeaponNames implements Source.
func (d *Document) WeaponNames(model uint16) ([]string, string) {
	entry, ok := d.Weapons[strconv.Itoa(int(model))]
	if !ok || len(entry.Names) == 0 {
		return []string{fmt.Sprintf("Unknown Weapon (model %d)", model)}, entry.Type
	}
	return entry.Names, entry.Type
}

// ArmorNames implements Source. Gender-specific pieces have one model id
// zeroed out, those resolve through the other gender's table.
func (d *Document) ArmorNames(slot layout.Slot, modelMale, modelFemale int16) []string {
	if modelMale == 0 && modelFemale == 0 {
		return []string{NothingEquipped}
	}

	tables := d.Armor[slot]
	male := tables.Male[strconv.Itoa(int(modelMale))]
	female := tables.Female[strconv.Itoa(int(modelFemale))]

	switch {
	case modelMale == 0 && modelFemale > 0:
		if len(female) == 0 {
			return []string{fmt.Sprintf("Female-only (model f:%d)", modelFemale)}
		}
		return female

	case modelFemale == 0 && modelMale > 0:
		if len(male) == 0 {
			return []string{fmt.Sprintf("Male-only (model m:%d)", modelMale)}
		}
		return male

	case len(male) > 0:
		return male

	case len(female) > 0:
		return female

	default:
		return []string{fmt.Sprintf("Unknown (model %d/%d)", modelMale, modelFemale)}
	}
}

// Placeholder is a Source used when no names document is available, it
// labels everything by model id.
type Placeholder struct{}

// WeaponNames implements Source.
func (Placeholder) WeaponNames(model uint16) ([]string, string) {
	return []string{fmt.Sprintf("Weapon model %d", model)}, ""
}

// ArmorNames implements Source.
func (Placeholder) ArmorNames(_ layout.Slot, modelMale, modelFemale int16) []string {
	if modelMale == 0 && modelFemale == 0 {
		return []string{NothingEquipped}
	}
	return []string{fmt.Sprintf("Armor model %d/%d", modelMale, modelFemale)}
}
