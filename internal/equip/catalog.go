package equip

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/retroenv/psptransmog/internal/extract"
	"github.com/retroenv/psptransmog/internal/layout"
	"github.com/retroenv/psptransmog/internal/names"
	"github.com/retroenv/retrogolib/log"
)

// HexAddress marshals as a "0x%08X" string, the address format of the
// persisted catalog.
type HexAddress uint32

// MarshalJSON implements json.Marshaler.
func (a HexAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%08X", uint32(a)))
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *HexAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	value, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("parsing address %q: %w", s, err)
	}
	*a = HexAddress(value)
	return nil
}

// ArmorSlotCatalog holds the grouped sets of one armor table.
type ArmorSlotCatalog struct {
	TableBase HexAddress `json:"table_base"`
	Sets      []ArmorSet `json:"sets"`
}

// Catalog is the persisted equipment data model. It is immutable after
// construction, generation reads it and never writes back.
type Catalog struct {
	WeaponTableBase   HexAddress `json:"weapon_table_base"`
	WeaponEntrySize   uint32     `json:"weapon_entry_size"`
	WeaponModelOffset uint32     `json:"weapon_model_offset"`
	ArmorEntrySize    uint32     `json:"armor_entry_size"`

	Weapons map[string]WeaponSet             `json:"weapons"`
	Armor   map[layout.Slot]ArmorSlotCatalog `json:"armor"`
}

// Build derives the catalog from an extraction result. Tables that failed
// extraction are absent from the catalog.
func Build(logger *log.Logger, result *extract.Result, l layout.Layout,
	source names.Source) *Catalog {

	cat := &Catalog{
		WeaponTableBase:   HexAddress(l.Weapon.Base),
		WeaponEntrySize:   l.Weapon.EntrySize,
		WeaponModelOffset: l.Weapon.Fields[layout.FieldModel].Offset,
		ArmorEntrySize:    l.Armor.EntrySize,
		Weapons:           map[string]WeaponSet{},
		Armor:             map[layout.Slot]ArmorSlotCatalog{},
	}

	for _, set := range GroupWeapons(result.Weapons, source) {
		cat.Weapons[strconv.Itoa(int(set.ModelID))] = set
	}

	for slot, records := range result.Armor {
		base := result.ArmorBases[slot]
		sets := GroupArmor(logger, slot, records, source)
		cat.Armor[slot] = ArmorSlotCatalog{
			TableBase: HexAddress(base),
			Sets:      sets,
		}
		logger.Debug("Grouped armor sets",
			log.String("table", string(slot)), log.Int("sets", len(sets)))
	}

	return cat
}

// SaveFile writes the catalog document to disk.
func (c *Catalog) SaveFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	// the model id lives in the map key
	for key, set := range cat.Weapons {
		model, err := strconv.ParseUint(key, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("parsing weapon model key %q: %w", key, err)
		}
		set.ModelID = uint16(model)
		cat.Weapons[key] = set
	}
	return &cat, nil
}
