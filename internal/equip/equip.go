// Package equip builds and persists the equipment catalog: raw table
// records grouped into selectable equipment sets keyed by visual model.
package equip

import (
	"fmt"
	"slices"
)

// Variant is one visual identity of an armor set, carrying every equip id
// that renders with this model pair.
type Variant struct {
	ModelMale   int16    `json:"model_m"`
	ModelFemale int16    `json:"model_f"`
	EquipIDs    []uint32 `json:"eids"`
}

// ArmorSet is one selectable armor identity with one variant (universal)
// or two (Blademaster and Gunner).
type ArmorSet struct {
	Names    []string  `json:"names"`
	Variants []Variant `json:"variants"`
}

// IsBlank reports whether every variant renders the (0,0) model pair,
// which marks the "nothing equipped" sentinel.
func (s ArmorSet) IsBlank() bool {
	for _, v := range s.Variants {
		if v.ModelMale != 0 || v.ModelFemale != 0 {
			return false
		}
	}
	return len(s.Variants) > 0
}

// DisplayName returns the highest tier name of the set.
func (s ArmorSet) DisplayName() string {
	return displayName(s.Names)
}

// WeaponSet is one weapon model family: every table index sharing the
// same visual model, across all upgrade tiers.
type WeaponSet struct {
	ModelID uint16   `json:"-"`
	Names   []string `json:"names"`
	Entries []uint32 `json:"entries"`
	Type    string   `json:"type"`
}

// DisplayName returns the highest tier name of the family.
func (s WeaponSet) DisplayName() string {
	return displayName(s.Names)
}

func displayName(names []string) string {
	if len(names) == 0 {
		return "???"
	}
	return names[len(names)-1]
}

// variantKey identifies a set by its ordered variant model pairs.
type variantKey string

func keyOf(variants []Variant) variantKey {
	key := ""
	for _, v := range variants {
		key += fmt.Sprintf("%d/%d;", v.ModelMale, v.ModelFemale)
	}
	return variantKey(key)
}

func sortedEntries(entries []uint32) []uint32 {
	out := slices.Clone(entries)
	slices.Sort(out)
	return out
}
