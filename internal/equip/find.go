package equip

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/retroenv/psptransmog/internal/layout"
	"github.com/retroenv/psptransmog/internal/names"
)

func matchesQuery(setNames []string, query string) bool {
	query = strings.ToLower(query)
	for _, name := range setNames {
		if strings.Contains(strings.ToLower(name), query) {
			return true
		}
	}
	return false
}

// FindWeapon resolves a weapon set by numeric model id or by
// case-insensitive name substring. Ambiguous queries fail with the
// candidate names listed.
func (c *Catalog) FindWeapon(query string) (WeaponSet, error) {
	if model, err := strconv.ParseUint(query, 10, 16); err == nil {
		if set, ok := c.Weapons[strconv.Itoa(int(model))]; ok {
			return set, nil
		}
		return WeaponSet{}, fmt.Errorf("no weapon with model id %d", model)
	}

	var matches []WeaponSet
	for _, set := range c.Weapons {
		if matchesQuery(set.Names, query) {
			matches = append(matches, set)
		}
	}
	return pickOne(matches, "weapon", query, WeaponSet.DisplayName)
}

// FindArmor resolves an armor set of a slot by case-insensitive name
// substring. The "nothing equipped" sentinel is only returned when
// allowBlank is set (it is a valid target but never a source).
func (c *Catalog) FindArmor(slot layout.Slot, query string, allowBlank bool) (ArmorSet, error) {
	slotCatalog, ok := c.Armor[slot]
	if !ok {
		return ArmorSet{}, fmt.Errorf("no catalog data for slot %s", slot)
	}

	var matches []ArmorSet
	for _, set := range slotCatalog.Sets {
		if set.IsBlank() && !allowBlank {
			continue
		}
		if matchesQuery(set.Names, query) {
			matches = append(matches, set)
		}
	}
	return pickOne(matches, string(slot)+" armor", query, ArmorSet.DisplayName)
}

func pickOne[T any](matches []T, kind, query string, name func(T) string) (T, error) {
	var zero T
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("no %s matches %q", kind, query)
	case 1:
		return matches[0], nil
	}

	// an exact name match wins over substring matches
	var exact []T
	for _, m := range matches {
		if strings.EqualFold(name(m), query) {
			exact = append(exact, m)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}

	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, name(m))
	}
	slices.Sort(candidates)
	return zero, fmt.Errorf("%s query %q is ambiguous: %s",
		kind, query, strings.Join(candidates, ", "))
}

// SelectableArmor returns the sets of a slot without the sentinel,
// sorted by base name for stable display.
func (c *Catalog) SelectableArmor(slot layout.Slot) []ArmorSet {
	var sets []ArmorSet
	for _, set := range c.Armor[slot].Sets {
		if set.IsBlank() || (len(set.Names) == 1 && set.Names[0] == names.NothingEquipped) {
			continue
		}
		sets = append(sets, set)
	}
	slices.SortFunc(sets, func(a, b ArmorSet) int {
		return strings.Compare(strings.ToLower(firstName(a.Names)), strings.ToLower(firstName(b.Names)))
	})
	return sets
}

// WeaponSets returns all weapon sets ordered by model id.
func (c *Catalog) WeaponSets() []WeaponSet {
	sets := make([]WeaponSet, 0, len(c.Weapons))
	for _, set := range c.Weapons {
		sets = append(sets, set)
	}
	slices.SortFunc(sets, func(a, b WeaponSet) int {
		return int(a.ModelID) - int(b.ModelID)
	})
	return sets
}

func firstName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
