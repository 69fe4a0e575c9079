package equip

import (
	"slices"

	"github.com/retroenv/psptransmog/internal/extract"
	"github.com/retroenv/psptransmog/internal/layout"
	"github.com/retroenv/psptransmog/internal/names"
	"github.com/retroenv/retrogolib/log"
)

// Variant flags observed in the armor tables. A Blademaster entry is
// always directly followed by its Gunner counterpart.
const (
	flagBlademaster = 0x07
	flagGunner      = 0x0B
	flagUniversal   = 0x0F
)

func knownFlag(flag uint8) bool {
	switch flag {
	case flagBlademaster, flagGunner, flagUniversal:
		return true
	default:
		return false
	}
}

// GroupArmor groups the raw records of one armor table into sets. Records
// are scanned in increasing equip id order, consecutive entries pair into
// Blademaster/Gunner variants, sets sharing the same variant model pairs
// merge into one set carrying all equip ids. Final membership does not
// depend on anything but the record contents.
func GroupArmor(logger *log.Logger, slot layout.Slot, records []extract.ArmorRecord,
	source names.Source) []ArmorSet {

	var sets []ArmorSet

	for i := 0; i < len(records); {
		r := records[i]

		// padding rows between table sections
		if r.ModelMale == 0 && r.ModelFemale == 0 && !knownFlag(r.VariantFlag) {
			i++
			continue
		}

		if !knownFlag(r.VariantFlag) {
			// Unknown flag but real models: keep the entry as a single
			// variant set instead of dropping it.
			logger.Warn("Ambiguous variant flag, keeping entry as single variant",
				log.String("table", string(slot)),
				log.Int("eid", int(r.EquipID)),
				log.Int("flag", int(r.VariantFlag)))
		}

		next, paired := pairCandidate(records, i)
		if paired {
			set := ArmorSet{
				Names: pairNames(source, slot, r, next),
				Variants: []Variant{
					{ModelMale: r.ModelMale, ModelFemale: r.ModelFemale, EquipIDs: []uint32{r.EquipID}},
					{ModelMale: next.ModelMale, ModelFemale: next.ModelFemale, EquipIDs: []uint32{next.EquipID}},
				},
			}
			sets = append(sets, set)
			i += 2
			continue
		}

		sets = append(sets, ArmorSet{
			Names: source.ArmorNames(slot, r.ModelMale, r.ModelFemale),
			Variants: []Variant{
				{ModelMale: r.ModelMale, ModelFemale: r.ModelFemale, EquipIDs: []uint32{r.EquipID}},
			},
		})
		i++
	}

	return mergeSets(sets)
}

// pairCandidate reports whether the record at index i forms a two-variant
// set with its successor.
func pairCandidate(records []extract.ArmorRecord, i int) (extract.ArmorRecord, bool) {
	if i+1 >= len(records) {
		return extract.ArmorRecord{}, false
	}
	r, next := records[i], records[i+1]
	if next.EquipID != r.EquipID+1 {
		return extract.ArmorRecord{}, false
	}

	// Blademaster followed by its Gunner counterpart
	if r.VariantFlag == flagBlademaster && next.VariantFlag == flagGunner {
		return next, true
	}
	// two universal entries with consecutive male models
	if r.VariantFlag == flagUniversal && next.VariantFlag == flagUniversal &&
		r.ModelMale > 0 && next.ModelMale == r.ModelMale+1 {
		return next, true
	}
	return extract.ArmorRecord{}, false
}

func pairNames(source names.Source, slot layout.Slot, r, next extract.ArmorRecord) []string {
	first := source.ArmorNames(slot, r.ModelMale, r.ModelFemale)
	second := source.ArmorNames(slot, next.ModelMale, next.ModelFemale)
	if len(second) > 0 && !slices.Equal(first, second) {
		return append(append([]string{}, first...), second...)
	}
	return first
}

// mergeSets merges sets with identical variant model tuples, the same
// armor listed at multiple equip ids is one visual identity.
func mergeSets(sets []ArmorSet) []ArmorSet {
	merged := make([]ArmorSet, 0, len(sets))
	index := map[variantKey]int{}

	for _, set := range sets {
		key := keyOf(set.Variants)
		at, ok := index[key]
		if !ok {
			index[key] = len(merged)
			merged = append(merged, set)
			continue
		}
		for vi := range set.Variants {
			existing := &merged[at].Variants[vi]
			existing.EquipIDs = append(existing.EquipIDs, set.Variants[vi].EquipIDs...)
		}
	}
	return merged
}

// GroupWeapons groups raw weapon records by model id into one set per
// visual model family, ordered by model id.
func GroupWeapons(records []extract.WeaponRecord, source names.Source) []WeaponSet {
	byModel := map[uint16][]uint32{}
	var order []uint16
	for _, r := range records {
		if _, ok := byModel[r.ModelID]; !ok {
			order = append(order, r.ModelID)
		}
		byModel[r.ModelID] = append(byModel[r.ModelID], r.Index)
	}
	slices.Sort(order)

	sets := make([]WeaponSet, 0, len(order))
	for _, model := range order {
		setNames, weaponType := source.WeaponNames(model)
		sets = append(sets, WeaponSet{
			ModelID: model,
			Names:   setNames,
			Entries: sortedEntries(byModel[model]),
			Type:    weaponType,
		})
	}
	return sets
}
