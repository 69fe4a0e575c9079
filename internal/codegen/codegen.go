// Package codegen compiles equipment substitutions into memory patch
// instructions. Only the visual model fields of the tables are ever
// addressed, stat fields stay untouched.
package codegen

import (
	"errors"
	"fmt"
	"math"

	"github.com/retroenv/psptransmog/internal/equip"
	"github.com/retroenv/psptransmog/internal/layout"
)

// Width of a patch write.
type Width uint8

// Patch write widths.
const (
	Byte Width = iota
	Half
	Word
)

// Mask returns the value mask of the width.
func (w Width) Mask() uint32 {
	switch w {
	case Byte:
		return 0xFF
	case Half:
		return 0xFFFF
	default:
		return 0xFFFFFFFF
	}
}

// Instruction is one memory patch write at an absolute address. The value
// is always masked to the declared width.
type Instruction struct {
	Address uint32
	Width   Width
	Value   uint32
}

// NewInstruction creates an instruction with the value masked to width.
func NewInstruction(address uint32, width Width, value uint32) Instruction {
	return Instruction{
		Address: address,
		Width:   width,
		Value:   value & width.Mask(),
	}
}

// ErrEmptySelection is returned when generation is requested without a
// usable source or target.
var ErrEmptySelection = errors.New("empty selection")

// Generator compiles substitution requests against an immutable catalog.
type Generator struct {
	catalog *equip.Catalog
}

// New creates a generator for the catalog.
func New(catalog *equip.Catalog) *Generator {
	return &Generator{catalog: catalog}
}

// WeaponCodes emits one half-word model override per source table entry.
// Any upgrade tier of the source family may be the equipped one, so every
// entry is patched.
func (g *Generator) WeaponCodes(source, target equip.WeaponSet) ([]Instruction, error) {
	if len(source.Entries) == 0 {
		return nil, fmt.Errorf("%w: source weapon has no table entries", ErrEmptySelection)
	}

	base := uint32(g.catalog.WeaponTableBase)
	instructions := make([]Instruction, 0, len(source.Entries))
	for _, index := range source.Entries {
		address, err := entryAddress(base, index, g.catalog.WeaponEntrySize, g.catalog.WeaponModelOffset)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions,
			NewInstruction(address, Half, uint32(target.ModelID)))
	}
	return instructions, nil
}

// ArmorCodes emits one word-sized model pair override per equip id of
// every source variant. The target variant and gender ordering are chosen
// by the policy decision table.
func (g *Generator) ArmorCodes(slot layout.Slot, source equip.ArmorSet,
	target *equip.ArmorSet, policy Policy) ([]Instruction, error) {

	if len(source.Variants) == 0 {
		return nil, fmt.Errorf("%w: source set has no variants", ErrEmptySelection)
	}
	if target == nil && !policy.Invisible {
		return nil, fmt.Errorf("%w: no target set selected", ErrEmptySelection)
	}

	slotCatalog, ok := g.catalog.Armor[slot]
	if !ok {
		return nil, fmt.Errorf("no catalog data for slot %s", slot)
	}
	base := uint32(slotCatalog.TableBase)

	var instructions []Instruction
	for vi, sourceVariant := range source.Variants {
		targetVariant, err := policy.targetVariant(target, vi)
		if err != nil {
			return nil, err
		}
		value := packModels(targetVariant.ModelMale, targetVariant.ModelFemale, policy.SwapGender)

		for _, eid := range sourceVariant.EquipIDs {
			address, err := entryAddress(base, eid, g.catalog.ArmorEntrySize, 0)
			if err != nil {
				return nil, err
			}
			instructions = append(instructions, NewInstruction(address, Word, value))
		}
	}
	return instructions, nil
}

// InvisibleSlot emits a slot wide override hiding every equipment set of
// the slot, regardless of what is currently equipped. Sets that already
// render nothing are skipped.
func (g *Generator) InvisibleSlot(slot layout.Slot) ([]Instruction, error) {
	slotCatalog, ok := g.catalog.Armor[slot]
	if !ok {
		return nil, fmt.Errorf("no catalog data for slot %s", slot)
	}
	base := uint32(slotCatalog.TableBase)

	var instructions []Instruction
	for _, set := range slotCatalog.Sets {
		if set.IsBlank() {
			continue
		}
		for _, variant := range set.Variants {
			for _, eid := range variant.EquipIDs {
				address, err := entryAddress(base, eid, g.catalog.ArmorEntrySize, 0)
				if err != nil {
					return nil, err
				}
				instructions = append(instructions, NewInstruction(address, Word, 0))
			}
		}
	}
	return instructions, nil
}

// entryAddress computes a table entry field address, rejecting catalogs
// whose entry indices would place the write outside the address space.
func entryAddress(base, index, entrySize, fieldOffset uint32) (uint32, error) {
	address := uint64(base) + uint64(index)*uint64(entrySize) + uint64(fieldOffset)
	if address > math.MaxUint32 {
		return 0, fmt.Errorf("entry %d at base 0x%08X lies outside the address space", index, base)
	}
	return uint32(address), nil
}

// packModels packs a variant model pair into the word layout of an armor
// table entry: female model in the high half, male model in the low half.
// swapGender exchanges which physical character gender shows which model.
func packModels(male, female int16, swapGender bool) uint32 {
	if swapGender {
		male, female = female, male
	}
	return uint32(uint16(female))<<16 | uint32(uint16(male))
}
