package codegen

import (
	"fmt"

	"github.com/retroenv/psptransmog/internal/equip"
)

// Policy selects how source variants map onto target variants. The
// branching lives in one decision table so every edge case is testable
// on its own.
type Policy struct {
	// Invisible overrides every source variant with the (0,0) model pair.
	Invisible bool
	// ForcedVariant maps all source variants onto this target variant
	// index, -1 disables forcing.
	ForcedVariant int
	// SwapGender exchanges which half-word receives which gender model.
	SwapGender bool
}

// DefaultPolicy returns the policy for a plain substitution.
func DefaultPolicy() Policy {
	return Policy{ForcedVariant: -1}
}

// targetVariant resolves the target variant for source variant index i.
// Decision order:
//  1. invisible target: model pair (0,0) for every source variant
//  2. forced variant: the same target variant for every source variant
//  3. index pairing: target variant i, falling back to variant 0 when the
//     target has fewer variants than the source (observed behavior of the
//     original tables, most sets have one or two variants)
func (p Policy) targetVariant(target *equip.ArmorSet, i int) (equip.Variant, error) {
	if p.Invisible {
		return equip.Variant{}, nil
	}

	variants := target.Variants
	if len(variants) == 0 {
		return equip.Variant{}, fmt.Errorf("%w: target set has no variants", ErrEmptySelection)
	}

	if p.ForcedVariant >= 0 {
		if p.ForcedVariant >= len(variants) {
			return equip.Variant{}, fmt.Errorf("forced variant %d out of range, target has %d variants",
				p.ForcedVariant, len(variants))
		}
		return variants[p.ForcedVariant], nil
	}

	if i < len(variants) {
		return variants[i], nil
	}
	return variants[0], nil
}
