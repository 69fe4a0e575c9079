// Package extract walks the raw equipment tables of a memory image and
// emits typed records. No grouping or filtering happens here, every raw
// entry is handed to the grouping phase.
package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/retroenv/psptransmog/internal/layout"
	"github.com/retroenv/psptransmog/internal/memimage"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// ArmorRecord is one raw armor table entry.
type ArmorRecord struct {
	Slot        layout.Slot
	EquipID     uint32
	ModelMale   int16
	ModelFemale int16
	VariantFlag uint8
}

// WeaponRecord is one raw weapon table entry.
type WeaponRecord struct {
	Index   uint32
	ModelID uint16
	Attack  uint16
}

// Result holds all extracted records plus per-table failures. A failed
// table aborts extraction for that table only, other tables proceed.
type Result struct {
	Armor   map[layout.Slot][]ArmorRecord
	Weapons []WeaponRecord
	Failed  map[string]error

	// ArmorBases holds the resolved table base address per extracted
	// slot, including bases read through the pointer table.
	ArmorBases map[layout.Slot]uint32
}

// UnresolvedPointerError is returned when a pointer-table slot does not
// resolve to a usable table base address.
type UnresolvedPointerError struct {
	Slot    int
	Address uint32
	Reason  string
}

func (e *UnresolvedPointerError) Error() string {
	return fmt.Sprintf("pointer table slot %d at 0x%08X: %s", e.Slot, e.Address, e.Reason)
}

// End-of-table heuristics for the weapon scan, carried over from the
// reverse engineered table bounds.
const (
	maxWeaponModel  = 1000
	maxWeaponAttack = 2000
)

// Extractor reads the equipment tables declared by a layout from an image.
type Extractor struct {
	logger *log.Logger
	img    *memimage.Image
	layout layout.Layout
}

// New creates a table extractor.
func New(logger *log.Logger, img *memimage.Image, l layout.Layout) *Extractor {
	return &Extractor{
		logger: logger,
		img:    img,
		layout: l,
	}
}

// Run extracts all declared tables. Tables touch disjoint ranges of the
// read-only image and are walked concurrently. Per-table errors are
// collected in the result, only a cancelled context fails the run.
func (e *Extractor) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		Armor:      map[layout.Slot][]ArmorRecord{},
		Failed:     map[string]error{},
		ArmorBases: map[layout.Slot]uint32{},
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)

	for _, slot := range layout.Slots() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			base, records, err := e.armorTable(slot)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.Error("Armor table extraction failed",
					log.String("table", string(slot)), log.Err(err))
				result.Failed[string(slot)] = err
				return nil
			}
			result.Armor[slot] = records
			result.ArmorBases[slot] = base
			return nil
		})
	}

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		records, err := e.weaponTable()

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			e.logger.Error("Weapon table extraction failed", log.Err(err))
			result.Failed["weapon"] = err
			return nil
		}
		result.Weapons = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extracting tables: %w", err)
	}
	return result, nil
}

// resolveArmorBase returns the table base address, reading it through the
// pointer table when the layout declares an indirection.
func (e *Extractor) resolveArmorBase(table layout.ArmorTable) (uint32, error) {
	if table.PointerSlot == nil {
		return table.Base, nil
	}

	slot := *table.PointerSlot
	address := e.layout.PointerTable.Address + uint32(slot)*4
	if !e.layout.AllowsPointerSlot(slot) {
		return 0, &UnresolvedPointerError{
			Slot:    slot,
			Address: address,
			Reason:  "slot holds a flag word, not a pointer",
		}
	}

	base, err := e.img.ReadU32(address)
	if err != nil {
		return 0, fmt.Errorf("reading pointer table: %w", err)
	}
	if !e.img.Contains(base) {
		return 0, &UnresolvedPointerError{
			Slot:    slot,
			Address: address,
			Reason:  fmt.Sprintf("pointer value 0x%08X outside image", base),
		}
	}
	return base, nil
}

func (e *Extractor) armorTable(slot layout.Slot) (uint32, []ArmorRecord, error) {
	table := e.layout.Armor.Tables[slot]
	base, err := e.resolveArmorBase(table)
	if err != nil {
		return 0, nil, err
	}

	fields := e.layout.Armor.Fields
	entrySize := e.layout.Armor.EntrySize
	records := make([]ArmorRecord, 0, table.EntryCount)

	for eid := uint32(0); eid < table.EntryCount; eid++ {
		entry := base + eid*entrySize

		modelMale, err := e.readField(entry, fields[layout.FieldModelMale])
		if err != nil {
			return 0, nil, fmt.Errorf("entry %d at 0x%08X: %w", eid, entry, err)
		}
		modelFemale, err := e.readField(entry, fields[layout.FieldModelFemale])
		if err != nil {
			return 0, nil, fmt.Errorf("entry %d at 0x%08X: %w", eid, entry, err)
		}
		flag, err := e.readField(entry, fields[layout.FieldVariantFlag])
		if err != nil {
			return 0, nil, fmt.Errorf("entry %d at 0x%08X: %w", eid, entry, err)
		}

		records = append(records, ArmorRecord{
			Slot:        slot,
			EquipID:     eid,
			ModelMale:   int16(modelMale),
			ModelFemale: int16(modelFemale),
			VariantFlag: uint8(flag),
		})
	}

	// The last table has no successor to bound it, trim the trailing
	// all-zero entries instead.
	if slot == layout.Legs {
		records = trimTrailingZero(records)
	}

	e.logger.Debug("Extracted armor table",
		log.String("table", string(slot)),
		log.Int("entries", len(records)))
	return base, records, nil
}

func (e *Extractor) weaponTable() ([]WeaponRecord, error) {
	table := e.layout.Weapon
	var records []WeaponRecord

	for i := uint32(0); i < table.EntryCount; i++ {
		entry := table.Base + i*table.EntrySize
		if !e.img.Contains(entry + table.EntrySize - 1) {
			break
		}

		model, err := e.readField(entry, table.Fields[layout.FieldModel])
		if err != nil {
			return nil, fmt.Errorf("entry %d at 0x%08X: %w", i, entry, err)
		}
		attack, err := e.readField(entry, table.Fields[layout.FieldAttack])
		if err != nil {
			return nil, fmt.Errorf("entry %d at 0x%08X: %w", i, entry, err)
		}

		// End of table: implausible model or attack values.
		if model > maxWeaponModel || attack == 0 || attack > maxWeaponAttack {
			break
		}

		records = append(records, WeaponRecord{
			Index:   i,
			ModelID: uint16(model),
			Attack:  uint16(attack),
		})
	}

	e.logger.Debug("Extracted weapon table", log.Int("entries", len(records)))
	return records, nil
}

func (e *Extractor) readField(entry uint32, field layout.Field) (int64, error) {
	return e.img.ReadInt(entry+field.Offset, field.Width, field.Signed)
}

func trimTrailingZero(records []ArmorRecord) []ArmorRecord {
	end := len(records)
	for end > 0 {
		r := records[end-1]
		if r.ModelMale != 0 || r.ModelFemale != 0 || r.VariantFlag != 0 {
			break
		}
		end--
	}
	return records[:end]
}
