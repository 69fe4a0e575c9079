package extract

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/retroenv/psptransmog/internal/layout"
	"github.com/retroenv/psptransmog/internal/memimage"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

const testBase = 0x08000000

// testLayout builds a small layout over a 4KB image: pointer table at
// +0x000, armor tables at +0x100..., weapon table at +0x800.
func testLayout() layout.Layout {
	armorFields := map[string]layout.Field{
		layout.FieldModelMale:   {Offset: 0, Width: 2, Signed: true},
		layout.FieldModelFemale: {Offset: 2, Width: 2, Signed: true},
		layout.FieldVariantFlag: {Offset: 4, Width: 1},
	}
	tables := map[layout.Slot]layout.ArmorTable{}
	for i, slot := range layout.Slots() {
		tables[slot] = layout.ArmorTable{
			Base:       testBase + 0x100 + uint32(i)*0x100,
			EntryCount: 4,
		}
	}

	return layout.Layout{
		ExternalBase: 0x08800000,
		PointerTable: layout.PointerTable{Address: testBase, Slots: []int{1, 2, 3, 4, 5}},
		Weapon: layout.WeaponTable{
			Base:       testBase + 0x800,
			EntrySize:  24,
			EntryCount: 16,
			Fields: map[string]layout.Field{
				layout.FieldModel:  {Offset: 16, Width: 2},
				layout.FieldAttack: {Offset: 2, Width: 2},
			},
		},
		Armor: layout.ArmorTables{
			EntrySize: 8,
			Fields:    armorFields,
			Tables:    tables,
		},
	}
}

func putArmorEntry(data []byte, offset int, male, female int16, flag uint8) {
	binary.LittleEndian.PutUint16(data[offset:], uint16(male))
	binary.LittleEndian.PutUint16(data[offset+2:], uint16(female))
	data[offset+4] = flag
}

func putWeaponEntry(data []byte, offset int, model, attack uint16) {
	binary.LittleEndian.PutUint16(data[offset+16:], model)
	binary.LittleEndian.PutUint16(data[offset+2:], attack)
}

func testImage(t *testing.T) *memimage.Image {
	t.Helper()
	data := make([]byte, 0x1000)

	// pointer table entry 1 points at the head table
	binary.LittleEndian.PutUint32(data[4:], testBase+0x100)

	// head table: BM/GN pair plus a sentinel at entry 0
	putArmorEntry(data, 0x100, 0, 0, 0)
	putArmorEntry(data, 0x108, 5, 6, 0x07)
	putArmorEntry(data, 0x110, 7, 8, 0x0B)
	putArmorEntry(data, 0x118, 9, -1, 0x0F)

	// legs table: one entry then trailing zeros to exercise trimming
	putArmorEntry(data, 0x500, 3, 4, 0x0F)

	// weapon table: three entries, then an implausible one ending the scan
	putWeaponEntry(data, 0x800, 21, 100)
	putWeaponEntry(data, 0x818, 21, 120)
	putWeaponEntry(data, 0x830, 242, 90)
	putWeaponEntry(data, 0x848, 5000, 100)

	img, err := memimage.New(testBase, data)
	assert.NoError(t, err)
	return img
}

func TestRun(t *testing.T) {
	logger := log.NewTestLogger(t)
	e := New(logger, testImage(t), testLayout())

	result, err := e.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, len(result.Failed))

	head := result.Armor[layout.Head]
	assert.Equal(t, 4, len(head))
	assert.Equal(t, uint32(1), head[1].EquipID)
	assert.Equal(t, int16(5), head[1].ModelMale)
	assert.Equal(t, int16(6), head[1].ModelFemale)
	assert.Equal(t, uint8(0x07), head[1].VariantFlag)
	assert.Equal(t, uint8(0x0B), head[2].VariantFlag)
	assert.Equal(t, int16(-1), head[3].ModelFemale)

	// trailing zero entries of the legs table are trimmed
	legs := result.Armor[layout.Legs]
	assert.Equal(t, 1, len(legs))
	assert.Equal(t, int16(3), legs[0].ModelMale)

	// weapon scan stops at the implausible entry
	assert.Equal(t, 3, len(result.Weapons))
	assert.Equal(t, uint16(21), result.Weapons[0].ModelID)
	assert.Equal(t, uint16(100), result.Weapons[0].Attack)
	assert.Equal(t, uint32(2), result.Weapons[2].Index)
	assert.Equal(t, uint16(242), result.Weapons[2].ModelID)
}

func TestPointerIndirection(t *testing.T) {
	logger := log.NewTestLogger(t)
	l := testLayout()
	slot := 1
	l.Armor.Tables[layout.Head] = layout.ArmorTable{PointerSlot: &slot, EntryCount: 4}

	e := New(logger, testImage(t), l)
	result, err := e.Run(context.Background())
	assert.NoError(t, err)

	// resolved through the pointer table to the same head table
	head := result.Armor[layout.Head]
	assert.Equal(t, 4, len(head))
	assert.Equal(t, int16(5), head[1].ModelMale)
	assert.Equal(t, uint32(testBase+0x100), result.ArmorBases[layout.Head])
}

func TestPointerSlotOffAllowList(t *testing.T) {
	logger := log.NewTestLogger(t)
	l := testLayout()
	slot := 0
	l.Armor.Tables[layout.Head] = layout.ArmorTable{PointerSlot: &slot, EntryCount: 4}

	e := New(logger, testImage(t), l)
	result, err := e.Run(context.Background())
	assert.NoError(t, err)

	failed, ok := result.Failed["head"]
	assert.True(t, ok)
	var unresolved *UnresolvedPointerError
	assert.True(t, errors.As(failed, &unresolved))
	assert.Equal(t, 0, unresolved.Slot)
}

func TestTableFailureIsIsolated(t *testing.T) {
	logger := log.NewTestLogger(t)
	l := testLayout()
	l.Armor.Tables[layout.Chest] = layout.ArmorTable{
		Base:       testBase + 0x10000, // outside the image
		EntryCount: 4,
	}

	e := New(logger, testImage(t), l)
	result, err := e.Run(context.Background())
	assert.NoError(t, err)

	_, ok := result.Failed["chest"]
	assert.True(t, ok)
	var oob *memimage.OutOfBoundsError
	assert.True(t, errors.As(result.Failed["chest"], &oob))

	// the other tables still extracted
	assert.Equal(t, 4, len(result.Armor[layout.Head]))
	assert.Equal(t, 3, len(result.Weapons))
	_, ok = result.Armor[layout.Chest]
	assert.False(t, ok)
}
