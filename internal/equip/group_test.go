package equip

import (
	"testing"

	"github.com/retroenv/psptransmog/internal/extract"
	"github.com/retroenv/psptransmog/internal/layout"
	"github.com/retroenv/psptransmog/internal/names"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func record(eid uint32, male, female int16, flag uint8) extract.ArmorRecord {
	return extract.ArmorRecord{
		Slot:        layout.Head,
		EquipID:     eid,
		ModelMale:   male,
		ModelFemale: female,
		VariantFlag: flag,
	}
}

func TestGroupArmorPairsBlademasterGunner(t *testing.T) {
	logger := log.NewTestLogger(t)
	records := []extract.ArmorRecord{
		record(0, 0, 0, 0x0F), // sentinel
		record(1, 10, 11, 0x07),
		record(2, 12, 13, 0x0B),
		record(3, 20, 21, 0x0F),
	}

	sets := GroupArmor(logger, layout.Head, records, names.Placeholder{})
	assert.Equal(t, 3, len(sets))

	assert.True(t, sets[0].IsBlank())
	assert.Equal(t, names.NothingEquipped, sets[0].Names[0])

	pair := sets[1]
	assert.Equal(t, 2, len(pair.Variants))
	assert.Equal(t, int16(10), pair.Variants[0].ModelMale)
	assert.Equal(t, int16(13), pair.Variants[1].ModelFemale)
	assert.Equal(t, uint32(1), pair.Variants[0].EquipIDs[0])
	assert.Equal(t, uint32(2), pair.Variants[1].EquipIDs[0])

	single := sets[2]
	assert.Equal(t, 1, len(single.Variants))
	assert.Equal(t, uint32(3), single.Variants[0].EquipIDs[0])
}

func TestGroupArmorPairsConsecutiveUniversal(t *testing.T) {
	logger := log.NewTestLogger(t)

	// two 0x0F entries with consecutive male models pair up
	records := []extract.ArmorRecord{
		record(10, 30, 31, 0x0F),
		record(11, 31, 32, 0x0F),
	}
	sets := GroupArmor(logger, layout.Head, records, names.Placeholder{})
	assert.Equal(t, 1, len(sets))
	assert.Equal(t, 2, len(sets[0].Variants))

	// non-consecutive male models stay separate
	records = []extract.ArmorRecord{
		record(10, 30, 31, 0x0F),
		record(11, 40, 41, 0x0F),
	}
	sets = GroupArmor(logger, layout.Head, records, names.Placeholder{})
	assert.Equal(t, 2, len(sets))
}

func TestGroupArmorKeepsUnknownFlagEntries(t *testing.T) {
	logger := log.NewTestLogger(t)
	records := []extract.ArmorRecord{
		record(5, 50, 51, 0x03), // unknown flag, real models
		record(6, 0, 0, 0x00),   // padding row
	}

	sets := GroupArmor(logger, layout.Head, records, names.Placeholder{})
	assert.Equal(t, 1, len(sets))
	assert.Equal(t, 1, len(sets[0].Variants))
	assert.Equal(t, uint32(5), sets[0].Variants[0].EquipIDs[0])
}

func TestGroupArmorMergesIdenticalModelTuples(t *testing.T) {
	logger := log.NewTestLogger(t)
	records := []extract.ArmorRecord{
		record(1, 10, 11, 0x07),
		record(2, 12, 13, 0x0B),
		record(101, 10, 11, 0x07),
		record(102, 12, 13, 0x0B),
	}

	sets := GroupArmor(logger, layout.Head, records, names.Placeholder{})
	assert.Equal(t, 1, len(sets))
	assert.Equal(t, 2, len(sets[0].Variants))
	assert.Equal(t, 2, len(sets[0].Variants[0].EquipIDs))
	assert.Equal(t, uint32(1), sets[0].Variants[0].EquipIDs[0])
	assert.Equal(t, uint32(101), sets[0].Variants[0].EquipIDs[1])
	assert.Equal(t, uint32(102), sets[0].Variants[1].EquipIDs[1])
}

func TestGroupArmorDeterminism(t *testing.T) {
	logger := log.NewTestLogger(t)
	records := []extract.ArmorRecord{
		record(1, 10, 11, 0x07),
		record(2, 12, 13, 0x0B),
		record(3, 20, 21, 0x0F),
		record(4, 30, 31, 0x03),
	}

	first := GroupArmor(logger, layout.Head, records, names.Placeholder{})
	second := GroupArmor(logger, layout.Head, records, names.Placeholder{})
	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, keyOf(first[i].Variants), keyOf(second[i].Variants))
	}
}

func TestGroupWeapons(t *testing.T) {
	records := []extract.WeaponRecord{
		{Index: 0, ModelID: 21, Attack: 100},
		{Index: 1, ModelID: 21, Attack: 120},
		{Index: 7, ModelID: 242, Attack: 90},
		{Index: 3, ModelID: 21, Attack: 140},
	}

	sets := GroupWeapons(records, names.Placeholder{})
	assert.Equal(t, 2, len(sets))

	katana := sets[0]
	assert.Equal(t, uint16(21), katana.ModelID)
	assert.Equal(t, 3, len(katana.Entries))
	assert.Equal(t, uint32(0), katana.Entries[0])
	assert.Equal(t, uint32(3), katana.Entries[2])

	assert.Equal(t, uint16(242), sets[1].ModelID)
	assert.Equal(t, uint32(7), sets[1].Entries[0])
}
