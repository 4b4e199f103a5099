package database

import (
	"log"
	"raid_checker_backend/internal/model"

	"gorm.io/gorm"
)

type gateSeed struct {
	number, reward, extraCost int
}

type raidSeed struct {
	group      string
	difficulty model.Difficulty
	itemLevel  float64
	partyType  model.PartyType
	gates      []gateSeed
}

var defaultRaids = []raidSeed{
	{"카제로스 2막", model.DifficultyNormal, 1670, model.PartyTypeKazeros, []gateSeed{{1, 5500, 1820}, {2, 11000, 3720}}},
	{"카제로스 2막", model.DifficultyHard, 1690, model.PartyTypeKazeros, []gateSeed{{1, 7500, 2400}, {2, 15500, 5100}}},
	{"카제로스 3막", model.DifficultyNormal, 1680, model.PartyTypeKazeros, []gateSeed{{1, 4000, 1300}, {2, 7000, 2350}, {3, 10000, 3360}}},
	{"카제로스 3막", model.DifficultyHard, 1700, model.PartyTypeKazeros, []gateSeed{{1, 5000, 1650}, {2, 8000, 2640}, {3, 14000, 4060}}},
	{"카제로스 4막", model.DifficultyNormal, 1700, model.PartyTypeKazeros, []gateSeed{{1, 12500, 4000}, {2, 20500, 6560}}},
	{"카제로스 4막", model.DifficultyHard, 1720, model.PartyTypeKazeros, []gateSeed{{1, 15000, 4800}, {2, 27000, 8640}}},
	{"카제로스 종막", model.DifficultyNormal, 1710, model.PartyTypeKazeros, []gateSeed{{1, 14000, 4480}, {2, 26000, 8320}}},
	{"카제로스 종막", model.DifficultyHard, 1730, model.PartyTypeKazeros, []gateSeed{{1, 17000, 5440}, {2, 35000, 11200}}},
	{"세르카", model.DifficultyNormal, 1710, model.PartyTypeShadow, []gateSeed{{1, 14000, 4480}, {2, 21000, 6720}}},
	{"세르카", model.DifficultyHard, 1730, model.PartyTypeShadow, []gateSeed{{1, 17500, 5600}, {2, 26500, 8480}}},
	{"세르카", model.DifficultyNightmare, 1750, model.PartyTypeShadow, []gateSeed{{1, 21000, 6720}, {2, 33000, 10560}}},
}

// DefaultRaids builds the reference raid catalog.
func DefaultRaids() []model.Raid {
	raids := make([]model.Raid, 0, len(defaultRaids))
	for i, s := range defaultRaids {
		raid := model.Raid{
			Name:              s.group,
			RaidGroup:         s.group,
			Difficulty:        s.difficulty,
			RequiredItemLevel: s.itemLevel,
			PartyType:         s.partyType,
			OrderIndex:        i + 1,
		}
		for _, g := range s.gates {
			raid.RewardGold += g.reward
			raid.Gates = append(raid.Gates, model.RaidGate{
				GateNumber: g.number,
				RewardGold: g.reward,
				ExtraCost:  g.extraCost,
			})
		}
		raids = append(raids, raid)
	}
	return raids
}

// SeedRaids inserts the raid catalog when the raids table is empty.
func SeedRaids(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Raid{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	raids := DefaultRaids()
	if err := db.Create(&raids).Error; err != nil {
		return err
	}

	log.Printf("Seeded %d raids", len(raids))
	return nil
}
