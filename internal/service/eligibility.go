package service

import (
	"fmt"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/internal/util"

	"gorm.io/gorm"
)

// EligibilityResolver 判断角色本周能否参与某个副本
type EligibilityResolver struct {
	Raids  *repository.RaidRepository
	Weekly *repository.WeeklyCompletionRepository
}

func NewEligibilityResolver(raids *repository.RaidRepository, weekly *repository.WeeklyCompletionRepository) *EligibilityResolver {
	return &EligibilityResolver{Raids: raids, Weekly: weekly}
}

func (e *EligibilityResolver) WithTx(tx *gorm.DB) *EligibilityResolver {
	return &EligibilityResolver{Raids: e.Raids, Weekly: e.Weekly.WithTx(tx)}
}

// GroupRaidIDs 返回同组所有难度的副本 ID（包括自身）
func (e *EligibilityResolver) GroupRaidIDs(raid *model.Raid) ([]uint, error) {
	group, err := e.Raids.FindByGroup(raid.RaidGroup)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(group))
	for _, r := range group {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (e *EligibilityResolver) otherDifficultyIDs(raid *model.Raid) ([]uint, error) {
	ids, err := e.GroupRaidIDs(raid)
	if err != nil {
		return nil, err
	}
	others := ids[:0]
	for _, id := range ids {
		if id != raid.ID {
			others = append(others, id)
		}
	}
	return others, nil
}

// CheckItemLevel 装等不足时返回 ErrNotEligible
func (e *EligibilityResolver) CheckItemLevel(character *model.Character, raid *model.Raid) error {
	if character.ItemLevel < raid.RequiredItemLevel {
		return fmt.Errorf("%w: %s (%.2f) is below %s requirement %.2f",
			util.ErrNotEligible, character.Name, character.ItemLevel, raid.Name, raid.RequiredItemLevel)
	}
	return nil
}

// CheckGate 本周已在同组其他难度通关同一关卡时返回 ErrCrossDifficultyConflict
func (e *EligibilityResolver) CheckGate(characterID uint, raid *model.Raid, gateNumber int, week model.WeekKey) error {
	others, err := e.otherDifficultyIDs(raid)
	if err != nil {
		return err
	}
	conflict, err := e.Weekly.CompletedGateExists(characterID, week, others, gateNumber)
	if err != nil {
		return err
	}
	if conflict {
		return fmt.Errorf("%w: %s gate %d", util.ErrCrossDifficultyConflict, raid.RaidGroup, gateNumber)
	}
	return nil
}

// BlockedCharacters 本周已在同组任意难度有进度的角色
func (e *EligibilityResolver) BlockedCharacters(raid *model.Raid, week model.WeekKey) (map[uint]struct{}, error) {
	ids, err := e.GroupRaidIDs(raid)
	if err != nil {
		return nil, err
	}
	completed, err := e.Weekly.CompletedCharacterIDs(ids, week)
	if err != nil {
		return nil, err
	}
	blocked := make(map[uint]struct{}, len(completed))
	for _, id := range completed {
		blocked[id] = struct{}{}
	}
	return blocked, nil
}
