package service

import (
	"errors"
	"math"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/internal/util"

	"gorm.io/gorm"
)

// AccountService 汇总账号下所有角色本周的进度
type AccountService struct {
	Accounts   *repository.AccountRepository
	Characters *repository.CharacterRepository
	Raids      *repository.RaidRepository
	Weekly     *repository.WeeklyCompletionRepository
	Schedule   *ResetSchedule
}

func NewAccountService(
	accounts *repository.AccountRepository,
	characters *repository.CharacterRepository,
	raids *repository.RaidRepository,
	weekly *repository.WeeklyCompletionRepository,
	schedule *ResetSchedule,
) *AccountService {
	return &AccountService{
		Accounts:   accounts,
		Characters: characters,
		Raids:      raids,
		Weekly:     weekly,
		Schedule:   schedule,
	}
}

type CharacterSummary struct {
	ID             uint    `json:"id"`
	CharacterName  string  `json:"characterName"`
	ClassName      string  `json:"className"`
	ItemLevel      float64 `json:"itemLevel"`
	GoldPriority   int     `json:"goldPriority"`
	EarnedGold     int     `json:"earnedGold"`
	CompletedCount int     `json:"completedCount"`
	TotalRaidCount int     `json:"totalRaidCount"`
	CompletionRate float64 `json:"completionRate"`
}

type AccountSummary struct {
	WeekKey    model.WeekKey      `json:"weekKey"`
	Characters []CharacterSummary `json:"characters"`
	TotalGold  int                `json:"totalGold"`
}

type CharacterRaidStatus struct {
	CharacterID   uint   `json:"characterId"`
	CharacterName string `json:"characterName"`
	Available     bool   `json:"available"`
	Completed     bool   `json:"completed"`
	EarnedGold    int    `json:"earnedGold"`
}

type RaidComparisonRow struct {
	RaidID            uint                  `json:"raidId"`
	RaidName          string                `json:"raidName"`
	Difficulty        model.Difficulty      `json:"difficulty"`
	RequiredItemLevel float64               `json:"requiredItemLevel"`
	RewardGold        int                   `json:"rewardGold"`
	Characters        []CharacterRaidStatus `json:"characters"`
}

func (s *AccountService) characters(accountID uint) ([]model.Character, error) {
	if _, err := s.Accounts.FindByID(accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAccountNotFound
		}
		return nil, err
	}
	return s.Characters.FindByAccount(accountID)
}

// weekByCharacter 按角色和副本索引本周记录
func (s *AccountService) weekByCharacter(characters []model.Character) (map[uint]map[uint]model.WeeklyCompletion, error) {
	ids := make([]uint, 0, len(characters))
	for _, c := range characters {
		ids = append(ids, c.ID)
	}
	rows, err := s.Weekly.FindByCharactersWeek(ids, s.Schedule.Current())
	if err != nil {
		return nil, err
	}
	index := make(map[uint]map[uint]model.WeeklyCompletion, len(characters))
	for _, wc := range rows {
		if index[wc.CharacterID] == nil {
			index[wc.CharacterID] = make(map[uint]model.WeeklyCompletion)
		}
		index[wc.CharacterID][wc.RaidID] = wc
	}
	return index, nil
}

// Summary 统计每个角色本周进度，账号总金币不计入金币优先级超过上限的角色
func (s *AccountService) Summary(accountID uint) (*AccountSummary, error) {
	characters, err := s.characters(accountID)
	if err != nil {
		return nil, err
	}
	week, err := s.weekByCharacter(characters)
	if err != nil {
		return nil, err
	}

	summary := &AccountSummary{
		WeekKey:    s.Schedule.Current(),
		Characters: make([]CharacterSummary, 0, len(characters)),
	}
	for i := range characters {
		c := &characters[i]
		row := CharacterSummary{
			ID:            c.ID,
			CharacterName: c.Name,
			ClassName:     c.ClassName,
			ItemLevel:     c.ItemLevel,
			GoldPriority:  c.GoldPriority,
		}
		for _, wc := range week[c.ID] {
			row.TotalRaidCount++
			if wc.Completed {
				row.CompletedCount++
				row.EarnedGold += wc.EarnedGold
			}
		}
		if row.TotalRaidCount > 0 {
			rate := float64(row.CompletedCount) * 100 / float64(row.TotalRaidCount)
			row.CompletionRate = math.Round(rate*10) / 10
		}
		if c.CountsTowardGold() {
			summary.TotalGold += row.EarnedGold
		}
		summary.Characters = append(summary.Characters, row)
	}
	return summary, nil
}

// RaidComparison 副本 × 角色 对照表
func (s *AccountService) RaidComparison(accountID uint) ([]RaidComparisonRow, error) {
	characters, err := s.characters(accountID)
	if err != nil {
		return nil, err
	}
	raids, err := s.Raids.FindAll()
	if err != nil {
		return nil, err
	}
	week, err := s.weekByCharacter(characters)
	if err != nil {
		return nil, err
	}

	rows := make([]RaidComparisonRow, 0, len(raids))
	for _, raid := range raids {
		row := RaidComparisonRow{
			RaidID:            raid.ID,
			RaidName:          raid.Name,
			Difficulty:        raid.Difficulty,
			RequiredItemLevel: raid.RequiredItemLevel,
			RewardGold:        raid.RewardGold,
			Characters:        make([]CharacterRaidStatus, 0, len(characters)),
		}
		for _, c := range characters {
			status := CharacterRaidStatus{
				CharacterID:   c.ID,
				CharacterName: c.Name,
				Available:     c.ItemLevel >= raid.RequiredItemLevel,
			}
			if wc, ok := week[c.ID][raid.ID]; ok && status.Available && wc.Completed {
				status.Completed = true
				status.EarnedGold = wc.EarnedGold
			}
			row.Characters = append(row.Characters, status)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
