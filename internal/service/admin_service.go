package service

import (
	"context"
	"errors"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/internal/util"
	"raid_checker_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AdminService struct {
	Accounts   *repository.AccountRepository
	Characters *repository.CharacterRepository
	Weekly     *repository.WeeklyCompletionRepository
	Parties    *repository.PartyCompletionRepository
	Ledger     *LedgerService
	Character  *CharacterService
	Schedule   *ResetSchedule
}

func NewAdminService(
	accounts *repository.AccountRepository,
	characters *repository.CharacterRepository,
	weekly *repository.WeeklyCompletionRepository,
	parties *repository.PartyCompletionRepository,
	ledger *LedgerService,
	character *CharacterService,
	schedule *ResetSchedule,
) *AdminService {
	return &AdminService{
		Accounts:   accounts,
		Characters: characters,
		Weekly:     weekly,
		Parties:    parties,
		Ledger:     ledger,
		Character:  character,
		Schedule:   schedule,
	}
}

type SystemStats struct {
	WeekKey           model.WeekKey `json:"weekKey"`
	TotalAccounts     int64         `json:"totalAccounts"`
	TotalCharacters   int64         `json:"totalCharacters"`
	WeeklyCompletions int64         `json:"weeklyCompletions"`
	CompletedGates    int64         `json:"completedGates"`
	PartyCompletions  int64         `json:"partyCompletions"`
}

type AccountStats struct {
	ID             uint              `json:"id"`
	Username       string            `json:"username"`
	Role           model.AccountRole `json:"role"`
	CreatedAt      time.Time         `json:"createdAt"`
	CharacterCount int               `json:"characterCount"`
	WeeklyGold     int               `json:"weeklyGold"`
}

type PartyHistoryEntry struct {
	CompletedParty
	Members string `json:"members"`
}

type PurgeResult struct {
	WeekKey           model.WeekKey `json:"weekKey"`
	WeeklyCompletions int64         `json:"weeklyCompletions"`
	PartyCompletions  int64         `json:"partyCompletions"`
}

func (s *AdminService) Stats() (*SystemStats, error) {
	week := s.Schedule.Current()
	stats := &SystemStats{WeekKey: week}
	var err error
	if stats.TotalAccounts, err = s.Accounts.Count(); err != nil {
		return nil, err
	}
	if stats.TotalCharacters, err = s.Characters.Count(); err != nil {
		return nil, err
	}
	if stats.WeeklyCompletions, err = s.Weekly.CountByWeek(week); err != nil {
		return nil, err
	}
	if stats.CompletedGates, err = s.Weekly.CountCompletedGates(week); err != nil {
		return nil, err
	}
	if stats.PartyCompletions, err = s.Parties.CountByWeek(week); err != nil {
		return nil, err
	}
	return stats, nil
}

// ListAccounts 列出所有账号及其角色数和本周金币
func (s *AdminService) ListAccounts(ctx context.Context) ([]AccountStats, error) {
	accounts, err := s.Accounts.List()
	if err != nil {
		return nil, err
	}
	result := make([]AccountStats, 0, len(accounts))
	for _, a := range accounts {
		characters, err := s.Characters.FindByAccount(a.ID)
		if err != nil {
			return nil, err
		}
		row := AccountStats{
			ID:             a.ID,
			Username:       a.Username,
			Role:           a.Role,
			CreatedAt:      a.CreatedAt,
			CharacterCount: len(characters),
		}
		for _, c := range characters {
			gold, err := s.Ledger.GetTotalGold(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			row.WeeklyGold += gold
		}
		result = append(result, row)
	}
	return result, nil
}

// PartyHistory 所有周的组队记录，最新的在前
func (s *AdminService) PartyHistory() ([]PartyHistoryEntry, error) {
	parties, err := s.Parties.ListAll()
	if err != nil {
		return nil, err
	}
	history := make([]PartyHistoryEntry, 0, len(parties))
	for i := range parties {
		view := toCompletedParty(&parties[i])
		history = append(history, PartyHistoryEntry{CompletedParty: view, Members: describeParty(&view)})
	}
	return history, nil
}

// DeleteAccount 删除普通账号及其全部角色，管理员账号不可删除
func (s *AdminService) DeleteAccount(id uint) error {
	account, err := s.Accounts.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrAccountNotFound
	}
	if err != nil {
		return err
	}
	if account.Role == model.Master {
		return util.ErrPermissionDenied
	}
	// 角色、账本和账号在同一个事务里删除
	err = s.Accounts.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Characters.WithTx(tx).DeleteByAccount(id); err != nil {
			return err
		}
		return s.Accounts.WithTx(tx).Delete(id)
	})
	if err != nil {
		return err
	}
	logger.Log.Info("Account deleted", zap.Uint("account_id", id), zap.String("username", account.Username))
	return nil
}

// PurgeCurrentWeek 清空本周的账本和组队记录
func (s *AdminService) PurgeCurrentWeek() (*PurgeResult, error) {
	week := s.Schedule.Current()
	parties, err := s.Parties.DeleteWeek(week)
	if err != nil {
		return nil, err
	}
	weekly, err := s.Weekly.DeleteWeek(week)
	if err != nil {
		return nil, err
	}
	logger.Log.Warn("Current week purged",
		zap.String("week_key", string(week)),
		zap.Int64("weekly_completions", weekly),
		zap.Int64("party_completions", parties))
	return &PurgeResult{WeekKey: week, WeeklyCompletions: weekly, PartyCompletions: parties}, nil
}

func (s *AdminService) SyncAccount(ctx context.Context, accountID uint) (int, error) {
	return s.Character.SyncAccountCharacters(ctx, accountID)
}
