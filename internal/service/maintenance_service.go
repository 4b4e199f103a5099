package service

import (
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/pkg/logger"

	"go.uber.org/zap"
)

// MaintenanceService 清理超过保留期的历史账本，不会动本周数据
type MaintenanceService struct {
	Weekly         *repository.WeeklyCompletionRepository
	Parties        *repository.PartyCompletionRepository
	Schedule       *ResetSchedule
	RetentionWeeks int
}

func NewMaintenanceService(weekly *repository.WeeklyCompletionRepository, parties *repository.PartyCompletionRepository, schedule *ResetSchedule, retentionWeeks int) *MaintenanceService {
	return &MaintenanceService{
		Weekly:         weekly,
		Parties:        parties,
		Schedule:       schedule,
		RetentionWeeks: retentionWeeks,
	}
}

// PruneExpired 删除保留期之前的记录，返回删除的周记录和组队记录数量
func (s *MaintenanceService) PruneExpired() (int64, int64, error) {
	if s.RetentionWeeks <= 0 {
		return 0, 0, nil
	}
	cutoff := s.Schedule.WeeksAgo(s.RetentionWeeks)

	parties, err := s.Parties.DeleteBeforeWeek(cutoff)
	if err != nil {
		return 0, 0, err
	}
	weekly, err := s.Weekly.DeleteBeforeWeek(cutoff)
	if err != nil {
		return 0, parties, err
	}
	if weekly > 0 || parties > 0 {
		logger.Log.Info("Expired ledger rows pruned",
			zap.String("cutoff", string(cutoff)),
			zap.Int64("weekly_completions", weekly),
			zap.Int64("party_completions", parties))
	}
	return weekly, parties, nil
}
