package repository

import (
	"database/sql"
	"raid_checker_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WeeklyCompletionRepository struct {
	DB *gorm.DB
}

func NewWeeklyCompletionRepository(db *gorm.DB) *WeeklyCompletionRepository {
	return &WeeklyCompletionRepository{DB: db}
}

func (r *WeeklyCompletionRepository) WithTx(tx *gorm.DB) *WeeklyCompletionRepository {
	return &WeeklyCompletionRepository{DB: tx}
}

func (r *WeeklyCompletionRepository) withGates() *gorm.DB {
	return r.DB.Preload("GateCompletions", func(db *gorm.DB) *gorm.DB {
		return db.Order("gate_number ASC")
	}).Preload("GateCompletions.RaidGate").Preload("Raid")
}

// Create 创建周记录及关卡记录
func (r *WeeklyCompletionRepository) Create(wc *model.WeeklyCompletion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(wc).Error; err != nil {
			return err
		}
		for i := range wc.GateCompletions {
			wc.GateCompletions[i].WeeklyCompletionID = wc.ID
		}
		if len(wc.GateCompletions) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&wc.GateCompletions).Error
	})
}

func (r *WeeklyCompletionRepository) Exists(characterID, raidID uint, week model.WeekKey) (bool, error) {
	var count int64
	err := r.DB.Model(&model.WeeklyCompletion{}).
		Where("character_id = ? AND raid_id = ? AND week_key = ?", characterID, raidID, week).
		Count(&count).Error
	return count > 0, err
}

func (r *WeeklyCompletionRepository) FindByID(id uint) (*model.WeeklyCompletion, error) {
	var wc model.WeeklyCompletion
	err := r.withGates().First(&wc, id).Error
	return &wc, err
}

// FindByCharacterWeek 角色某周的清单，按目录顺序
func (r *WeeklyCompletionRepository) FindByCharacterWeek(characterID uint, week model.WeekKey) ([]model.WeeklyCompletion, error) {
	var list []model.WeeklyCompletion
	err := r.withGates().
		Joins("JOIN raids ON raids.id = weekly_completions.raid_id").
		Where("weekly_completions.character_id = ? AND weekly_completions.week_key = ?", characterID, week).
		Order("raids.order_index ASC, weekly_completions.id ASC").
		Find(&list).Error
	return list, err
}

func (r *WeeklyCompletionRepository) FindByCharacterRaidWeek(characterID, raidID uint, week model.WeekKey) (*model.WeeklyCompletion, error) {
	var wc model.WeeklyCompletion
	err := r.withGates().
		Where("character_id = ? AND raid_id = ? AND week_key = ?", characterID, raidID, week).
		First(&wc).Error
	return &wc, err
}

// FindByCharactersWeek 批量加载多个角色的清单
func (r *WeeklyCompletionRepository) FindByCharactersWeek(characterIDs []uint, week model.WeekKey) ([]model.WeeklyCompletion, error) {
	var list []model.WeeklyCompletion
	if len(characterIDs) == 0 {
		return list, nil
	}
	err := r.DB.Preload("GateCompletions").
		Where("character_id IN ? AND week_key = ?", characterIDs, week).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *WeeklyCompletionRepository) FindGateCompletion(id uint) (*model.GateCompletion, error) {
	var gate model.GateCompletion
	err := r.DB.Preload("RaidGate").First(&gate, id).Error
	return &gate, err
}

func (r *WeeklyCompletionRepository) SaveGate(gate *model.GateCompletion) error {
	return r.DB.Omit(clause.Associations).Save(gate).Error
}

func (r *WeeklyCompletionRepository) SaveWeekly(wc *model.WeeklyCompletion) error {
	return r.DB.Omit(clause.Associations).Save(wc).Error
}

// CompletedGateExists 角色本周是否已在给定副本中通关 gateNumber
func (r *WeeklyCompletionRepository) CompletedGateExists(characterID uint, week model.WeekKey, raidIDs []uint, gateNumber int) (bool, error) {
	if len(raidIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.DB.Model(&model.GateCompletion{}).
		Joins("JOIN weekly_completions ON weekly_completions.id = gate_completions.weekly_completion_id").
		Where("weekly_completions.character_id = ? AND weekly_completions.week_key = ?", characterID, week).
		Where("weekly_completions.raid_id IN ?", raidIDs).
		Where("gate_completions.gate_number = ? AND gate_completions.completed = ?", gateNumber, true).
		Count(&count).Error
	return count > 0, err
}

// NextSeq 角色本周下一次通关的序号
func (r *WeeklyCompletionRepository) NextSeq(characterID uint, week model.WeekKey) (int64, error) {
	var maxSeq sql.NullInt64
	err := r.DB.Model(&model.GateCompletion{}).
		Joins("JOIN weekly_completions ON weekly_completions.id = gate_completions.weekly_completion_id").
		Where("weekly_completions.character_id = ? AND weekly_completions.week_key = ?", characterID, week).
		Select("MAX(gate_completions.completion_seq)").
		Row().Scan(&maxSeq)
	if err != nil {
		return 0, err
	}
	return maxSeq.Int64 + 1, nil
}

// CompletedCharacterIDs 本周在任一给定副本有进度的角色
func (r *WeeklyCompletionRepository) CompletedCharacterIDs(raidIDs []uint, week model.WeekKey) ([]uint, error) {
	var ids []uint
	if len(raidIDs) == 0 {
		return ids, nil
	}
	err := r.DB.Model(&model.WeeklyCompletion{}).
		Where("raid_id IN ? AND week_key = ? AND completed = ?", raidIDs, week, true).
		Distinct().
		Pluck("character_id", &ids).Error
	return ids, err
}

func (r *WeeklyCompletionRepository) FindGatesByParty(partyCompletionID uint) ([]model.GateCompletion, error) {
	var gates []model.GateCompletion
	err := r.DB.Where("party_completion_id = ?", partyCompletionID).Order("id ASC").Find(&gates).Error
	return gates, err
}

func (r *WeeklyCompletionRepository) SumEarnedGold(characterID uint, week model.WeekKey) (int, error) {
	var total int
	err := r.DB.Model(&model.WeeklyCompletion{}).
		Where("character_id = ? AND week_key = ?", characterID, week).
		Select("COALESCE(SUM(earned_gold), 0)").
		Scan(&total).Error
	return total, err
}

func (r *WeeklyCompletionRepository) deleteWhere(query string, args ...interface{}) (int64, error) {
	var affected int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		weekly := tx.Model(&model.WeeklyCompletion{}).Select("id").Where(query, args...)
		if err := tx.Where("weekly_completion_id IN (?)", weekly).Delete(&model.GateCompletion{}).Error; err != nil {
			return err
		}
		res := tx.Where(query, args...).Delete(&model.WeeklyCompletion{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// DeleteBeforeWeek 删除 week 之前的账本记录
func (r *WeeklyCompletionRepository) DeleteBeforeWeek(week model.WeekKey) (int64, error) {
	return r.deleteWhere("week_key < ?", week)
}

func (r *WeeklyCompletionRepository) DeleteWeek(week model.WeekKey) (int64, error) {
	return r.deleteWhere("week_key = ?", week)
}

func (r *WeeklyCompletionRepository) CountByWeek(week model.WeekKey) (int64, error) {
	var count int64
	err := r.DB.Model(&model.WeeklyCompletion{}).Where("week_key = ?", week).Count(&count).Error
	return count, err
}

func (r *WeeklyCompletionRepository) CountCompletedGates(week model.WeekKey) (int64, error) {
	var count int64
	err := r.DB.Model(&model.GateCompletion{}).
		Joins("JOIN weekly_completions ON weekly_completions.id = gate_completions.weekly_completion_id").
		Where("weekly_completions.week_key = ? AND gate_completions.completed = ?", week, true).
		Count(&count).Error
	return count, err
}
