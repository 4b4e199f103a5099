package repository

import (
	"raid_checker_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartyCompletionRepository struct {
	DB *gorm.DB
}

func NewPartyCompletionRepository(db *gorm.DB) *PartyCompletionRepository {
	return &PartyCompletionRepository{DB: db}
}

func (r *PartyCompletionRepository) WithTx(tx *gorm.DB) *PartyCompletionRepository {
	return &PartyCompletionRepository{DB: tx}
}

func (r *PartyCompletionRepository) withMembers() *gorm.DB {
	return r.DB.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Members.Character").Preload("Raid")
}

// Create 创建组队记录及队员
func (r *PartyCompletionRepository) Create(party *model.PartyCompletion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(party).Error; err != nil {
			return err
		}
		for i := range party.Members {
			party.Members[i].PartyCompletionID = party.ID
		}
		if len(party.Members) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&party.Members).Error
	})
}

func (r *PartyCompletionRepository) FindByID(id uint) (*model.PartyCompletion, error) {
	var party model.PartyCompletion
	err := r.withMembers().First(&party, id).Error
	return &party, err
}

// ListByWeek 某周的组队记录，最新的在前；raidID 为 0 表示全部副本
func (r *PartyCompletionRepository) ListByWeek(week model.WeekKey, raidID uint) ([]model.PartyCompletion, error) {
	var parties []model.PartyCompletion
	db := r.withMembers().Where("week_key = ?", week)
	if raidID != 0 {
		db = db.Where("raid_id = ?", raidID)
	}
	err := db.Order("completed_at DESC, id DESC").Find(&parties).Error
	return parties, err
}

func (r *PartyCompletionRepository) ListAll() ([]model.PartyCompletion, error) {
	var parties []model.PartyCompletion
	err := r.withMembers().Order("completed_at DESC, id DESC").Find(&parties).Error
	return parties, err
}

func (r *PartyCompletionRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("party_completion_id = ?", id).Delete(&model.PartyMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PartyCompletion{}, id).Error
	})
}

func (r *PartyCompletionRepository) deleteWhere(query string, args ...interface{}) (int64, error) {
	var affected int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		parties := tx.Model(&model.PartyCompletion{}).Select("id").Where(query, args...)
		if err := tx.Where("party_completion_id IN (?)", parties).Delete(&model.PartyMember{}).Error; err != nil {
			return err
		}
		res := tx.Where(query, args...).Delete(&model.PartyCompletion{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *PartyCompletionRepository) DeleteBeforeWeek(week model.WeekKey) (int64, error) {
	return r.deleteWhere("week_key < ?", week)
}

func (r *PartyCompletionRepository) DeleteWeek(week model.WeekKey) (int64, error) {
	return r.deleteWhere("week_key = ?", week)
}

func (r *PartyCompletionRepository) CountByWeek(week model.WeekKey) (int64, error) {
	var count int64
	err := r.DB.Model(&model.PartyCompletion{}).Where("week_key = ?", week).Count(&count).Error
	return count, err
}
