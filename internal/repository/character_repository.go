package repository

import (
	"raid_checker_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CharacterRepository struct {
	DB *gorm.DB
}

func NewCharacterRepository(db *gorm.DB) *CharacterRepository {
	return &CharacterRepository{DB: db}
}

func (r *CharacterRepository) WithTx(tx *gorm.DB) *CharacterRepository {
	return &CharacterRepository{DB: tx}
}

func (r *CharacterRepository) Create(character *model.Character) error {
	return r.DB.Create(character).Error
}

func (r *CharacterRepository) Save(character *model.Character) error {
	return r.DB.Save(character).Error
}

func (r *CharacterRepository) FindByID(id uint) (*model.Character, error) {
	var character model.Character
	err := r.DB.First(&character, id).Error
	return &character, err
}

// FindByIDs 按 ID 排序返回，不存在的 ID 直接忽略
func (r *CharacterRepository) FindByIDs(ids []uint) ([]model.Character, error) {
	var characters []model.Character
	if len(ids) == 0 {
		return characters, nil
	}
	err := r.DB.Where("id IN ?", ids).Order("id ASC").Find(&characters).Error
	return characters, err
}

// LockByIDs 按 ID 升序加行锁，队员重叠的两个事务不会死锁
func (r *CharacterRepository) LockByIDs(ids []uint) ([]model.Character, error) {
	var characters []model.Character
	if len(ids) == 0 {
		return characters, nil
	}
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&characters).Error
	return characters, err
}

func (r *CharacterRepository) FindByAccount(accountID uint) ([]model.Character, error) {
	var characters []model.Character
	err := r.DB.Where("account_id = ?", accountID).
		Order("gold_priority ASC, item_level DESC, id ASC").
		Find(&characters).Error
	return characters, err
}

func (r *CharacterRepository) FindAll() ([]model.Character, error) {
	var characters []model.Character
	err := r.DB.Order("id ASC").Find(&characters).Error
	return characters, err
}

// FindWithMinItemLevel 装等达到要求的所有角色
func (r *CharacterRepository) FindWithMinItemLevel(itemLevel float64) ([]model.Character, error) {
	var characters []model.Character
	err := r.DB.Where("item_level >= ?", itemLevel).Order("id ASC").Find(&characters).Error
	return characters, err
}

func (r *CharacterRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Character{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *CharacterRepository) CountByAccount(accountID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Character{}).Where("account_id = ?", accountID).Count(&count).Error
	return count, err
}

func (r *CharacterRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Character{}).Count(&count).Error
	return count, err
}

// Delete 删除角色及其账本和队员记录
func (r *CharacterRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		weekly := tx.Model(&model.WeeklyCompletion{}).Select("id").Where("character_id = ?", id)
		if err := tx.Where("weekly_completion_id IN (?)", weekly).Delete(&model.GateCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("character_id = ?", id).Delete(&model.WeeklyCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("character_id = ?", id).Delete(&model.PartyMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Character{}, id).Error
	})
}

// DeleteByAccount 删除账号下所有角色及其账本
func (r *CharacterRepository) DeleteByAccount(accountID uint) error {
	var ids []uint
	if err := r.DB.Model(&model.Character{}).Where("account_id = ?", accountID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.Delete(id); err != nil {
			return err
		}
	}
	return nil
}
