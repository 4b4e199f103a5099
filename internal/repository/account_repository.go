package repository

import (
	"raid_checker_backend/internal/model"

	"gorm.io/gorm"
)

type AccountRepository struct {
	DB *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

func (r *AccountRepository) WithTx(tx *gorm.DB) *AccountRepository {
	return &AccountRepository{DB: tx}
}

func (r *AccountRepository) Create(account *model.Account) error {
	return r.DB.Create(account).Error
}

func (r *AccountRepository) FindByID(id uint) (*model.Account, error) {
	var account model.Account
	err := r.DB.First(&account, id).Error
	return &account, err
}

func (r *AccountRepository) FindByUsername(username string) (*model.Account, error) {
	var account model.Account
	err := r.DB.Where("username = ?", username).First(&account).Error
	return &account, err
}

func (r *AccountRepository) List() ([]model.Account, error) {
	var accounts []model.Account
	err := r.DB.Order("id ASC").Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Account{}, id).Error
}

func (r *AccountRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Account{}).Count(&count).Error
	return count, err
}
