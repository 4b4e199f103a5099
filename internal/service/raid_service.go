package service

import (
	"errors"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/internal/util"

	"gorm.io/gorm"
)

type RaidService struct {
	Raids *repository.RaidRepository
}

func NewRaidService(raids *repository.RaidRepository) *RaidService {
	return &RaidService{Raids: raids}
}

func (s *RaidService) ListRaids() ([]model.Raid, error) {
	return s.Raids.FindAll()
}

func (s *RaidService) GetRaid(id uint) (*model.Raid, error) {
	raid, err := s.Raids.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRaidNotFound
	}
	return raid, err
}

func (s *RaidService) ListAvailable(itemLevel float64) ([]model.Raid, error) {
	return s.Raids.FindAvailable(itemLevel)
}
