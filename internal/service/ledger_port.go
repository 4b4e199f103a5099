package service

import (
	"raid_checker_backend/internal/model"

	"gorm.io/gorm"
)

//go:generate mockgen -source=ledger_port.go -destination=mock/ledger_port.go -package=mock

// LedgerPort 组队服务写账本用的接口，所有调用都在调用方的事务内
type LedgerPort interface {
	// CreditRaid 完成角色该副本所有未完成关卡，并标记来源组队
	CreditRaid(tx *gorm.DB, characterID uint, raid *model.Raid, week model.WeekKey, extraReward bool, partyCompletionID uint) error
	// DebitParty 撤销组队完成的关卡，返回涉及的角色
	DebitParty(tx *gorm.DB, partyCompletionID uint) ([]uint, error)
	// Replay 根据完成日志重新计算角色本周金币
	Replay(tx *gorm.DB, characterID uint, week model.WeekKey) error
}
