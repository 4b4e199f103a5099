package model

import "time"

// WeekKey identifies a reset week by the calendar date (YYYY-MM-DD) of its opening
// reset in the ledger timezone.
type WeekKey string

// WeeklyCompletion is one character's progress on one raid within one reset week.
// swagger:model WeeklyCompletion
type WeeklyCompletion struct {
	Record
	CharacterID     uint             `gorm:"not null;uniqueIndex:idx_weekly_character_raid_week" json:"characterId"`
	RaidID          uint             `gorm:"not null;uniqueIndex:idx_weekly_character_raid_week" json:"raidId"`
	WeekKey         WeekKey          `gorm:"size:10;not null;uniqueIndex:idx_weekly_character_raid_week;index" json:"weekKey"`
	Completed       bool             `gorm:"not null;default:false" json:"completed"`
	EarnedGold      int              `gorm:"not null;default:0" json:"earnedGold"`
	Raid            Raid             `gorm:"foreignKey:RaidID" json:"raid"`
	GateCompletions []GateCompletion `gorm:"foreignKey:WeeklyCompletionID;constraint:OnDelete:CASCADE" json:"gateCompletions"`
}

func (WeeklyCompletion) TableName() string {
	return "weekly_completions"
}

// GateCompletion is PENDING while Completed is false and COMPLETED otherwise.
// CompletionSeq orders completions of one character-week; earlier clears win the gold cap.
// swagger:model GateCompletion
type GateCompletion struct {
	Record
	WeeklyCompletionID uint       `gorm:"not null;index" json:"weeklyCompletionId"`
	RaidGateID         uint       `gorm:"not null" json:"raidGateId"`
	GateNumber         int        `gorm:"not null" json:"gateNumber"`
	Completed          bool       `gorm:"not null;default:false" json:"completed"`
	ExtraReward        bool       `gorm:"not null;default:false" json:"extraReward"`
	EarnedGold         int        `gorm:"not null;default:0" json:"earnedGold"`
	CompletionSeq      int64      `gorm:"not null;default:0" json:"completionSeq"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	PartyCompletionID  *uint      `gorm:"index" json:"partyCompletionId,omitempty"`
	RaidGate           RaidGate   `gorm:"foreignKey:RaidGateID" json:"raidGate"`
}

func (GateCompletion) TableName() string {
	return "gate_completions"
}

// Recompute derives the aggregate from the gates: completed once any gate is cleared,
// earned gold the sum of credited gates.
func (w *WeeklyCompletion) Recompute() {
	w.Completed = false
	w.EarnedGold = 0
	for _, g := range w.GateCompletions {
		if !g.Completed {
			continue
		}
		w.Completed = true
		w.EarnedGold += g.EarnedGold
	}
}
