package model

import "time"

// PartyCompletion records a party that cleared a raid together during one reset week.
// swagger:model PartyCompletion
type PartyCompletion struct {
	Record
	RaidID      uint          `gorm:"not null;index" json:"raidId"`
	WeekKey     WeekKey       `gorm:"size:10;not null;index" json:"weekKey"`
	ExtraReward bool          `gorm:"not null;default:false" json:"extraReward"`
	CompletedAt time.Time     `gorm:"not null" json:"completedAt"`
	Raid        Raid          `gorm:"foreignKey:RaidID" json:"raid"`
	Members     []PartyMember `gorm:"foreignKey:PartyCompletionID;constraint:OnDelete:CASCADE" json:"members"`
}

func (PartyCompletion) TableName() string {
	return "party_completions"
}

// swagger:model PartyMember
type PartyMember struct {
	Record
	PartyCompletionID uint      `gorm:"not null;uniqueIndex:idx_party_member" json:"partyCompletionId"`
	CharacterID       uint      `gorm:"not null;uniqueIndex:idx_party_member;index" json:"characterId"`
	Position          int       `gorm:"not null" json:"position"`
	Character         Character `gorm:"foreignKey:CharacterID" json:"character"`
}

func (PartyMember) TableName() string {
	return "party_members"
}

// CharacterIDs returns member ids in party order.
func (p *PartyCompletion) CharacterIDs() []uint {
	ids := make([]uint, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.CharacterID)
	}
	return ids
}
