package model

type Difficulty string

const (
	DifficultyNormal    Difficulty = "노말"
	DifficultyHard      Difficulty = "하드"
	DifficultyNightmare Difficulty = "나이트메어"
)

// Rank orders difficulties: Normal < Hard < Nightmare.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyNormal:
		return 1
	case DifficultyHard:
		return 2
	case DifficultyNightmare:
		return 3
	}
	return 0
}

type PartyType string

const (
	PartyTypeKazeros PartyType = "카제로스"
	PartyTypeShadow  PartyType = "그림자"
)

// Quota is the exact role split of one full party.
type Quota struct {
	Dealers  int `json:"dealerCount"`
	Supports int `json:"supportCount"`
}

func (q Quota) Size() int {
	return q.Dealers + q.Supports
}

var partyQuotas = map[PartyType]Quota{
	PartyTypeKazeros: {Dealers: 6, Supports: 2},
	PartyTypeShadow:  {Dealers: 3, Supports: 1},
}

// QuotaFor returns the role quota of a party type.
func QuotaFor(t PartyType) (Quota, bool) {
	q, ok := partyQuotas[t]
	return q, ok
}

// swagger:model Raid
type Raid struct {
	Record
	Name              string     `gorm:"size:100;not null" json:"raidName"`
	RaidGroup         string     `gorm:"size:100;index;not null" json:"raidGroup"`
	Difficulty        Difficulty `gorm:"size:20;not null" json:"difficulty"`
	RequiredItemLevel float64    `gorm:"not null" json:"requiredItemLevel"`
	PartyType         PartyType  `gorm:"size:20;not null" json:"partyType"`
	OrderIndex        int        `gorm:"not null;index" json:"orderIndex"`
	RewardGold        int        `gorm:"not null" json:"rewardGold"`
	Gates             []RaidGate `gorm:"foreignKey:RaidID;constraint:OnDelete:CASCADE" json:"gates,omitempty"`
}

func (Raid) TableName() string {
	return "raids"
}

// swagger:model RaidGate
type RaidGate struct {
	Record
	RaidID     uint `gorm:"index;not null" json:"raidId"`
	GateNumber int  `gorm:"not null" json:"gateNumber"`
	RewardGold int  `gorm:"not null" json:"rewardGold"`
	ExtraCost  int  `gorm:"not null" json:"extraCost"`
}

func (RaidGate) TableName() string {
	return "raid_gates"
}

// Payout is the gold a credited clear of this gate earns, never negative.
func (g *RaidGate) Payout(extraReward bool) int {
	gold := g.RewardGold
	if extraReward {
		gold -= g.ExtraCost
	}
	if gold < 0 {
		return 0
	}
	return gold
}
